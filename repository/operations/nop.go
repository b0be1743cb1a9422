package operations

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shortedge/model"
)

// ErrDisabled is returned by Nop reads.
var ErrDisabled = errors.New("operation log is disabled")

// Nop stands in for Repo when no database is configured. Writes are dropped.
type Nop struct{}

var _ model.OperationsRepository = Nop{}

// Save ...
func (Nop) Save(context.Context, model.Operation) (int, error) { return 0, nil }

// All ...
func (Nop) All(context.Context, int) ([]model.Operation, error) { return nil, ErrDisabled }

// GetOne ...
func (Nop) GetOne(context.Context, int) (model.Operation, error) {
	return model.Operation{}, ErrDisabled
}

//go:generate mockgen -destination=../mock/model/operations.go -package=mock_model github.com/shortedge/model OperationsRepository

package model

import (
	"context"
	"time"
)

// Operation statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Operation describes one resize attempt. Image bytes are never stored.
type Operation struct {
	ID                 int
	RequestID          string
	Source             string
	OriginalResolution string `json:",omitempty"`
	ResizedResolution  string `json:",omitempty"`
	Status             string
	Error              string `json:",omitempty"`
	CreatedAt          time.Time
}

// OperationsRepository describes methods for working with the operation log.
type OperationsRepository interface {
	Save(context.Context, Operation) (int, error)
	All(context.Context, int) ([]Operation, error)
	GetOne(context.Context, int) (Operation, error)
}

package operations

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/shortedge/model"
)

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS resize_operations (
	 id SERIAL PRIMARY KEY,
	 request_id TEXT NOT NULL,
	 source TEXT NOT NULL,
	 original_resolution TEXT NOT NULL DEFAULT '',
	 resized_resolution TEXT NOT NULL DEFAULT '',
	 status TEXT NOT NULL,
	 error TEXT NOT NULL DEFAULT '',
	 created_at TIMESTAMPTZ NOT NULL DEFAULT now())`

	allOperationsQuery = `SELECT
	 id, request_id, source, original_resolution, resized_resolution, status, error, created_at
	 FROM resize_operations ORDER BY created_at DESC, id DESC LIMIT $1`

	oneByID = `SELECT
	 id, request_id, source, original_resolution, resized_resolution, status, error, created_at
	 FROM resize_operations WHERE id = $1`

	insertOperationQuery = `INSERT INTO resize_operations
	 (request_id, source, original_resolution, resized_resolution, status, error, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
)

// ErrNotFound is returned by GetOne when no operation has the given ID.
var ErrNotFound = errors.New("operation not found")

// Repo contains db session.
type Repo struct {
	db *sql.DB
}

// NewRepo creates new Repo struct with db session.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db}
}

// Migrate creates the operations table if it does not exist yet.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableQuery); err != nil {
		return errors.Wrap(err, "creating resize_operations table")
	}
	return nil
}

// Save inserts a new operation and returns its ID.
func (r *Repo) Save(ctx context.Context, op model.Operation) (int, error) {
	var id int
	if err := r.db.QueryRowContext(ctx, insertOperationQuery,
		op.RequestID,
		op.Source,
		op.OriginalResolution,
		op.ResizedResolution,
		op.Status,
		op.Error,
		op.CreatedAt,
	).Scan(&id); err != nil {
		return 0, errors.Wrapf(err, "inserting operation %s", op.RequestID)
	}
	return id, nil
}

// All returns up to limit operations, newest first.
func (r *Repo) All(ctx context.Context, limit int) ([]model.Operation, error) {
	rows, err := r.db.QueryContext(ctx, allOperationsQuery, limit)
	if err != nil {
		return nil, errors.Wrap(err, "getting operations from DB")
	}
	defer rows.Close()

	res := []model.Operation{}
	for rows.Next() {
		op, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "getting operations from DB")
		}
		res = append(res, op)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "getting operations from DB")
	}
	return res, nil
}

// GetOne returns specific operation by it's ID.
func (r *Repo) GetOne(ctx context.Context, id int) (model.Operation, error) {
	op, err := scan(r.db.QueryRowContext(ctx, oneByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Operation{}, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	if err != nil {
		return model.Operation{}, errors.Wrapf(err, "getting operation by ID: %d", id)
	}
	return op, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(s scanner) (model.Operation, error) {
	var op model.Operation
	err := s.Scan(
		&op.ID,
		&op.RequestID,
		&op.Source,
		&op.OriginalResolution,
		&op.ResizedResolution,
		&op.Status,
		&op.Error,
		&op.CreatedAt,
	)
	return op, err
}

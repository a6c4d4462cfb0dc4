package reports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a report does not exist or belongs to a
// different caller.
var ErrNotFound = errors.New("report not found")

// Repo abstracts report metadata persistence.
type Repo interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, callerID, id string) (*Report, error)
	List(ctx context.Context, callerID string, limit int) ([]Report, error)
	SetExtraction(ctx context.Context, id, textKey string, at time.Time) error
}

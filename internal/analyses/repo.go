package analyses

import (
	"context"
	"time"
)

// Repo abstracts analysis persistence.
type Repo interface {
	Create(ctx context.Context, a *Analysis) error
	GetByID(ctx context.Context, callerID, id string) (*Analysis, error)
	List(ctx context.Context, callerID string, limit int) ([]Analysis, error)
	MarkProcessing(ctx context.Context, id string, startedAt time.Time) error
	Complete(ctx context.Context, id string, result *Result, provider, model string, completedAt time.Time) error
	Fail(ctx context.Context, id string, failure Failure, completedAt time.Time) error
}

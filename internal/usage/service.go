package usage

import (
	"context"
	"time"
)

// Store persists quota counters.
type Store interface {
	// Consume increments the caller's counter and returns the resulting
	// quota. The counter rolls over when resets_at has passed.
	Consume(ctx context.Context, callerID string, limit int, resetsAt time.Time) (Quota, error)
	// Peek returns the current quota without consuming.
	Peek(ctx context.Context, callerID string, limit int, resetsAt time.Time) (Quota, error)
}

// Service applies the daily analysis limit.
type Service struct {
	store Store
	limit int
	now   func() time.Time
}

// NewService builds a quota service with a per-day limit.
func NewService(store Store, limit int) *Service {
	return &Service{store: store, limit: limit, now: time.Now}
}

// Consume takes one analysis from the caller's daily allowance. Returns
// ErrLimitReached when the allowance is exhausted.
func (s *Service) Consume(ctx context.Context, callerID string) (Quota, error) {
	q, err := s.store.Consume(ctx, callerID, s.limit, s.nextReset())
	if err != nil {
		return q, err
	}
	if q.Used > q.Limit {
		return q, ErrLimitReached
	}
	return q, nil
}

// Current reports the caller's quota without consuming it.
func (s *Service) Current(ctx context.Context, callerID string) (Quota, error) {
	return s.store.Peek(ctx, callerID, s.limit, s.nextReset())
}

// nextReset is the upcoming UTC midnight.
func (s *Service) nextReset() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

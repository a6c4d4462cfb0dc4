package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGStore persists quota counters in Postgres.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an existing connection pool.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (p *PGStore) Consume(ctx context.Context, callerID string, limit int, resetsAt time.Time) (Quota, error) {
	const q = `
		INSERT INTO usage_quotas (caller_id, plan, limit_n, used_n, resets_at)
		VALUES ($1, 'free', $2, 1, $3)
		ON CONFLICT (caller_id) DO UPDATE SET
			used_n = CASE WHEN usage_quotas.resets_at <= now()
				THEN 1 ELSE usage_quotas.used_n + 1 END,
			resets_at = CASE WHEN usage_quotas.resets_at <= now()
				THEN EXCLUDED.resets_at ELSE usage_quotas.resets_at END,
			limit_n = EXCLUDED.limit_n
		RETURNING plan, limit_n, used_n, resets_at`

	var out Quota
	err := p.db.QueryRowContext(ctx, q, callerID, limit, resetsAt).
		Scan(&out.Plan, &out.Limit, &out.Used, &out.ResetsAt)
	if err != nil {
		return Quota{}, fmt.Errorf("consume quota: %w", err)
	}
	return out, nil
}

func (p *PGStore) Peek(ctx context.Context, callerID string, limit int, resetsAt time.Time) (Quota, error) {
	const q = `
		SELECT plan, limit_n, used_n, resets_at
		FROM usage_quotas
		WHERE caller_id = $1 AND resets_at > now()`

	var out Quota
	err := p.db.QueryRowContext(ctx, q, callerID).
		Scan(&out.Plan, &out.Limit, &out.Used, &out.ResetsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quota{Plan: "free", Limit: limit, Used: 0, ResetsAt: resetsAt}, nil
	}
	if err != nil {
		return Quota{}, fmt.Errorf("peek quota: %w", err)
	}
	out.Limit = limit
	return out, nil
}

var _ Store = (*PGStore)(nil)

package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo persists analyses in Postgres. Results live in a JSONB column.
type PGRepo struct {
	db *sql.DB
}

// NewPGRepo wraps an existing connection pool.
func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{db: db}
}

const analysisColumns = `
	id, report_id, caller_id, status, COALESCE(provider, ''),
	COALESCE(model, ''), COALESCE(pipeline_version, ''), result,
	COALESCE(error_code, ''), COALESCE(error_message, ''),
	COALESCE(error_retryable, FALSE),
	started_at, completed_at, created_at, updated_at`

func (p *PGRepo) Create(ctx context.Context, a *Analysis) error {
	const q = `
		INSERT INTO analyses (id, report_id, caller_id, status,
			pipeline_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := p.db.ExecContext(ctx, q,
		a.ID, a.ReportID, a.CallerID, string(a.Status),
		a.PipelineVersion, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (p *PGRepo) GetByID(ctx context.Context, callerID, id string) (*Analysis, error) {
	q := `SELECT ` + analysisColumns + `
		FROM analyses WHERE id = $1 AND caller_id = $2`
	a, err := scanAnalysis(p.db.QueryRowContext(ctx, q, id, callerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis: %w", err)
	}
	return a, nil
}

func (p *PGRepo) List(ctx context.Context, callerID string, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + analysisColumns + `
		FROM analyses WHERE caller_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := p.db.QueryContext(ctx, q, callerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (p *PGRepo) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	const q = `
		UPDATE analyses
		SET status = $2, started_at = $3, updated_at = now()
		WHERE id = $1`
	return p.exec(ctx, q, id, string(StatusProcessing), startedAt)
}

func (p *PGRepo) Complete(ctx context.Context, id string, result *Result, provider, model string, completedAt time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	const q = `
		UPDATE analyses
		SET status = $2, result = $3, provider = $4, model = $5,
			completed_at = $6, updated_at = now()
		WHERE id = $1`
	return p.exec(ctx, q, id, string(StatusCompleted), payload, provider, model, completedAt)
}

func (p *PGRepo) Fail(ctx context.Context, id string, failure Failure, completedAt time.Time) error {
	const q = `
		UPDATE analyses
		SET status = $2, error_code = $3, error_message = $4,
			error_retryable = $5, completed_at = $6, updated_at = now()
		WHERE id = $1`
	return p.exec(ctx, q, id, string(StatusFailed),
		failure.Code, failure.Message, failure.Retryable, completedAt)
}

func (p *PGRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := p.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	var a Analysis
	var status string
	var resultRaw []byte
	var errCode, errMessage string
	var errRetryable bool
	var startedAt, completedAt sql.NullTime

	err := row.Scan(&a.ID, &a.ReportID, &a.CallerID, &status, &a.Provider,
		&a.Model, &a.PipelineVersion, &resultRaw,
		&errCode, &errMessage, &errRetryable,
		&startedAt, &completedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Status = Status(status)
	if len(resultRaw) > 0 {
		var result Result
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		a.Result = &result
	}
	if errCode != "" {
		a.Failure = &Failure{Code: errCode, Message: errMessage, Retryable: errRetryable}
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return &a, nil
}

var _ Repo = (*PGRepo)(nil)

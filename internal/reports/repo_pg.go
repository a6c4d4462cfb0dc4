package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGRepo persists report metadata in Postgres.
type PGRepo struct {
	db *sql.DB
}

// NewPGRepo wraps an existing connection pool.
func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{db: db}
}

func (p *PGRepo) Create(ctx context.Context, r *Report) error {
	const q = `
		INSERT INTO reports (id, caller_id, file_name, mime_type, size_bytes,
			storage_provider, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := p.db.ExecContext(ctx, q,
		r.ID, r.CallerID, r.FileName, r.MimeType, r.SizeBytes,
		r.StorageProvider, r.StorageKey, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (p *PGRepo) GetByID(ctx context.Context, callerID, id string) (*Report, error) {
	const q = `
		SELECT id, caller_id, file_name, mime_type, size_bytes,
			storage_provider, storage_key, COALESCE(extracted_text_key, ''),
			extracted_at, created_at
		FROM reports
		WHERE id = $1 AND caller_id = $2`
	row := p.db.QueryRowContext(ctx, q, id, callerID)

	var r Report
	var extractedAt sql.NullTime
	err := row.Scan(&r.ID, &r.CallerID, &r.FileName, &r.MimeType, &r.SizeBytes,
		&r.StorageProvider, &r.StorageKey, &r.ExtractedTextKey,
		&extractedAt, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select report: %w", err)
	}
	if extractedAt.Valid {
		r.ExtractedAt = &extractedAt.Time
	}
	return &r, nil
}

func (p *PGRepo) List(ctx context.Context, callerID string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT id, caller_id, file_name, mime_type, size_bytes,
			storage_provider, storage_key, COALESCE(extracted_text_key, ''),
			extracted_at, created_at
		FROM reports
		WHERE caller_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := p.db.QueryContext(ctx, q, callerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var r Report
		var extractedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.CallerID, &r.FileName, &r.MimeType, &r.SizeBytes,
			&r.StorageProvider, &r.StorageKey, &r.ExtractedTextKey,
			&extractedAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if extractedAt.Valid {
			r.ExtractedAt = &extractedAt.Time
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PGRepo) SetExtraction(ctx context.Context, id, textKey string, at time.Time) error {
	const q = `
		UPDATE reports
		SET extracted_text_key = $2, extracted_at = $3
		WHERE id = $1`
	res, err := p.db.ExecContext(ctx, q, id, textKey, at)
	if err != nil {
		return fmt.Errorf("update report extraction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)

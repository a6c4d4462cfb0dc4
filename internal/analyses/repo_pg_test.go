package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGRepo(db), mock
}

func TestPGCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	a := &Analysis{
		ID:              "a1",
		ReportID:        "r1",
		CallerID:        "guest:x",
		Status:          StatusQueued,
		PipelineVersion: "crew:v1",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs("a1", "r1", "guest:x", "queued", "crew:v1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGGetByIDCompleted(t *testing.T) {
	repo, mock := newMockRepo(t)

	result := &Result{Summary: "looks good"}
	payload, _ := json.Marshal(result)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "report_id", "caller_id", "status", "provider", "model",
		"pipeline_version", "result", "error_code", "error_message",
		"error_retryable", "started_at", "completed_at", "created_at", "updated_at",
	}).AddRow("a1", "r1", "guest:x", "completed", "openai", "gpt-4o-mini",
		"crew:v1", payload, "", "", false, now, now, now, now)

	mock.ExpectQuery(`(?s)SELECT .* FROM analyses\s+WHERE id = \$1 AND caller_id = \$2`).
		WithArgs("a1", "guest:x").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "guest:x", "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %q", got.Status)
	}
	if got.Result == nil || got.Result.Summary != "looks good" {
		t.Errorf("result = %+v", got.Result)
	}
	if got.Failure != nil {
		t.Errorf("failure = %+v, want nil", got.Failure)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGGetByIDFailed(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "report_id", "caller_id", "status", "provider", "model",
		"pipeline_version", "result", "error_code", "error_message",
		"error_retryable", "started_at", "completed_at", "created_at", "updated_at",
	}).AddRow("a2", "r1", "guest:x", "failed", "", "", "crew:v1", nil,
		CodeUpstreamTimeout, "the analysis provider timed out", true, now, now, now, now)

	mock.ExpectQuery(`(?s)SELECT .* FROM analyses\s+WHERE id = \$1 AND caller_id = \$2`).
		WithArgs("a2", "guest:x").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "guest:x", "a2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Failure == nil || got.Failure.Code != CodeUpstreamTimeout || !got.Failure.Retryable {
		t.Errorf("failure = %+v", got.Failure)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM analyses`).
		WithArgs("missing", "guest:x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "guest:x", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGFailNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE analyses`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Fail(context.Background(), "missing",
		Failure{Code: CodeInternal, Message: "boom"}, time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGComplete(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE analyses`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Complete(context.Background(), "a1",
		&Result{Summary: "done"}, "openai", "gpt-4o-mini", now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

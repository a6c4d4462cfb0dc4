package reports

import (
	"context"
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

func reportColumns() []string {
	return []string{
		"id", "caller_id", "file_name", "mime_type", "size_bytes",
		"storage_provider", "storage_key", "extracted_text_key",
		"extracted_at", "created_at",
	}
}

func TestPGCreateReport(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	r := &Report{
		ID:              "r1",
		CallerID:        "guest:x",
		FileName:        "cbc.pdf",
		MimeType:        "application/pdf",
		SizeBytes:       1234,
		StorageProvider: "local",
		StorageKey:      "abc/def_cbc.pdf",
		CreatedAt:       now,
	}

	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs("r1", "guest:x", "cbc.pdf", "application/pdf", int64(1234),
			"local", "abc/def_cbc.pdf", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGGetReport(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(reportColumns()).
		AddRow("r1", "guest:x", "cbc.pdf", "application/pdf", int64(1234),
			"local", "abc/def_cbc.pdf", "abc/def_cbc.pdf.extracted.txt", now, now)

	mock.ExpectQuery(`(?s)SELECT .* FROM reports\s+WHERE id = \$1 AND caller_id = \$2`).
		WithArgs("r1", "guest:x").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "guest:x", "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ExtractedTextKey != "abc/def_cbc.pdf.extracted.txt" {
		t.Errorf("extractedTextKey = %q", got.ExtractedTextKey)
	}
	if got.ExtractedAt == nil {
		t.Error("extractedAt not scanned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGGetReportNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM reports`).
		WithArgs("missing", "guest:x").
		WillReturnRows(sqlmock.NewRows(reportColumns()))

	_, err := repo.GetByID(context.Background(), "guest:x", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGSetExtractionNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE reports`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetExtraction(context.Background(), "missing", "key", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGListReports(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(reportColumns()).
		AddRow("r1", "guest:x", "a.pdf", "application/pdf", int64(1), "local", "k1", "", nil, now).
		AddRow("r2", "guest:x", "b.txt", "text/plain", int64(2), "local", "k2", "", nil, now)

	mock.ExpectQuery(`(?s)SELECT .* FROM reports\s+WHERE caller_id = \$1`).
		WithArgs("guest:x", 50).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), "guest:x", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

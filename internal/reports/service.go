package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"bloodreport-backend/internal/shared/storage/object"
	"bloodreport-backend/internal/shared/telemetry"
)

// ErrUnsupportedType is returned for uploads that are neither PDF nor
// plain text.
var ErrUnsupportedType = errors.New("unsupported report type")

// ErrEmptyFile is returned when the uploaded body has no content.
var ErrEmptyFile = errors.New("empty report file")

var allowedMimes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
}

// Service owns the upload and retrieval of blood report files.
type Service struct {
	repo     Repo
	store    object.ObjectStore
	provider string
}

// NewService wires the repo and object store. provider names the storage
// backend recorded on each report ("local" or "minio").
func NewService(repo Repo, store object.ObjectStore, provider string) *Service {
	return &Service{repo: repo, store: store, provider: provider}
}

// Upload stores the file and records its metadata. The body is buffered
// for MIME sniffing; handlers cap the upload size before calling this.
func (s *Service) Upload(ctx context.Context, callerID, fileName string, r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	mime := mimetype.Detect(data)
	mimeStr := baseMime(mime.String())
	if !allowedMimes[mimeStr] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeStr)
	}

	storageKey, size, _, err := s.store.Save(ctx, callerID, fileName, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	report := &Report{
		ID:              uuid.NewString(),
		CallerID:        callerID,
		FileName:        fileName,
		MimeType:        mimeStr,
		SizeBytes:       size,
		StorageProvider: s.provider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("save report metadata: %w", err)
	}

	telemetry.Info("report.uploaded", map[string]any{
		"report_id": report.ID,
		"mime_type": report.MimeType,
		"size":      report.SizeBytes,
	})
	return report, nil
}

// Get fetches one report scoped to the caller.
func (s *Service) Get(ctx context.Context, callerID, id string) (*Report, error) {
	return s.repo.GetByID(ctx, callerID, id)
}

// List returns the caller's reports, newest first.
func (s *Service) List(ctx context.Context, callerID string, limit int) ([]Report, error) {
	return s.repo.List(ctx, callerID, limit)
}

// OpenFile streams the stored report body.
func (s *Service) OpenFile(ctx context.Context, report *Report) (io.ReadCloser, error) {
	return s.store.Open(ctx, report.StorageKey)
}

// SaveExtractedText persists the extracted text next to the original file
// and records the key on the report row.
func (s *Service) SaveExtractedText(ctx context.Context, report *Report, text string) (string, error) {
	textKey := report.StorageKey + ".extracted.txt"
	if _, err := s.store.SaveWithKey(ctx, textKey, "text/plain; charset=utf-8", bytes.NewReader([]byte(text))); err != nil {
		return "", fmt.Errorf("store extracted text: %w", err)
	}
	if err := s.repo.SetExtraction(ctx, report.ID, textKey, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("record extraction: %w", err)
	}
	return textKey, nil
}

// ExtractedText loads previously extracted text, if any.
func (s *Service) ExtractedText(ctx context.Context, report *Report) (string, bool, error) {
	if report.ExtractedTextKey == "" {
		return "", false, nil
	}
	rc, err := s.store.Open(ctx, report.ExtractedTextKey)
	if err != nil {
		return "", false, fmt.Errorf("open extracted text: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false, fmt.Errorf("read extracted text: %w", err)
	}
	return string(data), true, nil
}

func baseMime(m string) string {
	for i := 0; i < len(m); i++ {
		if m[i] == ';' {
			return m[:i]
		}
	}
	return m
}

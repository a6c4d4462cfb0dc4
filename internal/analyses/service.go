package analyses

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bloodreport-backend/internal/agents"
	"bloodreport-backend/internal/bloodwork"
	"bloodreport-backend/internal/extract"
	"bloodreport-backend/internal/reports"
	"bloodreport-backend/internal/shared/metrics"
	"bloodreport-backend/internal/shared/telemetry"
	"bloodreport-backend/internal/usage"
)

// ErrReportNotFound is returned when the referenced report does not exist
// for the caller.
var ErrReportNotFound = errors.New("report not found")

// defaultJobTimeout bounds a whole analysis run, across every pipeline
// step.
const defaultJobTimeout = 10 * time.Minute

// Service creates analyses and runs them asynchronously.
type Service struct {
	repo            Repo
	reports         *reports.Service
	pipeline        *agents.Pipeline
	quota           *usage.Service
	provider        string
	model           string
	pipelineVersion string
	jobTimeout      time.Duration

	wg sync.WaitGroup
}

// Options configures the analysis service.
type Options struct {
	Provider        string
	Model           string
	PipelineVersion string
	JobTimeout      time.Duration
}

// NewService wires the analysis service. quota may be nil to disable the
// daily limit.
func NewService(repo Repo, reportSvc *reports.Service, pipeline *agents.Pipeline, quota *usage.Service, opts Options) *Service {
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &Service{
		repo:            repo,
		reports:         reportSvc,
		pipeline:        pipeline,
		quota:           quota,
		provider:        opts.Provider,
		model:           opts.Model,
		pipelineVersion: opts.PipelineVersion,
		jobTimeout:      timeout,
	}
}

// Create queues an analysis for a report and starts it in the background.
func (s *Service) Create(ctx context.Context, callerID, reportID string) (*Analysis, error) {
	report, err := s.reports.Get(ctx, callerID, reportID)
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("load report: %w", err)
	}

	if s.quota != nil {
		if _, err := s.quota.Consume(ctx, callerID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	analysis := &Analysis{
		ID:              uuid.NewString(),
		ReportID:        report.ID,
		CallerID:        callerID,
		Status:          StatusQueued,
		PipelineVersion: s.pipelineVersion,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.queued", map[string]any{
		"analysis_id": analysis.ID,
		"report_id":   report.ID,
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The job outlives the HTTP request, so it runs on its own
		// context with its own deadline.
		jobCtx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		s.run(jobCtx, analysis.ID, report)
	}()

	return analysis, nil
}

// Get fetches one analysis scoped to the caller.
func (s *Service) Get(ctx context.Context, callerID, id string) (*Analysis, error) {
	return s.repo.GetByID(ctx, callerID, id)
}

// List returns the caller's analyses, newest first.
func (s *Service) List(ctx context.Context, callerID string, limit int) ([]Analysis, error) {
	return s.repo.List(ctx, callerID, limit)
}

// Wait blocks until all in-flight analysis jobs finish. Used during
// shutdown and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, analysisID string, report *reports.Report) {
	started := time.Now().UTC()
	if err := s.repo.MarkProcessing(ctx, analysisID, started); err != nil {
		telemetry.Error("analysis.mark_processing_failed", map[string]any{
			"analysis_id": analysisID,
			"error":       err.Error(),
		})
		return
	}

	result, err := s.analyze(ctx, report)
	completed := time.Now().UTC()
	durationMs := float64(completed.Sub(started).Microseconds()) / 1000.0

	if err != nil {
		failure := classifyFailure(err)
		telemetry.Warn("analysis.failed", map[string]any{
			"analysis_id": analysisID,
			"report_id":   report.ID,
			"code":        failure.Code,
			"error":       err.Error(),
			"duration_ms": durationMs,
		})
		metrics.IncAnalysisFailed()
		metrics.ObserveAnalysisDurationMs(durationMs)
		if err := s.repo.Fail(ctx, analysisID, failure, completed); err != nil {
			telemetry.Error("analysis.fail_write_failed", map[string]any{
				"analysis_id": analysisID,
				"error":       err.Error(),
			})
		}
		return
	}

	if err := s.repo.Complete(ctx, analysisID, result, s.provider, s.model, completed); err != nil {
		telemetry.Error("analysis.complete_write_failed", map[string]any{
			"analysis_id": analysisID,
			"error":       err.Error(),
		})
		return
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs)
	telemetry.Info("analysis.completed", map[string]any{
		"analysis_id": analysisID,
		"report_id":   report.ID,
		"duration_ms": durationMs,
		"fallback":    result.Fallback,
	})
}

// analyze performs extraction, parsing, and the agent pipeline for one
// report.
func (s *Service) analyze(ctx context.Context, report *reports.Report) (*Result, error) {
	text, err := s.reportText(ctx, report)
	if err != nil {
		return nil, err
	}

	patient := bloodwork.ParsePatientInfo(text)
	values := bloodwork.ParseValues(text)
	values, warnings := bloodwork.Validate(values)
	assessment := bloodwork.Assess(values, patient.Gender)
	tips := bloodwork.Tips(values, patient.Gender)

	pipelineResult, err := s.pipeline.Run(ctx, agents.Input{
		Patient:    patient,
		Values:     values,
		Assessment: assessment,
		Tips:       tips,
		RawText:    text,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Patient:    patient,
		Values:     values,
		Assessment: assessment,
		Warnings:   warnings,
		Tips:       tips,
		Sections:   pipelineResult.Sections,
		Summary:    pipelineResult.Summary,
		Fallback:   pipelineResult.Fallback,
	}, nil
}

// reportText returns the report's extracted text, reusing a prior
// extraction when one exists.
func (s *Service) reportText(ctx context.Context, report *reports.Report) (string, error) {
	if text, ok, err := s.reports.ExtractedText(ctx, report); err == nil && ok {
		return text, nil
	} else if err != nil {
		telemetry.Warn("analysis.cached_text_unavailable", map[string]any{
			"report_id": report.ID,
			"error":     err.Error(),
		})
	}

	rc, err := s.reports.OpenFile(ctx, report)
	if err != nil {
		return "", &storageError{err: err}
	}
	defer rc.Close()

	text, err := extract.Text(report.MimeType, rc)
	if err != nil {
		metrics.IncExtractionFailed()
		return "", err
	}

	// Persisting the extracted text is an optimization for re-analysis;
	// a write failure must not sink the run.
	if _, err := s.reports.SaveExtractedText(ctx, report, text); err != nil {
		telemetry.Warn("analysis.extracted_text_persist_failed", map[string]any{
			"report_id": report.ID,
			"error":     err.Error(),
		})
	}
	return text, nil
}

// Package analyses runs and tracks blood report analyses.
package analyses

import (
	"time"

	"bloodreport-backend/internal/agents"
	"bloodreport-backend/internal/bloodwork"
)

// Status is the lifecycle state of an analysis job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Result is the completed analysis payload, stored as JSON.
type Result struct {
	Patient    bloodwork.PatientInfo `json:"patient"`
	Values     bloodwork.Values      `json:"values"`
	Assessment bloodwork.Assessment  `json:"assessment"`
	Warnings   []string              `json:"warnings,omitempty"`
	Tips       []string              `json:"tips,omitempty"`
	Sections   []agents.Section      `json:"sections"`
	Summary    string                `json:"summary"`
	Fallback   bool                  `json:"fallback,omitempty"`
}

// Failure describes why an analysis failed.
type Failure struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Analysis is one analysis job over an uploaded report.
type Analysis struct {
	ID              string     `json:"id"`
	ReportID        string     `json:"reportId"`
	CallerID        string     `json:"-"`
	Status          Status     `json:"status"`
	Provider        string     `json:"provider,omitempty"`
	Model           string     `json:"model,omitempty"`
	PipelineVersion string     `json:"pipelineVersion,omitempty"`
	Result          *Result    `json:"result,omitempty"`
	Failure         *Failure   `json:"failure,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

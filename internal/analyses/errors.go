package analyses

import (
	"errors"

	"bloodreport-backend/internal/extract"
	"bloodreport-backend/internal/llm"
)

// Error codes surfaced to clients.
const (
	CodeInput           = "INPUT_ERROR"
	CodeUpstreamTimeout = "UPSTREAM_TIMEOUT"
	CodeUpstream        = "UPSTREAM_ERROR"
	CodeStorage         = "STORAGE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrNotFound is returned when an analysis does not exist or belongs to a
// different caller.
var ErrNotFound = errors.New("analysis not found")

// storageError tags failures from the object store or database so
// classifyFailure can map them.
type storageError struct{ err error }

func (e *storageError) Error() string { return "storage: " + e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

// classifyFailure maps a pipeline error to the client-facing failure
// record. Provider payloads are never copied into the message; only
// stable descriptions leave the service.
func classifyFailure(err error) Failure {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return Failure{Code: CodeInput, Message: "the report file format is not supported"}
	case errors.Is(err, extract.ErrExtractionFailed):
		return Failure{Code: CodeInput, Message: "no readable text could be extracted from the report"}
	}

	if ue, ok := llm.AsUpstream(err); ok {
		if ue.Timeout {
			return Failure{
				Code:      CodeUpstreamTimeout,
				Message:   "the analysis provider timed out",
				Retryable: true,
			}
		}
		return Failure{
			Code:      CodeUpstream,
			Message:   "the analysis provider returned an error",
			Retryable: ue.Retryable,
		}
	}

	var se *storageError
	if errors.As(err, &se) {
		return Failure{Code: CodeStorage, Message: "a storage operation failed", Retryable: true}
	}

	return Failure{Code: CodeInternal, Message: "the analysis failed unexpectedly"}
}

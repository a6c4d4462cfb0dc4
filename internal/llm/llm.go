// Package llm abstracts the chat-completion providers used by the
// analysis pipeline.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request is a single completion call.
type Request struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Response carries the completion text plus provider accounting.
type Response struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Client is implemented by each provider backend.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Provider() string
}

// UpstreamError wraps provider failures with retryability information.
// Timeouts and rate limits are retryable; malformed requests are not.
type UpstreamError struct {
	Provider  string
	Timeout   bool
	Retryable bool
	Err       error
}

func (e *UpstreamError) Error() string {
	kind := "error"
	if e.Timeout {
		kind = "timeout"
	}
	return fmt.Sprintf("llm %s %s: %v", e.Provider, kind, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewTimeout builds a retryable timeout error for a provider.
func NewTimeout(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Timeout: true, Retryable: true, Err: err}
}

// NewUpstream builds a generic provider error.
func NewUpstream(provider string, retryable bool, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Retryable: retryable, Err: err}
}

// AsUpstream extracts an UpstreamError from an error chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsTimeout reports whether the error chain contains a provider timeout.
func IsTimeout(err error) bool {
	if ue, ok := AsUpstream(err); ok {
		return ue.Timeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

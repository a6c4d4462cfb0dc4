package llm

import (
	"context"
	"strings"
)

// PlaceholderClient produces deterministic canned output. It keeps the
// service usable in local development when no provider key is configured.
type PlaceholderClient struct{}

// NewPlaceholder returns a client that never calls a real provider.
func NewPlaceholder() *PlaceholderClient { return &PlaceholderClient{} }

func (p *PlaceholderClient) Provider() string { return "placeholder" }

func (p *PlaceholderClient) Complete(_ context.Context, req Request) (Response, error) {
	var b strings.Builder
	b.WriteString("[placeholder analysis]\n")
	b.WriteString("No language model provider is configured. ")
	b.WriteString("Set LLM_PROVIDER and the matching API key to enable real analysis.\n")
	if req.Prompt != "" {
		b.WriteString("Prompt preview: ")
		b.WriteString(truncate(req.Prompt, 200))
	}
	return Response{Text: b.String(), Model: "placeholder"}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Package gemini adapts the Google Generative AI API to the llm.Client
// interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"bloodreport-backend/internal/llm"
)

const defaultModel = "gemini-1.5-flash"

// Options configures the Gemini client.
type Options struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the Gemini generate-content endpoint.
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
}

// New builds a client against the Generative AI API.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	cli, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{genai: cli, model: model, timeout: opts.Timeout}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error { return c.genai.Close() }

func (c *Client) Provider() string { return "gemini" }

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	modelName := req.Model
	if modelName == "" {
		modelName = c.model
	}
	model := c.genai.GenerativeModel(modelName)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return llm.Response{}, llm.NewTimeout("gemini", err)
		}
		return llm.Response{}, llm.NewUpstream("gemini", true, err)
	}

	text := flatten(resp)
	if text == "" {
		return llm.Response{}, llm.NewUpstream("gemini", false, fmt.Errorf("empty response"))
	}

	out := llm.Response{Text: text, Model: modelName}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func flatten(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

var _ llm.Client = (*Client)(nil)

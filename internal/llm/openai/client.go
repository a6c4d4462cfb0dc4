// Package openai adapts the OpenAI chat-completions API to the llm.Client
// interface.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"bloodreport-backend/internal/llm"
)

const defaultModel = goopenai.GPT4oMini

// Options configures the OpenAI client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the OpenAI chat-completions endpoint.
type Client struct {
	api     *goopenai.Client
	model   string
	timeout time.Duration
}

// New builds a client. Timeout bounds each completion call; zero means the
// caller's context governs alone.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:     goopenai.NewClientWithConfig(cfg),
		model:   model,
		timeout: opts.Timeout,
	}, nil
}

func (c *Client) Provider() string { return "openai" }

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return llm.Response{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, llm.NewUpstream("openai", false, fmt.Errorf("empty choices in response"))
	}

	return llm.Response{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.NewTimeout("openai", err)
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusRequestTimeout:
			return llm.NewTimeout("openai", err)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests,
			apiErr.HTTPStatusCode >= 500:
			return llm.NewUpstream("openai", true, err)
		default:
			return llm.NewUpstream("openai", false, err)
		}
	}
	// Network level failures are worth retrying.
	return llm.NewUpstream("openai", true, err)
}

var _ llm.Client = (*Client)(nil)

package openai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/resilience"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Options struct {
	BaseURL            string
	APIKey             string
	Model              string
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

// Client talks to the Responses and Files endpoints of an OpenAI-compatible API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(options Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(options.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     options.APIKey,
		model:      options.Model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

// Complete assembles the grounded prompt, sends it once and normalizes the reply.
func (c *Client) Complete(ctx context.Context, prompt, contextText string) (*domain.Completion, error) {
	payload := map[string]any{
		"model": c.model,
		"input": BuildInput(prompt, contextText),
	}

	var raw []byte
	err := c.execute(ctx, "openai.responses", func(callCtx context.Context) error {
		body, err := c.postJSON(callCtx, "/responses", payload, "responses")
		if err != nil {
			return err
		}
		raw = body
		return nil
	})
	if err != nil {
		return nil, asUpstreamError("responses", err)
	}

	completion := NormalizeResponse(raw)
	if completion.Model == "" {
		completion.Model = c.model
	}
	return &completion, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, isBreakerFailure)
}

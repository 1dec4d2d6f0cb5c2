package provider

import (
	"context"
	"fmt"
	"net/http"
)

// OpenRouterClient reuses the OpenAI-compatible chat-completions wire
// format (OpenRouter's documented API surface) but targets openrouter.ai
// and adds the attribution headers it expects. Grounded the same way the
// teacher's GeminiClient (pkg/ai/gemini.go) is a second, independently
// wired Client alongside ClaudeClient: one HTTP-shaped struct per vendor,
// same capability contract.
type OpenRouterClient struct {
	inner *OpenAIClient
	Referer string
	Title   string
}

func NewOpenRouterClient(apiKey, model string) *OpenRouterClient {
	if model == "" {
		model = "anthropic/claude-sonnet-4.5"
	}
	return &OpenRouterClient{
		inner: &OpenAIClient{
			APIKey:     apiKey,
			Model:      model,
			MaxTokens:  4096,
			HTTPClient: httpClient(),
		},
		Title: "zentest",
	}
}

func (c *OpenRouterClient) Next(ctx context.Context, req Request) (*Response, error) {
	orig := c.inner.HTTPClient
	c.inner.HTTPClient = &http.Client{
		Timeout: orig.Timeout,
		Transport: &openRouterTransport{base: http.DefaultTransport, referer: c.Referer, title: c.Title},
	}
	defer func() { c.inner.HTTPClient = orig }()

	resp, err := c.inner.nextAt(ctx, req, "https://openrouter.ai/api/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}
	return resp, nil
}

// openRouterTransport decorates every request with OpenRouter's optional
// attribution headers.
type openRouterTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *openRouterTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.referer != "" {
		r.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		r.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(r)
}

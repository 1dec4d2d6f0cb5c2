package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/zentest-dev/zentest/internal/retry"
)

// AnthropicClient calls the Anthropic Messages API. Structurally this
// mirrors ClaudeClient (pkg/ai/client.go), generalized from the
// Analyze/Generate game-analysis contract to the single next()-style
// capability the driver needs, and with a screenshot attached as an image
// content block instead of folded into the text prompt.
type AnthropicClient struct {
	APIKey     string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

// NewAnthropicClient constructs a client with sensible defaults
// (claude-sonnet family, generous max tokens for tool-use style replies).
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &AnthropicClient{
		APIKey:     apiKey,
		Model:      model,
		MaxTokens:  4096,
		HTTPClient: httpClient(),
	}
}

type anthropicContentBlock struct {
	Type   string                  `json:"type"`
	Text   string                  `json:"text,omitempty"`
	Source *anthropicImageSource   `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string                   `json:"role"`
	Content []anthropicContentBlock  `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Next implements Client.
func (c *AnthropicClient) Next(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := retry.DoWithRetryable(ctx, retry.DefaultConfig(), IsRetryableAPIError, func() error {
		r, callErr := c.callOnce(ctx, req)
		if callErr != nil {
			return callErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return resp, nil
}

func (c *AnthropicClient) callOnce(ctx context.Context, req Request) (*Response, error) {
	content := []anthropicContentBlock{{Type: "text", Text: req.UserText}}
	if len(req.ImagePNG) > 0 {
		content = append([]anthropicContentBlock{{
			Type: "image",
			Source: &anthropicImageSource{
				Type:      "base64",
				MediaType: "image/png",
				Data:      base64.StdEncoding.EncodeToString(req.ImagePNG),
			},
		}}, content...)
	}

	body := anthropicRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		System:    req.SystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: content}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &statusError{code: httpResp.StatusCode, body: string(respBody)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &Response{
		Text: text,
		Usage: &TokenUsage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		},
	}, nil
}

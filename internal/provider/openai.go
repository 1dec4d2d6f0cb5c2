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

// OpenAIClient calls the OpenAI Chat Completions API with a vision-capable
// model. Grounded on the same request/retry shape as AnthropicClient; the
// wire format differs (image as a data URL inside a content part) but the
// capability contract is identical, since the driver does not
// depend on any provider's SDK surface."
type OpenAIClient struct {
	APIKey     string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIClient{
		APIKey:     apiKey,
		Model:      model,
		MaxTokens:  4096,
		HTTPClient: httpClient(),
	}
}

type openAIContentPart struct {
	Type     string             `json:"type"`
	Text     string             `json:"text,omitempty"`
	ImageURL *openAIImageURL    `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	MaxTokens      int             `json:"max_tokens"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Next(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.nextAt(ctx, req, "https://api.openai.com/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return resp, nil
}

// nextAt is Next against an arbitrary OpenAI-compatible endpoint, letting
// OpenRouterClient reuse this wire format against its own base URL.
func (c *OpenAIClient) nextAt(ctx context.Context, req Request, url string) (*Response, error) {
	var resp *Response
	err := retry.DoWithRetryable(ctx, retry.DefaultConfig(), IsRetryableAPIError, func() error {
		r, callErr := c.callOnce(ctx, req, url)
		if callErr != nil {
			return callErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *OpenAIClient) callOnce(ctx context.Context, req Request, url string) (*Response, error) {
	parts := []openAIContentPart{{Type: "text", Text: req.UserText}}
	if len(req.ImagePNG) > 0 {
		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.ImagePNG)
		parts = append(parts, openAIContentPart{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL}})
	}

	messages := []openAIMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: []openAIContentPart{{Type: "text", Text: req.SystemPrompt}}})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: parts})

	body := openAIRequest{Model: c.Model, MaxTokens: c.MaxTokens, Messages: messages}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

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

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response")
	}

	return &Response{
		Text: parsed.Choices[0].Message.Content,
		Usage: &TokenUsage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

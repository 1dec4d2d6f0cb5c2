// Package provider implements the ModelClient capability: a single
// interface the AgenticDriver and HealingOrchestrator call through, with
// one concrete implementation per vendor. The driver never
// depends on a provider's own SDK surface.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Request is the model JSON envelope's request half: a system prompt, the
// literal user text, and an optional screenshot.
type Request struct {
	SystemPrompt string
	UserText     string
	ImagePNG     []byte // nil if no screenshot accompanies this call
}

// TokenUsage is aggregated for reporting only; the driver never branches on
// it.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// EstimatedCost returns a rough USD estimate for the given per-million-token
// prices. Callers that don't know the model's pricing pass zeros and get 0.
func (u TokenUsage) EstimatedCost(inputPricePerM, outputPricePerM float64) float64 {
	return float64(u.InputTokens)/1_000_000*inputPricePerM + float64(u.OutputTokens)/1_000_000*outputPricePerM
}

// Response is the model JSON envelope's response half.
type Response struct {
	Text  string
	Usage *TokenUsage
}

// Client is the capability every provider implements. Retries live inside
// each client; callers get either a Response or a terminal error.
type Client interface {
	Next(ctx context.Context, req Request) (*Response, error)
}

// Role names a model's job within a run, used to look up which model
// identifier and provider to instantiate for a given call
// (models.{agenticModel,builderModel,healerModel} in config).
type Role string

const (
	RoleAgentic Role = "agentic"
	RoleBuilder Role = "builder"
	RoleHealer  Role = "healer"
)

// NewClient instantiates the Client for providerName ("anthropic",
// "openai", or "openrouter"), backed by the given API key and model
// identifier.
func NewClient(providerName, apiKey, model string) (Client, error) {
	switch providerName {
	case "anthropic":
		return NewAnthropicClient(apiKey, model), nil
	case "openai":
		return NewOpenAIClient(apiKey, model), nil
	case "openrouter":
		return NewOpenRouterClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", providerName)
	}
}

// IsRetryableAPIError classifies HTTP-transport and 5xx/429 errors as
// retryable: model errors (HTTP 5xx/429/timeout) get a provider-level
// bounded exponential retry.
func IsRetryableAPIError(err error) bool {
	if err == nil {
		return false
	}
	var se *statusError
	if as(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	// Network-level errors (timeouts, connection resets) surface as plain
	// wrapped errors from the HTTP client; treat anything that isn't a
	// recognized non-retryable status as transient.
	return true
}

// statusError carries an HTTP status code through the error chain so
// IsRetryableAPIError can classify it without string-matching.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.code, e.body)
}

// as reports whether err itself is a *statusError, by direct type
// assertion (a wrapped statusError is not unwrapped); defined here so
// statusError classification stays colocated with the type.
func as(err error, target **statusError) bool {
	se, ok := err.(*statusError)
	if !ok {
		return false
	}
	*target = se
	return true
}

// httpClient builds the shared *http.Client used by every provider. The
// teacher's pkg/ai/base.go uses a 180s timeout with the comment "agent loop
// manages total budget"; that reasoning still applies here — a single model
// call (especially image + tool-use) can legitimately take a while, and the
// driver's own maxSteps/step-level bookkeeping is the real backstop.
func httpClient() *http.Client {
	return &http.Client{Timeout: 180 * time.Second}
}

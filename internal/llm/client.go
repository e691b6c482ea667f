// Package llm wraps the chat-completion providers used for page extraction,
// summarization, profile extraction, and source selection.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/pkg/anthropic"
)

// Provider names a supported LLM backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature *float64
	// Phase labels the call in cost logs (e.g. "extract", "summarize").
	Phase string
}

// Response is the text completion plus token accounting.
type Response struct {
	Text  string
	Model string
	Usage model.TokenUsage
}

// Client completes prompts. Implementations return an error satisfying
// resilience.IsRateLimited when the provider throttles the call.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Options configures a provider client.
type Options struct {
	Provider          Provider
	Model             string
	APIKey            string
	MaxTokens         int64
	RequestsPerSecond float64
}

// New builds the Client for opts.Provider.
func New(ctx context.Context, opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderAnthropic, "":
		return NewAnthropic(anthropic.NewClient(opts.APIKey), opts), nil
	case ProviderGemini:
		return NewGemini(ctx, opts)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", opts.Provider)
	}
}

// Temperature returns a pointer to t for Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// rateLimited marks err as a provider throttle: errors.Is reports
// model.ErrRateLimited and the chain carries a 429 TransientError.
func rateLimited(provider string, err error) error {
	return resilience.NewTransientError(
		fmt.Errorf("llm: %s: %w: %w", provider, model.ErrRateLimited, err),
		http.StatusTooManyRequests,
	)
}

func maxTokensOr(req, fallback int64) int64 {
	if req > 0 {
		return req
	}
	if fallback > 0 {
		return fallback
	}
	return 4096
}

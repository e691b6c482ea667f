package llm

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/pkg/anthropic"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicClient adapts pkg/anthropic to Client.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *AdaptiveLimiter
}

// NewAnthropic wraps an anthropic.Client.
func NewAnthropic(client anthropic.Client, opts Options) *AnthropicClient {
	m := opts.Model
	if m == "" {
		m = DefaultAnthropicModel
	}
	return &AnthropicClient{
		client:    client,
		model:     m,
		maxTokens: opts.MaxTokens,
		limiter:   NewAdaptiveLimiter(opts.RequestsPerSecond, 1),
	}
}

// Complete sends req as a single user message. The system prompt is marked
// cacheable since the same prompt is reused across pages of a crawl.
func (a *AnthropicClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "llm: anthropic rate limiter wait")
	}

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   maxTokensOr(req.MaxTokens, a.maxTokens),
		System:      req.System,
		CacheSystem: req.System != "",
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
	})
	if err != nil {
		if anthropic.StatusCode(err) == http.StatusTooManyRequests {
			a.limiter.OnRateLimit()
			return nil, rateLimited("anthropic", err)
		}
		return nil, eris.Wrap(err, "llm: anthropic complete")
	}
	a.limiter.OnSuccess()

	modelID := resp.Model
	if modelID == "" {
		modelID = a.model
	}
	cost := resp.Usage.Cost(modelID)
	zap.L().Debug("llm: anthropic usage",
		zap.String("model", modelID),
		zap.String("phase", req.Phase),
		zap.Int64("input_tokens", resp.Usage.Input),
		zap.Int64("output_tokens", resp.Usage.Output),
		zap.Int64("cache_read_tokens", resp.Usage.CacheRead),
		zap.Bool("truncated", resp.Truncated()),
		zap.Float64("cost_usd", cost),
	)

	return &Response{
		Text:  resp.Text,
		Model: modelID,
		Usage: model.TokenUsage{
			InputTokens:  int(resp.Usage.Prompt()),
			OutputTokens: int(resp.Usage.Output),
			Cost:         cost,
		},
	}, nil
}

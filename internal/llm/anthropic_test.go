package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/pkg/anthropic"
	anthropicmocks "github.com/sells-group/company-intel/pkg/anthropic/mocks"
)

func TestAnthropicClient_Complete(t *testing.T) {
	mc := anthropicmocks.NewMockClient(t)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 2048 &&
			req.System == "extract" && req.CacheSystem &&
			req.Prompt == "page text"
	})).Return(&anthropic.MessageResponse{
		Model: "claude-haiku-4-5-20251001",
		Text:  `{"ok":true}`,
		Usage: anthropic.Usage{Input: 100, Output: 20, CacheRead: 50},
	}, nil)

	c := NewAnthropic(mc, Options{MaxTokens: 2048})
	resp, err := c.Complete(context.Background(), Request{
		System: "extract",
		Prompt: "page text",
		Phase:  "extract",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, 150, resp.Usage.InputTokens)
	assert.Equal(t, 20, resp.Usage.OutputTokens)
	assert.Greater(t, resp.Usage.Cost, 0.0)
}

func TestAnthropicClient_Complete_RequestMaxTokensWins(t *testing.T) {
	mc := anthropicmocks.NewMockClient(t)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.MaxTokens == 256 && req.System == "" && !req.CacheSystem
	})).Return(&anthropic.MessageResponse{Text: "hi"}, nil)

	c := NewAnthropic(mc, Options{Model: "claude-sonnet-4-5-20250929", MaxTokens: 4096})
	resp, err := c.Complete(context.Background(), Request{Prompt: "hello", MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5-20250929", resp.Model)
}

func TestAnthropicClient_Complete_GenericError(t *testing.T) {
	mc := anthropicmocks.NewMockClient(t)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	c := NewAnthropic(mc, Options{})
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	require.Error(t, err)
	assert.False(t, resilience.IsRateLimited(err))
	assert.Contains(t, err.Error(), "llm: anthropic complete")
}

func TestAnthropicClient_Complete_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer ts.Close()

	c := NewAnthropic(anthropic.NewClient("test-key", option.WithBaseURL(ts.URL)), Options{RequestsPerSecond: 10})
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	require.Error(t, err)
	assert.True(t, resilience.IsRateLimited(err))
	assert.True(t, errors.Is(err, model.ErrRateLimited))
	assert.Less(t, float64(c.limiter.Limit()), 10.0)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "openai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNew_DefaultsToAnthropic(t *testing.T) {
	c, err := New(context.Background(), Options{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)
}

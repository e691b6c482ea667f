package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sells-group/company-intel/internal/model"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient adapts the Gemini API to Client.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int64
	limiter   *AdaptiveLimiter
}

// NewGemini creates a Gemini client authenticated with opts.APIKey.
func NewGemini(ctx context.Context, opts Options) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, eris.New("llm: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, eris.Wrap(err, "llm: create gemini client")
	}
	m := opts.Model
	if m == "" {
		m = DefaultGeminiModel
	}
	return &GeminiClient{
		client:    client,
		model:     m,
		maxTokens: opts.MaxTokens,
		limiter:   NewAdaptiveLimiter(opts.RequestsPerSecond, 1),
	}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Complete generates a single response for req.
func (g *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "llm: gemini rate limiter wait")
	}

	gm := g.client.GenerativeModel(g.model)
	gm.SetMaxOutputTokens(int32(maxTokensOr(req.MaxTokens, g.maxTokens)))
	if req.Temperature != nil {
		gm.SetTemperature(float32(*req.Temperature))
	}
	if req.System != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		if isGeminiRateLimit(err) {
			g.limiter.OnRateLimit()
			return nil, rateLimited("gemini", err)
		}
		return nil, eris.Wrap(err, "llm: gemini complete")
	}
	g.limiter.OnSuccess()

	text, err := extractGeminiText(resp)
	if err != nil {
		return nil, eris.Wrap(err, "llm: gemini complete")
	}

	var usage model.TokenUsage
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	zap.L().Info("cost attribution",
		zap.String("model", g.model),
		zap.String("phase", req.Phase),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
	)

	return &Response{Text: text, Model: g.model, Usage: usage}, nil
}

func isGeminiRateLimit(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	return status.Code(err) == codes.ResourceExhausted
}

func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", eris.New("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", eris.New("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", eris.New("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

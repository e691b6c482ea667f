// Package perplexity asks the Perplexity Sonar API web-grounded questions.
// Company research uses it when a LinkedIn page is behind a login wall.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/resilience"
)

// Client answers a question from live web search.
type Client interface {
	Ask(ctx context.Context, q Query) (*Answer, error)
}

// Query is one question. Domains restricts the search to those sites.
type Query struct {
	Model       string
	System      string
	Prompt      string
	Domains     []string
	Temperature *float64
	MaxTokens   int
}

// Answer is the model's reply and the pages it cited.
type Answer struct {
	Model     string
	Text      string
	Citations []string
	Usage     Usage
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model              string        `json:"model"`
	Messages           []chatMessage `json:"messages"`
	SearchDomainFilter []string      `json:"search_domain_filter,omitempty"`
	Temperature        *float64      `json:"temperature,omitempty"`
	MaxTokens          int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
	Usage     Usage    `json:"usage"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithModel sets the model used when a Query names none.
func WithModel(m string) Option {
	return func(c *httpClient) {
		if m != "" {
			c.model = m
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRetry replaces the retry policy for 429 and 5xx responses.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

// DefaultRetry makes three attempts with backoff starting at 500ms.
var DefaultRetry = resilience.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	Multiplier:     2.0,
	JitterFraction: 0.1,
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a client authenticated with apiKey. The default model
// is sonar-pro.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.perplexity.ai",
		model:   "sonar-pro",
		http:    &http.Client{Timeout: 60 * time.Second},
		retry:   DefaultRetry,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Ask(ctx context.Context, q Query) (*Answer, error) {
	req := chatRequest{
		Model:              q.Model,
		SearchDomainFilter: q.Domains,
		Temperature:        q.Temperature,
		MaxTokens:          q.MaxTokens,
	}
	if req.Model == "" {
		req.Model = c.model
	}
	if q.System != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: q.System})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: q.Prompt})

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: marshal request")
	}

	cfg := c.retry
	cfg.ShouldRetry = resilience.IsTransient
	cfg.OnRetry = resilience.RetryLogger("perplexity", "ask")

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*chatResponse, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "perplexity: ask")
		}
		return nil, eris.Wrap(err, "perplexity: ask")
	}

	ans := &Answer{Model: resp.Model, Citations: resp.Citations, Usage: resp.Usage}
	if len(resp.Choices) > 0 {
		ans.Text = resp.Choices[0].Message.Content
	}
	return ans, nil
}

func (c *httpClient) post(ctx context.Context, body []byte) (*chatResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError(resp.StatusCode, data)
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "decode response")
	}
	return &out, nil
}

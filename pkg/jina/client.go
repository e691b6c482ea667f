// Package jina is a client for the Jina AI reader (r.jina.ai) and search
// (s.jina.ai) endpoints. The reader is the LinkedIn fallback scraper;
// search backs source discovery when Google Custom Search is not
// configured.
package jina

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/resilience"
)

// Client defines the Jina operations used for company research.
type Client interface {
	// Read renders a page as markdown.
	Read(ctx context.Context, targetURL string) (*ReadResponse, error)
	// Search runs a web search.
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// ReadResponse is the reader's JSON envelope.
type ReadResponse struct {
	Code int      `json:"code"`
	Data ReadData `json:"data"`
}

// ReadData is a rendered page.
type ReadData struct {
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Content string    `json:"content"`
	Usage   ReadUsage `json:"usage"`
}

// ReadUsage reports tokens billed for a read.
type ReadUsage struct {
	Tokens int `json:"tokens"`
}

// SearchResponse is the search JSON envelope.
type SearchResponse struct {
	Code int            `json:"code"`
	Data []SearchResult `json:"data"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the reader endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithSearchBaseURL overrides the search endpoint.
func WithSearchBaseURL(u string) Option {
	return func(c *httpClient) { c.searchBaseURL = u }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRetry replaces the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

// DefaultRetry retries 429 and 5xx responses three times with backoff.
var DefaultRetry = resilience.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: time.Second,
	MaxBackoff:     8 * time.Second,
	Multiplier:     2.0,
	JitterFraction: 0.1,
}

type httpClient struct {
	apiKey        string
	baseURL       string
	searchBaseURL string
	http          *http.Client
	retry         resilience.RetryConfig
}

// NewClient creates a Jina client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:        apiKey,
		baseURL:       "https://r.jina.ai",
		searchBaseURL: "https://s.jina.ai",
		http:          &http.Client{Timeout: 30 * time.Second},
		retry:         DefaultRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Read(ctx context.Context, targetURL string) (*ReadResponse, error) {
	var out ReadResponse
	headers := map[string]string{
		"X-Return-Format": "markdown",
		"X-Retain-Images": "none",
	}
	if _, err := c.getJSON(ctx, "read", c.baseURL+"/"+targetURL, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var out SearchResponse
	status, err := c.getJSON(ctx, "search", c.searchBaseURL+"/"+url.PathEscape(query), nil, &out)
	// No results comes back as 422.
	if status == http.StatusUnprocessableEntity {
		return &SearchResponse{Code: status}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON GETs reqURL with retries and decodes a 200 body into out. It
// returns the final status code, also on error.
func (c *httpClient) getJSON(ctx context.Context, op, reqURL string, headers map[string]string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "jina: %s: create request", op)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	cfg := c.retry
	cfg.ShouldRetry = func(error) bool { return ctx.Err() == nil }
	cfg.OnRetry = resilience.RetryLogger("jina", op)

	type response struct {
		status int
		body   []byte
	}
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (response, error) {
		r, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			return response{}, err
		}
		defer func() { _ = r.Body.Close() }()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return response{}, eris.Wrap(err, "read body")
		}
		if resilience.IsTransientHTTPStatus(r.StatusCode) {
			return response{}, resilience.StatusError(r.StatusCode, body)
		}
		return response{status: r.StatusCode, body: body}, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, eris.Wrapf(ctx.Err(), "jina: %s", op)
		}
		return 0, eris.Wrapf(err, "jina: %s", op)
	}
	if resp.status != http.StatusOK {
		return resp.status, eris.Errorf("jina: %s: unexpected status %d: %s", op, resp.status, resp.body)
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return resp.status, eris.Wrapf(err, "jina: %s: decode response", op)
	}
	return resp.status, nil
}

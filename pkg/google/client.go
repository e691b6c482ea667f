// Package google wraps the Custom Search JSON API used to locate a company's
// website and LinkedIn page.
package google

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sells-group/company-intel/internal/resilience"
)

// MaxResults is the largest page size the Custom Search API accepts.
const MaxResults = 10

// Client performs web searches.
type Client interface {
	WebSearch(ctx context.Context, query string, num int) (*WebSearchResponse, error)
}

// WebSearchResponse holds the results of a single search.
type WebSearchResponse struct {
	Items []SearchItem `json:"items"`
}

// SearchItem is a single search hit.
type SearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Option configures the client.
type Option func(*clientOptions)

type clientOptions struct {
	endpoint string
}

// WithBaseURL overrides the API endpoint (for testing). The URL must end
// with a slash.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.endpoint = url
	}
}

type cseClient struct {
	svc *customsearch.Service
	cx  string
}

// NewClient creates a Custom Search client for the search engine cx.
func NewClient(ctx context.Context, apiKey, cx string, opts ...Option) (Client, error) {
	if apiKey == "" || cx == "" {
		return nil, eris.New("google: api key and search engine id are required")
	}
	var co clientOptions
	for _, o := range opts {
		o(&co)
	}

	svcOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if co.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(co.endpoint))
	}

	svc, err := customsearch.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "google: create customsearch service")
	}
	return &cseClient{svc: svc, cx: cx}, nil
}

func (c *cseClient) WebSearch(ctx context.Context, query string, num int) (*WebSearchResponse, error) {
	if num <= 0 || num > MaxResults {
		num = MaxResults
	}

	resp, err := c.svc.Cse.List().Cx(c.cx).Q(query).Num(int64(num)).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && resilience.IsTransientHTTPStatus(gerr.Code) {
			return nil, resilience.NewTransientError(eris.Wrap(err, "google: search"), gerr.Code)
		}
		return nil, eris.Wrap(err, "google: search")
	}

	out := &WebSearchResponse{Items: make([]SearchItem, 0, len(resp.Items))}
	for _, item := range resp.Items {
		out.Items = append(out.Items, SearchItem{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return out, nil
}

// StatusCode returns the HTTP status of a search failure, or 0.
func StatusCode(err error) int {
	var te *resilience.TransientError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}


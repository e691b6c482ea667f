// Package discover finds a company's website and LinkedIn page from web
// search results.
package discover

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/pkg/google"
	"github.com/sells-group/company-intel/pkg/jina"
)

// Searcher runs a web search and returns at most num hits.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]model.SearchResult, error)
	Name() string
}

// GoogleSearcher searches with Google Custom Search.
type GoogleSearcher struct {
	client google.Client
}

// NewGoogleSearcher wraps a Custom Search client.
func NewGoogleSearcher(client google.Client) *GoogleSearcher {
	return &GoogleSearcher{client: client}
}

func (g *GoogleSearcher) Name() string { return "google" }

// Search returns the hits for query.
func (g *GoogleSearcher) Search(ctx context.Context, query string, num int) ([]model.SearchResult, error) {
	resp, err := g.client.WebSearch(ctx, query, num)
	if err != nil {
		return nil, eris.Wrap(err, "discover: google search")
	}
	out := make([]model.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, model.SearchResult{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Snippet,
		})
	}
	return out, nil
}

// JinaSearcher searches with the Jina search endpoint.
type JinaSearcher struct {
	client jina.Client
}

// NewJinaSearcher wraps a Jina client.
func NewJinaSearcher(client jina.Client) *JinaSearcher {
	return &JinaSearcher{client: client}
}

func (j *JinaSearcher) Name() string { return "jina" }

// Search returns up to num hits for query.
func (j *JinaSearcher) Search(ctx context.Context, query string, num int) ([]model.SearchResult, error) {
	resp, err := j.client.Search(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "discover: jina search")
	}
	out := make([]model.SearchResult, 0, len(resp.Data))
	for _, r := range resp.Data {
		if num > 0 && len(out) >= num {
			break
		}
		desc := r.Description
		if desc == "" {
			desc = truncate(r.Content, 300)
		}
		out = append(out, model.SearchResult{Title: r.Title, Link: r.URL, Description: desc})
	}
	return out, nil
}

// GuardedSearcher puts a breaker in front of a Searcher so a failing
// provider is skipped without waiting on it.
type GuardedSearcher struct {
	Searcher
	breaker *resilience.Breaker
}

// NewGuardedSearcher wraps s with a breaker built from cfg.
func NewGuardedSearcher(s Searcher, cfg resilience.BreakerConfig) *GuardedSearcher {
	return &GuardedSearcher{Searcher: s, breaker: resilience.NewBreaker(s.Name(), cfg)}
}

// Search runs the wrapped search unless the breaker is open.
func (g *GuardedSearcher) Search(ctx context.Context, query string, num int) ([]model.SearchResult, error) {
	return resilience.Guard(ctx, g.breaker, func(ctx context.Context) ([]model.SearchResult, error) {
		return g.Searcher.Search(ctx, query, num)
	})
}

// FallbackSearcher tries each searcher in order until one succeeds.
type FallbackSearcher []Searcher

func (f FallbackSearcher) Name() string { return "fallback" }

// Search returns the first successful searcher's hits.
func (f FallbackSearcher) Search(ctx context.Context, query string, num int) ([]model.SearchResult, error) {
	var lastErr error
	for _, s := range f {
		results, err := s.Search(ctx, query, num)
		if err == nil {
			return results, nil
		}
		zap.L().Debug("discover: searcher failed, trying next",
			zap.String("searcher", s.Name()),
			zap.String("query", query),
			zap.Error(err),
		)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		return nil, eris.New("discover: no searchers configured")
	}
	return nil, eris.Wrap(lastErr, "discover: all searchers failed")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

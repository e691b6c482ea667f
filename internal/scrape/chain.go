package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/model"
)

// Chain is a Scraper that falls back through several scrapers in order.
type Chain struct {
	PathMatcher *PathMatcher
	scrapers    []Scraper
}

// NewChain creates a Chain. A nil matcher excludes nothing.
func NewChain(matcher *PathMatcher, scrapers ...Scraper) *Chain {
	if matcher == nil {
		matcher = NewPathMatcher(nil)
	}
	return &Chain{PathMatcher: matcher, scrapers: scrapers}
}

func (c *Chain) Name() string { return "chain" }

// Supports reports whether the URL passes the path matcher.
func (c *Chain) Supports(targetURL string) bool {
	return !c.PathMatcher.IsExcluded(targetURL)
}

// Scrape returns the first page any scraper produces for targetURL. The
// result's Source names the scraper that served it.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if c.PathMatcher.IsExcluded(targetURL) {
		return nil, eris.Wrapf(model.ErrFetch, "scrape: url excluded by path matcher: %s", targetURL)
	}

	var (
		tried   []string
		lastErr error
	)
	for _, s := range c.scrapers {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "scrape: canceled")
		}
		if !s.Supports(targetURL) {
			continue
		}

		res, err := s.Scrape(ctx, targetURL)
		if err == nil && res == nil {
			err = eris.Errorf("scrape: %s returned no page", s.Name())
		}
		if err == nil {
			if res.Source == "" {
				res.Source = s.Name()
			}
			return res, nil
		}

		zap.L().Debug("scrape: scraper failed, trying next",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		tried = append(tried, s.Name())
		lastErr = err
	}

	if lastErr == nil {
		return nil, eris.Wrapf(model.ErrFetch, "scrape: no suitable scraper for url: %s", targetURL)
	}
	return nil, eris.Wrapf(lastErr, "scrape: all scrapers failed (%s)", strings.Join(tried, ", "))
}

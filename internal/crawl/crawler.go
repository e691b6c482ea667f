package crawl

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/extract"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/scrape"
)

// Fetcher retrieves one page. scrape.Scraper implementations satisfy it.
type Fetcher interface {
	Scrape(ctx context.Context, url string) (*scrape.Result, error)
}

// Stats counts what a crawl did.
type Stats struct {
	Visited       int `json:"visited"`
	Fetched       int `json:"fetched"`
	Extracted     int `json:"extracted"`
	FetchFailed   int `json:"fetch_failed"`
	ExtractFailed int `json:"extract_failed"`
}

// frame is one pending visit on the work stack.
type frame struct {
	url   string
	key   string
	depth int
}

// Crawler performs one bounded depth-first crawl. Use a fresh Crawler per
// crawl; it is not safe for concurrent use.
type Crawler struct {
	fetcher   Fetcher
	extractor extract.Extractor
	exclude   *scrape.PathMatcher

	visited map[string]struct{}
	results map[string]model.PageRecord
	order   []string
	stats   Stats
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithExcludes drops links whose path matches any of the glob patterns.
func WithExcludes(m *scrape.PathMatcher) Option {
	return func(c *Crawler) { c.exclude = m }
}

// New creates a Crawler.
func New(fetcher Fetcher, extractor extract.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   fetcher,
		extractor: extractor,
		visited:   make(map[string]struct{}),
		results:   make(map[string]model.PageRecord),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Crawl visits rootURL and its in-scope descendants. A page at remaining
// depth d follows at most maxLinksPerLevel of its links, lexicographically
// smallest first, at depth d-1; depth 0 visits nothing. Every normalized
// URL is visited at most once. A failed page abandons only its own branch.
//
// The returned error is non-nil only for an invalid root or bounds, or when
// ctx is canceled; records gathered before cancellation stay in Results.
func (c *Crawler) Crawl(ctx context.Context, rootURL string, maxDepth, maxLinksPerLevel int) error {
	c.visited = make(map[string]struct{})
	c.results = make(map[string]model.PageRecord)
	c.order = nil
	c.stats = Stats{}

	if maxDepth < 0 || maxLinksPerLevel < 0 {
		return eris.Errorf("crawl: depth %d and max links %d must be non-negative", maxDepth, maxLinksPerLevel)
	}
	scope, err := NewScope(rootURL, c.exclude)
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("root", scope.Root()))
	log.Info("crawl: starting",
		zap.Int("depth", maxDepth),
		zap.Int("max_links_per_level", maxLinksPerLevel),
	)

	stack := []frame{{url: rootURL, key: scope.Root(), depth: maxDepth}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			log.Warn("crawl: canceled", zap.Int("pages", len(c.results)))
			return eris.Wrap(err, "crawl: canceled")
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth == 0 {
			continue
		}
		if _, ok := c.visited[f.key]; ok {
			continue
		}
		c.visited[f.key] = struct{}{}
		c.stats.Visited++

		links := c.visit(ctx, scope, f)
		if len(links) > maxLinksPerLevel {
			links = links[:maxLinksPerLevel]
		}
		// Push in reverse so the smallest link is visited next.
		for i := len(links) - 1; i >= 0; i-- {
			stack = append(stack, frame{url: links[i], key: links[i], depth: f.depth - 1})
		}
	}

	log.Info("crawl: complete",
		zap.Int("visited", c.stats.Visited),
		zap.Int("extracted", c.stats.Extracted),
		zap.Int("fetch_failed", c.stats.FetchFailed),
		zap.Int("extract_failed", c.stats.ExtractFailed),
	)
	return nil
}

// visit fetches and extracts one page and returns its sorted in-scope
// links. Failures are logged and end the branch.
func (c *Crawler) visit(ctx context.Context, scope *Scope, f frame) []string {
	log := zap.L().With(zap.String("url", f.key), zap.Int("depth", f.depth))
	log.Debug("crawl: visiting")

	res, err := c.fetcher.Scrape(ctx, f.url)
	if err == nil && (res == nil || res.Page.HTML == "") {
		err = eris.Wrap(model.ErrParse, "crawl: page has no html")
	}
	if err != nil {
		c.stats.FetchFailed++
		log.Warn("crawl: fetch failed", zap.Error(err))
		return nil
	}

	doc, err := scrape.ParseHTML(res.Page.HTML)
	if err != nil {
		c.stats.FetchFailed++
		log.Warn("crawl: parse failed", zap.Error(err))
		return nil
	}
	c.stats.Fetched++

	links, err := DocumentLinks(doc, scope, f.url)
	if err != nil {
		c.stats.FetchFailed++
		log.Warn("crawl: link extraction failed", zap.Error(err))
		return nil
	}

	rec, err := c.extractor.Extract(ctx, res.Page.HTML)
	switch {
	case err != nil:
		c.stats.ExtractFailed++
		log.Warn("crawl: extraction failed", zap.Error(err))
	case rec == nil:
		c.stats.ExtractFailed++
		log.Warn("crawl: extraction returned no record")
	default:
		c.results[f.key] = *rec
		c.order = append(c.order, f.key)
		c.stats.Extracted++
	}

	log.Debug("crawl: links found", zap.Int("count", len(links)))
	return links
}

// Results returns a copy of the URL to PageRecord mapping.
func (c *Crawler) Results() map[string]model.PageRecord {
	out := make(map[string]model.PageRecord, len(c.results))
	for k, v := range c.results {
		out[k] = v
	}
	return out
}

// Order returns the keys of Results in visit order.
func (c *Crawler) Order() []string {
	return append([]string(nil), c.order...)
}

// seen reports whether the normalized url was visited.
func (c *Crawler) seen(url string) bool {
	_, ok := c.visited[url]
	return ok
}

// Stats returns the counters of the last crawl.
func (c *Crawler) Stats() Stats { return c.stats }

// String summarizes the stats for log lines and chat output.
func (s Stats) String() string {
	return fmt.Sprintf("visited=%d fetched=%d extracted=%d fetch_failed=%d extract_failed=%d",
		s.Visited, s.Fetched, s.Extracted, s.FetchFailed, s.ExtractFailed)
}

// Package scrape fetches web pages for the crawler and the LinkedIn profile
// analyzer.
package scrape

import (
	"context"

	"github.com/sells-group/company-intel/internal/model"
)

// Result holds a scraped page with its source.
type Result struct {
	Page   model.CrawledPage
	Source string // e.g. "local_http", "jina"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}

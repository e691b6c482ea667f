package scrape

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/pkg/jina"
)

// minReadChars is the shortest reader response treated as a page.
const minReadChars = 100

// JinaAdapter renders pages through the Jina reader. It sits behind the
// local scraper in a Chain and stops being offered once its breaker opens.
type JinaAdapter struct {
	client  jina.Client
	breaker *resilience.Breaker
}

// NewJinaAdapter wraps client. Three failed reads in a row disable the
// adapter for a minute.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{
		client: client,
		breaker: resilience.NewBreaker("jina", resilience.BreakerConfig{
			Threshold: 3,
			Cooldown:  time.Minute,
		}),
	}
}

func (j *JinaAdapter) Name() string { return "jina" }

// Supports reports false while the breaker is open.
func (j *JinaAdapter) Supports(string) bool {
	return j.breaker.State() != resilience.StateOpen
}

// Scrape reads targetURL and rejects empty, failed or challenge responses.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := resilience.Guard(ctx, j.breaker, func(ctx context.Context) (*jina.ReadResponse, error) {
		resp, err := j.client.Read(ctx, targetURL)
		if err != nil {
			return nil, err
		}
		return resp, checkRead(resp)
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return nil, eris.Wrap(fetchErr(err), "jina: skipped")
	case err != nil:
		return nil, eris.Wrapf(fetchErr(err), "jina: read %s", targetURL)
	}

	page := model.CrawledPage{
		URL:        resp.Data.URL,
		Title:      resp.Data.Title,
		Markdown:   resp.Data.Content,
		StatusCode: resp.Code,
	}
	if page.URL == "" {
		page.URL = targetURL
	}
	return &Result{Page: page, Source: j.Name()}, nil
}

// checkRead returns an error when a reader response carries no usable page.
func checkRead(resp *jina.ReadResponse) error {
	if resp == nil {
		return eris.New("empty response")
	}
	if resp.Code != 0 && resp.Code != 200 {
		return eris.Errorf("reader status %d", resp.Code)
	}
	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < minReadChars {
		return eris.Errorf("content too short (%d chars)", len(content))
	}
	if kind := DetectTextBlock(content); kind != BlockNone {
		return eris.Errorf("blocked by %s", kind)
	}
	return nil
}

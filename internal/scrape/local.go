package scrape

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/company-intel/internal/model"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (compatible; CompanyIntelBot/1.0)"

// LocalOptions configures a LocalScraper. Zero values take the defaults:
// 15s timeout, 512KB body cap and DefaultUserAgent.
type LocalOptions struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
	HTTPClient   *http.Client
}

// LocalScraper fetches pages directly. The result keeps the raw HTML for
// link discovery next to the visible text used for extraction.
type LocalScraper struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewLocalScraper creates a LocalScraper.
func NewLocalScraper(opts LocalOptions) *LocalScraper {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 512 << 10
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return &LocalScraper{client: hc, userAgent: opts.UserAgent, maxBody: opts.MaxBodyBytes}
}

func (l *LocalScraper) Name() string         { return "local_http" }
func (l *LocalScraper) Supports(string) bool { return true }

// Scrape GETs targetURL. Transport failures, anti-bot pages and 4xx/5xx
// statuses all wrap model.ErrFetch.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(fetchErr(err), "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(fetchErr(err), "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody))
	if err != nil {
		return nil, eris.Wrap(fetchErr(err), "local_http: read body")
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, eris.Wrapf(model.ErrFetch, "local_http: blocked (%s)", kind)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, eris.Wrapf(model.ErrFetch, "local_http: status %d", resp.StatusCode)
	}

	html := decodeBody(body, resp.Header.Get("Content-Type"))
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: parse")
	}

	return &Result{
		Page: model.CrawledPage{
			URL:        targetURL,
			Title:      Title(doc),
			Markdown:   DocumentText(doc),
			HTML:       html,
			StatusCode: resp.StatusCode,
		},
		Source: l.Name(),
	}, nil
}

// decodeBody converts body to UTF-8 using the charset named in the
// Content-Type header. Unknown or missing charsets pass through unchanged.
func decodeBody(body []byte, contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	name := strings.ToLower(params["charset"])
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(body)
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func fetchErr(err error) error {
	return fmt.Errorf("%w: %w", model.ErrFetch, err)
}

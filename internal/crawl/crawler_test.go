package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-intel/internal/extract"
	extractmocks "github.com/sells-group/company-intel/internal/extract/mocks"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/scrape"
)

// fakeSite serves in-memory pages keyed by normalized URL.
type fakeSite struct {
	pages map[string]string
	fail  map[string]bool
	calls []string
}

func (s *fakeSite) Scrape(_ context.Context, u string) (*scrape.Result, error) {
	s.calls = append(s.calls, u)
	key, err := Normalize(u)
	if err != nil {
		return nil, err
	}
	if s.fail[key] {
		return nil, eris.Wrap(model.ErrFetch, "fake: connection reset")
	}
	html, ok := s.pages[key]
	if !ok {
		return nil, eris.Wrapf(model.ErrFetch, "fake: %s not found", key)
	}
	return &scrape.Result{Page: model.CrawledPage{URL: u, HTML: html}, Source: "fake"}, nil
}

func page(links ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><p>content</p>")
	for _, l := range links {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, l)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// recordExtractor returns a record whose description is the page HTML.
func recordExtractor() extract.Extractor {
	return extract.Func(func(_ context.Context, html string) (*model.PageRecord, error) {
		rec := model.NewPageRecord()
		rec.CompanyOverview.Description = html
		return &rec, nil
	})
}

func TestCrawl_DepthZero(t *testing.T) {
	site := &fakeSite{pages: map[string]string{"https://example.com": page()}}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com/", 0, 5))
	assert.Empty(t, c.Results())
	assert.Empty(t, site.calls)
}

func TestCrawl_SinglePage(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://example.com": page("https://other.com/x", "mailto:hi@example.com"),
	}}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com/", 1, 1))

	results := c.Results()
	require.Len(t, results, 1)
	assert.Contains(t, results, "https://example.com")
	assert.Equal(t, []string{"https://example.com/"}, site.calls)
}

func TestCrawl_BreadthCap(t *testing.T) {
	// Ten sub-pages listed out of order in the HTML.
	order := []int{7, 3, 9, 0, 5, 1, 8, 2, 6, 4}
	var links []string
	pages := map[string]string{}
	for _, i := range order {
		links = append(links, fmt.Sprintf("/p%d", i))
		pages[fmt.Sprintf("https://example.com/p%d", i)] = page()
	}
	pages["https://example.com"] = page(links...)
	site := &fakeSite{pages: pages}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com/", 2, 3))

	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/p0",
		"https://example.com/p1",
		"https://example.com/p2",
	}, site.calls)
	assert.Len(t, c.Results(), 4)
	assert.Equal(t, 4, c.Stats().Visited)
}

func TestCrawl_DepthFirstOrder(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://example.com":     page("/b", "/a"),
		"https://example.com/a":   page("/a/x"),
		"https://example.com/a/x": page(),
		"https://example.com/b":   page(),
	}}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com", 3, 5))
	assert.Equal(t, []string{
		"https://example.com",
		"https://example.com/a",
		"https://example.com/a/x",
		"https://example.com/b",
	}, site.calls)
	assert.Equal(t, site.calls, c.Order())
}

func TestCrawl_AtMostOnce(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://example.com":   page("/a", "/b/", "/a?ref=nav", "/a#team"),
		"https://example.com/a": page("/", "/b", "/b?x=1", "https://EXAMPLE.com/a/"),
		"https://example.com/b": page("/a", "/"),
	}}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com/", 5, 10))

	seen := map[string]int{}
	for _, u := range site.calls {
		key, err := Normalize(u)
		require.NoError(t, err)
		seen[key]++
	}
	for u, n := range seen {
		assert.Equal(t, 1, n, "fetched %s %d times", u, n)
	}
	assert.Len(t, seen, 3)
	assert.Len(t, c.Results(), 3)
}

func TestCrawl_ScopeContainment(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://example.com/docs": page(
			"/docs/intro",
			"/blog/post",
			"https://other.com/docs/x",
			"/docs/guide.pdf",
			"/docs/logo.PNG",
			"ftp://example.com/docs/file",
			"javascript:void(0)",
		),
		"https://example.com/docs/intro":        page("../blog", "/docs/intro/deeper"),
		"https://example.com/docs/intro/deeper": page(),
	}}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com/docs/", 4, 10))

	for _, u := range site.calls {
		key, err := Normalize(u)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "https://example.com/docs"), "out of scope fetch %s", u)
	}
	assert.Len(t, site.calls, 3)
	assert.False(t, c.seen("https://example.com/blog"))
	assert.False(t, c.seen("https://example.com/blog/post"))
}

func TestCrawl_FetchFailureIsolated(t *testing.T) {
	site := &fakeSite{
		pages: map[string]string{
			"https://example.com":   page("/a", "/b", "/c"),
			"https://example.com/a": page(),
			"https://example.com/b": page("/b/child"),
			"https://example.com/c": page(),
		},
		fail: map[string]bool{"https://example.com/b": true},
	}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com", 3, 5))

	results := c.Results()
	assert.Len(t, results, 3)
	assert.NotContains(t, results, "https://example.com/b")
	assert.Contains(t, results, "https://example.com/c")
	assert.NotContains(t, site.calls, "https://example.com/b/child")
	assert.Equal(t, 1, c.Stats().FetchFailed)
}

func TestCrawl_ExtractionFailureStillFollowsLinks(t *testing.T) {
	root, leaf := page("/a"), page()
	site := &fakeSite{pages: map[string]string{
		"https://example.com":   root,
		"https://example.com/a": leaf,
	}}
	rec := model.NewPageRecord()
	ext := extractmocks.NewMockExtractor(t)
	ext.On("Extract", mock.Anything, root).Return(nil, eris.Wrap(model.ErrExtraction, "model returned prose")).Once()
	ext.On("Extract", mock.Anything, leaf).Return(&rec, nil).Once()
	c := New(site, ext)

	require.NoError(t, c.Crawl(context.Background(), "https://example.com", 2, 5))

	results := c.Results()
	assert.Len(t, results, 1)
	assert.Contains(t, results, "https://example.com/a")
	assert.Equal(t, Stats{Visited: 2, Fetched: 2, Extracted: 1, ExtractFailed: 1}, c.Stats())
}

func TestCrawl_Canceled(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://example.com":   page("/a", "/b"),
		"https://example.com/a": page(),
		"https://example.com/b": page(),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	ext := extract.Func(func(_ context.Context, _ string) (*model.PageRecord, error) {
		cancel()
		rec := model.NewPageRecord()
		return &rec, nil
	})
	c := New(site, ext)

	err := c.Crawl(ctx, "https://example.com", 3, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, c.Results(), 1)
	assert.Len(t, site.calls, 1)
}

func TestCrawl_Terminates(t *testing.T) {
	// Every page links to every other page.
	names := []string{"a", "b", "c", "d", "e", "f"}
	var all []string
	for _, n := range names {
		all = append(all, "/"+n)
	}
	pages := map[string]string{"https://example.com": page(all...)}
	for _, n := range names {
		pages["https://example.com/"+n] = page(all...)
	}
	site := &fakeSite{pages: pages}
	c := New(site, recordExtractor())

	const depth, width = 4, 2
	require.NoError(t, c.Crawl(context.Background(), "https://example.com", depth, width))

	bound := 0
	for i, p := 0, 1; i < depth; i, p = i+1, p*width {
		bound += p
	}
	assert.LessOrEqual(t, len(site.calls), bound)
	assert.LessOrEqual(t, len(site.calls), len(pages))
}

func TestCrawl_Excludes(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://example.com":           page("/blog/post", "/about"),
		"https://example.com/about":     page(),
		"https://example.com/blog/post": page(),
	}}
	c := New(site, recordExtractor(), WithExcludes(scrape.NewPathMatcher([]string{"/blog/*"})))

	require.NoError(t, c.Crawl(context.Background(), "https://example.com", 2, 5))
	assert.Equal(t, []string{"https://example.com", "https://example.com/about"}, site.calls)
}

func TestCrawl_ResetsBetweenRuns(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://example.com": page(),
		"https://example.org": page(),
	}}
	c := New(site, recordExtractor())

	require.NoError(t, c.Crawl(context.Background(), "https://example.com", 1, 1))
	require.NoError(t, c.Crawl(context.Background(), "https://example.org", 1, 1))

	results := c.Results()
	assert.Len(t, results, 1)
	assert.Contains(t, results, "https://example.org")
	assert.False(t, c.seen("https://example.com"))
}

func TestCrawl_InvalidArguments(t *testing.T) {
	c := New(&fakeSite{}, recordExtractor())

	assert.Error(t, c.Crawl(context.Background(), "example.com", 1, 1))
	assert.Error(t, c.Crawl(context.Background(), "https://example.com", -1, 1))
	assert.Error(t, c.Crawl(context.Background(), "https://example.com", 1, -1))
}

func TestCrawl_ResultsIsCopy(t *testing.T) {
	site := &fakeSite{pages: map[string]string{"https://example.com": page()}}
	c := New(site, recordExtractor())
	require.NoError(t, c.Crawl(context.Background(), "https://example.com", 1, 1))

	r := c.Results()
	delete(r, "https://example.com")
	assert.Len(t, c.Results(), 1)
}

func TestCrawl_LocalScraper(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, page("/pricing", "/missing", srv.URL+"/about/", "https://elsewhere.test/"))
		case "/pricing":
			fmt.Fprint(w, page("/"))
		case "/about":
			fmt.Fprint(w, page())
		default:
			http.NotFound(w, r)
		}
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := New(scrape.NewLocalScraper(scrape.LocalOptions{}), recordExtractor())
	require.NoError(t, c.Crawl(context.Background(), srv.URL+"/", 2, 5))

	results := c.Results()
	assert.Len(t, results, 3)
	assert.Contains(t, results, srv.URL)
	assert.Contains(t, results, srv.URL+"/pricing")
	assert.Contains(t, results, srv.URL+"/about")
	assert.Equal(t, 1, c.Stats().FetchFailed)
}

package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-intel/internal/model"
)

const acmeHome = `<html><head><title>Acme Labs</title><style>h1{color:red}</style></head>
<body><h1>Industrial widgets</h1><script>track()</script>
<p>Built in   Austin since 1999.</p><a href="/products">Products</a></body></html>`

func TestLocalScraper_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "intel-test", r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(acmeHome))
	}))
	defer srv.Close()

	s := NewLocalScraper(LocalOptions{UserAgent: "intel-test"})
	assert.Equal(t, "local_http", s.Name())
	assert.True(t, s.Supports(srv.URL))

	res, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "local_http", res.Source)
	assert.Equal(t, srv.URL, res.Page.URL)
	assert.Equal(t, "Acme Labs", res.Page.Title)
	assert.Equal(t, http.StatusOK, res.Page.StatusCode)
	assert.Contains(t, res.Page.HTML, `href="/products"`)
	assert.Contains(t, res.Page.Markdown, "Industrial widgets")
	assert.Contains(t, res.Page.Markdown, "Built in Austin since 1999.")
	assert.NotContains(t, res.Page.Markdown, "track()")
	assert.NotContains(t, res.Page.Markdown, "color:red")
}

func TestLocalScraper_Scrape_Latin1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		// "Café Acme" with é as the single byte 0xE9.
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9 Acme</title></head><body>ok</body></html>"))
	}))
	defer srv.Close()

	res, err := NewLocalScraper(LocalOptions{}).Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café Acme", res.Page.Title)
}

func TestLocalScraper_Scrape_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "cloudflare 403",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Cf-Ray", "8a1b2c")
				w.WriteHeader(http.StatusForbidden)
			},
			wantMsg: "blocked (cloudflare)",
		},
		{
			name: "captcha",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<p>Please complete the reCAPTCHA</p>"))
			},
			wantMsg: "blocked (captcha)",
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("<p>Not found</p>"))
			},
			wantMsg: "status 404",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewLocalScraper(LocalOptions{}).Scrape(context.Background(), srv.URL)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrFetch)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLocalScraper_Scrape_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewLocalScraper(LocalOptions{}).Scrape(context.Background(), addr)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrFetch)
}

func TestLocalScraper_Scrape_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>" + strings.Repeat("w", 8192) + "</body></html>"))
	}))
	defer srv.Close()

	res, err := NewLocalScraper(LocalOptions{MaxBodyBytes: 2048}).Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, res.Page.HTML, 2048)
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
	}{
		{"no header", "Acme", "", "Acme"},
		{"utf-8", "Acme ✓", "text/html; charset=UTF-8", "Acme ✓"},
		{"windows-1252", "\x93Acme\x94", "text/html; charset=windows-1252", "“Acme”"},
		{"unknown charset", "Acme", "text/html; charset=x-made-up", "Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeBody([]byte(tt.body), tt.contentType))
		})
	}
}

// Package crawl walks a website subtree depth-first and extracts a
// PageRecord from every page it reaches.
package crawl

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/scrape"
)

// binaryExtensions mark asset links that are never content pages. Matched
// as case-insensitive substrings of the path.
var binaryExtensions = []string{".pdf", ".jpg", ".png", ".gif", ".svg"}

// Scope is the host and path-prefix boundary of a crawl. It is fixed when
// the crawl starts.
type Scope struct {
	root    string
	host    string
	prefix  string
	exclude *scrape.PathMatcher
}

// NewScope builds the scope rooted at rawRoot. Links must share the root's
// host and start with the root path, trailing slashes removed. The path test
// is a plain string prefix, so a root of /docs also admits /docsx. exclude
// may be nil.
func NewScope(rawRoot string, exclude *scrape.PathMatcher) (*Scope, error) {
	u, err := url.Parse(strings.TrimSpace(rawRoot))
	if err != nil {
		return nil, eris.Wrapf(err, "crawl: parse root url %q", rawRoot)
	}
	if !isHTTP(u) || u.Host == "" {
		return nil, eris.Errorf("crawl: root url %q must be absolute http(s)", rawRoot)
	}
	return &Scope{
		root:    normalizeURL(u),
		host:    strings.ToLower(u.Host),
		prefix:  strings.TrimRight(u.Path, "/"),
		exclude: exclude,
	}, nil
}

// Root returns the normalized root URL.
func (s *Scope) Root() string { return s.root }

// Contains reports whether u may be followed: same host, path under the
// root prefix, not a binary asset, and not excluded by configured patterns.
func (s *Scope) Contains(u *url.URL) bool {
	if u == nil || !isHTTP(u) {
		return false
	}
	if !strings.EqualFold(u.Host, s.host) {
		return false
	}
	p := u.Path
	if !strings.HasPrefix(p, s.prefix) {
		return false
	}
	if strings.Contains(p, "#") || strings.HasSuffix(p, "//") {
		return false
	}
	lower := strings.ToLower(p)
	for _, ext := range binaryExtensions {
		if strings.Contains(lower, ext) {
			return false
		}
	}
	return !s.exclude.IsExcluded(u.String())
}

func isHTTP(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

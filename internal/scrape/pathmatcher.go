package scrape

import (
	"net/url"
	"path"
	"strings"
)

// pathRule is one compiled exclude pattern.
type pathRule struct {
	glob string
	// dir is set for "/dir/*" patterns, which also exclude "/dir" and
	// everything below it.
	dir string
	// base is set for patterns without a leading slash, which match the
	// last path segment at any depth ("*.pdf").
	base bool
}

func (r pathRule) match(p string) bool {
	if r.base {
		ok, _ := path.Match(r.glob, path.Base(p))
		return ok
	}
	if ok, _ := path.Match(r.glob, p); ok {
		return true
	}
	return r.dir != "" && (p == r.dir || strings.HasPrefix(p, r.dir+"/"))
}

func compileRule(pattern string) pathRule {
	r := pathRule{glob: pattern}
	switch {
	case !strings.HasPrefix(pattern, "/"):
		r.base = true
	case strings.HasSuffix(pattern, "/*"):
		r.dir = strings.TrimSuffix(pattern, "/*")
	}
	return r
}

// PathMatcher excludes URLs whose path matches one of a set of glob
// patterns, case-insensitively. "/blog/*" covers the whole /blog tree,
// "/*.pdf" only root-level files and "*.pdf" files at any depth.
type PathMatcher struct {
	patterns []string
	rules    []pathRule
}

// NewPathMatcher compiles patterns. Blank patterns are ignored; no
// patterns means nothing is excluded.
func NewPathMatcher(patterns []string) *PathMatcher {
	m := &PathMatcher{patterns: []string{}}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
		m.rules = append(m.rules, compileRule(p))
	}
	return m
}

// Patterns returns the normalized patterns.
func (m *PathMatcher) Patterns() []string {
	return m.patterns
}

// IsExcluded reports whether rawURL's path matches a pattern. Unparseable
// URLs are excluded unless there are no patterns.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	p := strings.ToLower(u.Path)
	if p == "" {
		p = "/"
	}
	for _, r := range m.rules {
		if r.match(p) {
			return true
		}
	}
	return false
}

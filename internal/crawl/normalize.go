package crawl

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Normalize reduces raw to scheme://host/path with the query, fragment,
// user info, and trailing slashes removed. Scheme and host are lowercased.
// Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", eris.Wrapf(err, "crawl: normalize %q", raw)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", eris.Errorf("crawl: normalize %q: not an absolute url", raw)
	}
	return normalizeURL(u), nil
}

func normalizeURL(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) +
		strings.TrimRight(u.EscapedPath(), "/")
}

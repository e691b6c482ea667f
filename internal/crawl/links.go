package crawl

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/scrape"
)

// ExtractLinks returns the normalized, in-scope links of an HTML page,
// deduplicated and sorted ascending. Relative hrefs resolve against
// currentURL. Parse failures wrap model.ErrParse.
func ExtractLinks(html string, scope *Scope, currentURL string) ([]string, error) {
	doc, err := scrape.ParseHTML(html)
	if err != nil {
		return nil, err
	}
	return DocumentLinks(doc, scope, currentURL)
}

// DocumentLinks is ExtractLinks over an already parsed document.
func DocumentLinks(doc *goquery.Document, scope *Scope, currentURL string) ([]string, error) {
	base, err := url.Parse(currentURL)
	if err != nil {
		return nil, eris.Wrapf(err, "crawl: parse current url %q", currentURL)
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if !scope.Contains(abs) {
			return
		}
		seen[normalizeURL(abs)] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	sort.Strings(links)
	return links, nil
}

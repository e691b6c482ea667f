package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/model"
)

// noiseSelector matches elements that never carry page prose.
const noiseSelector = "script, style, meta, link, noscript"

// ParseHTML parses an HTML document. Parse failures wrap model.ErrParse.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrapf(model.ErrParse, "scrape: parse html: %v", err)
	}
	return doc, nil
}

// Title returns the trimmed <title> text, or "".
func Title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// DocumentText drops non-prose elements and returns the visible text, one
// non-empty trimmed line per line. The document is modified in place.
func DocumentText(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()
	return collapseLines(doc.Text())
}

// HTMLToText parses html and returns DocumentText for it.
func HTMLToText(html string) (string, error) {
	doc, err := ParseHTML(html)
	if err != nil {
		return "", err
	}
	return DocumentText(doc), nil
}

// StripScripts removes only script and style content, leaving the rest of
// the text intact. Used for LinkedIn pages where metadata carries content.
func StripScripts(html string) (string, error) {
	doc, err := ParseHTML(html)
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return collapseLines(doc.Text()), nil
}

func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

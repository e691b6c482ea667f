package profile

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/company-intel/internal/model"
)

// ValidateURL accepts http(s) URLs that mention both "linkedin" and
// "company", case-insensitively. Failures wrap model.ErrInvalidLinkedInURL.
func ValidateURL(raw string) error {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return eris.Wrapf(model.ErrInvalidLinkedInURL, "profile: %q is not an http(s) url", raw)
	}
	if !strings.Contains(lower, "linkedin") || !strings.Contains(lower, "company") {
		return eris.Wrapf(model.ErrInvalidLinkedInURL,
			"profile: %q must be a linkedin company page (e.g. https://www.linkedin.com/company/name)", raw)
	}
	return nil
}

// CompanyNameFromURL titles the path segment after "company/", turning
// dashes into spaces: ".../company/acme-labs/about" gives "Acme Labs".
// Returns "" when the URL has no such segment.
func CompanyNameFromURL(raw string) string {
	idx := strings.Index(strings.ToLower(raw), "company/")
	if idx < 0 {
		return ""
	}
	slug := raw[idx+len("company/"):]
	if end := strings.IndexAny(slug, "/?#"); end >= 0 {
		slug = slug[:end]
	}
	slug = strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
	return cases.Title(language.English).String(slug)
}

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/llm"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/profile"
)

// DefaultNumResults is the hit count requested per query.
const DefaultNumResults = 5

const systemPrompt = `You are an expert at analyzing search results and extracting official company websites and LinkedIn profiles.
Always return valid JSON data with all specified fields as a SINGLE DICTIONARY (not a list).
Only return the JSON data, do not add any explanatory text before or after.
For LinkedIn profiles, prioritize company pages over individual profiles.
IMPORTANT: Do not escape underscores in the JSON keys.`

const choosePrompt = `Analyze the following search results for %s:

%s

Extract the company's official website URL and LinkedIn profile URL. Follow these rules:
1. Only select the main company website (avoid subpages, blogs, etc.)
2. For LinkedIn, only use company pages (linkedin.com/company/...), not individual profiles
3. Ignore third-party websites and directories
4. If no valid URL is found, use "None"

Return ONLY the following JSON without any additional text:
{"company": string, "website": string, "linkedin": string}`

// Finder locates a company's web presences.
type Finder struct {
	searcher   Searcher
	client     llm.Client
	numResults int
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithNumResults overrides DefaultNumResults.
func WithNumResults(n int) FinderOption {
	return func(f *Finder) {
		if n > 0 {
			f.numResults = n
		}
	}
}

// NewFinder creates a Finder.
func NewFinder(searcher Searcher, client llm.Client, opts ...FinderOption) *Finder {
	f := &Finder{searcher: searcher, client: client, numResults: DefaultNumResults}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Find searches for "<company>" and "<company> linkedin" and lets the model
// pick the official website and LinkedIn company page. A failed search
// contributes no hits. Sources not found are empty strings.
func (f *Finder) Find(ctx context.Context, company string) (model.Sources, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return model.Sources{}, eris.New("discover: company name is required")
	}

	var results []model.SearchResult
	for _, q := range []string{company, company + " linkedin"} {
		hits, err := f.searcher.Search(ctx, q, f.numResults)
		if err != nil {
			zap.L().Warn("discover: search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		results = append(results, hits...)
	}
	if err := ctx.Err(); err != nil {
		return model.Sources{}, eris.Wrap(err, "discover: canceled")
	}
	return f.Choose(ctx, company, results)
}

// Choose asks the model to pick sources from results. No results yields
// empty sources without a model call. Picks that are not absolute http(s)
// URLs, or LinkedIn picks that are not company pages, are dropped.
func (f *Finder) Choose(ctx context.Context, company string, results []model.SearchResult) (model.Sources, error) {
	src := model.Sources{Company: company}
	if len(results) == 0 {
		return src, nil
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return src, eris.Wrap(err, "discover: encode results")
	}

	resp, err := f.client.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(choosePrompt, company, payload),
		Temperature: llm.Temperature(0),
		Phase:       "discover",
	})
	if err != nil {
		return src, eris.Wrap(err, "discover: choose sources")
	}

	var picked struct {
		Company  string `json:"company"`
		Website  string `json:"website"`
		LinkedIn string `json:"linkedin"`
	}
	if err := llm.DecodeJSON(resp.Text, &picked); err != nil {
		return src, eris.Wrap(err, "discover: decode sources")
	}

	if name := clean(picked.Company); name != "" {
		src.Company = name
	}
	src.Website = absoluteURL(picked.Website)
	if li := absoluteURL(picked.LinkedIn); li != "" {
		if err := profile.ValidateURL(li); err == nil {
			src.LinkedIn = li
		} else {
			zap.L().Debug("discover: dropping non-company linkedin url", zap.String("url", li))
		}
	}

	zap.L().Info("discover: sources found",
		zap.String("company", src.Company),
		zap.String("website", src.Website),
		zap.String("linkedin", src.LinkedIn),
	)
	return src, nil
}

// clean maps the model's "None" and blanks to "".
func clean(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "null", "n/a", "not found":
		return ""
	}
	return s
}

// absoluteURL returns s as an absolute http(s) URL, or "". A bare host such
// as "www.acme.com" or "linkedin.com/company/acme" gets https.
func absoluteURL(s string) string {
	s = clean(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") && looksLikeHost(s) {
		s = "https://" + strings.TrimPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return ""
	}
	return s
}

func looksLikeHost(s string) bool {
	host, _, _ := strings.Cut(strings.TrimPrefix(s, "//"), "/")
	return strings.Contains(host, ".") && !strings.ContainsAny(host, " \t:@")
}

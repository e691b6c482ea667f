// Package profile extracts a CompanyProfile from a LinkedIn company page.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/llm"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/internal/scrape"
	"github.com/sells-group/company-intel/pkg/perplexity"
)

// DefaultRetryDelay is the wait before the single rate-limit retry.
const DefaultRetryDelay = 2 * time.Second

// maxEmployees caps the key people kept on a profile.
const maxEmployees = 10

const systemPrompt = "You are an expert at analyzing LinkedIn company profiles. Always return valid JSON data with all specified fields."

const extractPrompt = `Extract company information from the following LinkedIn page content.
Focus on finding these specific details about %s:
1. Company name
2. Description/About
3. Industry
4. Company size (number of employees)
5. Headquarters location
6. Website URL
7. Year founded
8. Specialties or key areas of focus
9. Key employees with their roles (focus on leadership: CEO, Founder, CTO, Directors, etc.)

Content from LinkedIn page:
%s

Return the information in this exact JSON format (include all fields even if null):
{"name": string, "description": string, "industry": string, "company_size": string,
 "headquarters": string, "website": string, "founded": string,
 "specialties": [string], "employees": [{"name": string, "role": string}]}

Only return the JSON object, no other text. For employees, focus on finding leadership roles and list up to 10 employees.`

const perplexityPrompt = `Find the LinkedIn company profile for "%s" (%s).
Return all available company information including: company name, description, industry,
employee count, headquarters location, founded year, specialties, website,
and key employees with their roles. Return the raw information as text.`

// Analyzer turns a LinkedIn company URL into a CompanyProfile.
type Analyzer struct {
	client     llm.Client
	scraper    scrape.Scraper
	pplx       perplexity.Client
	retryDelay time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithScraper sets the page fetcher, usually a scrape.Chain.
func WithScraper(s scrape.Scraper) Option {
	return func(a *Analyzer) { a.scraper = s }
}

// WithPerplexity enables research through Perplexity when the page is
// unreachable or a login wall.
func WithPerplexity(c perplexity.Client) Option {
	return func(a *Analyzer) { a.pplx = c }
}

// WithRetryDelay overrides DefaultRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.retryDelay = d
		}
	}
}

// NewAnalyzer creates an Analyzer that extracts with client.
func NewAnalyzer(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{client: client, retryDelay: DefaultRetryDelay}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze validates linkedInURL, gathers page content (scrape first, then
// Perplexity when the scrape fails or hits a login wall), and extracts the
// profile.
func (a *Analyzer) Analyze(ctx context.Context, linkedInURL string) (*model.CompanyProfile, error) {
	if err := ValidateURL(linkedInURL); err != nil {
		return nil, err
	}
	name := CompanyNameFromURL(linkedInURL)
	log := zap.L().With(zap.String("linkedin_url", linkedInURL), zap.String("phase", "linkedin"))

	content := a.scrapeContent(ctx, linkedInURL, log)

	if content == "" && a.pplx != nil {
		text, err := a.research(ctx, name, linkedInURL)
		if err != nil {
			return nil, err
		}
		content = text
	}

	if strings.TrimSpace(content) == "" {
		return nil, eris.Wrapf(model.ErrFetch, "profile: no content for %s", linkedInURL)
	}

	p, err := a.AnalyzeContent(ctx, content, name)
	if err != nil {
		return nil, err
	}
	p.LinkedInURL = linkedInURL
	return p, nil
}

// AnalyzeContent extracts a CompanyProfile from page text. A rate-limited
// call is retried once after the retry delay; the final failure is
// terminal (errors.Is model.ErrTerminal).
func (a *Analyzer) AnalyzeContent(ctx context.Context, content, companyName string) (*model.CompanyProfile, error) {
	if companyName == "" {
		companyName = "the company"
	}

	cfg := resilience.RateLimitRetryConfig(a.retryDelay)
	cfg.OnRetry = resilience.RetryLogger("llm", "linkedin")

	p, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*model.CompanyProfile, error) {
		resp, err := a.client.Complete(ctx, llm.Request{
			System:      systemPrompt,
			Prompt:      fmt.Sprintf(extractPrompt, companyName, content),
			Temperature: llm.Temperature(0),
			Phase:       "linkedin",
		})
		if err != nil {
			return nil, err
		}
		var out model.CompanyProfile
		if err := llm.DecodeJSON(resp.Text, &out); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrExtraction, err)
		}
		return &out, nil
	})
	if err != nil {
		return nil, model.Terminal(eris.Wrap(err, "profile: extract"))
	}

	if strings.TrimSpace(p.Name) == "" && companyName != "the company" {
		p.Name = companyName
	}
	if len(p.Employees) > maxEmployees {
		p.Employees = p.Employees[:maxEmployees]
	}
	p.ApplyDefaults()
	return p, nil
}

// scrapeContent returns the page text, or "" when the fetch fails or the
// page is a login wall.
func (a *Analyzer) scrapeContent(ctx context.Context, linkedInURL string, log *zap.Logger) string {
	if a.scraper == nil {
		return ""
	}
	res, err := a.scraper.Scrape(ctx, linkedInURL)
	if err != nil {
		log.Debug("profile: scrape failed", zap.Error(err))
		return ""
	}

	content := res.Page.Markdown
	if res.Page.HTML != "" {
		// Metadata and noscript blocks carry most of a public LinkedIn page.
		text, err := scrape.StripScripts(res.Page.HTML)
		if err == nil {
			content = text
		}
	}

	if scrape.IsLoginWall(content) {
		log.Debug("profile: scrape returned login wall", zap.String("source", res.Source))
		return ""
	}
	return content
}

func (a *Analyzer) research(ctx context.Context, name, linkedInURL string) (string, error) {
	ans, err := a.pplx.Ask(ctx, perplexity.Query{
		Prompt:      fmt.Sprintf(perplexityPrompt, name, linkedInURL),
		Temperature: llm.Temperature(0.2),
	})
	if err != nil {
		return "", eris.Wrap(fmt.Errorf("%w: %w", model.ErrFetch, err), "profile: perplexity research")
	}
	zap.L().Debug("profile: perplexity research complete",
		zap.Int("citations", len(ans.Citations)),
		zap.Int("prompt_tokens", ans.Usage.PromptTokens),
		zap.Int("completion_tokens", ans.Usage.CompletionTokens),
	)
	if len(ans.Citations) == 0 {
		return ans.Text, nil
	}
	return ans.Text + "\n\nSources:\n- " + strings.Join(ans.Citations, "\n- "), nil
}

package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/llm"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
)

// DefaultRetryDelay is the wait before the single rate-limit retry.
const DefaultRetryDelay = 10 * time.Second

const summarySystemPrompt = "You are an expert at summarizing B2B company website analysis. Create concise yet comprehensive summaries."

const summaryFormat = `{
  "company_overview_summary": string,
  "sales_intelligence_summary": string,
  "pricing_summary": string,
  "firmographic_summary": string,
  "gtm_strategy_summary": string,
  "overall_summary": string
}`

// Summarizer narrates a SectionAggregate and CompanyProfile into a
// SummaryRecord.
type Summarizer struct {
	client     llm.Client
	retryDelay time.Duration
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithRetryDelay overrides DefaultRetryDelay.
func WithRetryDelay(d time.Duration) SummarizerOption {
	return func(s *Summarizer) {
		if d > 0 {
			s.retryDelay = d
		}
	}
}

// NewSummarizer creates a Summarizer backed by client.
func NewSummarizer(client llm.Client, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{client: client, retryDelay: DefaultRetryDelay}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summarize asks the model for the six summaries. A rate-limited call is
// retried once after the retry delay; any other failure, or a second
// failure, is returned as a terminal error (errors.Is model.ErrTerminal).
// profile may be nil when no LinkedIn page was analyzed.
func (s *Summarizer) Summarize(ctx context.Context, agg model.SectionAggregate, profile *model.CompanyProfile) (*model.SummaryRecord, error) {
	prompt, err := buildSummaryPrompt(agg, profile)
	if err != nil {
		return nil, model.Terminal(err)
	}

	cfg := resilience.RateLimitRetryConfig(s.retryDelay)
	cfg.OnRetry = resilience.RetryLogger("llm", "summarize")

	rec, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*model.SummaryRecord, error) {
		resp, err := s.client.Complete(ctx, llm.Request{
			System:      summarySystemPrompt,
			Prompt:      prompt,
			Temperature: llm.Temperature(0.2),
			Phase:       "summarize",
		})
		if err != nil {
			return nil, err
		}
		var out model.SummaryRecord
		if err := llm.DecodeJSON(resp.Text, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		zap.L().Error("aggregate: summarize failed", zap.Error(err))
		return nil, model.Terminal(eris.Wrap(err, "aggregate: summarize"))
	}
	return rec, nil
}

func buildSummaryPrompt(agg model.SectionAggregate, profile *model.CompanyProfile) (string, error) {
	texts := SectionTexts(agg)

	linkedin := "{}"
	if profile != nil {
		b, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return "", eris.Wrap(err, "aggregate: encode profile")
		}
		linkedin = string(b)
	}

	var b strings.Builder
	b.WriteString("Create a summary of the analyzed website data, focusing on key insights and patterns.\n\n")
	b.WriteString("Create summaries for each section and an overall summary. Return only JSON with this structure:\n\n")
	b.WriteString(summaryFormat)
	b.WriteString("\n\nWebsite Analysis:\n")
	for _, sec := range model.AllSections() {
		fmt.Fprintf(&b, "\n## %s\n%s\n", sec, texts[sec])
	}
	b.WriteString("\nLinkedIn Data:\n")
	b.WriteString(linkedin)
	b.WriteString("\n\nFocus on the most important insights and patterns across all analyzed pages.")
	return b.String(), nil
}

// Package report renders analysis results for people: the chat summary,
// a Markdown report, and the JSON or YAML downloads.
package report

import (
	"strings"

	"github.com/sells-group/company-intel/internal/model"
)

// SummarySection is one titled paragraph of a SummaryRecord.
type SummarySection struct {
	Title string
	Text  string
}

// SummarySections returns the summary paragraphs in display order.
func SummarySections(s *model.SummaryRecord) []SummarySection {
	if s == nil {
		return nil
	}
	return []SummarySection{
		{Title: "🏢 Company Overview", Text: s.CompanyOverviewSummary},
		{Title: "📊 Sales Intelligence", Text: s.SalesIntelligenceSummary},
		{Title: "💰 Pricing Information", Text: s.PricingSummary},
		{Title: "📈 Firmographic Data", Text: s.FirmographicSummary},
		{Title: "🎯 Go-to-Market Strategy", Text: s.GTMStrategySummary},
		{Title: "📝 Overall Summary", Text: s.OverallSummary},
	}
}

// FormatSummary renders s as titled paragraphs for a chat transcript.
func FormatSummary(s *model.SummaryRecord) string {
	sections := SummarySections(s)
	if len(sections) == 0 {
		return ""
	}
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sec.Title)
		b.WriteString("\n")
		text := strings.TrimSpace(sec.Text)
		if text == "" {
			text = model.NotSpecified
		}
		b.WriteString(text)
	}
	return b.String()
}

// FormatSources renders discovered sources for a chat transcript. It returns
// "" when nothing was found.
func FormatSources(src model.Sources) string {
	if !src.Found() {
		return ""
	}
	var b strings.Builder
	b.WriteString("I found the following sources:")
	if src.Website != "" {
		b.WriteString("\n    🌐 Website: " + src.Website)
	}
	if src.LinkedIn != "" {
		b.WriteString("\n    💼 LinkedIn: " + src.LinkedIn)
	}
	return b.String()
}

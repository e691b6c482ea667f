package model

// SectionAggregate is the cross-page merge of every PageRecord. Each field
// holds the value from the last record (in merge order) that carried it.
type SectionAggregate struct {
	CompanyOverview   CompanyOverview   `json:"company_overview" yaml:"company_overview"`
	SalesIntelligence SalesIntelligence `json:"sales_intelligence" yaml:"sales_intelligence"`
	Pricing           Pricing           `json:"pricing" yaml:"pricing"`
	Firmographic      Firmographic      `json:"firmographic" yaml:"firmographic"`
	GTMStrategy       GTMStrategy       `json:"gtm_strategy" yaml:"gtm_strategy"`
}

// SummaryRecord holds the narrative summaries for one analysis. Terminal
// artifact; never mutated once produced.
type SummaryRecord struct {
	CompanyOverviewSummary   string `json:"company_overview_summary" yaml:"company_overview_summary"`
	SalesIntelligenceSummary string `json:"sales_intelligence_summary" yaml:"sales_intelligence_summary"`
	PricingSummary           string `json:"pricing_summary" yaml:"pricing_summary"`
	FirmographicSummary      string `json:"firmographic_summary" yaml:"firmographic_summary"`
	GTMStrategySummary       string `json:"gtm_strategy_summary" yaml:"gtm_strategy_summary"`
	OverallSummary           string `json:"overall_summary" yaml:"overall_summary"`
}

// TokenUsage tracks LLM token consumption across calls.
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.Cost += other.Cost
}

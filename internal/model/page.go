package model

// NotSpecified is the sentinel stored in string fields the extractor could
// not find in the page content.
const NotSpecified = "Not specified"

// Section names a logical business-intelligence category of a PageRecord.
type Section string

const (
	SectionCompanyOverview   Section = "company_overview"
	SectionSalesIntelligence Section = "sales_intelligence"
	SectionPricing           Section = "pricing"
	SectionFirmographic      Section = "firmographic"
	SectionGTMStrategy       Section = "gtm_strategy"
)

// AllSections returns the five sections in their canonical order.
func AllSections() []Section {
	return []Section{
		SectionCompanyOverview,
		SectionSalesIntelligence,
		SectionPricing,
		SectionFirmographic,
		SectionGTMStrategy,
	}
}

// CompanyOverview describes who the company is and what it sells.
type CompanyOverview struct {
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	Mission          string   `json:"mission" yaml:"mission"`
	ProductsServices []string `json:"products_services" yaml:"products_services"`
	TargetMarket     []string `json:"target_market" yaml:"target_market"`
	Differentiators  []string `json:"differentiators" yaml:"differentiators"`
	CompanySize      string   `json:"company_size" yaml:"company_size"`
	MaturityStage    string   `json:"maturity_stage" yaml:"maturity_stage"`
}

// SalesIntelligence captures how the company sells and to whom.
type SalesIntelligence struct {
	SalesApproach  string   `json:"sales_approach" yaml:"sales_approach"`
	TargetProfiles []string `json:"target_profiles" yaml:"target_profiles"`
	PainPoints     []string `json:"pain_points" yaml:"pain_points"`
	Benefits       []string `json:"benefits" yaml:"benefits"`
	SuccessStories []string `json:"success_stories" yaml:"success_stories"`
	CTAPatterns    []string `json:"cta_patterns" yaml:"cta_patterns"`
}

// PricingTier is a single published pricing plan.
type PricingTier struct {
	Name     string   `json:"name" yaml:"name"`
	Price    string   `json:"price" yaml:"price"`
	Features []string `json:"features" yaml:"features"`
}

// Pricing captures pricing models and published tiers.
type Pricing struct {
	Models               []string      `json:"models" yaml:"models"`
	PricePoints          []string      `json:"price_points" yaml:"price_points"`
	BillingFrequency     []string      `json:"billing_frequency" yaml:"billing_frequency"`
	Tiers                []PricingTier `json:"tiers" yaml:"tiers"`
	HasEnterprisePricing bool          `json:"has_enterprise_pricing" yaml:"has_enterprise_pricing"`
}

// Firmographic holds size, location, and ecosystem attributes.
type Firmographic struct {
	Industry       []string `json:"industry" yaml:"industry"`
	Locations      []string `json:"locations" yaml:"locations"`
	EmployeeCount  string   `json:"employee_count" yaml:"employee_count"`
	Technologies   []string `json:"technologies" yaml:"technologies"`
	Partners       []string `json:"partners" yaml:"partners"`
	Certifications []string `json:"certifications" yaml:"certifications"`
}

// GTMStrategy describes the go-to-market motion.
type GTMStrategy struct {
	SalesMotion         string   `json:"sales_motion" yaml:"sales_motion"`
	MarketingChannels   []string `json:"marketing_channels" yaml:"marketing_channels"`
	ContentStrategy     string   `json:"content_strategy" yaml:"content_strategy"`
	PartnerProgram      string   `json:"partner_program" yaml:"partner_program"`
	AcquisitionApproach string   `json:"acquisition_approach" yaml:"acquisition_approach"`
}

// PageRecord is the structured extraction for one fetched page. It is
// written once per analyzed page and never mutated afterwards.
type PageRecord struct {
	CompanyOverview   CompanyOverview   `json:"company_overview" yaml:"company_overview"`
	SalesIntelligence SalesIntelligence `json:"sales_intelligence" yaml:"sales_intelligence"`
	Pricing           Pricing           `json:"pricing" yaml:"pricing"`
	Firmographic      Firmographic      `json:"firmographic" yaml:"firmographic"`
	GTMStrategy       GTMStrategy       `json:"gtm_strategy" yaml:"gtm_strategy"`
}

// NewPageRecord returns a record with every field at its default.
func NewPageRecord() PageRecord {
	var r PageRecord
	r.ApplyDefaults()
	return r
}

// ApplyDefaults replaces empty strings with NotSpecified and nil lists with
// empty lists so that serialized records always carry the full schema.
func (r *PageRecord) ApplyDefaults() {
	o := &r.CompanyOverview
	defaultStr(&o.Name, &o.Description, &o.Mission, &o.CompanySize, &o.MaturityStage)
	defaultList(&o.ProductsServices, &o.TargetMarket, &o.Differentiators)

	s := &r.SalesIntelligence
	defaultStr(&s.SalesApproach)
	defaultList(&s.TargetProfiles, &s.PainPoints, &s.Benefits, &s.SuccessStories, &s.CTAPatterns)

	p := &r.Pricing
	defaultList(&p.Models, &p.PricePoints, &p.BillingFrequency)
	if p.Tiers == nil {
		p.Tiers = []PricingTier{}
	}
	for i := range p.Tiers {
		defaultStr(&p.Tiers[i].Name, &p.Tiers[i].Price)
		defaultList(&p.Tiers[i].Features)
	}

	f := &r.Firmographic
	defaultStr(&f.EmployeeCount)
	defaultList(&f.Industry, &f.Locations, &f.Technologies, &f.Partners, &f.Certifications)

	g := &r.GTMStrategy
	defaultStr(&g.SalesMotion, &g.ContentStrategy, &g.PartnerProgram, &g.AcquisitionApproach)
	defaultList(&g.MarketingChannels)
}

func defaultStr(fields ...*string) {
	for _, f := range fields {
		if *f == "" {
			*f = NotSpecified
		}
	}
}

func defaultList(fields ...*[]string) {
	for _, f := range fields {
		if *f == nil {
			*f = []string{}
		}
	}
}

// CrawledPage is the raw result of fetching a single URL.
type CrawledPage struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Markdown   string `json:"markdown"`
	HTML       string `json:"html,omitempty"`
	StatusCode int    `json:"status_code"`
}

package extract

import "strings"

const systemPrompt = `You are an expert at analyzing B2B company websites and extracting comprehensive business intelligence.
Always return a single valid JSON object with all specified fields and nothing else.
Do not escape underscores in JSON keys: use "company_overview", not "company\_overview".`

const formatInstructions = `{
  "company_overview": {
    "name": string, "description": string, "mission": string,
    "products_services": [string], "target_market": [string], "differentiators": [string],
    "company_size": string, "maturity_stage": string
  },
  "sales_intelligence": {
    "sales_approach": string (self-serve, sales-led, etc.),
    "target_profiles": [string], "pain_points": [string], "benefits": [string],
    "success_stories": [string], "cta_patterns": [string]
  },
  "pricing": {
    "models": [string], "price_points": [string], "billing_frequency": [string],
    "tiers": [{"name": string, "price": string, "features": [string]}],
    "has_enterprise_pricing": boolean
  },
  "firmographic": {
    "industry": [string], "locations": [string], "employee_count": string,
    "technologies": [string], "partners": [string], "certifications": [string]
  },
  "gtm_strategy": {
    "sales_motion": string, "marketing_channels": [string], "content_strategy": string,
    "partner_program": string, "acquisition_approach": string
  }
}`

func buildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze this website content and extract comprehensive business information focusing on B2B sales intelligence.\n\n")
	b.WriteString("Extract all relevant information that matches these categories, following this exact JSON structure:\n\n")
	b.WriteString(formatInstructions)
	b.WriteString("\n\nContent to analyze:\n")
	b.WriteString(text)
	b.WriteString("\n\nIf a piece of information is not found, use \"Not specified\" for strings and empty lists for lists. ")
	b.WriteString("Only report facts present in the content.")
	return b.String()
}

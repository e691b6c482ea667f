package model

// Employee is a named person with their role at the company.
type Employee struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
}

// CompanyProfile is the LinkedIn-derived company record. It is produced
// independently of the website crawl, once per analysis run.
type CompanyProfile struct {
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	Industry     string     `json:"industry" yaml:"industry"`
	CompanySize  string     `json:"company_size" yaml:"company_size"`
	Headquarters string     `json:"headquarters" yaml:"headquarters"`
	Website      string     `json:"website" yaml:"website"`
	Founded      string     `json:"founded" yaml:"founded"`
	Specialties  []string   `json:"specialties" yaml:"specialties"`
	Employees    []Employee `json:"employees" yaml:"employees"`
	LinkedInURL  string     `json:"linkedin_url,omitempty" yaml:"linkedin_url,omitempty"`
}

// ApplyDefaults fills unset scalar fields with NotSpecified and nil lists
// with empty lists. Name is left untouched.
func (p *CompanyProfile) ApplyDefaults() {
	defaultStr(&p.Description, &p.Industry, &p.CompanySize, &p.Headquarters, &p.Website, &p.Founded)
	defaultList(&p.Specialties)
	if p.Employees == nil {
		p.Employees = []Employee{}
	}
}

// Sources are the company's discovered web presences. Empty strings mean
// the source was not found.
type Sources struct {
	Company  string `json:"company" yaml:"company"`
	Website  string `json:"website" yaml:"website"`
	LinkedIn string `json:"linkedin" yaml:"linkedin"`
}

// Found reports whether at least one source was located.
func (s Sources) Found() bool {
	return s.Website != "" || s.LinkedIn != ""
}

// SearchResult is a single web search hit handed to the source finder.
type SearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

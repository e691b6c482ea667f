package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/company-intel/internal/pipeline"
)

// Format is a download encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts json, yaml (or yml) and markdown (or md).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", eris.Errorf("report: unknown format %q", s)
	}
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// MIME returns the content type for f.
func (f Format) MIME() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

// Download is one downloadable artifact of an analysis.
type Download struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	FileName string `json:"file_name"`
	MIME     string `json:"mime"`
	Data     []byte `json:"-"`
}

// Downloads returns the artifacts available for a quick analysis and an
// optional deep one: website analysis, LinkedIn analysis and summary for
// quick; website analysis and summary for deep, plus the LinkedIn analysis
// when there is no quick result. Markdown renders one report per analysis
// instead.
func Downloads(quick, deep *pipeline.Result, f Format) ([]Download, error) {
	if f == FormatMarkdown {
		return markdownDownloads(quick, deep)
	}

	type item struct {
		name, label, base string
		v                 any
	}
	var items []item
	if quick != nil {
		if len(quick.Pages) > 0 {
			items = append(items, item{"website_analysis", "📊 Website Analysis", "website_analysis", quick.Pages})
		}
		if quick.Profile != nil {
			items = append(items, item{"linkedin_analysis", "💼 LinkedIn Analysis", "linkedin_analysis", quick.Profile})
		}
		if quick.Summary != nil {
			items = append(items, item{"company_summary", "📝 Summary", "company_summary", quick.Summary})
		}
	}
	if deep != nil {
		if quick == nil && deep.Profile != nil {
			items = append(items, item{"linkedin_analysis", "💼 LinkedIn Analysis", "linkedin_analysis", deep.Profile})
		}
		if len(deep.Pages) > 0 {
			items = append(items, item{"website_analysis_deep", "📊 Deep Website Analysis", "website_analysis_deep", deep.Pages})
		}
		if deep.Summary != nil {
			items = append(items, item{"company_summary_deep", "📝 Summary Deep", "company_summary_deep", deep.Summary})
		}
	}

	out := make([]Download, 0, len(items))
	for _, it := range items {
		data, err := Encode(it.v, f)
		if err != nil {
			return nil, eris.Wrapf(err, "report: encode %s", it.name)
		}
		out = append(out, Download{
			Name:     it.name,
			Label:    it.label,
			FileName: it.base + "." + f.Ext(),
			MIME:     f.MIME(),
			Data:     data,
		})
	}
	return out, nil
}

func markdownDownloads(quick, deep *pipeline.Result) ([]Download, error) {
	var out []Download
	for _, r := range []struct {
		name, label string
		res         *pipeline.Result
	}{
		{"company_report", "📝 Report", quick},
		{"company_report_deep", "📝 Deep Report", deep},
	} {
		if r.res == nil {
			continue
		}
		var buf bytes.Buffer
		if err := WriteMarkdown(&buf, r.res); err != nil {
			return nil, err
		}
		out = append(out, Download{
			Name:     r.name,
			Label:    r.label,
			FileName: r.name + ".md",
			MIME:     FormatMarkdown.MIME(),
			Data:     buf.Bytes(),
		})
	}
	return out, nil
}

// Encode serializes v as indented JSON or YAML.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, eris.Wrap(err, "report: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, eris.Wrap(err, "report: encode yaml")
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "report: encode json")
		}
		return data, nil
	default:
		return nil, eris.Errorf("report: format %q cannot encode values", f)
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a company name into a directory-safe name.
func Slug(name string) string {
	s := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "company"
	}
	return s
}

// Export writes downloads into dir/<slug of company>/ and returns the file
// paths written.
func Export(dir, company string, downloads []Download) ([]string, error) {
	target := filepath.Join(dir, Slug(company))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create %s", target)
	}
	paths := make([]string, 0, len(downloads))
	for _, d := range downloads {
		p := filepath.Join(target, d.FileName)
		if err := os.WriteFile(p, d.Data, 0o644); err != nil {
			return paths, eris.Wrapf(err, "report: write %s", p)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/rotisserie/eris"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/pipeline"
)

// WriteMarkdown writes a Markdown report of one analysis to w.
func WriteMarkdown(w io.Writer, res *pipeline.Result) error {
	if res == nil {
		return eris.New("report: no analysis to render")
	}
	md := markdown.NewMarkdown(w)

	writeHeader(md, res)
	writeSummary(md, res.Summary)
	writeProfile(md, res.Profile, res.ProfileError)
	writePages(md, res)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%s analysis, depth %d, %d links per level*", res.Mode, res.Bounds.Depth, res.Bounds.MaxLinks)

	if err := md.Build(); err != nil {
		return eris.Wrap(err, "report: build markdown")
	}
	return nil
}

func writeHeader(md *markdown.Markdown, res *pipeline.Result) {
	title := res.Sources.Company
	if title == "" {
		title = "Company"
	}
	md.H1(title + " Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Value"},
		Rows: [][]string{
			{"🌐 Website", orDash(res.Sources.Website)},
			{"💼 LinkedIn", orDash(res.Sources.LinkedIn)},
			{"Pages Analyzed", strconv.Itoa(len(res.Pages))},
		},
	})
	md.PlainText("")
}

func writeSummary(md *markdown.Markdown, s *model.SummaryRecord) {
	md.H2("Summary")
	md.PlainText("")
	if s == nil {
		md.PlainText("No summary was produced.")
		md.PlainText("")
		return
	}
	for _, sec := range SummarySections(s) {
		md.H3(sec.Title)
		md.PlainText("")
		md.PlainText(orDefault(sec.Text))
		md.PlainText("")
	}
}

func writeProfile(md *markdown.Markdown, p *model.CompanyProfile, profileErr string) {
	md.H2("LinkedIn Profile")
	md.PlainText("")
	if p == nil {
		msg := "No LinkedIn profile was analyzed."
		if profileErr != "" {
			msg = "LinkedIn analysis unavailable: " + profileErr
		}
		md.PlainText(msg)
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Name", orDefault(p.Name)},
			{"Industry", orDefault(p.Industry)},
			{"Company Size", orDefault(p.CompanySize)},
			{"Headquarters", orDefault(p.Headquarters)},
			{"Founded", orDefault(p.Founded)},
			{"Website", orDefault(p.Website)},
			{"Specialties", orDefault(strings.Join(p.Specialties, ", "))},
		},
	})
	md.PlainText("")

	if p.Description != "" && p.Description != model.NotSpecified {
		md.PlainText(p.Description)
		md.PlainText("")
	}

	if len(p.Employees) > 0 {
		md.H3("Key People")
		md.PlainText("")
		people := make([]string, 0, len(p.Employees))
		for _, e := range p.Employees {
			people = append(people, e.Name+" ("+orDefault(e.Role)+")")
		}
		md.BulletList(people...)
		md.PlainText("")
	}
}

func writePages(md *markdown.Markdown, res *pipeline.Result) {
	md.H2("Website Crawl")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Visited", "Fetched", "Extracted", "Fetch Failed", "Extract Failed"},
		Rows: [][]string{{
			strconv.Itoa(res.CrawlStats.Visited),
			strconv.Itoa(res.CrawlStats.Fetched),
			strconv.Itoa(res.CrawlStats.Extracted),
			strconv.Itoa(res.CrawlStats.FetchFailed),
			strconv.Itoa(res.CrawlStats.ExtractFailed),
		}},
	})
	md.PlainText("")
	if len(res.PageOrder) > 0 {
		md.BulletList(res.PageOrder...)
		md.PlainText("")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return model.NotSpecified
	}
	return s
}

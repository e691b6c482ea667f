// Package pipeline runs a company analysis end to end: source discovery,
// the website crawl and LinkedIn analysis in parallel, section merge, and
// the final summary.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/company-intel/internal/aggregate"
	"github.com/sells-group/company-intel/internal/crawl"
	"github.com/sells-group/company-intel/internal/extract"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/scrape"
)

// Mode selects the crawl bounds of an analysis.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeDeep  Mode = "deep"
)

// Bounds limit one crawl.
type Bounds struct {
	Depth    int `json:"depth"`
	MaxLinks int `json:"max_links"`
}

// SourceFinder locates a company's website and LinkedIn page.
type SourceFinder interface {
	Find(ctx context.Context, company string) (model.Sources, error)
}

// ProfileAnalyzer turns a LinkedIn company URL into a profile.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, linkedInURL string) (*model.CompanyProfile, error)
}

// Summarizer writes the narrative summary of merged sections.
type Summarizer interface {
	Summarize(ctx context.Context, agg model.SectionAggregate, profile *model.CompanyProfile) (*model.SummaryRecord, error)
}

// Result is everything one analysis produced.
type Result struct {
	Mode         Mode                        `json:"mode"`
	Bounds       Bounds                      `json:"bounds"`
	Sources      model.Sources               `json:"sources"`
	Pages        map[string]model.PageRecord `json:"pages"`
	PageOrder    []string                    `json:"page_order"`
	CrawlStats   crawl.Stats                 `json:"crawl_stats"`
	Profile      *model.CompanyProfile       `json:"profile,omitempty"`
	ProfileError string                      `json:"profile_error,omitempty"`
	Aggregate    model.SectionAggregate      `json:"aggregate"`
	Summary      *model.SummaryRecord        `json:"summary"`
	Phases       []model.PhaseResult         `json:"phases"`
}

// Pipeline wires the analysis components together. It holds no per-run
// state and may be shared.
type Pipeline struct {
	finder     SourceFinder
	fetcher    crawl.Fetcher
	extractor  extract.Extractor
	profiles   ProfileAnalyzer
	summarizer Summarizer
	excludes   *scrape.PathMatcher
	quick      Bounds
	deep       Bounds
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExcludes drops crawl links whose path matches the matcher.
func WithExcludes(m *scrape.PathMatcher) Option {
	return func(p *Pipeline) { p.excludes = m }
}

// WithBounds overrides the quick and deep crawl bounds.
func WithBounds(quick, deep Bounds) Option {
	return func(p *Pipeline) {
		p.quick = quick
		p.deep = deep
	}
}

// New creates a Pipeline with all dependencies. Quick analysis defaults to
// depth 1 with 1 link per level, deep to depth 3 with 5.
func New(
	finder SourceFinder,
	fetcher crawl.Fetcher,
	extractor extract.Extractor,
	profiles ProfileAnalyzer,
	summarizer Summarizer,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		finder:     finder,
		fetcher:    fetcher,
		extractor:  extractor,
		profiles:   profiles,
		summarizer: summarizer,
		quick:      Bounds{Depth: 1, MaxLinks: 1},
		deep:       Bounds{Depth: 3, MaxLinks: 5},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// BoundsFor returns the crawl bounds of mode.
func (p *Pipeline) BoundsFor(mode Mode) (Bounds, error) {
	switch mode {
	case ModeQuick:
		return p.quick, nil
	case ModeDeep:
		return p.deep, nil
	default:
		return Bounds{}, eris.Errorf("pipeline: unknown mode %q", mode)
	}
}

// FindSources looks up the company's website and LinkedIn page. It returns
// an error wrapping model.ErrNoSources when neither was found.
func (p *Pipeline) FindSources(ctx context.Context, company string) (model.Sources, error) {
	if p.finder == nil {
		return model.Sources{}, eris.New("pipeline: no search provider configured")
	}
	src, err := p.finder.Find(ctx, company)
	if err != nil {
		return model.Sources{}, eris.Wrap(err, "pipeline: find sources")
	}
	if !src.Found() {
		return src, eris.Wrapf(model.ErrNoSources, "pipeline: %s", strings.TrimSpace(company))
	}
	return src, nil
}

// Analyze crawls the website and analyzes the LinkedIn page concurrently,
// merges the per-page records and summarizes them together with the
// profile. A profile failure other than a terminal one is recorded in
// Result.ProfileError and the analysis continues without it.
func (p *Pipeline) Analyze(ctx context.Context, src model.Sources, mode Mode) (*Result, error) {
	return p.run(ctx, src, mode, nil)
}

// Deepen re-runs the website side of prev with deep bounds, reusing the
// profile prev already holds.
func (p *Pipeline) Deepen(ctx context.Context, prev *Result) (*Result, error) {
	if prev == nil {
		return nil, eris.New("pipeline: deepen requires a prior analysis")
	}
	return p.run(ctx, prev.Sources, ModeDeep, prev)
}

func (p *Pipeline) run(ctx context.Context, src model.Sources, mode Mode, prev *Result) (*Result, error) {
	if !src.Found() {
		return nil, eris.Wrap(model.ErrNoSources, "pipeline: analyze")
	}
	bounds, err := p.BoundsFor(mode)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("company", src.Company),
		zap.String("website", src.Website),
		zap.String("mode", string(mode)),
	)
	log.Info("pipeline: starting analysis", zap.Int("depth", bounds.Depth), zap.Int("max_links", bounds.MaxLinks))

	result := &Result{
		Mode:    mode,
		Bounds:  bounds,
		Sources: src,
		Pages:   map[string]model.PageRecord{},
	}

	var phasesMu sync.Mutex
	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) error {
		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		switch {
		case fnErr != nil:
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		case phaseResult.Status == "":
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		phasesMu.Lock()
		result.Phases = append(result.Phases, *phaseResult)
		phasesMu.Unlock()
		return fnErr
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return trackPhase("1a_crawl", func() (*model.PhaseResult, error) {
			if src.Website == "" {
				return &model.PhaseResult{Status: model.PhaseStatusSkipped}, nil
			}
			c := crawl.New(p.fetcher, p.extractor, crawl.WithExcludes(p.excludes))
			crawlErr := c.Crawl(gCtx, src.Website, bounds.Depth, bounds.MaxLinks)
			result.Pages = c.Results()
			result.PageOrder = c.Order()
			result.CrawlStats = c.Stats()
			if crawlErr != nil {
				return nil, eris.Wrap(crawlErr, "pipeline: crawl")
			}
			return &model.PhaseResult{
				Metadata: map[string]any{
					"visited":        result.CrawlStats.Visited,
					"extracted":      result.CrawlStats.Extracted,
					"fetch_failed":   result.CrawlStats.FetchFailed,
					"extract_failed": result.CrawlStats.ExtractFailed,
				},
			}, nil
		})
	})

	g.Go(func() error {
		return trackPhase("1b_linkedin", func() (*model.PhaseResult, error) {
			if prev != nil {
				result.Profile = prev.Profile
				result.ProfileError = prev.ProfileError
				return &model.PhaseResult{
					Status:   model.PhaseStatusSkipped,
					Metadata: map[string]any{"reused": prev.Profile != nil},
				}, nil
			}
			if src.LinkedIn == "" || p.profiles == nil {
				return &model.PhaseResult{Status: model.PhaseStatusSkipped}, nil
			}
			profile, profErr := p.profiles.Analyze(gCtx, src.LinkedIn)
			if profErr != nil {
				if errors.Is(profErr, model.ErrTerminal) || gCtx.Err() != nil {
					return nil, eris.Wrap(profErr, "pipeline: linkedin")
				}
				log.Warn("pipeline: linkedin analysis unavailable", zap.Error(profErr))
				result.ProfileError = profErr.Error()
				return &model.PhaseResult{
					Status: model.PhaseStatusSkipped,
					Error:  profErr.Error(),
				}, nil
			}
			result.Profile = profile
			return &model.PhaseResult{
				Metadata: map[string]any{"employees": len(profile.Employees)},
			}, nil
		})
	})

	if err := g.Wait(); err != nil {
		return result, err
	}

	if err := trackPhase("2_aggregate", func() (*model.PhaseResult, error) {
		result.Aggregate = aggregate.Merge(result.Pages)
		return &model.PhaseResult{
			Metadata: map[string]any{"pages": len(result.Pages)},
		}, nil
	}); err != nil {
		return result, err
	}

	if err := trackPhase("3_summarize", func() (*model.PhaseResult, error) {
		summary, sumErr := p.summarizer.Summarize(ctx, result.Aggregate, result.Profile)
		if sumErr != nil {
			return nil, eris.Wrap(sumErr, "pipeline: summarize")
		}
		result.Summary = summary
		return nil, nil
	}); err != nil {
		return result, err
	}

	log.Info("pipeline: analysis complete",
		zap.Int("pages", len(result.Pages)),
		zap.Bool("profile", result.Profile != nil),
	)
	return result, nil
}

package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/aggregate"
	"github.com/sells-group/company-intel/internal/config"
	"github.com/sells-group/company-intel/internal/discover"
	"github.com/sells-group/company-intel/internal/extract"
	"github.com/sells-group/company-intel/internal/llm"
	"github.com/sells-group/company-intel/internal/pipeline"
	"github.com/sells-group/company-intel/internal/profile"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/internal/scrape"
	"github.com/sells-group/company-intel/pkg/google"
	"github.com/sells-group/company-intel/pkg/jina"
	"github.com/sells-group/company-intel/pkg/perplexity"
)

// pipelineEnv holds the initialized clients and the pipeline needed by the
// find/analyze/chat/serve commands.
type pipelineEnv struct {
	LLM      llm.Client
	Pipeline *pipeline.Pipeline
	closers  []io.Closer
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	for _, c := range pe.closers {
		if err := c.Close(); err != nil {
			zap.L().Warn("close client", zap.Error(err))
		}
	}
}

// initPipeline validates cfg for mode, builds every client and wires the
// Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &pipelineEnv{}

	llmClient, err := llm.New(ctx, llm.Options{
		Provider:          llm.Provider(cfg.LLM.Provider),
		Model:             cfg.LLM.Model,
		APIKey:            cfg.LLMKey(),
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init llm client")
	}
	if c, ok := llmClient.(io.Closer); ok {
		env.closers = append(env.closers, c)
	}
	env.LLM = llmClient

	excludes := scrape.NewPathMatcher(cfg.Crawl.ExcludePaths)
	if len(excludes.Patterns()) > 0 {
		zap.L().Debug("crawl excludes", zap.Strings("patterns", excludes.Patterns()))
	}
	local := scrape.NewLocalScraper(scrape.LocalOptions{
		Timeout:      cfg.Crawl.CrawlTimeout(),
		MaxBodyBytes: int64(cfg.Crawl.MaxBodyKB) * 1024,
		UserAgent:    cfg.Crawl.UserAgent,
	})

	var jinaClient jina.Client
	if cfg.Jina.Key != "" {
		jinaOpts := []jina.Option{jina.WithBaseURL(cfg.Jina.BaseURL)}
		if cfg.Jina.SearchBaseURL != "" {
			jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
		}
		jinaClient = jina.NewClient(cfg.Jina.Key, jinaOpts...)
	} else {
		zap.L().Debug("INTEL_JINA_KEY not set, jina reader and search disabled")
	}

	finder, err := initFinder(ctx, llmClient, jinaClient)
	if err != nil {
		env.Close()
		return nil, err
	}

	profileScrapers := []scrape.Scraper{local}
	if jinaClient != nil {
		profileScrapers = append(profileScrapers, scrape.NewJinaAdapter(jinaClient))
	}
	profileOpts := []profile.Option{
		profile.WithScraper(scrape.NewChain(nil, profileScrapers...)),
		profile.WithRetryDelay(cfg.ProfileRetryDelay()),
	}
	if cfg.Perplexity.Key != "" {
		profileOpts = append(profileOpts, profile.WithPerplexity(perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)))
	} else {
		zap.L().Debug("INTEL_PERPLEXITY_KEY not set, linkedin research fallback disabled")
	}

	env.Pipeline = pipeline.New(
		finder,
		local,
		extract.NewLLMExtractor(llmClient, extract.WithMaxChars(cfg.Crawl.MaxChars)),
		profile.NewAnalyzer(llmClient, profileOpts...),
		aggregate.NewSummarizer(llmClient, aggregate.WithRetryDelay(cfg.SummarizeRetryDelay())),
		pipeline.WithExcludes(excludes),
		pipeline.WithBounds(configBounds(cfg)),
	)
	return env, nil
}

// initFinder builds the source finder from whichever search providers are
// configured: Google Custom Search first, Jina search as fallback. Every
// provider but the last sits behind a breaker. It returns a nil finder when
// neither is available.
func initFinder(ctx context.Context, llmClient llm.Client, jinaClient jina.Client) (pipeline.SourceFinder, error) {
	var searchers discover.FallbackSearcher
	if cfg.HasGoogle() {
		g, err := google.NewClient(ctx, cfg.Google.Key, cfg.Google.CSEID)
		if err != nil {
			return nil, eris.Wrap(err, "init google search")
		}
		searchers = append(searchers, discover.NewGoogleSearcher(g))
	}
	if jinaClient != nil {
		searchers = append(searchers, discover.NewJinaSearcher(jinaClient))
	}
	if len(searchers) == 0 {
		zap.L().Debug("no search provider configured, source discovery disabled")
		return nil, nil
	}

	for i, s := range searchers[:len(searchers)-1] {
		searchers[i] = discover.NewGuardedSearcher(s, resilience.BreakerConfig{})
	}
	var searcher discover.Searcher = searchers
	if len(searchers) == 1 {
		searcher = searchers[0]
	}
	return discover.NewFinder(searcher, llmClient, discover.WithNumResults(cfg.Google.NumResults)), nil
}

// configBounds returns the crawl bounds cfg defines for quick and deep mode.
func configBounds(c *config.Config) (quick, deep pipeline.Bounds) {
	return pipeline.Bounds{Depth: c.Crawl.QuickDepth, MaxLinks: c.Crawl.QuickMaxLinks},
		pipeline.Bounds{Depth: c.Crawl.DeepDepth, MaxLinks: c.Crawl.DeepMaxLinks}
}

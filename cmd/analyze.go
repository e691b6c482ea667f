package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/config"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/pipeline"
	"github.com/sells-group/company-intel/internal/report"
)

var (
	analyzeWebsite  string
	analyzeLinkedIn string
	analyzeDeep     bool
	analyzeExport   bool
	analyzeFormat   string
	analyzeOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [company name]",
	Short: "Analyze a company's website and LinkedIn page",
	Long: "Analyzes the sources given by --website and --linkedin, or finds them by company name first. " +
		"A quick analysis crawls one page; --deep follows links further.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		company := strings.TrimSpace(strings.Join(args, " "))

		src := model.Sources{Company: company, Website: analyzeWebsite, LinkedIn: analyzeLinkedIn}
		mode := config.ModeAnalyze
		if !src.Found() {
			if company == "" {
				return eris.New("analyze: a company name, --website, or --linkedin is required")
			}
			mode = config.ModeFind
		}

		env, err := initPipeline(ctx, mode)
		if err != nil {
			return err
		}
		defer env.Close()

		if !src.Found() {
			src, err = env.Pipeline.FindSources(ctx, company)
			if err != nil {
				return err
			}
			zap.L().Info("sources found",
				zap.String("website", src.Website),
				zap.String("linkedin", src.LinkedIn),
			)
		}

		analysisMode := pipeline.ModeQuick
		if analyzeDeep {
			analysisMode = pipeline.ModeDeep
		}
		res, err := env.Pipeline.Analyze(ctx, src, analysisMode)
		if err != nil {
			return err
		}

		if err := writeAnalysis(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if analyzeExport {
			return exportResult(cmd.OutOrStdout(), res, cfg.Export.Dir, analyzeFormat)
		}
		return nil
	},
}

// writeAnalysis prints res as a formatted summary, or saves it as JSON
// when --output is set.
func writeAnalysis(out io.Writer, res *pipeline.Result) error {
	if analyzeOutput != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return eris.Wrap(err, "analyze: encode result")
		}
		if err := os.WriteFile(analyzeOutput, data, 0o644); err != nil {
			return eris.Wrapf(err, "analyze: write %s", analyzeOutput)
		}
	}
	if msg := report.FormatSources(res.Sources); msg != "" {
		fmt.Fprintln(out, msg)
		fmt.Fprintln(out)
	}
	_, err := fmt.Fprintln(out, report.FormatSummary(res.Summary))
	return err
}

// exportResult writes the downloads of res into dir. A deep result is
// exported as the deep artifacts.
func exportResult(out io.Writer, res *pipeline.Result, dir, format string) error {
	if format == "" {
		format = cfg.Export.Format
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	quick, deep := res, (*pipeline.Result)(nil)
	if res.Mode == pipeline.ModeDeep {
		quick, deep = nil, res
	}
	downloads, err := report.Downloads(quick, deep, f)
	if err != nil {
		return err
	}
	paths, err := report.Export(dir, res.Sources.Company, downloads)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(out, "wrote", p)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeWebsite, "website", "", "company website URL")
	analyzeCmd.Flags().StringVar(&analyzeLinkedIn, "linkedin", "", "LinkedIn company page URL")
	analyzeCmd.Flags().BoolVar(&analyzeDeep, "deep", false, "run the deep crawl instead of the quick one")
	analyzeCmd.Flags().BoolVar(&analyzeExport, "export", false, "write downloads to the export directory")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "export format: json, yaml, or markdown (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "also save the full result as JSON to this file")
	rootCmd.AddCommand(analyzeCmd)
}

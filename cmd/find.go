package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/company-intel/internal/config"
	"github.com/sells-group/company-intel/internal/report"
)

var findJSON bool

var findCmd = &cobra.Command{
	Use:   "find <company name>",
	Short: "Find a company's website and LinkedIn page",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, config.ModeFind)
		if err != nil {
			return err
		}
		defer env.Close()

		src, err := env.Pipeline.FindSources(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if findJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(src)
		}
		_, err = fmt.Fprintln(out, report.FormatSources(src))
		return err
	},
}

func init() {
	findCmd.Flags().BoolVar(&findJSON, "json", false, "print sources as JSON")
	rootCmd.AddCommand(findCmd)
}

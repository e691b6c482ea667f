package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-intel/internal/pipeline"
)

var (
	exportFormat string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export <result.json>...",
	Short: "Export saved analysis results as downloads",
	Long:  "Reads results saved with analyze --output and writes their downloads in the chosen format.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportDir
		if dir == "" {
			dir = cfg.Export.Dir
		}
		for _, path := range args {
			res, err := readResult(path)
			if err != nil {
				return err
			}
			if err := exportResult(cmd.OutOrStdout(), res, dir, exportFormat); err != nil {
				return eris.Wrapf(err, "export %s", path)
			}
		}
		return nil
	},
}

func readResult(path string) (*pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read %s", path)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, eris.Wrapf(err, "export: parse %s", path)
	}
	if !res.Sources.Found() && res.Summary == nil {
		return nil, eris.Errorf("export: %s is not an analysis result", path)
	}
	return &res, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "export format: json, yaml, or markdown (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}

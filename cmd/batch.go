package cmd

import (
	"fmt"

	"github.com/RyanBlaney/sonido-triad/coupling"
	"github.com/RyanBlaney/sonido-triad/logging"
	"github.com/RyanBlaney/sonido-triad/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// batchCmd runs the full analysis over many recordings.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze every recording matching a glob and write a summary.",
	Long: `Run the bispectral significance test and the lock estimator on every file
matching --glob. Files that fail are logged and skipped. Every summary row
carries the run ID of the batch.

Examples:
  triad batch --glob 'runs/*.csv' --out summary.csv
  triad batch --glob 'runs/*.json' --out summary.parquet --surrogates 200`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, _ []string) error {
	pattern, _ := cmd.Flags().GetString("glob")
	if pattern == "" {
		return fmt.Errorf("batch needs --glob")
	}
	cfg, err := loadAnalysisConfig(viper.GetViper())
	if err != nil {
		return err
	}

	analyzer, err := coupling.NewAnalyzer(cfg)
	if err != nil {
		return err
	}
	batch, err := analyzer.AnalyzeGlob(rootCtx, pattern)
	if err != nil {
		return err
	}

	if err := report.PrintTable(cmd.OutOrStdout(), batch.Results, viper.GetFloat64("alpha"), viper.GetInt("precision")); err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = report.FormatFromPath(out)
		}
		if err := report.WriteFile(out, format, report.NewRows(batch.Results)); err != nil {
			return err
		}
		logging.Info("Wrote summary", logging.Fields{
			"file":   out,
			"format": format,
			"rows":   len(batch.Results),
			"run_id": batch.RunID,
		})
	}

	if len(batch.Failures) > 0 {
		cmd.PrintErrf("%d of %d files failed\n", len(batch.Failures), len(batch.Failures)+len(batch.Results))
		if len(batch.Results) == 0 {
			return fmt.Errorf("no file of %q could be analyzed", pattern)
		}
	}
	return nil
}

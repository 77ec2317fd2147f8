// Package cmd defines the command-line interface for triad.
package cmd

import (
	"github.com/RyanBlaney/sonido-triad/coupling/config"
	"github.com/RyanBlaney/sonido-triad/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(bispecCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(versionCmd)

	// Analysis settings are shared by every command and resolved through Viper
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("path", "", "Recording to analyze (.csv or .json)")
	flags.StringSlice("channels", config.DefaultChannels, "Three channel names or zero-based indices")
	flags.Float64("fs", 0, "Sample rate in Hz (0 infers it from the time column)")
	flags.Int("seglen", config.DefaultSegLen, "Segment length in samples")
	flags.Int("step", 0, "Segment step in samples (0 = seglen/2)")
	flags.Bool("detrend", true, "Remove the series mean before segmenting")
	flags.Int("surrogates", config.DefaultSurrogates, "Number of phase-randomized surrogate trials")
	flags.Int64("seed", config.DefaultSeed, "Surrogate seed (negative draws fresh entropy)")
	flags.Int("workers", 0, "Concurrent surrogate trials (0 = GOMAXPROCS)")
	flags.Float64("bandwidth", config.DefaultBandwidth, "Band-pass width around each mode frequency in Hz")
	flags.Float64("window-s", config.DefaultWindowSeconds, "Sliding lock window in seconds")
	flags.Float64("step-s", config.DefaultStepSeconds, "Sliding lock step in seconds")
	flags.Int("filter-order", config.DefaultFilterOrder, "Butterworth band-pass order")
	flags.Float64("lock-threshold", config.DefaultAnalysisConfig().LockThreshold, "Lock level counted towards coherence time")
	flags.Int("dominant-peaks", config.DefaultDominantPeaks, "Dominant frequencies reported per channel")
	flags.Bool("pairwise", false, "Add pairwise PLV and phase-amplitude coupling metrics (bands from config)")
	flags.Int("batch-workers", config.DefaultBatchWorkers, "Files analyzed concurrently by batch")
	flags.Float64("alpha", 0.05, "Significance level of the summary labels")
	flags.Int("precision", 3, "Decimal precision of table columns")
	if err := viper.BindPFlags(flags); err != nil {
		logging.Fatal(err, "Error binding root flags")
	}

	bispecCmd.Flags().String("matrix-out", "", "Write the cross-bicoherence matrix to this CSV file")

	lockCmd.Flags().String("series-out", "", "Write the sliding lock sequence to this CSV file")

	batchCmd.Flags().String("glob", "", "Glob pattern of recordings to analyze")
	batchCmd.Flags().String("out", "", "Summary output file")
	batchCmd.Flags().String("format", "", "Summary format: csv, json or parquet (default from --out extension)")

	synthCmd.Flags().String("out", "synthetic_triad.csv", "Output CSV file")
	synthCmd.Flags().Float64("synth-fs", 1000, "Sample rate in Hz")
	synthCmd.Flags().Float64("duration", 4.096, "Duration in seconds")
	synthCmd.Flags().Float64("f1", 42, "Mode 1 frequency in Hz")
	synthCmd.Flags().Float64("f2", 7, "Mode 2 frequency in Hz")
	synthCmd.Flags().Float64("noise", 0.3, "White noise standard deviation")
	synthCmd.Flags().Uint64("synth-seed", 7, "Generator seed")
	synthCmd.Flags().Float64("drift", 0, "Per-sample random-walk phase drift shared by modes 1 and 3")
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/RyanBlaney/sonido-triad/coupling/config"
	"github.com/RyanBlaney/sonido-triad/logging"
	"github.com/RyanBlaney/sonido-triad/timeseries"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "triad",
	Short: "Detect quadratic phase coupling between three oscillatory modes.",
	Long: `Triad estimates cross-bicoherence between three channels, tests its peak
against phase-randomized surrogates and tracks the triad phase lock over time.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE:  setupLogging,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig loads .env, then the config file, then binds TRIAD_* variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Could not load .env file", logging.Fields{"error": err.Error()})
	}

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".triad")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("TRIAD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// setupLogging applies the log level and color flags before any command runs
func setupLogging(_ *cobra.Command, _ []string) error {
	if err := readConfigFile(viper.GetViper()); err != nil {
		return err
	}

	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	if viper.GetBool("no-color") {
		color.NoColor = true
		logging.DisableColors()
	}
	return nil
}

// readConfigFile reads the config file if one exists
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// loadAnalysisConfig resolves the analysis settings from defaults, config
// file, environment and flags
func loadAnalysisConfig(v *viper.Viper) (*config.AnalysisConfig, error) {
	cfg := config.DefaultAnalysisConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if v.IsSet("channels") {
		// a list from a config file or one comma-separated string from the environment
		cfg.Channels = timeseries.ParseChannels(strings.Join(v.GetStringSlice("channels"), ","))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// requirePath returns the --path setting or an error naming the command
func requirePath(cmd *cobra.Command) (string, error) {
	path := viper.GetString("path")
	if path == "" {
		return "", fmt.Errorf("%s needs --path", cmd.Name())
	}
	return path, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

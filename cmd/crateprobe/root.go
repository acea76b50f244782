package main

import (
	"crateprobe/internal/config"
	"crateprobe/internal/logging"
	"crateprobe/internal/version"

	"github.com/spf13/cobra"
)

var (
	// rootFlag is the CLI --root flag value
	rootFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
	// logFormatFlag overrides the configured log format
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "crateprobe",
	Short: "crateprobe - standard-library API stability analyzer",
	Long: `crateprobe builds a versioned symbol index of the Rust standard library
and analyzes crates against it: which stabilization version each referenced
symbol first appeared in, and how much of the code runs in unsafe context.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("crateprobe version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Workspace root containing the .crateprobe directory")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default from config)")
}

// setup loads the workspace configuration and builds the logger, applying
// CLI overrides. Precedence: CLI flag > config.json > defaults.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(format),
		Level:  logging.ParseLevel(level),
	})
	return cfg, logger, nil
}

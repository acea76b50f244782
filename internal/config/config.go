// Package config loads and persists crateprobe configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigDir is the per-workspace directory holding config, snapshot and results.
const ConfigDir = ".crateprobe"

// Config represents the complete crateprobe configuration (v1 schema)
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	Root    string `json:"root" mapstructure:"root"`

	Stdlib    StdlibConfig    `json:"stdlib" mapstructure:"stdlib"`
	Toolchain ToolchainConfig `json:"toolchain" mapstructure:"toolchain"`
	Database  DatabaseConfig  `json:"database" mapstructure:"database"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// StdlibConfig describes where the expanded standard-library sources live and
// where the built stability index snapshot is cached.
type StdlibConfig struct {
	// Crates lists the top-level library crates scanned into the index,
	// in scan order.
	Crates []string `json:"crates" mapstructure:"crates"`
	// SourceDir contains one expanded-<crate>.rs file per crate.
	SourceDir string `json:"sourceDir" mapstructure:"sourceDir"`
	// SnapshotPath is the serialized index location, relative to Root.
	SnapshotPath string `json:"snapshotPath" mapstructure:"snapshotPath"`
}

// ToolchainConfig contains settings for the external cargo invocations.
type ToolchainConfig struct {
	CargoPath     string `json:"cargoPath" mapstructure:"cargoPath"`
	AllFeatures   bool   `json:"allFeatures" mapstructure:"allFeatures"`
	ClippyEnabled bool   `json:"clippyEnabled" mapstructure:"clippyEnabled"`
	TimeoutMs     int    `json:"timeoutMs" mapstructure:"timeoutMs"`
}

// DatabaseConfig contains results-store configuration.
type DatabaseConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Root:    ".",
		Stdlib: StdlibConfig{
			Crates:       []string{"alloc", "core", "std"},
			SourceDir:    "stdlib",
			SnapshotPath: filepath.Join(ConfigDir, "stdlib-index.json.zst"),
		},
		Toolchain: ToolchainConfig{
			CargoPath:     "cargo",
			AllFeatures:   false,
			ClippyEnabled: true,
			TimeoutMs:     600000,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(ConfigDir, "results.db"),
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.crateprobe/config.json
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("version", 1)
	v.SetDefault("root", ".")

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDir))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := DefaultConfig()
			cfg.Root = root
			return cfg, nil
		}
		return nil, err
	}

	// Unmarshal into config struct
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Root == "." || cfg.Root == "" {
		cfg.Root = root
	}

	return cfg, nil
}

// Save writes the configuration to <root>/.crateprobe/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if len(c.Stdlib.Crates) == 0 {
		return &ConfigError{Field: "stdlib.crates", Message: "at least one library crate is required"}
	}
	if c.Toolchain.CargoPath == "" {
		return &ConfigError{Field: "toolchain.cargoPath", Message: "cargo path must not be empty"}
	}
	return nil
}

// SnapshotFile returns the absolute snapshot path.
func (c *Config) SnapshotFile() string {
	return filepath.Join(c.Root, c.Stdlib.SnapshotPath)
}

// DatabaseFile returns the absolute results database path.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.Root, c.Database.Path)
}

// StdlibSource returns the expected expanded source path for a crate.
func (c *Config) StdlibSource(crate string) string {
	return filepath.Join(c.Root, c.Stdlib.SourceDir, "expanded-"+crate+".rs")
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

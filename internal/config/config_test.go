package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	want := []string{"alloc", "core", "std"}
	if len(cfg.Stdlib.Crates) != len(want) {
		t.Fatalf("Crates = %v, want %v", cfg.Stdlib.Crates, want)
	}
	for i, c := range want {
		if cfg.Stdlib.Crates[i] != c {
			t.Errorf("Crates[%d] = %q, want %q", i, cfg.Stdlib.Crates[i], c)
		}
	}
	if cfg.Toolchain.CargoPath != "cargo" {
		t.Errorf("CargoPath = %q, want cargo", cfg.Toolchain.CargoPath)
	}
	if !cfg.Toolchain.ClippyEnabled {
		t.Error("ClippyEnabled should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigMissingReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Root != dir {
		t.Errorf("Root = %q, want %q", cfg.Root, dir)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Stdlib.SourceDir = "expanded"
	cfg.Toolchain.AllFeatures = true
	cfg.Logging.Level = "debug"

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ConfigDir, "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Stdlib.SourceDir != "expanded" {
		t.Errorf("SourceDir = %q, want expanded", loaded.Stdlib.SourceDir)
	}
	if !loaded.Toolchain.AllFeatures {
		t.Error("AllFeatures not preserved")
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", loaded.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported version")
	}

	cfg = DefaultConfig()
	cfg.Stdlib.Crates = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty crate list")
	}

	cfg = DefaultConfig()
	cfg.Toolchain.CargoPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty cargo path")
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = "/work/repo"

	if got := cfg.StdlibSource("core"); got != filepath.Join("/work/repo", "stdlib", "expanded-core.rs") {
		t.Errorf("StdlibSource = %q", got)
	}
	if got := cfg.SnapshotFile(); got != filepath.Join("/work/repo", ConfigDir, "stdlib-index.json.zst") {
		t.Errorf("SnapshotFile = %q", got)
	}
	if got := cfg.DatabaseFile(); got != filepath.Join("/work/repo", ConfigDir, "results.db") {
		t.Errorf("DatabaseFile = %q", got)
	}
}

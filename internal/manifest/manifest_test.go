package manifest

import (
	"os"
	"path/filepath"
	"testing"

	proberr "crateprobe/internal/errors"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "serde"
version = "1.0.210"
edition = "2018"
rust-version = "1.31.0"

[dependencies]
serde_derive = "1.0"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Package.Name != "serde" {
		t.Errorf("Name = %q, want serde", m.Package.Name)
	}
	if m.Package.Version != "1.0.210" {
		t.Errorf("Version = %q, want 1.0.210", m.Package.Version)
	}
	if got := m.Package.EditionOrdinal(); got != 1 {
		t.Errorf("EditionOrdinal = %d, want 1", got)
	}
	msrv := m.Package.ReportedMSRV()
	if msrv == nil || *msrv != 31 {
		t.Errorf("ReportedMSRV = %v, want 31", msrv)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "Cargo.toml"))
		if !proberr.HasCode(err, proberr.ManifestInvalid) {
			t.Errorf("error = %v, want code %s", err, proberr.ManifestInvalid)
		}
	})
	t.Run("bad toml", func(t *testing.T) {
		_, err := Load(writeManifest(t, "[package\nname ="))
		if !proberr.HasCode(err, proberr.ManifestInvalid) {
			t.Errorf("error = %v, want code %s", err, proberr.ManifestInvalid)
		}
	})
}

func TestEditionOrdinal(t *testing.T) {
	tests := []struct {
		edition string
		want    int
	}{
		{"", 0},
		{"2015", 0},
		{"2018", 1},
		{"2021", 2},
		{"2024", 3},
		{"2099", -1},
	}
	for _, tt := range tests {
		p := Package{Edition: tt.edition}
		if got := p.EditionOrdinal(); got != tt.want {
			t.Errorf("EditionOrdinal(%q) = %d, want %d", tt.edition, got, tt.want)
		}
	}
}

func TestReportedMSRVAbsent(t *testing.T) {
	if got := (Package{}).ReportedMSRV(); got != nil {
		t.Errorf("ReportedMSRV = %v, want nil", got)
	}
	if got := (Package{RustVersion: "nonsense"}).ReportedMSRV(); got != nil {
		t.Errorf("ReportedMSRV = %v, want nil", got)
	}
}

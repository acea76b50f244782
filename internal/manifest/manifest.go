// Package manifest reads the declared metadata of a package under analysis
// from its Cargo.toml.
package manifest

import (
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	proberr "crateprobe/internal/errors"
)

// Manifest is the subset of Cargo.toml the analyzer consumes.
type Manifest struct {
	Package Package `toml:"package"`
}

// Package holds the declared package metadata.
type Package struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Edition     string `toml:"edition"`
	RustVersion string `toml:"rust-version"`
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, proberr.Newf(proberr.ManifestInvalid, err, "reading manifest %s", path)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, proberr.Newf(proberr.ManifestInvalid, err, "decoding manifest %s", path)
	}
	return &m, nil
}

// EditionOrdinal maps the declared edition year to a small ordinal; an
// absent edition is the oldest one.
func (p Package) EditionOrdinal() int {
	switch p.Edition {
	case "", "2015":
		return 0
	case "2018":
		return 1
	case "2021":
		return 2
	case "2024":
		return 3
	default:
		return -1
	}
}

// ReportedMSRV returns the minor component of the declared minimum
// supported language version, or nil when none is declared or it does not
// parse.
func (p Package) ReportedMSRV() *int {
	if p.RustVersion == "" {
		return nil
	}
	parts := strings.Split(p.RustVersion, ".")
	if len(parts) < 2 {
		return nil
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}
	return &minor
}

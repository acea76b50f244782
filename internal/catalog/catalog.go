// Package catalog reads the crate list driving a batch analysis run.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one crate to analyze: where its extracted sources live plus the
// registry metadata carried through to the results.
type Entry struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	PublishedAt string `yaml:"publishedAt,omitempty"`
	Path        string `yaml:"path"`
}

// Catalog is the full run manifest.
type Catalog struct {
	Crates []Entry `yaml:"crates"`
}

// Load reads and decodes a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", path, err)
	}

	for i, entry := range c.Crates {
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog %s: entry %d has no name", path, i)
		}
		if entry.Path == "" {
			return nil, fmt.Errorf("catalog %s: crate %q has no path", path, entry.Name)
		}
	}
	return &c, nil
}

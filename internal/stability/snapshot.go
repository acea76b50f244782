package stability

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	proberr "crateprobe/internal/errors"
)

// snapshotDoc is the on-disk shape of a frozen index: the symbol tree plus
// the alias directives, JSON-encoded and zstd-compressed.
type snapshotDoc struct {
	Root    *Symbol `json:"root"`
	Aliases []Alias `json:"aliases"`
}

// SaveSnapshot writes the index to path, creating parent directories as
// needed. The write goes through a temp file and rename so that a crash
// never leaves a truncated snapshot behind.
func SaveSnapshot(ix *Index, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	doc := snapshotDoc{Root: ix.root, Aliases: ix.aliases}
	if err := json.NewEncoder(enc).Encode(doc); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadSnapshot reads a previously saved index. A missing file is reported
// as the underlying fs error so callers can fall back to a rebuild; a file
// that exists but does not decode is a corrupt snapshot and fatal.
func LoadSnapshot(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, proberr.Newf(proberr.SnapshotCorrupt, err, "opening snapshot %s", path)
	}
	defer dec.Close()

	var doc snapshotDoc
	if err := json.NewDecoder(dec).Decode(&doc); err != nil {
		return nil, proberr.Newf(proberr.SnapshotCorrupt, err, "decoding snapshot %s", path)
	}
	if doc.Root == nil {
		return nil, proberr.New(proberr.SnapshotCorrupt, "snapshot has no symbol tree", nil)
	}

	restoreNames(doc.Root, "")
	return &Index{root: doc.Root, aliases: doc.Aliases}, nil
}

// restoreNames rebuilds the Name field, which is implied by the map keys and
// not serialized.
func restoreNames(sym *Symbol, name string) {
	sym.Name = name
	for childName, child := range sym.Children {
		restoreNames(child, childName)
	}
}

package stability

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"crateprobe/internal/config"
	proberr "crateprobe/internal/errors"
	"crateprobe/internal/logging"
)

var (
	globalOnce  sync.Once
	globalIndex *Index
	globalErr   error
)

// Global returns the process-wide stability index, loading the snapshot or
// building it from expanded sources exactly once. Every analysis in a run
// resolves against the same frozen index.
func Global(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Index, error) {
	globalOnce.Do(func() {
		globalIndex, globalErr = LoadOrBuild(ctx, cfg, logger)
	})
	return globalIndex, globalErr
}

// LoadOrBuild loads the snapshot if present, otherwise builds the index from
// the expanded standard-library sources and saves a snapshot for next time.
// A snapshot that exists but fails to decode is fatal; silently rebuilding
// would hide whatever corrupted it.
func LoadOrBuild(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Index, error) {
	path := cfg.SnapshotFile()

	ix, err := LoadSnapshot(path)
	if err == nil {
		logger.Debug("loaded stability index snapshot", map[string]interface{}{
			"path": path,
		})
		return ix, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	ix, err = BuildIndex(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := SaveSnapshot(ix, path); err != nil {
		logger.Warn("failed to save stability index snapshot", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
	return ix, nil
}

// BuildIndex scans every configured standard-library crate into a fresh
// index.
func BuildIndex(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Index, error) {
	builder := NewBuilder()

	for _, crate := range cfg.Stdlib.Crates {
		sourcePath := cfg.StdlibSource(crate)
		source, err := os.ReadFile(sourcePath)
		if err != nil {
			return nil, proberr.Newf(proberr.StdSourceMissing, err,
				"reading expanded source for crate %q at %s", crate, sourcePath)
		}

		logger.Debug("scanning standard-library crate", map[string]interface{}{
			"crate": crate,
			"bytes": len(source),
		})
		if err := builder.AddCrate(ctx, crate, source); err != nil {
			return nil, err
		}
	}

	ix := builder.Freeze()
	logger.Info("built stability index", map[string]interface{}{
		"crates":  ix.Crates(),
		"aliases": len(ix.Aliases()),
	})
	return ix, nil
}

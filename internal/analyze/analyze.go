// Package analyze orchestrates one analysis run: macro expansion, the usage
// walk against the stability index, manifest metadata and the lint count,
// combined into result records.
package analyze

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"crateprobe/internal/config"
	"crateprobe/internal/logging"
	"crateprobe/internal/manifest"
	"crateprobe/internal/stability"
	"crateprobe/internal/stats"
	"crateprobe/internal/toolchain"
	"crateprobe/internal/usage"
)

// CrateInfo identifies one crate to analyze. Name and Version may be empty,
// in which case the manifest's declarations are used.
type CrateInfo struct {
	Name        string
	Version     string
	PublishedAt string
	Path        string
}

// Analyzer runs per-crate analyses against a shared frozen index. Each
// Analyzer carries one run ID stamped onto every record it produces.
type Analyzer struct {
	cfg    *config.Config
	index  *stability.Index
	cargo  *toolchain.Cargo
	logger *logging.Logger
	runID  string
}

// New creates an analyzer for one run.
func New(cfg *config.Config, index *stability.Index, cargo *toolchain.Cargo, logger *logging.Logger) *Analyzer {
	runID := uuid.NewString()
	return &Analyzer{
		cfg:    cfg,
		index:  index,
		cargo:  cargo,
		logger: logger.With(map[string]interface{}{"run": runID}),
		runID:  runID,
	}
}

// RunID returns the identifier stamped onto this run's records.
func (a *Analyzer) RunID() string {
	return a.runID
}

// AnalyzeCrate produces the result record for one crate directory.
func (a *Analyzer) AnalyzeCrate(ctx context.Context, info CrateInfo) (*stats.Record, error) {
	if a.cfg.Toolchain.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.cfg.Toolchain.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	m, err := manifest.Load(filepath.Join(info.Path, "Cargo.toml"))
	if err != nil {
		return nil, err
	}
	name := info.Name
	if name == "" {
		name = m.Package.Name
	}
	version := info.Version
	if version == "" {
		version = m.Package.Version
	}

	expanded, err := a.cargo.Expand(ctx, info.Path)
	if err != nil {
		return nil, err
	}
	digest := SourceDigest(expanded)

	counters, err := usage.AnalyzeSource(ctx, a.index, expanded)
	if err != nil {
		return nil, err
	}

	warnings := 0
	if a.cfg.Toolchain.ClippyEnabled {
		warnings, err = a.cargo.ClippyWarnings(ctx, info.Path)
		if err != nil {
			// The lint count is auxiliary; a failed lint run does not
			// discard the analysis.
			a.logger.Warn("clippy failed, recording zero warnings", map[string]interface{}{
				"crate": name,
				"error": err.Error(),
			})
			warnings = 0
		}
	}

	record := &stats.Record{
		RunID:          a.runID,
		Name:           name,
		Version:        version,
		PublishedAt:    info.PublishedAt,
		Edition:        m.Package.EditionOrdinal(),
		ReportedMSRV:   m.Package.ReportedMSRV(),
		UnsafeExprs:    counters.UnsafeExprs,
		TotalExprs:     counters.TotalExprs,
		ClippyWarnings: warnings,
		SourceDigest:   digest,
		AnalyzedAt:     time.Now().UTC(),
	}
	record.Finalize(counters.VersionCounts)

	a.logger.Info("analyzed crate", map[string]interface{}{
		"crate":            name,
		"version":          version,
		"totalExprs":       record.TotalExprs,
		"unsafeExprs":      record.UnsafeExprs,
		"versionSignature": stats.FormatFloat(record.VersionSignature),
	})
	return record, nil
}

// SourceDigest returns the hex BLAKE2b-256 digest of expanded source,
// identifying exactly what was analyzed.
func SourceDigest(source []byte) string {
	sum := blake2b.Sum256(source)
	return hex.EncodeToString(sum[:])
}

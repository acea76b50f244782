//go:build !cgo

package usage

import (
	"context"

	"crateprobe/internal/stability"
	"crateprobe/internal/syntax"
)

// AnalyzeSource requires the tree-sitter parser, which is unavailable
// without cgo.
func AnalyzeSource(ctx context.Context, index *stability.Index, source []byte) (*Counters, error) {
	return nil, syntax.ErrNoCGO
}

//go:build !cgo

package stability

import (
	"context"

	"crateprobe/internal/syntax"
)

// AddCrate requires the tree-sitter parser, which is unavailable without cgo.
func (b *Builder) AddCrate(ctx context.Context, name string, source []byte) error {
	return syntax.ErrNoCGO
}

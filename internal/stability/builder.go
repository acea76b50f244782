package stability

import (
	"crateprobe/internal/syntax"
)

// preludeTarget is the module whose contents are implicitly visible
// everywhere; a synthetic glob alias to it is injected at the root when the
// builder freezes.
var preludeTarget = []string{"std", "prelude", "v1"}

// Builder incrementally constructs the versioned symbol tree and the alias
// directive list. It is the single mutable owner during construction; Freeze
// transfers the result into an immutable Index.
type Builder struct {
	root    *Symbol
	aliases []Alias

	parser    *syntax.Parser
	pathStack []string
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		root:   newSymbol(""),
		parser: syntax.NewParser(),
	}
}

// AddSymbol records a stabilization version at the given tree path,
// creating intermediate nodes as needed. Reserved "self" segments are
// skipped.
func (b *Builder) AddSymbol(path []string, version string, public bool) {
	current := b.root
	for _, segment := range path {
		if segment == "self" {
			continue
		}
		current = current.child(segment)
	}
	current.Version = version
	current.Public = public
}

// AddAlias appends one named-import directive for the given scope.
func (b *Builder) AddAlias(scope, target []string, name string) {
	b.aliases = append(b.aliases, Alias{
		Scope:  cloneSegments(scope),
		Target: cloneSegments(target),
		Name:   name,
	})
}

// AddGlobAlias appends one glob-import directive for the given scope.
func (b *Builder) AddGlobAlias(scope, target []string) {
	b.aliases = append(b.aliases, Alias{
		Scope:  cloneSegments(scope),
		Target: cloneSegments(target),
		Glob:   true,
	})
}

// Freeze injects the synthetic prelude alias and returns the immutable
// index. The builder must not be used afterwards.
func (b *Builder) Freeze() *Index {
	b.AddGlobAlias(nil, preludeTarget)

	ix := &Index{
		root:    b.root,
		aliases: b.aliases,
	}
	b.root = nil
	b.aliases = nil
	return ix
}

// recordVersion writes a stability entry for name under the current scope if
// the declaration's attributes carry a stable marker.
func (b *Builder) recordVersion(name, version string, public bool) {
	path := make([]string, 0, len(b.pathStack)+1)
	path = append(path, b.pathStack...)
	path = append(path, name)
	b.AddSymbol(path, version, public)
}

func (b *Builder) pushPath(segment string) {
	b.pathStack = append(b.pathStack, segment)
}

func (b *Builder) popPath() {
	b.pathStack = b.pathStack[:len(b.pathStack)-1]
}

func (b *Builder) popPathN(n int) {
	b.pathStack = b.pathStack[:len(b.pathStack)-n]
}

func cloneSegments(segments []string) []string {
	if segments == nil {
		return nil
	}
	out := make([]string, len(segments))
	copy(out, segments)
	return out
}

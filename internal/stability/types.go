// Package stability builds and queries the versioned symbol tree of the Rust
// standard library: for every declaration carrying a stability marker it
// records the version the symbol was stabilized in, and for every import or
// re-export it records an alias directive so that qualified references can be
// resolved back to their defining declaration.
package stability

// DefaultVersion is assumed for symbols that exist only as ancestors of a
// stability-marked declaration (the language's initial stable release).
const DefaultVersion = "1.0.0"

// Symbol is one node of the versioned symbol tree. A symbol's full path is
// the concatenation of its ancestors' names; the root is unnamed and its
// immediate children are the top-level library crates.
type Symbol struct {
	Name     string             `json:"-"`
	Version  string             `json:"version"`
	Public   bool               `json:"public"`
	Children map[string]*Symbol `json:"children,omitempty"`
}

func newSymbol(name string) *Symbol {
	return &Symbol{
		Name:     name,
		Version:  DefaultVersion,
		Public:   true,
		Children: make(map[string]*Symbol),
	}
}

// child returns the named child, creating it if absent.
func (s *Symbol) child(name string) *Symbol {
	if c, ok := s.Children[name]; ok {
		return c
	}
	c := newSymbol(name)
	if s.Children == nil {
		s.Children = make(map[string]*Symbol)
	}
	s.Children[name] = c
	return c
}

// Alias records one import/re-export relationship: inside the module at
// Scope, the Target path is made visible either under a single local Name or,
// when Glob is set, as all of the target's children. Aliases are kept in
// declaration order; the first one that resolves wins.
type Alias struct {
	Scope  []string `json:"scope"`
	Target []string `json:"target"`
	Name   string   `json:"name,omitempty"`
	Glob   bool     `json:"glob,omitempty"`
}

// Index is the frozen (tree, alias-list) pair produced by a Builder. It is
// immutable after construction and safe for concurrent readers.
type Index struct {
	root    *Symbol
	aliases []Alias
}

// Aliases returns the directive list in declaration order.
func (ix *Index) Aliases() []Alias {
	return ix.aliases
}

// Crates returns the names of the indexed top-level crates.
func (ix *Index) Crates() []string {
	names := make([]string, 0, len(ix.root.Children))
	for name := range ix.root.Children {
		names = append(names, name)
	}
	return names
}

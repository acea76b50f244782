package stability

import (
	"slices"
)

// maxAliasDepth bounds alias-following recursion depth.
const maxAliasDepth = 64

// maxResolveSteps bounds the total descent work of one Resolve call. A
// cyclic alias graph branches at every miss, so a depth bound alone caps
// recursion but not time; the shared step budget turns a pathological
// import cycle into a resolution failure in bounded time. Legitimate
// resolutions in real library indexes take a few dozen steps.
const maxResolveSteps = 4096

// Resolve follows the given dotted path from the tree root, applying alias
// directives at every segment that is not a direct child. Returns nil when
// the path cannot be resolved.
func (ix *Index) Resolve(path []string) *Symbol {
	if len(path) == 0 {
		return nil
	}
	r := &resolution{ix: ix, budget: maxResolveSteps}
	sym, _ := r.resolveAt(ix.root, nil, path, 0)
	return sym
}

// Version resolves the path and reports the stabilization version of the
// resulting symbol.
func (ix *Index) Version(path []string) (string, bool) {
	sym := ix.Resolve(path)
	if sym == nil {
		return "", false
	}
	return sym.Version, true
}

// resolution is the state of one Resolve call: the index plus the remaining
// step budget shared across every candidate tried.
type resolution struct {
	ix     *Index
	budget int
}

// resolveAt descends path starting from node, whose canonical absolute path
// is nodePath. Resolution is deterministic: at every miss the alias list is
// scanned in declaration order and the first candidate that leads to a full
// resolution wins.
func (r *resolution) resolveAt(node *Symbol, nodePath, path []string, depth int) (*Symbol, []string) {
	if depth > maxAliasDepth {
		return nil, nil
	}
	r.budget--
	if r.budget < 0 {
		return nil, nil
	}

	// Exactly two shorthand forms on the first segment: "crate" names the
	// crate the enclosing scope belongs to, and "alloc_crate" is the name
	// std re-exports the allocation crate under internally.
	if len(nodePath) > 0 && len(path) > 0 {
		crate := ""
		switch path[0] {
		case "crate":
			crate = nodePath[0]
		case "alloc_crate":
			crate = "alloc"
		}
		if crate != "" {
			rewritten := make([]string, 0, len(path))
			rewritten = append(rewritten, crate)
			rewritten = append(rewritten, path[1:]...)
			return r.resolveAt(r.ix.root, nil, rewritten, depth+1)
		}
	}

	for i := 0; i < len(path); i++ {
		segment := path[i]
		switch segment {
		case "self":
			continue
		case "super":
			// Parent navigation is only meaningful inside the crate
			// being scanned, never across the frozen tree.
			return nil, nil
		}

		if child, ok := node.Children[segment]; ok {
			nodePath = append(nodePath, segment)
			node = child
			continue
		}

		// The segment is not a direct child: some alias in the current
		// scope must account for it.
		return r.resolveAlias(node, nodePath, segment, path[i:], depth)
	}
	return node, nodePath
}

// resolveAlias scans the directive list for an alias declared in the scope
// at nodePath that explains the missed segment. rest is the unresolved path
// suffix, rest[0] being the missed segment itself.
func (r *resolution) resolveAlias(node *Symbol, nodePath []string, segment string, rest []string, depth int) (*Symbol, []string) {
	for _, alias := range r.ix.aliases {
		if !slices.Equal(alias.Scope, nodePath) {
			continue
		}
		if !alias.Glob && alias.Name != segment {
			continue
		}

		// Targets are written relative to the declaring scope but may
		// also name an absolute path from another crate.
		target, targetPath := r.resolveAt(node, nodePath, alias.Target, depth+1)
		if target == nil {
			target, targetPath = r.resolveAt(r.ix.root, nil, alias.Target, depth+1)
		}
		if target == nil {
			continue
		}

		if alias.Glob {
			// A glob only supplies names the target module actually
			// declares.
			if _, ok := target.Children[segment]; !ok {
				continue
			}
			if sym, symPath := r.resolveAt(target, targetPath, rest, depth+1); sym != nil {
				return sym, symPath
			}
			continue
		}

		if sym, symPath := r.resolveAt(target, targetPath, rest[1:], depth+1); sym != nil {
			return sym, symPath
		}
	}
	return nil, nil
}

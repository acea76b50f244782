//go:build cgo

package syntax

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
)

// sinceRe extracts the "since" version from a stable attribute's argument list.
var sinceRe = regexp.MustCompile(`since\s*=\s*"([^"]+)"`)

// Text returns the source text covered by a node.
func Text(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// NamedChildren returns all named children of a node in order.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			children = append(children, child)
		}
	}
	return children
}

// IsPublic reports whether a declaration carries a `pub` visibility modifier.
func IsPublic(n *sitter.Node, source []byte) bool {
	for i := uint32(0); i < n.ChildCount(); i++ {
		child := n.Child(int(i))
		if child != nil && child.Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

// HasUnsafeModifier reports whether a function item is declared `unsafe`.
func HasUnsafeModifier(n *sitter.Node, source []byte) bool {
	for i := uint32(0); i < n.ChildCount(); i++ {
		child := n.Child(int(i))
		if child == nil || child.Type() != "function_modifiers" {
			continue
		}
		for j := uint32(0); j < child.ChildCount(); j++ {
			mod := child.Child(int(j))
			if mod != nil && Text(mod, source) == "unsafe" {
				return true
			}
		}
	}
	return false
}

// StableSince extracts the stabilization version from a
// `#[stable(feature = ..., since = "X.Y.Z")]` attribute item.
func StableSince(attr *sitter.Node, source []byte) (string, bool) {
	if attr.Type() != "attribute_item" {
		return "", false
	}

	inner := attr.NamedChild(0)
	if inner == nil || inner.Type() != "attribute" {
		return "", false
	}

	// The attribute path must be exactly `stable`; `unstable` and
	// `rustc_const_stable` markers do not stabilize the surface item.
	name := inner.NamedChild(0)
	if name == nil || Text(name, source) != "stable" {
		return "", false
	}

	m := sinceRe.FindStringSubmatch(Text(inner, source))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// PathSegments flattens a path-shaped node into its ordered segment list.
// Reserved segments (self, super, crate) are kept literally; generic
// arguments and turbofish qualifiers are stripped. Returns nil for node
// kinds that do not denote a plain path.
func PathSegments(n *sitter.Node, source []byte) []string {
	switch n.Type() {
	case "identifier", "type_identifier", "primitive_type",
		"crate", "self", "super", "metavariable":
		return []string{Text(n, source)}
	case "scoped_identifier", "scoped_type_identifier":
		var segments []string
		if p := n.ChildByFieldName("path"); p != nil {
			segments = PathSegments(p, source)
			if segments == nil {
				return nil
			}
		}
		if name := n.ChildByFieldName("name"); name != nil {
			segments = append(segments, Text(name, source))
		}
		return segments
	case "generic_function":
		if fn := n.ChildByFieldName("function"); fn != nil {
			return PathSegments(fn, source)
		}
		return nil
	case "generic_type", "generic_type_with_turbofish":
		if ty := n.ChildByFieldName("type"); ty != nil {
			return PathSegments(ty, source)
		}
		return nil
	default:
		return nil
	}
}

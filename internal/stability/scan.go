//go:build cgo

package stability

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	proberr "crateprobe/internal/errors"
	"crateprobe/internal/syntax"
)

// AddCrate scans one crate's expanded source into the tree. The crate name
// becomes the top-level path prefix for every declaration found.
func (b *Builder) AddCrate(ctx context.Context, name string, source []byte) error {
	root, err := b.parser.Parse(ctx, source)
	if err != nil {
		return proberr.Newf(proberr.StdParseFailed, err, "parsing expanded source for crate %q", name)
	}

	b.pushPath(name)
	b.scanItems(root, source)
	b.popPath()
	return nil
}

// forEachWithAttrs iterates a declaration container, pairing each item with
// the attribute_item siblings that precede it.
func forEachWithAttrs(container *sitter.Node, source []byte, fn func(item *sitter.Node, attrs []*sitter.Node)) {
	var pending []*sitter.Node
	for _, child := range syntax.NamedChildren(container) {
		switch child.Type() {
		case "attribute_item":
			pending = append(pending, child)
		case "inner_attribute_item":
			// Inner attributes describe the container, not the next item.
		default:
			fn(child, pending)
			pending = nil
		}
	}
}

// stableSince returns the first stabilization version declared by the given
// attribute items.
func stableSince(attrs []*sitter.Node, source []byte) (string, bool) {
	for _, attr := range attrs {
		if since, ok := syntax.StableSince(attr, source); ok {
			return since, true
		}
	}
	return "", false
}

func (b *Builder) scanItems(container *sitter.Node, source []byte) {
	forEachWithAttrs(container, source, func(item *sitter.Node, attrs []*sitter.Node) {
		b.scanItem(item, attrs, source)
	})
}

// scanItem dispatches one declaration. Kinds without a stability surface
// (macros, extern crates, foreign modules) are deliberate no-ops.
func (b *Builder) scanItem(item *sitter.Node, attrs []*sitter.Node, source []byte) {
	switch item.Type() {
	case "const_item", "static_item", "function_item", "function_signature_item",
		"struct_item", "type_item", "union_item":
		b.scanNamedItem(item, attrs, source)
	case "enum_item":
		b.scanEnum(item, attrs, source)
	case "trait_item":
		b.scanTrait(item, attrs, source)
	case "mod_item":
		b.scanModule(item, attrs, source)
	case "impl_item":
		b.scanImpl(item, source)
	case "use_declaration":
		if arg := item.ChildByFieldName("argument"); arg != nil {
			b.scanUseClause(arg, nil, attrs, syntax.IsPublic(item, source), source)
		}
	default:
	}
}

// scanNamedItem covers every leaf declaration kind with a single name.
func (b *Builder) scanNamedItem(item *sitter.Node, attrs []*sitter.Node, source []byte) {
	name := item.ChildByFieldName("name")
	if name == nil {
		return
	}
	since, ok := stableSince(attrs, source)
	if !ok {
		return
	}
	b.recordVersion(syntax.Text(name, source), since, syntax.IsPublic(item, source))
}

func (b *Builder) scanEnum(item *sitter.Node, attrs []*sitter.Node, source []byte) {
	name := item.ChildByFieldName("name")
	if name == nil {
		return
	}
	if since, ok := stableSince(attrs, source); ok {
		b.recordVersion(syntax.Text(name, source), since, syntax.IsPublic(item, source))
	}

	body := item.ChildByFieldName("body")
	if body == nil {
		return
	}

	// Enum variants are always public.
	b.pushPath(syntax.Text(name, source))
	forEachWithAttrs(body, source, func(variant *sitter.Node, variantAttrs []*sitter.Node) {
		if variant.Type() != "enum_variant" {
			return
		}
		vname := variant.ChildByFieldName("name")
		if vname == nil {
			return
		}
		if since, ok := stableSince(variantAttrs, source); ok {
			b.recordVersion(syntax.Text(vname, source), since, true)
		}
	})
	b.popPath()
}

func (b *Builder) scanTrait(item *sitter.Node, attrs []*sitter.Node, source []byte) {
	name := item.ChildByFieldName("name")
	if name == nil {
		return
	}
	if since, ok := stableSince(attrs, source); ok {
		b.recordVersion(syntax.Text(name, source), since, syntax.IsPublic(item, source))
	}

	body := item.ChildByFieldName("body")
	if body == nil {
		return
	}

	// Trait members are always public.
	b.pushPath(syntax.Text(name, source))
	forEachWithAttrs(body, source, func(member *sitter.Node, memberAttrs []*sitter.Node) {
		switch member.Type() {
		case "function_item", "function_signature_item", "const_item", "associated_type":
			mname := member.ChildByFieldName("name")
			if mname == nil {
				return
			}
			if since, ok := stableSince(memberAttrs, source); ok {
				b.recordVersion(syntax.Text(mname, source), since, true)
			}
		default:
		}
	})
	b.popPath()
}

func (b *Builder) scanModule(item *sitter.Node, attrs []*sitter.Node, source []byte) {
	// Module declarations without an inline body reference files that were
	// inlined by macro expansion; nothing to scan.
	body := item.ChildByFieldName("body")
	if body == nil {
		return
	}
	name := item.ChildByFieldName("name")
	if name == nil {
		return
	}

	if since, ok := stableSince(attrs, source); ok {
		b.recordVersion(syntax.Text(name, source), since, syntax.IsPublic(item, source))
	}

	b.pushPath(syntax.Text(name, source))
	b.scanItems(body, source)
	b.popPath()
}

// scanImpl indexes inherent-impl associated items under the implementing
// type's dotted path. Impls of a trait are skipped: their members belong to
// the trait's surface, not the type's (declared limitation).
func (b *Builder) scanImpl(item *sitter.Node, source []byte) {
	if item.ChildByFieldName("trait") != nil {
		return
	}

	ty := item.ChildByFieldName("type")
	if ty == nil {
		return
	}
	segments := syntax.PathSegments(ty, source)
	if segments == nil {
		return
	}

	body := item.ChildByFieldName("body")
	if body == nil {
		return
	}

	for _, segment := range segments {
		b.pushPath(segment)
	}
	forEachWithAttrs(body, source, func(member *sitter.Node, memberAttrs []*sitter.Node) {
		switch member.Type() {
		case "function_item", "function_signature_item", "const_item", "type_item", "associated_type":
			mname := member.ChildByFieldName("name")
			if mname == nil {
				return
			}
			if since, ok := stableSince(memberAttrs, source); ok {
				b.recordVersion(syntax.Text(mname, source), since, syntax.IsPublic(member, source))
			}
		default:
		}
	})
	b.popPathN(len(segments))
}

// scanUseClause walks one use-tree, accumulating the relative path. Each
// terminal name or rename produces a Named alias plus a stability entry of
// its own (stable markers may sit on the use item); a glob produces a glob
// alias; groups fan the accumulated path out across their members.
func (b *Builder) scanUseClause(clause *sitter.Node, rel []string, attrs []*sitter.Node, public bool, source []byte) {
	switch clause.Type() {
	case "identifier", "crate", "super", "self":
		name := syntax.Text(clause, source)
		if name == "self" {
			if len(rel) == 0 {
				return
			}
			b.AddAlias(b.pathStack, rel, rel[len(rel)-1])
		} else {
			b.AddAlias(b.pathStack, append(cloneSegments(rel), name), name)
		}
		if since, ok := stableSince(attrs, source); ok {
			b.recordVersion(name, since, public)
		}
	case "scoped_identifier":
		segments := syntax.PathSegments(clause, source)
		if segments == nil {
			return
		}
		segments = elideSelf(segments)
		if len(segments) == 0 {
			return
		}
		target := append(cloneSegments(rel), segments...)
		b.AddAlias(b.pathStack, target, target[len(target)-1])
		if since, ok := stableSince(attrs, source); ok {
			b.recordVersion(target[len(target)-1], since, public)
		}
	case "use_as_clause":
		path := clause.ChildByFieldName("path")
		local := clause.ChildByFieldName("alias")
		if path == nil || local == nil {
			return
		}
		segments := elideSelf(syntax.PathSegments(path, source))
		target := append(cloneSegments(rel), segments...)
		original := "self"
		if len(segments) > 0 {
			original = segments[len(segments)-1]
		}
		b.AddAlias(b.pathStack, target, syntax.Text(local, source))
		if since, ok := stableSince(attrs, source); ok {
			b.recordVersion(original, since, public)
		}
	case "use_list":
		for _, member := range syntax.NamedChildren(clause) {
			b.scanUseClause(member, cloneSegments(rel), attrs, public, source)
		}
	case "scoped_use_list":
		prefix := rel
		if path := clause.ChildByFieldName("path"); path != nil {
			segments := elideSelf(syntax.PathSegments(path, source))
			prefix = append(cloneSegments(rel), segments...)
		}
		if list := clause.ChildByFieldName("list"); list != nil {
			b.scanUseClause(list, prefix, attrs, public, source)
		}
	case "use_wildcard":
		target := cloneSegments(rel)
		if path := clause.NamedChild(0); path != nil {
			target = append(target, elideSelf(syntax.PathSegments(path, source))...)
		}
		b.AddGlobAlias(b.pathStack, target)
	default:
	}
}

// elideSelf drops reserved "self" segments from a use-path.
func elideSelf(segments []string) []string {
	out := segments[:0:0]
	for _, s := range segments {
		if s == "self" {
			continue
		}
		out = append(out, s)
	}
	return out
}

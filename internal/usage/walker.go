//go:build cgo

package usage

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	proberr "crateprobe/internal/errors"
	"crateprobe/internal/stability"
	"crateprobe/internal/syntax"
)

// AnalyzeSource parses a package's expanded source and walks it against the
// given index. Parse failure is an explicit error so the caller can skip the
// package instead of recording empty statistics.
func AnalyzeSource(ctx context.Context, index *stability.Index, source []byte) (*Counters, error) {
	root, err := syntax.NewParser().Parse(ctx, source)
	if err != nil {
		return nil, proberr.Newf(proberr.CrateParseFailed, err, "parsing expanded package source")
	}

	w := &walker{
		index:    index,
		counters: newCounters(),
		source:   source,
	}
	w.walkItems(root)
	return w.counters, nil
}

// walker carries the state of one traversal. unsafeDepth is incremented on
// entry to unsafe functions and unsafe blocks and must return to its prior
// value on every exit path.
type walker struct {
	index       *stability.Index
	counters    *Counters
	source      []byte
	unsafeDepth int
}

// submitPath resolves one qualified reference. Failed resolutions are
// silent; a bare "self" names no library symbol and is never submitted.
func (w *walker) submitPath(segments []string) {
	if len(segments) == 0 {
		return
	}
	if len(segments) == 1 && segments[0] == "self" {
		return
	}
	if version, ok := w.index.Version(segments); ok {
		w.counters.countVersion(version)
	}
}

func (w *walker) walkItems(container *sitter.Node) {
	for _, child := range syntax.NamedChildren(container) {
		w.walkItem(child)
	}
}

// walkItem dispatches one declaration. Attribute items and macro
// definitions are deliberate no-ops.
func (w *walker) walkItem(item *sitter.Node) {
	switch item.Type() {
	case "function_item", "function_signature_item":
		w.walkFunction(item)
	case "mod_item", "foreign_mod_item":
		if body := item.ChildByFieldName("body"); body != nil {
			w.walkItems(body)
		}
	case "impl_item":
		w.walkType(item.ChildByFieldName("trait"))
		w.walkType(item.ChildByFieldName("type"))
		if body := item.ChildByFieldName("body"); body != nil {
			w.walkItems(body)
		}
	case "trait_item":
		if body := item.ChildByFieldName("body"); body != nil {
			w.walkItems(body)
		}
	case "const_item", "static_item":
		w.walkType(item.ChildByFieldName("type"))
		w.walkExpr(item.ChildByFieldName("value"))
	case "struct_item", "union_item":
		if body := item.ChildByFieldName("body"); body != nil {
			for _, field := range syntax.NamedChildren(body) {
				if field.Type() == "field_declaration" {
					w.walkType(field.ChildByFieldName("type"))
				}
			}
		}
	case "enum_item":
		if body := item.ChildByFieldName("body"); body != nil {
			for _, variant := range syntax.NamedChildren(body) {
				if variant.Type() != "enum_variant" {
					continue
				}
				if vbody := variant.ChildByFieldName("body"); vbody != nil {
					for _, field := range syntax.NamedChildren(vbody) {
						if field.Type() == "field_declaration" {
							w.walkType(field.ChildByFieldName("type"))
						} else {
							w.walkType(field)
						}
					}
				}
			}
		}
	case "type_item", "associated_type":
		w.walkType(item.ChildByFieldName("type"))
	case "use_declaration":
		if arg := item.ChildByFieldName("argument"); arg != nil {
			w.walkUseClause(arg, nil)
		}
	default:
	}
}

// walkFunction walks parameter types, the return type and the body. A
// function declared unsafe makes its whole body a privileged region.
func (w *walker) walkFunction(item *sitter.Node) {
	if params := item.ChildByFieldName("parameters"); params != nil {
		for _, param := range syntax.NamedChildren(params) {
			if param.Type() == "parameter" {
				w.walkType(param.ChildByFieldName("type"))
			}
		}
	}
	w.walkType(item.ChildByFieldName("return_type"))

	body := item.ChildByFieldName("body")
	if body == nil {
		return
	}
	if syntax.HasUnsafeModifier(item, w.source) {
		w.unsafeDepth++
		w.walkBlock(body)
		w.unsafeDepth--
		return
	}
	w.walkBlock(body)
}

// walkBlock walks a {...} body's statements. The block wrapper itself is a
// scope, not an expression, and is never counted.
func (w *walker) walkBlock(block *sitter.Node) {
	if block == nil {
		return
	}
	for _, stmt := range syntax.NamedChildren(block) {
		switch stmt.Type() {
		case "expression_statement":
			w.walkExpr(stmt.NamedChild(0))
		case "let_declaration":
			w.walkType(stmt.ChildByFieldName("type"))
			w.walkExpr(stmt.ChildByFieldName("value"))
			w.walkExpr(stmt.ChildByFieldName("alternative"))
		case "empty_statement":
		case "function_item", "function_signature_item", "mod_item",
			"foreign_mod_item", "impl_item", "trait_item", "const_item",
			"static_item", "struct_item", "union_item", "enum_item",
			"type_item", "use_declaration", "macro_definition",
			"attribute_item", "inner_attribute_item":
			w.walkItem(stmt)
		default:
			// Trailing expression of the block.
			w.walkExpr(stmt)
		}
	}
}

// walkExpr visits one expression node. Every recognized expression counts
// exactly once; block wrappers recurse without counting; unrecognized
// constructs are explicit no-ops.
func (w *walker) walkExpr(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "block", "async_block", "const_block", "try_block":
		w.walkBlock(blockOf(n))

	case "unsafe_block":
		w.unsafeDepth++
		w.walkBlock(blockOf(n))
		w.unsafeDepth--

	case "identifier", "scoped_identifier", "generic_function", "self", "metavariable":
		w.counters.countExpr(w.unsafeDepth)
		w.submitPath(syntax.PathSegments(n, w.source))

	case "call_expression":
		w.counters.countExpr(w.unsafeDepth)
		if fn := n.ChildByFieldName("function"); fn != nil {
			if fn.Type() == "field_expression" {
				// Method call: the method name resolves through the
				// receiver's type, which the walker does not track.
				w.walkExpr(fn.ChildByFieldName("value"))
			} else {
				w.walkExpr(fn)
			}
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for _, arg := range syntax.NamedChildren(args) {
				w.walkExpr(arg)
			}
		}

	case "field_expression":
		// Field accesses are counted but never resolved (declared
		// limitation), and their receivers stay unvisited.
		w.counters.countExpr(w.unsafeDepth)

	case "struct_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkType(n.ChildByFieldName("name"))
		if body := n.ChildByFieldName("body"); body != nil {
			for _, init := range syntax.NamedChildren(body) {
				switch init.Type() {
				case "field_initializer":
					w.walkExpr(init.ChildByFieldName("value"))
				case "shorthand_field_initializer":
					w.walkExpr(init.NamedChild(0))
				case "base_field_initializer":
					w.walkExpr(init.NamedChild(0))
				}
			}
		}

	case "closure_expression":
		w.counters.countExpr(w.unsafeDepth)
		if params := n.ChildByFieldName("parameters"); params != nil {
			for _, param := range syntax.NamedChildren(params) {
				if param.Type() == "parameter" {
					w.walkType(param.ChildByFieldName("type"))
				}
			}
		}
		w.walkExpr(n.ChildByFieldName("body"))

	case "type_cast_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("value"))
		w.walkType(n.ChildByFieldName("type"))

	case "if_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("condition"))
		w.walkExpr(n.ChildByFieldName("consequence"))
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			w.walkExpr(alt.NamedChild(0))
		}

	case "let_condition":
		// if-let / while-let scrutinee; the pattern is a no-op.
		w.walkExpr(n.ChildByFieldName("value"))

	case "match_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("value"))
		if body := n.ChildByFieldName("body"); body != nil {
			for _, arm := range syntax.NamedChildren(body) {
				if arm.Type() == "match_arm" {
					w.walkExpr(arm.ChildByFieldName("value"))
				}
			}
		}

	case "while_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("condition"))
		w.walkExpr(n.ChildByFieldName("body"))

	case "loop_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("body"))

	case "for_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("value"))
		w.walkExpr(n.ChildByFieldName("body"))

	case "binary_expression", "assignment_expression", "compound_assignment_expr":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("left"))
		w.walkExpr(n.ChildByFieldName("right"))

	case "reference_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.ChildByFieldName("value"))

	case "unary_expression", "try_expression", "await_expression",
		"parenthesized_expression", "return_expression", "break_expression",
		"continue_expression", "yield_expression":
		w.counters.countExpr(w.unsafeDepth)
		w.walkExpr(n.NamedChild(0))

	case "index_expression", "tuple_expression", "array_expression",
		"range_expression":
		w.counters.countExpr(w.unsafeDepth)
		for _, child := range syntax.NamedChildren(n) {
			w.walkExpr(child)
		}

	case "integer_literal", "float_literal", "string_literal",
		"raw_string_literal", "char_literal", "boolean_literal",
		"unit_expression":
		w.counters.countExpr(w.unsafeDepth)

	case "macro_invocation":
		// Token trees are opaque.

	default:
	}
}

// blockOf returns the inner block of a block-wrapper expression, or the
// node itself when it already is the block.
func blockOf(n *sitter.Node) *sitter.Node {
	if n.Type() == "block" {
		return n
	}
	for _, child := range syntax.NamedChildren(n) {
		if child.Type() == "block" {
			return child
		}
	}
	return nil
}

// walkType submits path-shaped type references and recurses through
// composite types. Lifetimes, bounds and impl-trait forms are no-ops.
func (w *walker) walkType(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "type_identifier", "scoped_type_identifier", "primitive_type":
		w.submitPath(syntax.PathSegments(n, w.source))

	case "generic_type", "generic_type_with_turbofish":
		w.submitPath(syntax.PathSegments(n, w.source))
		if args := n.ChildByFieldName("type_arguments"); args != nil {
			for _, arg := range syntax.NamedChildren(args) {
				w.walkType(arg)
			}
		}

	case "reference_type", "pointer_type", "array_type", "slice_type",
		"tuple_type", "dynamic_type", "abstract_type", "bounded_type":
		for _, child := range syntax.NamedChildren(n) {
			w.walkType(child)
		}

	case "function_type":
		if params := n.ChildByFieldName("parameters"); params != nil {
			for _, param := range syntax.NamedChildren(params) {
				w.walkType(param)
			}
		}
		w.walkType(n.ChildByFieldName("return_type"))

	default:
	}
}

// walkUseClause submits the referenced paths of one use-tree. Glob imports
// bring no single symbol into scope and are no-ops here.
func (w *walker) walkUseClause(clause *sitter.Node, prefix []string) {
	switch clause.Type() {
	case "identifier", "crate", "super", "self":
		w.submitPath(append(clonePrefix(prefix), syntax.Text(clause, w.source)))
	case "scoped_identifier":
		if segments := syntax.PathSegments(clause, w.source); segments != nil {
			w.submitPath(append(clonePrefix(prefix), segments...))
		}
	case "use_as_clause":
		if path := clause.ChildByFieldName("path"); path != nil {
			if segments := syntax.PathSegments(path, w.source); segments != nil {
				w.submitPath(append(clonePrefix(prefix), segments...))
			}
		}
	case "use_list":
		for _, member := range syntax.NamedChildren(clause) {
			w.walkUseClause(member, prefix)
		}
	case "scoped_use_list":
		next := prefix
		if path := clause.ChildByFieldName("path"); path != nil {
			if segments := syntax.PathSegments(path, w.source); segments != nil {
				next = append(clonePrefix(prefix), segments...)
			}
		}
		if list := clause.ChildByFieldName("list"); list != nil {
			w.walkUseClause(list, next)
		}
	case "use_wildcard":
	default:
	}
}

func clonePrefix(prefix []string) []string {
	out := make([]string, 0, len(prefix)+1)
	return append(out, prefix...)
}

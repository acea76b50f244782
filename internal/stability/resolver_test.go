package stability

import (
	"fmt"
	"testing"
	"time"
)

// stdIndex builds a small index shaped like the real standard library:
// a few crates, a prelude module, one rename and one glob re-export.
func stdIndex() *Index {
	b := NewBuilder()

	b.AddSymbol([]string{"std", "widget", "Widget"}, "1.2.0", true)
	b.AddSymbol([]string{"std", "collections", "HashMap"}, "1.10.0", true)
	b.AddSymbol([]string{"std", "prelude", "v1", "String"}, "1.0.0", true)
	b.AddSymbol([]string{"core", "option", "Option"}, "1.0.0", true)

	// use std::widget::Widget as Gadget; at the root scope
	b.AddAlias(nil, []string{"std", "widget", "Widget"}, "Gadget")
	// use std::collections::*; at the root scope
	b.AddGlobAlias(nil, []string{"std", "collections"})

	return b.Freeze()
}

func TestResolveDirectPath(t *testing.T) {
	ix := stdIndex()

	v, ok := ix.Version([]string{"std", "widget", "Widget"})
	if !ok {
		t.Fatal("expected direct path to resolve")
	}
	if v != "1.2.0" {
		t.Errorf("version = %q, want 1.2.0", v)
	}
}

func TestResolveIntermediateModuleDefaults(t *testing.T) {
	ix := stdIndex()

	// std.widget exists only as an ancestor; it carries the initial
	// stable release.
	v, ok := ix.Version([]string{"std", "widget"})
	if !ok {
		t.Fatal("expected module path to resolve")
	}
	if v != DefaultVersion {
		t.Errorf("version = %q, want %q", v, DefaultVersion)
	}
}

func TestResolveRenameIsTransparent(t *testing.T) {
	ix := stdIndex()

	v, ok := ix.Version([]string{"Gadget"})
	if !ok {
		t.Fatal("expected renamed import to resolve")
	}
	if v != "1.2.0" {
		t.Errorf("version = %q, want the original symbol's 1.2.0", v)
	}
}

func TestResolveGlobImport(t *testing.T) {
	ix := stdIndex()

	v, ok := ix.Version([]string{"HashMap"})
	if !ok {
		t.Fatal("expected glob-imported name to resolve")
	}
	if v != "1.10.0" {
		t.Errorf("version = %q, want 1.10.0", v)
	}

	// The glob only supplies names its target actually declares.
	if _, ok := ix.Version([]string{"BTreeMap"}); ok {
		t.Error("name absent from the glob target resolved")
	}
}

func TestResolvePreludeInjectedOnFreeze(t *testing.T) {
	ix := stdIndex()

	if _, ok := ix.Version([]string{"String"}); !ok {
		t.Error("expected prelude name to resolve at the root scope")
	}
}

func TestResolveFailures(t *testing.T) {
	ix := stdIndex()

	tests := []struct {
		name string
		path []string
	}{
		{"unknown root", []string{"nonexistent", "Widget"}},
		{"unknown leaf", []string{"std", "widget", "Gizmo"}},
		{"super segment", []string{"std", "super", "widget"}},
		{"empty path", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sym := ix.Resolve(tt.path); sym != nil {
				t.Errorf("Resolve(%v) = %v, want nil", tt.path, sym)
			}
		})
	}
}

func TestResolveSelfSegmentsSkipped(t *testing.T) {
	ix := stdIndex()

	v, ok := ix.Version([]string{"std", "self", "widget", "Widget"})
	if !ok {
		t.Fatal("expected path with self segment to resolve")
	}
	if v != "1.2.0" {
		t.Errorf("version = %q, want 1.2.0", v)
	}
}

func TestResolveCrateShorthand(t *testing.T) {
	b := NewBuilder()
	b.AddSymbol([]string{"std", "error", "Error"}, "1.5.0", true)
	b.AddSymbol([]string{"std", "io"}, DefaultVersion, true)
	// Inside std::io, `use crate::error::Error` names the enclosing crate.
	b.AddAlias([]string{"std", "io"}, []string{"crate", "error", "Error"}, "Error")
	ix := b.Freeze()

	v, ok := ix.Version([]string{"std", "io", "Error"})
	if !ok {
		t.Fatal("expected crate-relative alias to resolve")
	}
	if v != "1.5.0" {
		t.Errorf("version = %q, want 1.5.0", v)
	}
}

func TestResolveAllocCrateShorthand(t *testing.T) {
	b := NewBuilder()
	b.AddSymbol([]string{"alloc", "vec", "Vec"}, "1.3.0", true)
	b.AddSymbol([]string{"std"}, DefaultVersion, true)
	// std's expanded source re-exports the allocation crate's types as
	// `use alloc_crate::vec::Vec;`; the legacy name resolves from the
	// alloc subtree.
	b.AddAlias([]string{"std"}, []string{"alloc_crate", "vec", "Vec"}, "Vec")
	ix := b.Freeze()

	v, ok := ix.Version([]string{"std", "Vec"})
	if !ok {
		t.Fatal("expected alloc_crate alias target to resolve")
	}
	if v != "1.3.0" {
		t.Errorf("version = %q, want 1.3.0", v)
	}
}

func TestResolveFirstAliasWins(t *testing.T) {
	b := NewBuilder()
	b.AddSymbol([]string{"std", "a", "Thing"}, "1.1.0", true)
	b.AddSymbol([]string{"std", "b", "Thing"}, "1.2.0", true)
	b.AddAlias(nil, []string{"std", "a", "Thing"}, "Thing")
	b.AddAlias(nil, []string{"std", "b", "Thing"}, "Thing")
	ix := b.Freeze()

	for i := 0; i < 10; i++ {
		v, ok := ix.Version([]string{"Thing"})
		if !ok || v != "1.1.0" {
			t.Fatalf("iteration %d: version = %q ok=%v, want deterministic 1.1.0", i, v, ok)
		}
	}
}

func TestResolveSkipsFailedCandidates(t *testing.T) {
	b := NewBuilder()
	b.AddSymbol([]string{"std", "b", "Thing"}, "1.2.0", true)
	// The first alias points nowhere; resolution must fall through to
	// the second.
	b.AddAlias(nil, []string{"std", "missing", "Thing"}, "Thing")
	b.AddAlias(nil, []string{"std", "b", "Thing"}, "Thing")
	ix := b.Freeze()

	v, ok := ix.Version([]string{"Thing"})
	if !ok {
		t.Fatal("expected fallthrough to the second alias")
	}
	if v != "1.2.0" {
		t.Errorf("version = %q, want 1.2.0", v)
	}
}

// resolveWithin fails the test when resolution does not finish inside the
// deadline, so a cycle-guard regression surfaces as a failure instead of a
// suite hang.
func resolveWithin(t *testing.T, ix *Index, path []string, deadline time.Duration) *Symbol {
	t.Helper()
	done := make(chan *Symbol, 1)
	go func() { done <- ix.Resolve(path) }()
	select {
	case sym := <-done:
		return sym
	case <-time.After(deadline):
		t.Fatalf("Resolve(%v) did not terminate within %v", path, deadline)
		return nil
	}
}

func TestResolveAliasCycleFails(t *testing.T) {
	tests := []struct {
		name    string
		aliases func(b *Builder)
		path    []string
	}{
		{
			name: "self cycle",
			aliases: func(b *Builder) {
				b.AddAlias(nil, []string{"Ouro"}, "Ouro")
			},
			path: []string{"Ouro"},
		},
		{
			name: "mutual cycle",
			aliases: func(b *Builder) {
				b.AddAlias(nil, []string{"Pong"}, "Ping")
				b.AddAlias(nil, []string{"Ping"}, "Pong")
			},
			path: []string{"Ping"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.AddSymbol([]string{"std"}, DefaultVersion, true)
			tt.aliases(b)
			ix := b.Freeze()

			if sym := resolveWithin(t, ix, tt.path, 10*time.Second); sym != nil {
				t.Errorf("cyclic alias resolved to %v, want nil", sym)
			}
		})
	}
}

func TestResolveBudgetDoesNotStarveDeepPaths(t *testing.T) {
	// A long but acyclic alias chain must still resolve.
	b := NewBuilder()
	b.AddSymbol([]string{"std", "deep", "Leaf"}, "1.8.0", true)
	b.AddAlias(nil, []string{"std", "deep", "Leaf"}, "a0")
	for i := 1; i < 16; i++ {
		b.AddAlias(nil, []string{fmt.Sprintf("a%d", i-1)}, fmt.Sprintf("a%d", i))
	}
	ix := b.Freeze()

	v, ok := ix.Version([]string{"a15"})
	if !ok {
		t.Fatal("expected chained aliases to resolve")
	}
	if v != "1.8.0" {
		t.Errorf("version = %q, want 1.8.0", v)
	}
}

//go:build cgo

package usage

import (
	"context"
	"testing"

	proberr "crateprobe/internal/errors"
	"crateprobe/internal/stability"
)

func testIndex() *stability.Index {
	b := stability.NewBuilder()
	b.AddSymbol([]string{"std", "collections", "HashMap"}, "1.10.0", true)
	b.AddSymbol([]string{"std", "collections", "HashMap", "new"}, "1.10.0", true)
	b.AddSymbol([]string{"std", "vec", "Vec"}, "1.0.0", true)
	b.AddSymbol([]string{"std", "mem", "swap"}, "1.0.0", true)
	return b.Freeze()
}

func analyze(t *testing.T, source string) *Counters {
	t.Helper()
	counters, err := AnalyzeSource(context.Background(), testIndex(), []byte(source))
	if err != nil {
		t.Fatalf("AnalyzeSource: %v", err)
	}
	return counters
}

func TestUnsafeNestingAccounting(t *testing.T) {
	// Two sibling unsafe blocks each wrapping one expression,
	// interleaved with three plain expressions.
	counters := analyze(t, `
fn demo() {
    1;
    unsafe { 2; }
    3;
    unsafe { 4; }
    5;
}
`)
	if counters.TotalExprs != 5 {
		t.Errorf("TotalExprs = %d, want 5", counters.TotalExprs)
	}
	if counters.UnsafeExprs != 2 {
		t.Errorf("UnsafeExprs = %d, want 2", counters.UnsafeExprs)
	}
}

func TestUnsafeFunctionBody(t *testing.T) {
	counters := analyze(t, `
unsafe fn danger() {
    1;
}

fn fine() {
    2;
}
`)
	if counters.TotalExprs != 2 {
		t.Errorf("TotalExprs = %d, want 2", counters.TotalExprs)
	}
	if counters.UnsafeExprs != 1 {
		t.Errorf("UnsafeExprs = %d, want 1", counters.UnsafeExprs)
	}
}

func TestVersionCountsFromExprAndUsePositions(t *testing.T) {
	counters := analyze(t, `
use std::collections::HashMap;

fn build() {
    let map = std::collections::HashMap::new();
}
`)
	// One hit from the import, one from the call's path.
	if got := counters.VersionCounts["1.10.0"]; got != 2 {
		t.Errorf("VersionCounts[1.10.0] = %d, want 2", got)
	}
	// The call and its path are the only expressions.
	if counters.TotalExprs != 2 {
		t.Errorf("TotalExprs = %d, want 2", counters.TotalExprs)
	}
}

func TestVersionCountsFromTypePositions(t *testing.T) {
	counters := analyze(t, `
fn pass(v: std::vec::Vec) -> std::vec::Vec {
    v
}
`)
	if got := counters.VersionCounts["1.0.0"]; got != 2 {
		t.Errorf("VersionCounts[1.0.0] = %d, want 2", got)
	}
	// Types are never counted as expressions; only the trailing `v` is.
	if counters.TotalExprs != 1 {
		t.Errorf("TotalExprs = %d, want 1", counters.TotalExprs)
	}
}

func TestUnresolvedPathsAreSilent(t *testing.T) {
	counters := analyze(t, `
fn main() {
    other_crate::thing();
}
`)
	if len(counters.VersionCounts) != 0 {
		t.Errorf("VersionCounts = %v, want empty", counters.VersionCounts)
	}
	// The call and its path still count as expressions.
	if counters.TotalExprs != 2 {
		t.Errorf("TotalExprs = %d, want 2", counters.TotalExprs)
	}
}

func TestMethodCallsSkipReceiverField(t *testing.T) {
	counters := analyze(t, `
fn main() {
    value.method();
}
`)
	// The call counts once and the receiver identifier once; the
	// method name is never submitted for resolution.
	if counters.TotalExprs != 2 {
		t.Errorf("TotalExprs = %d, want 2", counters.TotalExprs)
	}
	if len(counters.VersionCounts) != 0 {
		t.Errorf("VersionCounts = %v, want empty", counters.VersionCounts)
	}
}

func TestGlobImportsAreNoOps(t *testing.T) {
	counters := analyze(t, `
use std::collections::*;
`)
	if len(counters.VersionCounts) != 0 {
		t.Errorf("VersionCounts = %v, want empty", counters.VersionCounts)
	}
	if counters.TotalExprs != 0 {
		t.Errorf("TotalExprs = %d, want 0", counters.TotalExprs)
	}
}

func TestAnalyzeSourceParseFailure(t *testing.T) {
	_, err := AnalyzeSource(context.Background(), testIndex(), []byte("fn broken( {"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !proberr.HasCode(err, proberr.CrateParseFailed) {
		t.Errorf("error = %v, want code %s", err, proberr.CrateParseFailed)
	}
}

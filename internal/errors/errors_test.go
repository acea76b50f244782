package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(SnapshotCorrupt, "could not decode index snapshot", nil)
	if !strings.Contains(err.Error(), "SNAPSHOT_CORRUPT") {
		t.Errorf("missing code in message: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "could not decode index snapshot") {
		t.Errorf("missing message: %q", err.Error())
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := New(CrateParseFailed, "parsing expanded source", cause)

	if !strings.Contains(err.Error(), "unexpected EOF") {
		t.Errorf("cause not included: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(StdSourceMissing, nil, "missing expanded source for crate %q", "alloc")
	if !strings.Contains(err.Error(), `missing expanded source for crate "alloc"`) {
		t.Errorf("formatted message wrong: %q", err.Error())
	}
}

func TestHasCode(t *testing.T) {
	err := New(ManifestInvalid, "no package header", nil)
	wrapped := fmt.Errorf("analyzing crate: %w", err)

	if !HasCode(wrapped, ManifestInvalid) {
		t.Error("HasCode should match through wrapping")
	}
	if HasCode(wrapped, SnapshotCorrupt) {
		t.Error("HasCode matched the wrong code")
	}
	if HasCode(stderrors.New("plain"), ManifestInvalid) {
		t.Error("HasCode matched a non-ProbeError")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ExpandFailed, "cargo expand produced no output", nil).
		WithDetails(map[string]string{"dir": "./crates/serde"})
	if err.Details == nil {
		t.Error("details not attached")
	}
}

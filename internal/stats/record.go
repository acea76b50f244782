package stats

import "time"

// Record is one analyzed package's complete result row, persisted to the
// results store and exported to reports.
type Record struct {
	RunID        string `json:"runId"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Edition      int    `json:"edition"`
	ReportedMSRV *int   `json:"reportedMsrv,omitempty"`

	VersionSignature float64 `json:"versionSignature"`
	UnsafeExprs      int     `json:"unsafeExprs"`
	TotalExprs       int     `json:"totalExprs"`
	UnsafeFraction   float64 `json:"unsafeFraction"`

	ClippyWarnings        int     `json:"clippyWarnings"`
	ClippyWarningsPerExpr float64 `json:"clippyWarningsPerExpr"`

	SourceDigest string    `json:"sourceDigest"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

// Finalize fills the derived metric fields from the raw counts.
func (r *Record) Finalize(versionCounts map[string]int) {
	r.VersionSignature = VersionSignature(versionCounts)
	r.UnsafeFraction = UnsafeFraction(r.UnsafeExprs, r.TotalExprs)
	r.ClippyWarningsPerExpr = float64(r.ClippyWarnings) / float64(r.TotalExprs)
}

// Package usage walks a package's expanded syntax tree, resolves every
// qualified reference against the stability index, and accumulates the raw
// counts the aggregation step consumes.
package usage

// Counters holds the raw results of one package walk. A Counters value is
// owned exclusively by the walk that produces it and is read-only afterwards.
type Counters struct {
	// VersionCounts maps a stabilization version to the number of
	// resolved references carrying it.
	VersionCounts map[string]int `json:"versionCounts"`
	// TotalExprs is the number of expression nodes visited.
	TotalExprs int `json:"totalExprs"`
	// UnsafeExprs is the number of expression nodes visited while the
	// unsafe-nesting depth was positive.
	UnsafeExprs int `json:"unsafeExprs"`
}

func newCounters() *Counters {
	return &Counters{
		VersionCounts: make(map[string]int),
	}
}

// countExpr records one visited expression at the given unsafe depth.
func (c *Counters) countExpr(unsafeDepth int) {
	c.TotalExprs++
	if unsafeDepth > 0 {
		c.UnsafeExprs++
	}
}

// countVersion records one successfully resolved reference.
func (c *Counters) countVersion(version string) {
	c.VersionCounts[version]++
}

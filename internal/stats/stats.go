// Package stats aggregates raw usage counters into the per-package scalar
// metrics and holds the record shape handed to the reporting layer.
package stats

import (
	"math"
	"strconv"
	"strings"
)

// NeutralSignature is returned for packages with no resolved usage: the
// ordinal of the language's initial stable release.
const NeutralSignature = 1.0

// UnsafeFraction is the share of expressions visited inside a privileged
// region. A zero total yields NaN; the policy for empty packages belongs to
// the caller.
func UnsafeFraction(unsafeExprs, totalExprs int) float64 {
	return float64(unsafeExprs) / float64(totalExprs)
}

// MinorOrdinal parses a version string into its minor-version component,
// the numeric ordinal used for signature weighting.
func MinorOrdinal(version string) (int, bool) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return minor, true
}

// VersionSignature computes the weighted-average minor ordinal over the
// resolved version counts. Each version's weight is ln(count)/ln(maxCount),
// so the most-used version weighs 1.0 and rarer versions contribute a
// logarithmic fraction. Unparseable version keys are excluded; an empty or
// fully-unparseable set returns the neutral baseline.
func VersionSignature(versionCounts map[string]int) float64 {
	maxCount := 0
	for version, count := range versionCounts {
		if _, ok := MinorOrdinal(version); !ok {
			continue
		}
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount == 0 {
		return NeutralSignature
	}

	var weightedSum, weightSum float64
	for version, count := range versionCounts {
		ordinal, ok := MinorOrdinal(version)
		if !ok {
			continue
		}
		weight := 1.0
		if maxCount > 1 {
			weight = math.Log(float64(count)) / math.Log(float64(maxCount))
		}
		weightedSum += float64(ordinal) * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return NeutralSignature
	}
	return weightedSum / weightSum
}

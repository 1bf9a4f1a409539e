package main

import (
	"math"
	"strconv"
)

// matchesAny reports whether the value equals any of the given names
func matchesAny(value string, names []string) bool {
	for _, name := range names {
		if value == name {
			return true
		}
	}

	return false
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fixed2 formats a number with exactly two decimal places
func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// isFinite reports whether the value is neither NaN nor infinite
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

const bytesPerMiB = 1024 * 1024

// toMiB converts bytes to mebibytes
func toMiB(b uint64) float64 {
	return float64(b) / bytesPerMiB
}

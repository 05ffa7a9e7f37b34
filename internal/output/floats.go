package output

import "math"

// RoundFloat rounds f to 6 decimal places, the precision sparseindex's
// SearchResult scores are normalized to before JSON encoding.
func RoundFloat(f float64) float64 {
	const multiplier = 1e6
	return math.Round(f*multiplier) / multiplier
}

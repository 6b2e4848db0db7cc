// File: internal/judge/stats.go
// Pure statistics over score batches. Population standard deviation and
// linear-interpolation percentiles, so results line up with the usual
// scientific-computing conventions.
package judge

import (
	"math"
	"sort"

	"github.com/openpolicylab/debatesim/api/schemas"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation. A single observation
// has deviation 0.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)))
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between closest ranks.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Median returns the 50th percentile.
func Median(xs []float64) float64 {
	return Percentile(xs, 50)
}

// IQR returns the interquartile range (P75 - P25).
func IQR(xs []float64) float64 {
	return Percentile(xs, 75) - Percentile(xs, 25)
}

// Summarize computes the full metric summary for a list of integer scores.
func Summarize(scores []int) schemas.MetricSummary {
	xs := make([]float64, len(scores))
	for i, s := range scores {
		xs[i] = float64(s)
	}
	return schemas.MetricSummary{
		Mean:   Mean(xs),
		Std:    StdDev(xs),
		Median: Median(xs),
		IQR:    IQR(xs),
	}
}

// File: internal/judge/stats_test.go
package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-9)
}

// TestStdDev pins the population (not sample) convention.
func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{7}), "single observation has zero deviation")
	// Population std of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

// TestPercentile pins linear interpolation between closest ranks.
func TestPercentile(t *testing.T) {
	xs := []float64{1, 2, 3, 4}

	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.InDelta(t, 1.0, Percentile(xs, 0), 1e-9)
	assert.InDelta(t, 4.0, Percentile(xs, 100), 1e-9)
	assert.InDelta(t, 2.5, Percentile(xs, 50), 1e-9)
	assert.InDelta(t, 1.75, Percentile(xs, 25), 1e-9)
	assert.InDelta(t, 3.25, Percentile(xs, 75), 1e-9)

	// Input order must not matter.
	assert.InDelta(t, 2.5, Percentile([]float64{4, 1, 3, 2}, 50), 1e-9)
}

func TestMedianAndIQR(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, Median(xs), 1e-9)
	assert.InDelta(t, 1.5, IQR(xs), 1e-9)
}

// TestSummarize checks the end-to-end summary over integer scores.
func TestSummarize(t *testing.T) {
	s := Summarize([]int{6, 7, 8})
	assert.InDelta(t, 7.0, s.Mean, 1e-9)
	assert.InDelta(t, 7.0, s.Median, 1e-9)
	assert.InDelta(t, 0.8164965809, s.Std, 1e-6)
	assert.InDelta(t, 1.0, s.IQR, 1e-9)

	single := Summarize([]int{9})
	assert.Equal(t, 9.0, single.Mean)
	assert.Equal(t, 0.0, single.Std)
	assert.Equal(t, 9.0, single.Median)
	assert.Equal(t, 0.0, single.IQR)
}

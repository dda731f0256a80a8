package utils

import "github.com/montanaflynn/stats"

// RollingAverage keeps the most recent samples up to a fixed capacity. Until the window fills,
// the average covers only the samples seen so far.
type RollingAverage struct {
	data []float64
	pos  int
	n    int
}

// NewRollingAverage returns a window holding at most numSamples values.
func NewRollingAverage(numSamples int) *RollingAverage {
	if numSamples < 1 {
		numSamples = 1
	}
	return &RollingAverage{data: make([]float64, numSamples)}
}

// NumSamples returns the capacity of the window.
func (ra *RollingAverage) NumSamples() int {
	return len(ra.data)
}

// Len returns how many samples are currently held.
func (ra *RollingAverage) Len() int {
	return ra.n
}

// Add pushes x, evicting the oldest sample once the window is full.
func (ra *RollingAverage) Add(x float64) {
	ra.data[ra.pos] = x
	ra.pos++
	if ra.pos >= len(ra.data) {
		ra.pos = 0
	}
	if ra.n < len(ra.data) {
		ra.n++
	}
}

// Clear drops every sample so the next Add starts a fresh window.
func (ra *RollingAverage) Clear() {
	ra.pos = 0
	ra.n = 0
}

// Samples returns the held samples, oldest first.
func (ra *RollingAverage) Samples() []float64 {
	out := make([]float64, 0, ra.n)
	start := ra.pos - ra.n
	if start < 0 {
		start += len(ra.data)
	}
	for i := 0; i < ra.n; i++ {
		out = append(out, ra.data[(start+i)%len(ra.data)])
	}
	return out
}

// Average returns the arithmetic mean of the held samples, or 0 for an empty window.
func (ra *RollingAverage) Average() float64 {
	if ra.n == 0 {
		return 0
	}
	mean, err := stats.Mean(ra.Samples())
	if err != nil {
		return 0
	}
	return mean
}

package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestRollingAverage(t *testing.T) {
	ra := NewRollingAverage(5)
	test.That(t, ra.Average(), test.ShouldEqual, 0)
	test.That(t, ra.NumSamples(), test.ShouldEqual, 5)

	ra.Add(2)
	test.That(t, ra.Average(), test.ShouldEqual, 2)
	ra.Add(4)
	test.That(t, ra.Average(), test.ShouldEqual, 3)

	for _, x := range []float64{6, 8, 10} {
		ra.Add(x)
	}
	test.That(t, ra.Len(), test.ShouldEqual, 5)
	test.That(t, ra.Average(), test.ShouldEqual, 6)

	// a sixth sample evicts exactly the oldest one.
	ra.Add(12)
	test.That(t, ra.Len(), test.ShouldEqual, 5)
	test.That(t, ra.Samples(), test.ShouldResemble, []float64{4, 6, 8, 10, 12})
	test.That(t, ra.Average(), test.ShouldEqual, 8)
}

func TestRollingAverageClear(t *testing.T) {
	ra := NewRollingAverage(3)
	ra.Add(100)
	ra.Add(200)
	ra.Clear()
	test.That(t, ra.Len(), test.ShouldEqual, 0)

	ra.Add(7)
	test.That(t, ra.Average(), test.ShouldEqual, 7)
	test.That(t, ra.Samples(), test.ShouldResemble, []float64{7})
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(5, 0, 3), test.ShouldEqual, 3)
	test.That(t, Clamp(-1.5, 0, 3), test.ShouldEqual, 0)
	test.That(t, Clamp(2, 0, 3), test.ShouldEqual, 2)
}

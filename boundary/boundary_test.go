package boundary

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCeilingDistance(t *testing.T) {
	test.That(t, CeilingDistance(2.3, r3.Vector{Y: 1.8}), test.ShouldAlmostEqual, 0.5)
	test.That(t, CeilingDistance(2.3, r3.Vector{Y: 2.5}), test.ShouldEqual, 0)
}

func TestUnbounded(t *testing.T) {
	res := Unbounded.TestPoint(r3.Vector{X: 100})
	test.That(t, math.IsInf(res.Distance, 1), test.ShouldBeTrue)
}

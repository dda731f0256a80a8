// Package boundary describes the play-space boundary sensor consulted by the force engine.
// The sensor itself belongs to the VR runtime; this package only defines how it is queried.
package boundary

import (
	"math"

	"github.com/golang/geo/r3"
)

// A Result is the answer to a boundary query for one point.
type Result struct {
	// Distance is the distance in meters from the point to the nearest outer boundary.
	Distance float64
	// Normal is the unit direction from the point towards that nearest boundary. A positive dot
	// product of a velocity with Normal means the point is moving towards the boundary.
	Normal r3.Vector
}

// A Sensor answers distance-to-boundary queries. Implementations must be cheap to call several
// times per tick.
type Sensor interface {
	TestPoint(point r3.Vector) Result
}

// SensorFunc adapts a function to the Sensor interface.
type SensorFunc func(point r3.Vector) Result

// TestPoint calls f.
func (f SensorFunc) TestPoint(point r3.Vector) Result {
	return f(point)
}

// CeilingDistance synthesizes the ceiling query that boundary sensors do not provide: the height
// left between the point and a ceiling at the given height (Y up), never negative.
func CeilingDistance(ceilingHeight float64, point r3.Vector) float64 {
	return math.Max(0, ceilingHeight-point.Y)
}

// Unbounded is a Sensor for a space without walls.
var Unbounded Sensor = SensorFunc(func(r3.Vector) Result {
	return Result{Distance: math.Inf(1)}
})

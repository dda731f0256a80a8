// Package fake implements a rectangular play area boundary sensor for tests and simulation.
package fake

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/forcefeedback/boundary"
)

// PlayArea is an axis-aligned rectangle on the floor (the XZ plane, Y up) whose walls extend
// upwards indefinitely.
type PlayArea struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

var _ boundary.Sensor = (*PlayArea)(nil)

// NewPlayArea returns a width by depth area centered on the origin.
func NewPlayArea(width, depth float64) *PlayArea {
	return &PlayArea{MinX: -width / 2, MaxX: width / 2, MinZ: -depth / 2, MaxZ: depth / 2}
}

// TestPoint returns the distance to the nearest wall and the direction towards it. Points
// outside the area report distance 0.
func (pa *PlayArea) TestPoint(point r3.Vector) boundary.Result {
	walls := []struct {
		dist   float64
		normal r3.Vector
	}{
		{point.X - pa.MinX, r3.Vector{X: -1}},
		{pa.MaxX - point.X, r3.Vector{X: 1}},
		{point.Z - pa.MinZ, r3.Vector{Z: -1}},
		{pa.MaxZ - point.Z, r3.Vector{Z: 1}},
	}
	best := walls[0]
	for _, w := range walls[1:] {
		if w.dist < best.dist {
			best = w
		}
	}
	return boundary.Result{Distance: math.Max(0, best.dist), Normal: best.normal}
}

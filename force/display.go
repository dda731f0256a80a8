package force

import (
	"time"

	"github.com/golang/geo/r3"
)

// Display is a read-only view of one hand for overlays and status output.
type Display struct {
	DominantForce     float64
	AvgCollisionForce float64
	BoundaryForce     float64
	BallForce         float64
	Angle             int
	Retracting        bool
	Holding           bool
	BoundaryDistance  float64
	CeilingDistance   float64
	Velocity          r3.Vector
}

// Display returns the current state of a hand.
func (e *Engine) Display(h Hand, now time.Duration) Display {
	hs := e.hands[h]
	return Display{
		DominantForce:     hs.dominantForce,
		AvgCollisionForce: hs.avgCollisionForce,
		BoundaryForce:     hs.boundaryForce,
		BallForce:         hs.ballForce,
		Angle:             hs.angle,
		Retracting:        hs.retracting,
		Holding:           now < hs.holdUntil,
		BoundaryDistance:  hs.boundaryDistance,
		CeilingDistance:   hs.ceilingDistance,
		Velocity:          hs.velocity,
	}
}

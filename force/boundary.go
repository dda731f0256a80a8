package force

import (
	"math"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/forcefeedback/boundary"
	"go.viam.com/forcefeedback/utils"
)

// UpdateBoundary recomputes the boundary force of a hand from the play-space walls and the
// ceiling and returns it. A predicted crossing saturates the force and arms a boundary hold.
// The hand position becomes the previous position for the next tick.
func (e *Engine) UpdateBoundary(h Hand, shoulder, hand r3.Vector, now time.Duration) float64 {
	hs := e.hands[h]
	ceiling := e.modes.State().CeilingHeight

	shoulderDist := e.sensor.TestPoint(shoulder).Distance
	shoulderCeil := boundary.CeilingDistance(ceiling, shoulder)
	res := e.sensor.TestPoint(hand)
	handCeil := boundary.CeilingDistance(ceiling, hand)

	hs.velocity = hs.velocityTo(hand, e.cfg.TickSeconds)
	hs.boundaryDistance = res.Distance
	hs.ceilingDistance = handCeil

	var force float64
	switch {
	case res.Distance < e.cfg.Boundary.ProximityLimit || handCeil < e.cfg.Ceiling.ProximityLimit:
		if !hs.retracting {
			force = e.cfg.MaxBoundaryForce
		}
	case res.Distance < e.cfg.Boundary.ProximityClose || handCeil < e.cfg.Ceiling.ProximityClose:
		force = e.cfg.CloseBoundaryForce
	}

	wall := predictsCrossing(&e.cfg.Boundary, res.Distance, shoulderDist, hs.velocity.Dot(res.Normal))
	roof := predictsCrossing(&e.cfg.Ceiling, handCeil, shoulderCeil, hs.velocity.Y)
	if wall || roof {
		force = e.cfg.MaxBoundaryForce
		until := now + seconds(e.cfg.HoldSeconds)
		if !hs.holdArmed && hs.holdUntil <= now {
			e.logger.Debugw("predicted boundary crossing, holding", "hand", h, "wall", wall, "ceiling", roof)
		}
		hs.arm(until, true)
	}

	hs.boundaryForce = force
	hs.setPosition(hand)
	return force
}

// predictsCrossing reports whether a point moving towards a boundary at the given speed will
// reach it within the zone's look-ahead while both it and the shoulder are within range.
func predictsCrossing(z *Zone, dist, shoulderDist, speed float64) bool {
	if speed <= 0 {
		return false
	}
	t := dist / speed
	return t > 0 && t < z.PredictionTime && dist < z.PredictionRange && shoulderDist < z.PredictionRange
}

// NearBoundary returns how close the hand is to a wall for haptic rendering in the headset:
// 1 while a boundary hold is active, otherwise a linear ramp from 0 at the close threshold to
// 1 at the wall.
func (e *Engine) NearBoundary(h Hand) float64 {
	hs := e.hands[h]
	if hs.holdIsBoundary {
		return 1
	}
	d := hs.boundaryDistance
	if math.IsInf(d, 1) || d >= e.cfg.Boundary.ProximityClose {
		return 0
	}
	return utils.Clamp(1-d/e.cfg.Boundary.ProximityClose, 0, 1)
}

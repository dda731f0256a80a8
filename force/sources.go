package force

import (
	"math"
)

// SetBallForce sets the ball source of a hand. The value is scaled by the ball force scale.
func (e *Engine) SetBallForce(h Hand, unscaled float64) {
	e.hands[h].ballForce = unscaled * e.cfg.BallForceScale
}

// ProximityForce ramps linearly from scale just outside the surface to 0 at maxRange. A hand
// touching or inside the surface, or beyond maxRange, gets no force.
func ProximityForce(distance, maxRange, scale float64) float64 {
	if maxRange <= 0 || distance <= 0 || distance > maxRange {
		return 0
	}
	return scale * (1 - distance/maxRange)
}

// UpdateBallProximity derives the ball source of a hand from its distance to the ball surface.
// Before the game starts, in boundary-only mode, or with no ball in range the source is 0.
func (e *Engine) UpdateBallProximity(h Hand, distance float64) float64 {
	modes := e.modes.State()
	var unscaled float64
	if modes.GameStarted && !modes.BoundaryOnly && !math.IsInf(distance, 1) && !math.IsNaN(distance) {
		unscaled = ProximityForce(distance, e.cfg.ProximityRange, e.cfg.ProximityForceScale)
	}
	e.SetBallForce(h, unscaled)
	return e.hands[h].ballForce
}

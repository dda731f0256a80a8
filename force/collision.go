package force

import (
	"math"

	"github.com/golang/geo/r3"
)

// UpdateCollision pushes a collision force sample for the hand and returns the new average.
// The magnitude is converted with the global force scale. Discrete events (contact enter and
// exit) bypass hysteresis on the next arbitration.
func (e *Engine) UpdateCollision(h Hand, force float64, discrete bool) float64 {
	hs := e.hands[h]
	hs.forced = discrete
	hs.collisions.Add(math.Abs(force) * e.cfg.GlobalForceScale)
	hs.avgCollisionForce = hs.collisions.Average()
	return hs.avgCollisionForce
}

// ClearCollisionLog forgets every collision sample of the hand.
func (e *Engine) ClearCollisionLog(h Hand) {
	hs := e.hands[h]
	hs.collisions.Clear()
	hs.avgCollisionForce = 0
}

// ContactEnter starts a fresh collision window with the first frame of a contact.
func (e *Engine) ContactEnter(h Hand, force float64) float64 {
	e.ClearCollisionLog(h)
	return e.UpdateCollision(h, force, true)
}

// ContactStay records an ongoing contact.
func (e *Engine) ContactStay(h Hand, force float64) float64 {
	return e.UpdateCollision(h, force, false)
}

// ContactExit ends a contact: the window restarts from a single zero sample, pushed as a
// discrete event so the force drops on the next tick.
func (e *Engine) ContactExit(h Hand) {
	e.ClearCollisionLog(h)
	e.UpdateCollision(h, 0, true)
}

// EffectiveCollisionForce projects a contact impulse onto the arm axis (shoulder to hand) and
// divides by the step to get a force. Pushes against the reach come out positive.
func EffectiveCollisionForce(shoulder, hand, impulse r3.Vector, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return hand.Sub(shoulder).Normalize().Dot(impulse) / dt
}

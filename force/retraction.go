package force

import (
	"time"

	"github.com/golang/geo/r3"
)

// CheckRetracting records whether the hand is being pulled back towards the shoulder, averaged
// over a short window. A retracting hand releases any hold immediately so the actuator can
// relax. Must run before UpdateBoundary in a tick.
func (e *Engine) CheckRetracting(h Hand, shoulder, hand r3.Vector, now time.Duration) bool {
	hs := e.hands[h]
	vel := hs.velocityTo(hand, e.cfg.TickSeconds)
	hs.retraction.Add(vel.Dot(hand.Sub(shoulder)))
	hs.retracting = hs.retraction.Average() < e.cfg.RetractionThreshold
	if hs.retracting && hs.holdUntil > now {
		hs.holdUntil = now
	}
	return hs.retracting
}

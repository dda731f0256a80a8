package force

import (
	"math"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/forcefeedback/utils"
)

// Hand identifies one of the two actuated hands.
type Hand int

// The hands, in wire order.
const (
	Left Hand = iota
	Right
	NumHands
)

// Hands lists both hands in wire order.
var Hands = [NumHands]Hand{Left, Right}

func (h Hand) String() string {
	switch h {
	case Left:
		return "left"
	case Right:
		return "right"
	case NumHands:
	}
	return "unknown"
}

// handState is everything the engine remembers about one hand between ticks.
type handState struct {
	collisions        *utils.RollingAverage
	avgCollisionForce float64
	boundaryForce     float64
	ballForce         float64

	dominantForce float64
	lastUpdate    time.Duration
	// forced bypasses hysteresis for the current tick only.
	forced bool

	holdUntil time.Duration
	// holdArmed marks a hold armed during the current tick; the angle is recomputed once and
	// then frozen until holdUntil.
	holdArmed      bool
	holdIsBoundary bool

	retraction *utils.RollingAverage
	retracting bool

	previousPosition r3.Vector
	hasPrevious      bool
	velocity         r3.Vector
	boundaryDistance float64
	ceilingDistance  float64

	angle int
}

func newHandState(cfg *Config) *handState {
	return &handState{
		collisions:       utils.NewRollingAverage(cfg.CollisionWindow),
		retraction:       utils.NewRollingAverage(cfg.RetractionWindow),
		boundaryDistance: math.Inf(1),
		ceilingDistance:  math.Inf(1),
	}
}

// velocityTo differentiates from the last recorded position over the fixed tick.
func (hs *handState) velocityTo(pos r3.Vector, dt float64) r3.Vector {
	if !hs.hasPrevious {
		return r3.Vector{}
	}
	return pos.Sub(hs.previousPosition).Mul(1 / dt)
}

func (hs *handState) setPosition(pos r3.Vector) {
	hs.previousPosition = pos
	hs.hasPrevious = true
}

// arm holds the current angle until the given time. A later expiry always wins.
func (hs *handState) arm(until time.Duration, isBoundary bool) {
	if until > hs.holdUntil {
		hs.holdUntil = until
	}
	hs.holdArmed = true
	hs.holdIsBoundary = hs.holdIsBoundary || isBoundary
}

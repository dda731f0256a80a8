// Package force implements the force arbitration engine. Every tick it takes the forces
// proposed by the collision, boundary and ball sources for each hand, picks the dominant one,
// applies hysteresis, holds and global modes, and converts it to an actuator angle.
//
// An Engine is owned by a single control loop and is not safe for concurrent use; only Modes
// may be changed from other goroutines.
package force

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/forcefeedback/boundary"
	"go.viam.com/forcefeedback/calibration"
	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/packet"
)

// Output is the result of one arbitration tick.
type Output struct {
	Angles         [NumHands]int
	DominantForces [NumHands]float64
	Forced         [NumHands]bool
	MessageType    packet.MessageType
}

// Engine arbitrates the force sources of both hands.
type Engine struct {
	cfg    Config
	sensor boundary.Sensor
	modes  *Modes
	curves [NumHands]*calibration.Curve
	hands  [NumHands]*handState
	logger logging.Logger
}

// NewEngine builds an engine. A calibration that cannot form valid curves is a fatal
// configuration error. A nil sensor means no walls and nil modes get defaults.
func NewEngine(
	cfg Config,
	calib calibration.Config,
	sensor boundary.Sensor,
	modes *Modes,
	logger logging.Logger,
) (*Engine, error) {
	if err := cfg.Validate("engine"); err != nil {
		return nil, err
	}
	left, right, err := calib.Curves()
	if err != nil {
		return nil, errors.Wrap(err, "cannot build calibration curves")
	}
	if sensor == nil {
		sensor = boundary.Unbounded
	}
	if modes == nil {
		modes = NewModes()
	}
	e := &Engine{
		cfg:    cfg,
		sensor: sensor,
		modes:  modes,
		curves: [NumHands]*calibration.Curve{left, right},
		logger: logger,
	}
	for _, h := range Hands {
		e.hands[h] = newHandState(&e.cfg)
	}
	return e, nil
}

// Modes returns the modes the engine reads every tick.
func (e *Engine) Modes() *Modes {
	return e.modes
}

// SetInitialPosition seeds the previous position of a hand so the first velocity is not a jump
// from the origin.
func (e *Engine) SetInitialPosition(h Hand, pos r3.Vector) {
	e.hands[h].setPosition(pos)
}

// Hold freezes the hand's angle until the given time. The angle is still computed on the tick
// the hold is armed.
func (e *Engine) Hold(h Hand, until time.Duration, isBoundary bool) {
	e.hands[h].arm(until, isBoundary)
}

// UpdateHand runs the retraction check and then the boundary update for a hand. The order
// matters: both differentiate against the previous position and only the boundary update
// advances it.
func (e *Engine) UpdateHand(h Hand, shoulder, hand r3.Vector, now time.Duration) float64 {
	e.CheckRetracting(h, shoulder, hand, now)
	return e.UpdateBoundary(h, shoulder, hand, now)
}

// Arbitrate picks the dominant force of each hand, applies the global modes and converts the
// result to angles.
func (e *Engine) Arbitrate(now time.Duration) Output {
	modes := e.modes.State()
	for _, h := range Hands {
		e.selectDominant(e.hands[h], modes, now)
	}

	for _, h := range Hands {
		hs := e.hands[h]
		if !modes.FullForce && hs.dominantForce > e.cfg.LowForceLimit {
			hs.dominantForce = e.cfg.LowForceLimit
		}
		if !modes.GameStarted || modes.Falling {
			hs.dominantForce = 0
			hs.forced = true
		}
	}

	var out Output
	out.MessageType = packet.ForcedMessageType(e.hands[Left].forced, e.hands[Right].forced)
	for _, h := range Hands {
		hs := e.hands[h]
		if hs.holdArmed || now >= hs.holdUntil {
			hs.angle = e.curves[h].Angle(hs.dominantForce)
			if !hs.holdArmed {
				hs.holdIsBoundary = false
			}
		}
		out.Angles[h] = hs.angle
		out.DominantForces[h] = hs.dominantForce
		out.Forced[h] = hs.forced

		hs.forced = false
		hs.holdArmed = false
	}
	return out
}

func (e *Engine) selectDominant(hs *handState, modes ModeState, now time.Duration) {
	collision, bound, ball := hs.avgCollisionForce, hs.boundaryForce, hs.ballForce
	switch {
	case modes.BoundaryOnly:
		e.force(hs, bound, now)
	case (collision == 0 && bound == 0 && ball == 0) || hs.retracting:
		e.force(hs, 0, now)
	case collision >= bound && collision >= ball:
		e.propose(hs, collision, now)
	case ball >= bound && ball >= collision:
		e.propose(hs, ball, now)
	default:
		e.force(hs, bound, now)
	}
}

// force accepts a value immediately and marks the hand as forced.
func (e *Engine) force(hs *handState, value float64, now time.Duration) {
	hs.dominantForce = value
	hs.lastUpdate = now
	hs.forced = true
}

// propose accepts a value only if it clears the hysteresis or the hand is forced this tick.
func (e *Engine) propose(hs *handState, value float64, now time.Duration) {
	if hs.forced ||
		(math.Abs(hs.dominantForce-value) >= e.cfg.MinForceIncrement && now-hs.lastUpdate >= seconds(e.cfg.MinUpdateSeconds)) {
		hs.dominantForce = value
		hs.lastUpdate = now
	}
}

// Config returns the engine's tuning.
func (e *Engine) Config() Config {
	return e.cfg
}

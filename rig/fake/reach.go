// Package fake provides stand-ins for the VR runtime and the actuator link, for tests and for
// running the rig without a headset.
package fake

import (
	"context"
	"math"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/forcefeedback/force"
	"go.viam.com/forcefeedback/rig"
)

// Reach is a scripted user standing still and repeatedly reaching out with both arms towards a
// ball.
type Reach struct {
	Head      r3.Vector
	Shoulders [force.NumHands]r3.Vector
	// Direction is the unit direction of the reach.
	Direction r3.Vector
	// MinExtension and MaxExtension bound the shoulder to hand distance.
	MinExtension float64
	MaxExtension float64
	Period       time.Duration
	Ball         r3.Vector
	// BallRadius is 0 for no ball.
	BallRadius float64
}

// NewReach returns a user at the origin reaching forward (+Z) every two seconds.
func NewReach() *Reach {
	return &Reach{
		Head:         r3.Vector{Y: 1.7},
		Shoulders:    [force.NumHands]r3.Vector{{X: -0.2, Y: 1.45}, {X: 0.2, Y: 1.45}},
		Direction:    r3.Vector{Z: 1},
		MinExtension: 0.15,
		MaxExtension: 0.7,
		Period:       2 * time.Second,
		Ball:         r3.Vector{Y: 1.45, Z: 0.9},
		BallRadius:   0.25,
	}
}

// Extension returns the shoulder to hand distance at the given time.
func (r *Reach) Extension(now time.Duration) float64 {
	phase := 0.0
	if r.Period > 0 {
		phase = (1 - math.Cos(2*math.Pi*now.Seconds()/r.Period.Seconds())) / 2
	}
	return r.MinExtension + (r.MaxExtension-r.MinExtension)*phase
}

// Next returns the frame at the given time.
func (r *Reach) Next(ctx context.Context, now time.Duration) (rig.Frame, error) {
	if err := ctx.Err(); err != nil {
		return rig.Frame{}, err
	}
	frame := rig.Frame{Head: r.Head, Shoulders: r.Shoulders}
	ext := r.Extension(now)
	for _, h := range force.Hands {
		frame.Hands[h] = r.Shoulders[h].Add(r.Direction.Normalize().Mul(ext))
		frame.BallDistance[h] = rig.NoBall
		if r.BallRadius > 0 {
			frame.BallDistance[h] = math.Max(0, frame.Hands[h].Sub(r.Ball).Norm()-r.BallRadius)
		}
	}
	return frame, nil
}

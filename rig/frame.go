package rig

import (
	"context"
	"math"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/forcefeedback/force"
)

// ContactPhase is where a hand is in a contact with a rigid object.
type ContactPhase int

// Contact phases.
const (
	ContactNone ContactPhase = iota
	ContactEnter
	ContactStay
	ContactExit
)

func (p ContactPhase) String() string {
	switch p {
	case ContactNone:
		return "none"
	case ContactEnter:
		return "enter"
	case ContactStay:
		return "stay"
	case ContactExit:
		return "exit"
	}
	return "unknown"
}

// Contact is the contact event of one hand during a tick.
type Contact struct {
	Phase ContactPhase
	// Impulse is the total contact impulse applied during the tick.
	Impulse r3.Vector
}

// A Frame is what the VR runtime reports for one tick. Positions are in meters, Y up.
type Frame struct {
	Head      r3.Vector
	Shoulders [force.NumHands]r3.Vector
	Hands     [force.NumHands]r3.Vector
	Contacts  [force.NumHands]Contact
	// BallDistance is the distance from each hand to the deformable ball's surface.
	BallDistance [force.NumHands]float64
}

// NoBall is a BallDistance meaning no ball is in range.
var NoBall = math.Inf(1)

// A FrameSource produces one frame per tick.
type FrameSource interface {
	Next(ctx context.Context, now time.Duration) (Frame, error)
}

// FrameSourceFunc adapts a function to the FrameSource interface.
type FrameSourceFunc func(ctx context.Context, now time.Duration) (Frame, error)

// Next calls f.
func (f FrameSourceFunc) Next(ctx context.Context, now time.Duration) (Frame, error) {
	return f(ctx, now)
}

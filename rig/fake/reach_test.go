package fake

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/forcefeedback/force"
	"go.viam.com/forcefeedback/rig"
)

func TestReach(t *testing.T) {
	r := NewReach()
	test.That(t, r.Extension(0), test.ShouldAlmostEqual, r.MinExtension)
	test.That(t, r.Extension(time.Second), test.ShouldAlmostEqual, r.MaxExtension)
	test.That(t, r.Extension(2*time.Second), test.ShouldAlmostEqual, r.MinExtension)

	frame, err := r.Next(context.Background(), time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Hands[force.Left].Z, test.ShouldAlmostEqual, 0.7)
	test.That(t, frame.Hands[force.Right].X, test.ShouldAlmostEqual, 0.2)
	test.That(t, frame.BallDistance[force.Left], test.ShouldBeLessThan, 0.2)

	r.BallRadius = 0
	frame, err = r.Next(context.Background(), 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.BallDistance[force.Left], test.ShouldEqual, rig.NoBall)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Next(ctx, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLink(t *testing.T) {
	l := NewLink()
	test.That(t, l.HasRoute(), test.ShouldBeTrue)
	test.That(t, l.Connected(), test.ShouldBeTrue)
	test.That(t, l.SendCommand(1, 2, 0, 0.5), test.ShouldBeNil)
	test.That(t, len(l.Commands()), test.ShouldEqual, 1)
	_, ok := l.Voltage()
	test.That(t, ok, test.ShouldBeFalse)
}

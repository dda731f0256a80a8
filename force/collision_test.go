package force

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCollisionAverage(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	scale := DefaultConfig().GlobalForceScale

	test.That(t, e.ContactEnter(Left, 10), test.ShouldAlmostEqual, 10*scale)
	test.That(t, e.ContactStay(Left, -20), test.ShouldAlmostEqual, 15*scale)
	for i := 1; i <= 6; i++ {
		e.ContactStay(Left, float64(i))
	}
	test.That(t, e.Display(Left, 0).AvgCollisionForce, test.ShouldAlmostEqual, 4*scale)
	samples := e.hands[Left].collisions.Samples()
	test.That(t, samples, test.ShouldHaveLength, 5)
	test.That(t, samples[0], test.ShouldAlmostEqual, 2*scale)
	test.That(t, samples[4], test.ShouldAlmostEqual, 6*scale)

	e.ContactExit(Left)
	test.That(t, e.Display(Left, 0).AvgCollisionForce, test.ShouldEqual, 0)
	out := e.Arbitrate(time.Second)
	test.That(t, out.Forced[Left], test.ShouldBeTrue)
	test.That(t, out.DominantForces[Left], test.ShouldEqual, 0)
}

func TestCollisionDominates(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.SetBallForce(Right, 1)
	e.ContactEnter(Right, 100)
	out := e.Arbitrate(time.Second)
	test.That(t, out.DominantForces[Right], test.ShouldAlmostEqual, 100*DefaultConfig().GlobalForceScale)
	test.That(t, out.MessageType.RightForced(), test.ShouldBeTrue)
	test.That(t, out.MessageType.LeftForced(), test.ShouldBeTrue)
}

func TestEffectiveCollisionForce(t *testing.T) {
	shoulder := r3.Vector{Y: 1.4}
	hand := r3.Vector{Y: 1.4, Z: 0.6}
	test.That(t, EffectiveCollisionForce(shoulder, hand, r3.Vector{Z: 0.5}, 0.02), test.ShouldAlmostEqual, 25)
	test.That(t, EffectiveCollisionForce(shoulder, hand, r3.Vector{Z: -0.5}, 0.02), test.ShouldAlmostEqual, -25)
	test.That(t, EffectiveCollisionForce(shoulder, hand, r3.Vector{X: 1}, 0.02), test.ShouldAlmostEqual, 0)
	test.That(t, EffectiveCollisionForce(shoulder, shoulder, r3.Vector{X: 1}, 0.02), test.ShouldEqual, 0)
	test.That(t, EffectiveCollisionForce(shoulder, hand, r3.Vector{Z: 1}, 0), test.ShouldEqual, 0)
}

func TestBallProximity(t *testing.T) {
	test.That(t, ProximityForce(0.5, 1, 10), test.ShouldEqual, 5)
	test.That(t, ProximityForce(2, 1, 10), test.ShouldEqual, 0)
	test.That(t, ProximityForce(0.5, 0, 10), test.ShouldEqual, 0)

	e, modes := newTestEngine(t, nil)
	test.That(t, e.UpdateBallProximity(Left, 0.5), test.ShouldEqual, 50)
	modes.SetBoundaryOnly(true)
	test.That(t, e.UpdateBallProximity(Left, 0.5), test.ShouldEqual, 0)
	modes.SetBoundaryOnly(false)
	modes.SetGameStarted(false)
	test.That(t, e.UpdateBallProximity(Left, 0.1), test.ShouldEqual, 0)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate("engine"), test.ShouldBeNil)

	cfg.Boundary.ProximityClose = 0.1
	err := cfg.Validate("engine")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "engine.boundary")

	cfg = DefaultConfig()
	cfg.CollisionWindow = 0
	test.That(t, cfg.Validate("engine"), test.ShouldNotBeNil)

	test.That(t, Left.String(), test.ShouldEqual, "left")
	test.That(t, Right.String(), test.ShouldEqual, "right")
}

package calibration

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestCurveAngle(t *testing.T) {
	curve, err := NewCurve([]float64{0, 10, 25, 50}, []float64{0, 10, 20, 60})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, curve.Angle(0), test.ShouldEqual, 0)
	test.That(t, curve.Angle(-4), test.ShouldEqual, 0)
	test.That(t, curve.Angle(math.NaN()), test.ShouldEqual, 0)

	// control points map exactly.
	for i := 1; i < curve.Len(); i++ {
		force, angle := curve.Point(i)
		test.That(t, curve.Angle(force), test.ShouldEqual, int(angle))
	}

	test.That(t, curve.Angle(5), test.ShouldEqual, 5)
	test.That(t, curve.Angle(37.5), test.ShouldEqual, 40)
	// past the top of the curve clamps to its final angle.
	test.That(t, curve.Angle(1000), test.ShouldEqual, 60)
}

func TestCurveRoundsHalfToEven(t *testing.T) {
	curve, err := NewCurve([]float64{0, 10}, []float64{0, 5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, curve.Angle(1), test.ShouldEqual, 0)
	test.That(t, curve.Angle(3), test.ShouldEqual, 2)
	test.That(t, curve.Angle(5), test.ShouldEqual, 2)
	test.That(t, curve.Angle(7), test.ShouldEqual, 4)
}

func TestDefaultCurvesMonotonicAndBounded(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate("calibration"), test.ShouldBeNil)
	left, right, err := cfg.Curves()
	test.That(t, err, test.ShouldBeNil)

	for _, curve := range []*Curve{left, right} {
		prev := 0
		for force := 0.0; force <= 150; force += 0.25 {
			angle := curve.Angle(force)
			test.That(t, angle, test.ShouldBeGreaterThanOrEqualTo, prev)
			test.That(t, angle, test.ShouldBeLessThanOrEqualTo, MaxAngle)
			prev = angle
		}
	}
	test.That(t, left.Angle(25), test.ShouldEqual, 131)
	test.That(t, right.Angle(2.5), test.ShouldEqual, 86)
}

func TestNewCurveRejectsMalformed(t *testing.T) {
	for _, tc := range []struct {
		name   string
		forces []float64
		angles []float64
	}{
		{"empty", nil, nil},
		{"mismatched", []float64{0, 1}, []float64{0}},
		{"single point", []float64{0}, []float64{0}},
		{"nonzero start", []float64{1, 2}, []float64{0, 1}},
		{"repeated force", []float64{0, 5, 5}, []float64{0, 1, 2}},
		{"decreasing angle", []float64{0, 5, 10}, []float64{0, 20, 10}},
		{"angle too large", []float64{0, 5}, []float64{0, 136}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCurve(tc.forces, tc.angles)
			test.That(t, err, test.ShouldNotBeNil)
		})
	}

	_, err := NewCurve(nil, nil)
	test.That(t, err, test.ShouldEqual, ErrEmptyCurve)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RightAngles = cfg.RightAngles[:3]
	err := cfg.Validate("calibration")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "calibration.right_angles")

	err = (&Config{}).Validate("calibration")
	test.That(t, err.Error(), test.ShouldContainSubstring, "forces")
}

// Package calibration converts a force on the rig into the servo angle that approximates it,
// using empirically measured force/angle curves.
package calibration

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/forcefeedback/utils"
)

// MaxAngle is the largest angle the actuators accept, in degrees.
const MaxAngle = 135

// ErrEmptyCurve is returned for a calibration curve without points.
var ErrEmptyCurve = errors.New("calibration curve has no points")

var (
	// DefaultForces are the measured forces, roughly 0 to 100 pounds of force.
	DefaultForces = []float64{0, 5, 10, 15, 20, 25, 30, 40, 50, 60, 70, 80, 90, 100}
	// DefaultLeftAngles are the left actuator's angles for DefaultForces.
	DefaultLeftAngles = []float64{70, 109, 122, 126, 130, 131, 134, 135, 135, 135, 135, 135, 135, 135}
	// DefaultRightAngles are the right actuator's angles for DefaultForces.
	DefaultRightAngles = []float64{75, 97, 106, 110, 117, 122, 128, 135, 135, 135, 135, 135, 135, 135}
)

// A Curve is an ordered set of (force, angle) control points. Curves are immutable once built
// and may be shared between goroutines.
type Curve struct {
	forces []float64
	angles []float64
}

// NewCurve validates the control points and builds a curve. The first force must be 0, forces
// must strictly increase, and angles must be non-decreasing within [0, MaxAngle].
func NewCurve(forces, angles []float64) (*Curve, error) {
	if len(forces) == 0 || len(angles) == 0 {
		return nil, ErrEmptyCurve
	}
	if len(forces) != len(angles) {
		return nil, errors.Errorf("calibration curve has %d forces but %d angles", len(forces), len(angles))
	}
	if len(forces) < 2 {
		return nil, errors.New("calibration curve needs at least two points")
	}
	if forces[0] != 0 {
		return nil, errors.Errorf("calibration curve must start at force 0, got %v", forces[0])
	}
	for i := range forces {
		if angles[i] < 0 || angles[i] > MaxAngle {
			return nil, errors.Errorf("calibration angle %v at index %d is outside [0, %d]", angles[i], i, MaxAngle)
		}
		if i == 0 {
			continue
		}
		if forces[i] <= forces[i-1] {
			return nil, errors.Errorf("calibration forces must strictly increase (index %d: %v after %v)",
				i, forces[i], forces[i-1])
		}
		if angles[i] < angles[i-1] {
			return nil, errors.Errorf("calibration angles must not decrease (index %d: %v after %v)",
				i, angles[i], angles[i-1])
		}
	}
	return &Curve{
		forces: append([]float64(nil), forces...),
		angles: append([]float64(nil), angles...),
	}, nil
}

// Angle maps a force to a servo angle. No force means angle 0 so the servo does not spend
// energy holding the start of the curve; forces past the curve take the final angle.
func (c *Curve) Angle(force float64) int {
	if !(force > 0) {
		return 0
	}
	last := len(c.forces) - 1
	angle := c.angles[last]
	for i := 1; i <= last; i++ {
		if force <= c.forces[i] {
			frac := (force - c.forces[i-1]) / (c.forces[i] - c.forces[i-1])
			angle = c.angles[i-1] + (c.angles[i]-c.angles[i-1])*frac
			break
		}
	}
	return int(utils.Clamp(math.RoundToEven(angle), 0, MaxAngle))
}

// Len returns the number of control points.
func (c *Curve) Len() int {
	return len(c.forces)
}

// Point returns the i-th control point.
func (c *Curve) Point(i int) (force, angle float64) {
	return c.forces[i], c.angles[i]
}

// Config describes the calibration of both actuators. The force axis is shared.
type Config struct {
	Forces      []float64 `json:"forces,omitempty"`
	LeftAngles  []float64 `json:"left_angles,omitempty"`
	RightAngles []float64 `json:"right_angles,omitempty"`
}

// DefaultConfig returns the measured calibration of the rig.
func DefaultConfig() Config {
	return Config{
		Forces:      append([]float64(nil), DefaultForces...),
		LeftAngles:  append([]float64(nil), DefaultLeftAngles...),
		RightAngles: append([]float64(nil), DefaultRightAngles...),
	}
}

// Validate ensures both curves can be built.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Forces) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "forces")
	}
	if _, err := NewCurve(cfg.Forces, cfg.LeftAngles); err != nil {
		return goutils.NewConfigValidationError(fmt.Sprintf("%s.left_angles", path), err)
	}
	if _, err := NewCurve(cfg.Forces, cfg.RightAngles); err != nil {
		return goutils.NewConfigValidationError(fmt.Sprintf("%s.right_angles", path), err)
	}
	return nil
}

// Curves builds the left and right curves.
func (cfg *Config) Curves() (left, right *Curve, err error) {
	left, err = NewCurve(cfg.Forces, cfg.LeftAngles)
	if err != nil {
		return nil, nil, errors.Wrap(err, "left calibration")
	}
	right, err = NewCurve(cfg.Forces, cfg.RightAngles)
	if err != nil {
		return nil, nil, errors.Wrap(err, "right calibration")
	}
	return left, right, nil
}

package force

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Zone holds the proximity and prediction thresholds for one kind of boundary.
type Zone struct {
	// ProximityLimit is the critical distance (m) under which the actuator saturates.
	ProximityLimit float64 `json:"proximity_limit_m"`
	// ProximityClose is the distance (m) under which the actuator pre-positions.
	ProximityClose float64 `json:"proximity_close_m"`
	// PredictionTime is the look-ahead (s) within which a predicted crossing saturates and holds.
	PredictionTime float64 `json:"prediction_time_s"`
	// PredictionRange is how close (m) both hand and shoulder must be for a prediction to count.
	PredictionRange float64 `json:"prediction_range_m"`
}

// Validate ensures the zone's thresholds are ordered and positive.
func (z *Zone) Validate(path string) error {
	if z.ProximityLimit <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "proximity_limit_m")
	}
	if z.ProximityClose < z.ProximityLimit {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("proximity_close_m (%v) must not be below proximity_limit_m (%v)", z.ProximityClose, z.ProximityLimit))
	}
	if z.PredictionTime < 0 || z.PredictionRange < 0 {
		return goutils.NewConfigValidationError(path, errors.New("prediction thresholds cannot be negative"))
	}
	return nil
}

// Config holds the tunables of the arbitration engine. Forces are in pounds of force.
type Config struct {
	// TickSeconds is the fixed simulation step used to differentiate positions.
	TickSeconds float64 `json:"tick_seconds"`

	// GlobalForceScale converts collision forces (N) to pounds of force.
	GlobalForceScale float64 `json:"global_force_scale"`
	// BallForceScale multiplies the proximity force pushed for the deformable ball.
	BallForceScale float64 `json:"ball_force_scale"`
	// ProximityForceScale and ProximityRange shape the ball proximity force before scaling.
	ProximityForceScale float64 `json:"proximity_force_scale"`
	ProximityRange      float64 `json:"proximity_range_m"`

	CollisionWindow     int     `json:"collision_window"`
	RetractionWindow    int     `json:"retraction_window"`
	RetractionThreshold float64 `json:"retraction_threshold"`

	// MinForceIncrement and MinUpdateSeconds form the hysteresis on the dominant force.
	MinForceIncrement float64 `json:"min_force_increment"`
	MinUpdateSeconds  float64 `json:"min_update_seconds"`

	// LowForceLimit caps the dominant force when full force mode is off.
	LowForceLimit      float64 `json:"low_force_limit"`
	MaxBoundaryForce   float64 `json:"max_boundary_force"`
	CloseBoundaryForce float64 `json:"close_boundary_force"`
	HoldSeconds        float64 `json:"hold_seconds"`

	Boundary Zone `json:"boundary"`
	Ceiling  Zone `json:"ceiling"`
}

// DefaultConfig returns the tuning the rig was measured with.
func DefaultConfig() Config {
	return Config{
		TickSeconds:         0.02,
		GlobalForceScale:    0.224809,
		BallForceScale:      10,
		ProximityForceScale: 10,
		ProximityRange:      1.0,
		CollisionWindow:     5,
		RetractionWindow:    10,
		RetractionThreshold: -0.03,
		MinForceIncrement:   3,
		MinUpdateSeconds:    0.05,
		LowForceLimit:       20,
		MaxBoundaryForce:    100,
		CloseBoundaryForce:  1,
		HoldSeconds:         0.5,
		Boundary: Zone{
			ProximityLimit:  0.15,
			ProximityClose:  0.5,
			PredictionTime:  0.4,
			PredictionRange: 0.8,
		},
		Ceiling: Zone{
			ProximityLimit:  0.15,
			ProximityClose:  0.25,
			PredictionTime:  0.4,
			PredictionRange: 0.8,
		},
	}
}

// Validate ensures the config is usable.
func (cfg *Config) Validate(path string) error {
	if cfg.TickSeconds <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "tick_seconds")
	}
	if cfg.CollisionWindow < 1 {
		return goutils.NewConfigValidationError(path, errors.New("collision_window must be at least 1"))
	}
	if cfg.RetractionWindow < 1 {
		return goutils.NewConfigValidationError(path, errors.New("retraction_window must be at least 1"))
	}
	if cfg.GlobalForceScale <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "global_force_scale")
	}
	if cfg.MinForceIncrement < 0 || cfg.MinUpdateSeconds < 0 || cfg.HoldSeconds < 0 {
		return goutils.NewConfigValidationError(path, errors.New("hysteresis and hold durations cannot be negative"))
	}
	if cfg.LowForceLimit < 0 || cfg.MaxBoundaryForce <= 0 {
		return goutils.NewConfigValidationError(path, errors.New("force limits must be positive"))
	}
	if err := cfg.Boundary.Validate(fmt.Sprintf("%s.boundary", path)); err != nil {
		return err
	}
	return cfg.Ceiling.Validate(fmt.Sprintf("%s.ceiling", path))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

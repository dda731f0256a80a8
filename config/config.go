// Package config reads the rig configuration and watches the mode file.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/forcefeedback/calibration"
	"go.viam.com/forcefeedback/force"
	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/transport"
)

// DefaultTickHz is the control loop frequency used when none is configured.
const DefaultTickHz = 50.0

// Config is the whole rig configuration.
type Config struct {
	// TickHz is the control loop frequency. The engine differentiates over 1/TickHz.
	TickHz      float64            `json:"tick_hz"`
	Engine      force.Config       `json:"engine"`
	Calibration calibration.Config `json:"calibration"`
	Transport   transport.Config   `json:"transport"`
	// Modes are applied at startup; ModesFile, when set, overrides them on every change.
	Modes     force.ModeState `json:"modes"`
	ModesFile string          `json:"modes_file,omitempty"`
	LogFile   string          `json:"log_file,omitempty"`
	LogLevel  string          `json:"log_level,omitempty"`

	ConfigFilePath string `json:"-"`
}

// Defaults returns the configuration of the rig as it was measured.
func Defaults() Config {
	return Config{
		TickHz:      DefaultTickHz,
		Engine:      force.DefaultConfig(),
		Calibration: calibration.DefaultConfig(),
		Transport:   transport.DefaultConfig(),
		Modes:       force.ModeState{CeilingHeight: force.DefaultCeilingHeight},
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if c.TickHz <= 0 || c.TickHz > 200 {
		return goutils.NewConfigValidationError("tick_hz", errors.Errorf("%v is not in (0, 200]", c.TickHz))
	}
	if err := c.Engine.Validate("engine"); err != nil {
		return err
	}
	if err := c.Calibration.Validate("calibration"); err != nil {
		return err
	}
	if err := c.Transport.Validate("transport"); err != nil {
		return err
	}
	if c.Modes.CeilingHeight <= 0 {
		return goutils.NewConfigValidationError("modes", fmt.Errorf("ceiling_height_m must be positive, got %v", c.Modes.CeilingHeight))
	}
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return goutils.NewConfigValidationError("log_level", err)
		}
	}
	return nil
}

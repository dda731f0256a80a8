package transport

import (
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Defaults of the actuator controller protocol.
const (
	DefaultHost           = "ForceFeedback"
	DefaultPort           = 5005
	DefaultDuplicateSends = 5
	DefaultWindowSize     = 100
)

// Config describes how to reach the actuator controller.
type Config struct {
	// Host is the controller's hostname or IP literal.
	Host string `json:"host"`
	Port int    `json:"port"`
	// ListenPort is the local port replies arrive on. 0 picks an ephemeral port.
	ListenPort int `json:"listen_port"`

	DuplicateSends int `json:"duplicate_sends"`
	WindowSize     int `json:"window_size"`

	ConnectionTimeoutSeconds float64 `json:"connection_timeout_s"`
	ReconnectIntervalSeconds float64 `json:"reconnect_interval_s"`
	VoltageIntervalSeconds   float64 `json:"voltage_interval_s"`
}

// DefaultConfig returns the protocol defaults.
func DefaultConfig() Config {
	return Config{
		Host:                     DefaultHost,
		Port:                     DefaultPort,
		ListenPort:               DefaultPort,
		DuplicateSends:           DefaultDuplicateSends,
		WindowSize:               DefaultWindowSize,
		ConnectionTimeoutSeconds: 1,
		ReconnectIntervalSeconds: 5,
		VoltageIntervalSeconds:   5,
	}
}

// Validate ensures the config is usable.
func (cfg *Config) Validate(path string) error {
	if cfg.Host == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "host")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return goutils.NewConfigValidationError(path, errors.Errorf("port %d is out of range", cfg.Port))
	}
	if cfg.ListenPort < 0 || cfg.ListenPort > 65535 {
		return goutils.NewConfigValidationError(path, errors.Errorf("listen_port %d is out of range", cfg.ListenPort))
	}
	if cfg.DuplicateSends < 1 {
		return goutils.NewConfigValidationError(path, errors.New("duplicate_sends must be at least 1"))
	}
	if cfg.WindowSize < 1 {
		return goutils.NewConfigValidationError(path, errors.New("window_size must be at least 1"))
	}
	if cfg.ConnectionTimeoutSeconds <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "connection_timeout_s")
	}
	if cfg.ReconnectIntervalSeconds <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "reconnect_interval_s")
	}
	if cfg.VoltageIntervalSeconds <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "voltage_interval_s")
	}
	return nil
}

func (cfg *Config) connectionTimeout() time.Duration {
	return time.Duration(cfg.ConnectionTimeoutSeconds * float64(time.Second))
}

func (cfg *Config) reconnectInterval() time.Duration {
	return time.Duration(cfg.ReconnectIntervalSeconds * float64(time.Second))
}

func (cfg *Config) voltageInterval() time.Duration {
	return time.Duration(cfg.VoltageIntervalSeconds * float64(time.Second))
}

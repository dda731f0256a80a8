package rig

import (
	"time"

	"go.viam.com/forcefeedback/logging"
)

// Alert is a notification for the user wearing the headset.
type Alert int

// Alerts.
const (
	AlertConnected Alert = iota
	AlertDisconnected
	AlertLowVoltage
)

func (a Alert) String() string {
	switch a {
	case AlertConnected:
		return "connected"
	case AlertDisconnected:
		return "disconnected"
	case AlertLowVoltage:
		return "low_voltage"
	}
	return "unknown"
}

// LowVoltageThreshold is the battery voltage at or under which the user is warned.
const LowVoltageThreshold = 7.0

// LowVoltageRepeat is the minimum time between two low voltage alerts.
const LowVoltageRepeat = 120 * time.Second

// An Alerter shows alerts to the user. It is called from the control loop and must not block.
type Alerter interface {
	Alert(alert Alert, voltage float32)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(alert Alert, voltage float32)

// Alert calls f.
func (f AlerterFunc) Alert(alert Alert, voltage float32) {
	f(alert, voltage)
}

// LogAlerter logs alerts.
func LogAlerter(logger logging.Logger) Alerter {
	return AlerterFunc(func(alert Alert, voltage float32) {
		switch alert {
		case AlertLowVoltage:
			logger.Warnw("battery voltage low", "volts", voltage)
		case AlertDisconnected:
			logger.Warn("force feedback disconnected")
		case AlertConnected:
			logger.Info("force feedback connected")
		}
	})
}

// alertState makes connectivity alerts edge triggered.
type alertState struct {
	connectedSent    bool
	disconnectedSent bool
	lowVoltageSent   bool
	lastLowVoltage   time.Duration
}

func newAlertState() alertState {
	// nothing to report as lost before the first connection
	return alertState{disconnectedSent: true}
}

func (s *alertState) connected(gameStarted bool) bool {
	s.disconnectedSent = false
	if s.connectedSent || !gameStarted {
		return false
	}
	s.connectedSent = true
	return true
}

func (s *alertState) disconnected(gameStarted bool) bool {
	if s.disconnectedSent || !gameStarted {
		return false
	}
	s.disconnectedSent = true
	s.connectedSent = false
	return true
}

func (s *alertState) lowVoltage(volts float32, now time.Duration, gameStarted bool) bool {
	if !gameStarted || volts == 0 || volts > LowVoltageThreshold {
		return false
	}
	if s.lowVoltageSent && now-s.lastLowVoltage <= LowVoltageRepeat {
		return false
	}
	s.lowVoltageSent = true
	s.lastLowVoltage = now
	return true
}

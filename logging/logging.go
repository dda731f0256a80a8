// Package logging contains the structured logger used across the force feedback rig. Every
// component gets a Logger; subloggers and With share their parent's appenders, so an appender
// added once (a rotating file, a test observer) sees every component's entries.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is the logging interface handed to every component.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a child named "<name>.<subname>" with its own level.
	Sublogger(subname string) Logger
	// With returns a logger that adds the key/value pairs to every entry. It shares the
	// receiver's level.
	With(keysAndValues ...interface{}) Logger
	AddAppender(appender Appender)
	SetLevel(level Level)
	GetLevel() Level
	Sync() error
}

// NewLogger returns a logger that writes Info+ entries to stdout in UTC.
func NewLogger(name string) Logger {
	return newLogger(name, INFO, true, NewStdoutAppender())
}

// NewDebugLogger returns a logger that writes Debug+ entries to stdout in UTC.
func NewDebugLogger(name string) Logger {
	return newLogger(name, DEBUG, true, NewStdoutAppender())
}

// NewBlankLogger returns a Debug+ logger in UTC without any appenders.
func NewBlankLogger(name string) Logger {
	return newLogger(name, DEBUG, true)
}

// NewTestLogger returns a Debug+ logger that writes to the test in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also records entries in memory.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observerCore, observedLogs := observer.New(zap.DebugLevel)
	return newLogger("", DEBUG, false, NewTestAppender(tb), observerCore), observedLogs
}

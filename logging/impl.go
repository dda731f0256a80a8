package logging

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sinks are the appenders shared by a logger and everything derived from it.
type sinks struct {
	mu        sync.RWMutex
	appenders []Appender
}

func (s *sinks) add(appender Appender) {
	s.mu.Lock()
	s.appenders = append(s.appenders, appender)
	s.mu.Unlock()
}

func (s *sinks) write(entry zapcore.Entry, fields []zapcore.Field) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, appender := range s.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func (s *sinks) sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var err error
	for _, appender := range s.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

type logger struct {
	name   string
	level  zap.AtomicLevel
	utc    bool
	fields []zapcore.Field
	sinks  *sinks
}

func newLogger(name string, level Level, utc bool, appenders ...Appender) *logger {
	return &logger{
		name:  name,
		level: zap.NewAtomicLevelAt(level.zap()),
		utc:   utc,
		sinks: &sinks{appenders: appenders},
	}
}

func (l *logger) AddAppender(appender Appender) {
	l.sinks.add(appender)
}

func (l *logger) SetLevel(level Level) {
	l.level.SetLevel(level.zap())
}

func (l *logger) GetLevel() Level {
	return Level(l.level.Level())
}

func (l *logger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return &logger{
		name:   name,
		level:  zap.NewAtomicLevelAt(l.level.Level()),
		utc:    l.utc,
		fields: l.fields,
		sinks:  l.sinks,
	}
}

func (l *logger) With(keysAndValues ...interface{}) Logger {
	child := *l
	child.fields = append(append([]zapcore.Field(nil), l.fields...), toFields(keysAndValues)...)
	return &child
}

func (l *logger) Sync() error {
	return l.sinks.sync()
}

// emit is only called through print, printf and printw so caller skips the right frames.
func (l *logger) emit(level Level, msg string, fields []zapcore.Field) {
	entry := zapcore.Entry{
		LoggerName: l.name,
		Time:       time.Now(),
		Level:      level.zap(),
		Message:    msg,
		Caller:     caller(),
	}
	if l.utc {
		entry.Time = entry.Time.UTC()
	}
	if len(l.fields) > 0 {
		fields = append(append([]zapcore.Field(nil), l.fields...), fields...)
	}
	l.sinks.write(entry, fields)
}

func (l *logger) print(level Level, args []interface{}) {
	if l.level.Enabled(level.zap()) {
		l.emit(level, fmt.Sprint(args...), nil)
	}
}

func (l *logger) printf(level Level, template string, args []interface{}) {
	if l.level.Enabled(level.zap()) {
		l.emit(level, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) printw(level Level, msg string, keysAndValues []interface{}) {
	if l.level.Enabled(level.zap()) {
		l.emit(level, msg, toFields(keysAndValues))
	}
}

func (l *logger) Debug(args ...interface{}) { l.print(DEBUG, args) }
func (l *logger) Debugf(template string, args ...interface{}) { l.printf(DEBUG, template, args) }
func (l *logger) Debugw(msg string, kvs ...interface{}) { l.printw(DEBUG, msg, kvs) }
func (l *logger) Info(args ...interface{}) { l.print(INFO, args) }
func (l *logger) Infof(template string, args ...interface{}) { l.printf(INFO, template, args) }
func (l *logger) Infow(msg string, kvs ...interface{}) { l.printw(INFO, msg, kvs) }
func (l *logger) Warn(args ...interface{}) { l.print(WARN, args) }
func (l *logger) Warnf(template string, args ...interface{}) { l.printf(WARN, template, args) }
func (l *logger) Warnw(msg string, kvs ...interface{}) { l.printw(WARN, msg, kvs) }
func (l *logger) Error(args ...interface{}) { l.print(ERROR, args) }
func (l *logger) Errorf(template string, args ...interface{}) { l.printf(ERROR, template, args) }
func (l *logger) Errorw(msg string, kvs ...interface{}) { l.printw(ERROR, msg, kvs) }

// toFields pairs up keys and values. A dangling key is kept with an error value rather than
// dropped.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func caller() zapcore.EntryCaller {
	// caller, emit, print*, the public method, then the call site
	const skip = 4
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	ec := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		ec.Function = fn.Name()
	}
	return ec
}

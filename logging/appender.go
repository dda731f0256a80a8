package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the time format used by the console and test appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. `zapcore.Core` satisfies this interface, which is how
// the observer used by tests receives entries.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes tab separated log lines to a writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender returns an appender that writes to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender returns an appender that writes to the given writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// NewFileAppender returns an appender writing to a size-rotated log file, along with the closer
// for that file.
func NewFileAppender(filename string) (ConsoleAppender, io.Closer) {
	rotating := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    20,
		MaxBackups: 3,
		Compress:   true,
	}
	return ConsoleAppender{rotating}, rotating
}

// Write outputs the entry and any fields as a single line.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	if err != nil {
		return err
	}
	_, err = appender.Writer.Write([]byte(line + "\n"))
	return err
}

// Sync flushes the writer when it supports syncing.
func (appender ConsoleAppender) Sync() error {
	if syncer, ok := appender.Writer.(zapcore.WriteSyncer); ok {
		return syncer.Sync()
	}
	return nil
}

// formatEntry renders `<time>\t<LEVEL>\t<logger>\t<file:line>\t<msg>\t<json fields>`.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	parts := []string{
		entry.Time.Format(DefaultTimeFormatStr),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		parts = append(parts, shortCaller(entry.Caller))
	}
	parts = append(parts, entry.Message)
	if len(fields) == 0 {
		return strings.Join(parts, "\t"), nil
	}

	// the JSON encoder keeps fields in order; an empty entry leaves only the fields
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(parts, "\t"), err
	}
	defer buf.Free()
	parts = append(parts, buf.String())
	return strings.Join(parts, "\t"), nil
}

// shortCaller keeps the package directory and file, e.g. "transport/client.go:134".
func shortCaller(caller zapcore.EntryCaller) string {
	dir, file := path.Split(caller.File)
	if dir == "" {
		return fmt.Sprintf("%s:%d", file, caller.Line)
	}
	return fmt.Sprintf("%s/%s:%d", path.Base(dir), file, caller.Line)
}

package log

import (
	"context"
	"io"
	"log/slog"
)

// Logger is a custom structured logger on top of slog.Logger
// that logs in JSON format.
type Logger struct {
	slogger *slog.Logger
}

// NewLogger creates a new Logger that writes to the given writer at info
// level. The writer is typically os.Stdout but can be any io.Writer.
func NewLogger(writer io.Writer) Logger {
	return NewLoggerWithLevel(writer, slog.LevelInfo)
}

// NewLoggerWithLevel creates a new Logger that writes records of the given
// level and above.
func NewLoggerWithLevel(writer io.Writer, level slog.Level) Logger {
	slogger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	return Logger{
		slogger: slogger,
	}
}

// Discard returns a Logger that drops every record.
func Discard() Logger {
	return NewLoggerWithLevel(io.Discard, slog.LevelError+1)
}

// IsInitialized reports whether the logger was built with one of the
// constructors. The zero Logger is not usable.
func (l *Logger) IsInitialized() bool {
	return l != nil && l.slogger != nil
}

// Enabled reports whether records of level are written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.slogger.Enabled(context.Background(), level)
}

// write skips building the attributes when level is filtered out. An empty
// namespace logs without the "ns" pair.
func (l *Logger) write(level slog.Level, namespace string, msg string, keyVals []KV) {
	if !l.Enabled(level) {
		return
	}
	args := kvToArgs(keyVals...)
	if namespace != "" {
		args = kvToArgsNs(namespace, keyVals...)
	}
	l.slogger.Log(context.Background(), level, msg, args...)
}

// Info logs structured info message.
//
// Accepts a message and a list of key-value pairs to be logged.
func (l *Logger) Info(msg string, keyVals ...KV) {
	l.write(slog.LevelInfo, "", msg, keyVals)
}

// InfoNs logs structured info message with a namespace.
//
// The namespace is used to differentiate logs from different parts
// and will be included as the first key-value pair in the log.
func (l *Logger) InfoNs(namespace string, msg string, keyVals ...KV) {
	l.write(slog.LevelInfo, namespace, msg, keyVals)
}

func (l *Logger) Debug(msg string, keyVals ...KV) {
	l.write(slog.LevelDebug, "", msg, keyVals)
}

func (l *Logger) DebugNs(namespace string, msg string, keyVals ...KV) {
	l.write(slog.LevelDebug, namespace, msg, keyVals)
}

func (l *Logger) Warn(msg string, keyVals ...KV) {
	l.write(slog.LevelWarn, "", msg, keyVals)
}

func (l *Logger) WarnNs(namespace string, msg string, keyVals ...KV) {
	l.write(slog.LevelWarn, namespace, msg, keyVals)
}

func (l *Logger) Error(msg string, keyVals ...KV) {
	l.write(slog.LevelError, "", msg, keyVals)
}

func (l *Logger) ErrorNs(namespace string, msg string, keyVals ...KV) {
	l.write(slog.LevelError, namespace, msg, keyVals)
}

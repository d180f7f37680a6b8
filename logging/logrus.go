package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogrusLogger is the default Logger implementation, backed by logrus.
// Debug/Info -> stdout style text output, Warn and above colored by the
// logrus text formatter when attached to a terminal.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a logger with a fresh logrus instance
func NewLogrusLogger() *LogrusLogger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	base.SetLevel(logrus.InfoLevel)

	return &LogrusLogger{
		entry: logrus.NewEntry(base),
	}
}

// NewLogrusLoggerFrom wraps an existing logrus logger, so the engine can
// share the host application's logging configuration.
func NewLogrusLoggerFrom(base *logrus.Logger) *LogrusLogger {
	if base == nil {
		return NewLogrusLogger()
	}
	return &LogrusLogger{
		entry: logrus.NewEntry(base),
	}
}

func (l *LogrusLogger) withMerged(fields []Fields) *logrus.Entry {
	entry := l.entry
	for _, f := range fields {
		entry = entry.WithFields(logrus.Fields(f))
	}
	return entry
}

func (l *LogrusLogger) Debug(msg string, fields ...Fields) {
	l.withMerged(fields).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields ...Fields) {
	l.withMerged(fields).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields ...Fields) {
	l.withMerged(fields).Warn(msg)
}

func (l *LogrusLogger) Error(err error, msg string, fields ...Fields) {
	entry := l.withMerged(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

func (l *LogrusLogger) Fatal(err error, msg string, fields ...Fields) {
	entry := l.withMerged(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Fatal(msg)
}

func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	if fields := FieldsFromContext(ctx); fields != nil {
		return l.WithFields(fields)
	}
	return l
}

func (l *LogrusLogger) SetLevel(level Level) {
	switch level {
	case DebugLevel:
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	case InfoLevel:
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	case WarnLevel:
		l.entry.Logger.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		l.entry.Logger.SetLevel(logrus.ErrorLevel)
	case FatalLevel:
		l.entry.Logger.SetLevel(logrus.FatalLevel)
	}
}

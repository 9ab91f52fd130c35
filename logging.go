package serial

import "go.uber.org/zap"

// Logger is the subset of *zap.SugaredLogger the core uses, kept as an
// interface so callers can swap in any structured logger without pulling
// zap into their own import graph.
type Logger interface {
	Debugw(msg string, kv ...interface{})
	Warnw(msg string, kv ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugw(string, ...interface{}) {}
func (nopLogger) Warnw(string, ...interface{})  {}

// NewZapLogger adapts a *zap.SugaredLogger for use as the library's Logger.
// Pass it to Manager.SetLogger to replace the silent-by-default logger.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	return zapLogger{l}
}

type zapLogger struct {
	l *zap.SugaredLogger
}

func (z zapLogger) Debugw(msg string, kv ...interface{}) { z.l.Debugw(msg, kv...) }
func (z zapLogger) Warnw(msg string, kv ...interface{})  { z.l.Warnw(msg, kv...) }

// Package mlog defines the structured logging surface every component
// logs through, grounded on the teacher's pkg/mzap sugared-logger wrapper.
package mlog

// Logger is the minimal structured-logging surface components depend on.
// Implementations must be safe for concurrent use.
type Logger interface {
	Info(args ...any)
	Infof(template string, args ...any)
	Warn(args ...any)
	Warnf(template string, args ...any)
	Error(args ...any)
	Errorf(template string, args ...any)
	Debug(args ...any)
	Debugf(template string, args ...any)

	// With returns a derived Logger carrying the given key/value pairs on
	// every subsequent call, mirroring zap's SugaredLogger.With.
	With(keysAndValues ...any) Logger

	// Sync flushes any buffered log entries.
	Sync() error
}

// NopLogger discards everything. Useful as a default before bootstrap
// wires a real logger, and in unit tests that don't assert on log output.
type NopLogger struct{}

func (NopLogger) Info(args ...any)                  {}
func (NopLogger) Infof(template string, args ...any) {}
func (NopLogger) Warn(args ...any)                  {}
func (NopLogger) Warnf(template string, args ...any) {}
func (NopLogger) Error(args ...any)                 {}
func (NopLogger) Errorf(template string, args ...any) {}
func (NopLogger) Debug(args ...any)                 {}
func (NopLogger) Debugf(template string, args ...any) {}
func (l NopLogger) With(keysAndValues ...any) Logger { return l }
func (NopLogger) Sync() error                        { return nil }

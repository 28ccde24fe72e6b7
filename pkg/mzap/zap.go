// Package mzap is the pkg/mlog.Logger implementation every bootstrap
// wires in by default, grounded on the teacher's common/mzap sugared-zap
// wrapper (adapted from its otelzap bridge to plain zap, since span
// correlation here goes through pkg/observability instead).
package mzap

import (
	"go.uber.org/zap"

	"github.com/lerian-kg/kgarbiter/pkg/mlog"
)

// ZapWithTraceLogger adapts a zap.SugaredLogger to mlog.Logger.
type ZapWithTraceLogger struct {
	Logger *zap.SugaredLogger
}

var _ mlog.Logger = (*ZapWithTraceLogger)(nil)

func (l *ZapWithTraceLogger) Info(args ...any)                   { l.Logger.Info(args...) }
func (l *ZapWithTraceLogger) Infof(template string, args ...any) { l.Logger.Infof(template, args...) }
func (l *ZapWithTraceLogger) Warn(args ...any)                   { l.Logger.Warn(args...) }
func (l *ZapWithTraceLogger) Warnf(template string, args ...any) { l.Logger.Warnf(template, args...) }
func (l *ZapWithTraceLogger) Error(args ...any)                  { l.Logger.Error(args...) }
func (l *ZapWithTraceLogger) Errorf(template string, args ...any) {
	l.Logger.Errorf(template, args...)
}
func (l *ZapWithTraceLogger) Debug(args ...any)                   { l.Logger.Debug(args...) }
func (l *ZapWithTraceLogger) Debugf(template string, args ...any) { l.Logger.Debugf(template, args...) }

// With returns a derived logger carrying keysAndValues on every
// subsequent call.
//
//nolint:ireturn
func (l *ZapWithTraceLogger) With(keysAndValues ...any) mlog.Logger {
	return &ZapWithTraceLogger{Logger: l.Logger.With(keysAndValues...)}
}

func (l *ZapWithTraceLogger) Sync() error { return l.Logger.Sync() }

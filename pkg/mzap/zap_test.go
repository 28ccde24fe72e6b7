package mzap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestLogger() *ZapWithTraceLogger {
	logger, _ := zap.NewDevelopment()
	return &ZapWithTraceLogger{Logger: logger.Sugar()}
}

func TestZapWithTraceLogger(t *testing.T) {
	l := newTestLogger()

	l.Info("info", "msg")
	l.Infof("info %s", "msg")
	l.Warn("warn", "msg")
	l.Warnf("warn %s", "msg")
	l.Error("error", "msg")
	l.Errorf("error %s", "msg")
	l.Debug("debug", "msg")
	l.Debugf("debug %s", "msg")

	derived := l.With("request_id", "abc")
	assert.NotNil(t, derived)

	assert.NoError(t, l.Sync())
}

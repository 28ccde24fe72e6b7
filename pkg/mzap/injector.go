package mzap

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lerian-kg/kgarbiter/pkg/mlog"
)

// InitializeLogger builds the default logger from ENV_NAME/LOG_LEVEL,
// mirroring the teacher's production-vs-development zap config split.
func InitializeLogger() mlog.Logger {
	logger, err := InitializeLoggerWithError()
	if err != nil {
		panic(err)
	}

	return logger
}

// InitializeLoggerWithError is InitializeLogger without the panic, for
// callers (bootstrap) that want to report the failure themselves.
func InitializeLoggerWithError() (mlog.Logger, error) {
	var zapCfg zap.Config

	if os.Getenv("ENV_NAME") == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if val, ok := os.LookupEnv("LOG_LEVEL"); ok {
		var lvl zapcore.Level
		if err := lvl.Set(val); err != nil {
			fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL %q, falling back to info: %v\n", val, err)

			lvl = zapcore.InfoLevel
		}

		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	zapCfg.DisableStacktrace = true

	logger, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("mzap: build logger: %w", err)
	}

	return &ZapWithTraceLogger{Logger: logger.Sugar()}, nil
}

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inmoval/billing/internal/config"
	"github.com/inmoval/billing/internal/types"
)

// Logger wraps zap.SugaredLogger to provide logging functionality
type Logger struct {
	*zap.SugaredLogger
}

// Global logger for convenience
var L *Logger

// NewLogger creates and returns a new Logger instance
func NewLogger(cfg *config.Configuration) (*Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg != nil && cfg.Logging.Level == types.LogLevelDebug {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	logger := &Logger{SugaredLogger: zapLogger.Sugar()}
	L = logger
	return logger, nil
}

// GetDefaultLogger returns the global logger, initialising a debug-level one
// if NewLogger has not run yet. Intended for scripts and tests; everywhere
// else the injected logger should be used.
func GetDefaultLogger() *Logger {
	if L != nil {
		return L
	}
	zapLogger, _ := zap.NewDevelopment()
	L = &Logger{SugaredLogger: zapLogger.Sugar()}
	return L
}

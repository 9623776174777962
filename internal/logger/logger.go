// Package logger builds the process-wide zap logger used by every cmd/.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON zap logger for serviceName, honoring LOG_LEVEL
// (debug|info|warn|error, default info).
func New(serviceName string) *zap.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		// zap's production config only fails to build on a bad encoder
		// sink, which never happens with the defaults above.
		panic(err)
	}
	return base.With(zap.String("service", serviceName))
}

// Component returns a child logger tagged with name. Every cmd/ uses it to
// build the *zap.Logger it hands to each package's constructor.
func Component(base *zap.Logger, name string) *zap.Logger {
	return base.With(zap.String("component", name))
}

func parseLevel(raw string) zapcore.Level {
	switch raw {
	case "debug", "DEBUG":
		return zapcore.DebugLevel
	case "info", "INFO", "":
		return zapcore.InfoLevel
	case "warn", "WARN":
		return zapcore.WarnLevel
	case "error", "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

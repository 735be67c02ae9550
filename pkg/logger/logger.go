package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the service logger is built.
type Config struct {
	Level       string
	Development bool
	Encoding    string // "json" or "console"
	Service     string // stamped on every entry when set
	Version     string
}

// New builds the service logger. An unknown level falls back to info so a
// misconfigured deployment still logs.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "ts"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}

	log, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return log.With(identityFields(cfg)...), nil
}

// identityFields builds the fields stamped on every entry.
func identityFields(cfg Config) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if cfg.Service != "" {
		fields = append(fields, zap.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		fields = append(fields, zap.String("version", cfg.Version))
	}
	return fields
}

// Default builds a logger from VIZDECK_LOG_LEVEL and
// VIZDECK_APP_ENVIRONMENT, for startup paths that run before the full
// configuration is loaded.
func Default() *zap.Logger {
	log, err := New(Config{
		Level:       os.Getenv("VIZDECK_LOG_LEVEL"),
		Development: os.Getenv("VIZDECK_APP_ENVIRONMENT") != "production",
		Encoding:    "console",
		Service:     "vizdeck",
	})
	if err != nil {
		return zap.NewExample()
	}
	return log
}

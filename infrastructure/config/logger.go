package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger at cfg.LogLevel. The returned level
// can be changed at runtime by the Watcher.
func NewLogger(cfg *Config) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := NewLogLevel(cfg)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	logger, err := NewLoggerAt(cfg, level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return logger, level, nil
}

// NewLogLevel parses cfg.LogLevel into an adjustable level.
func NewLogLevel(cfg *Config) (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return level, nil
}

// NewLoggerAt builds the process logger driven by level.
func NewLoggerAt(cfg *Config, level zap.AtomicLevel) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build(zap.Fields(zap.String("service", cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

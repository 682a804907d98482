package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"quiz-summary-service/internal/config"
)

// New builds the service logger. Development mode uses the console encoder.
func New(cfg config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}

// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seu-repo/symptom-assistant/pkg/config"
)

// New returns a production zap logger, or a development one when the
// format is "console".
func New(cfg config.LoggingConfig, cfgApp config.AppConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("service", cfgApp.Name),
		zap.String("version", cfgApp.Version),
		zap.String("env", cfgApp.Environment),
	), nil
}

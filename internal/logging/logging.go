// Package logging builds the command's logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates a logger writing to stderr at the given level, one of debug,
// info, warn, or error. An empty level means warn. Development loggers write
// human-readable lines instead of JSON.
func New(level string, development bool) (*zap.Logger, error) {
	if level == "" {
		level = "warn"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

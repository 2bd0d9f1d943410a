// Package logging handles diagnostics for okng: the zap debug log, the console
// segment table and the optional labeling report.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// DebugLogPath is where the CLI writes its diagnostic log, keeping the terminal
// free for the table and the review UI.
const DebugLogPath = "okng-debug.log"

// NewLogger builds a sugared zap logger writing to path. debug selects zap's
// development config (console encoding, debug level).
func NewLogger(path string, debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return logger.Sugar(), nil
}

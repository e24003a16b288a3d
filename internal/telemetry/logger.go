// Package telemetry constructs the zap logger every engine strategy logs
// through. The engine logs per-instant, per-batch and per-candidate
// progress at Debug; it writes no Info-level summary lines.
package telemetry

import "go.uber.org/zap"

// NewLogger builds a development-mode, human-readable logger when debug
// is true and a production-mode, JSON logger otherwise.
func NewLogger(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything, for library callers
// that want no log output. Engine entry points do not substitute it for
// a nil logger; callers pass it explicitly.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

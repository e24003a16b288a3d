// Package config loads the engine's own tuning knobs. It is unrelated
// to, and does not replace, the separate job of parsing a feature-model
// source file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy names one of the three engine strategies.
type Strategy string

const (
	StrategySpeculative Strategy = "speculative"
	StrategyGrid        Strategy = "grid"
	StrategyQuantified  Strategy = "quantified"
)

// EngineConfig holds the tuning constants exposed as configuration for
// the speculative strategy's adaptive batching, plus the
// non-incremental tuning flag.
type EngineConfig struct {
	// StartingBatch is the initial ceiling on batch size for the
	// speculative strategy's dead-feature loop.
	StartingBatch int `yaml:"starting_batch"`

	// BatchTimeoutMS is the per-batch solver timeout in milliseconds.
	BatchTimeoutMS int `yaml:"batch_timeout_ms"`

	// NonIncrementalSolver: when true, preliminary warm-up checks are
	// skipped.
	NonIncrementalSolver bool `yaml:"non_incremental_solver"`

	// DefaultStrategy picks which of the three strategies cmd/tfmguard
	// runs when the caller does not name one explicitly.
	DefaultStrategy Strategy `yaml:"default_strategy"`
}

// Default returns the baseline tuning constants.
func Default() EngineConfig {
	return EngineConfig{
		StartingBatch:   64,
		BatchTimeoutMS:  30_000,
		DefaultStrategy: StrategySpeculative,
	}
}

// Load reads an EngineConfig from a YAML file at path, filling any field
// the file omits with Default's value.
func Load(path string) (EngineConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	overlay := EngineConfig{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if overlay.StartingBatch != 0 {
		cfg.StartingBatch = overlay.StartingBatch
	}
	if overlay.BatchTimeoutMS != 0 {
		cfg.BatchTimeoutMS = overlay.BatchTimeoutMS
	}
	if overlay.DefaultStrategy != "" {
		cfg.DefaultStrategy = overlay.DefaultStrategy
	}
	cfg.NonIncrementalSolver = overlay.NonIncrementalSolver

	return cfg, nil
}

// Command tfmguard runs the anomaly-detection engine against a
// YAML-described time-aware feature model, for demonstration and
// manual testing. Library code never calls os.Exit; this binary is
// the external collaborator that turns a returned error into a
// process exit.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitrdm/tfmguard/internal/config"
	"github.com/gitrdm/tfmguard/internal/engine"
	"github.com/gitrdm/tfmguard/internal/tfm"
	"github.com/gitrdm/tfmguard/internal/telemetry"
)

var (
	strategyFlag   string
	configFlag     string
	debugFlag      bool
	nonIncremental bool
	allFlag        bool
)

func main() {
	root := &cobra.Command{
		Use:           "tfmguard MODEL.yaml",
		Short:         "Detect dead and false-optional features in a time-aware feature model",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		RunE:          run,
	}

	root.Flags().StringVar(&strategyFlag, "strategy", "", "strategy to run: speculative, grid, or quantified (default from config)")
	root.Flags().StringVar(&configFlag, "config", "", "path to an engine tuning config (YAML)")
	root.Flags().BoolVar(&debugFlag, "debug", false, "enable human-readable debug logging")
	root.Flags().BoolVar(&nonIncremental, "non-incremental", false, "skip preliminary warm-up checks")
	root.Flags().BoolVar(&allFlag, "all", false, "run all three strategies concurrently and fail if they disagree")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := telemetry.NewLogger(debugFlag)
	if err != nil {
		return fmt.Errorf("tfmguard: build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	cfg := config.Default()
	if configFlag != "" {
		cfg, err = config.Load(configFlag)
		if err != nil {
			return err
		}
	}
	cfg.NonIncrementalSolver = cfg.NonIncrementalSolver || nonIncremental

	doc, err := tfm.LoadYAML(args[0])
	if err != nil {
		return err
	}

	req := engine.Request{
		Features:             doc.Features,
		FeaturesAsBoolean:    doc.FeaturesAsBoolean,
		Contexts:             doc.Contexts,
		Attributes:           doc.Attributes,
		Constraints:          doc.Constraints,
		OptionalFeatures:     doc.OptionalFeatures,
		NonIncrementalSolver: cfg.NonIncrementalSolver,
		TimeContext:          doc.TimeContext,
	}

	if allFlag {
		return engine.RunAll(context.Background(), log, req, cfg, cmd.OutOrStdout())
	}

	strategyName := cfg.DefaultStrategy
	if strategyFlag != "" {
		strategyName = config.Strategy(strategyFlag)
	}

	return engine.Dispatch(context.Background(), log, strategyName, req, cfg, cmd.OutOrStdout())
}

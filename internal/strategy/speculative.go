package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gitrdm/tfmguard/internal/anomaly"
	"github.com/gitrdm/tfmguard/internal/candidate"
	"github.com/gitrdm/tfmguard/internal/config"
	"github.com/gitrdm/tfmguard/internal/harvest"
	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// RunSpeculative implements the batched speculative-pruning strategy:
// per time instant, an adaptive-batch PbGe search collapses many
// dead-feature candidates per solver call, falling back to a singleton
// disjunction once the batch shrinks to 1; false-optional candidates
// are narrowed by a monotonically growing disjunction with no
// batching. The asymmetry between the two loops is intentional and
// kept as-is rather than made symmetric.
func RunSpeculative(ctx context.Context, log *zap.SugaredLogger, in Input, cfg config.EngineConfig) (*anomaly.Result, error) {
	result := anomaly.New()
	s := in.Solver

	for _, f := range in.Base {
		s.Assert(f)
	}

	if !cfg.NonIncrementalSolver {
		log.Debug("preliminary check")
		s.SetTimeout(solverapi.NoTimeout)
		if _, err := s.Check(ctx); err != nil {
			return nil, fmt.Errorf("strategy: speculative: preliminary check: %w", err)
		}
	}

	for _, t := range in.Index.Instants() {
		dead := in.Index[t].Clone()
		false_ := in.Index[t].Clone()

		log.Debugw("processing time instant", "time", t, "candidates", len(dead))

		popOuter := solverapi.Frame(s)
		s.Assert(solverapi.IntEq(in.TimeContext, t))

		if !cfg.NonIncrementalSolver {
			s.SetTimeout(solverapi.NoTimeout)
			if _, err := s.Check(ctx); err != nil {
				popOuter()
				return nil, fmt.Errorf("strategy: speculative: preliminary check at time %d: %w", t, err)
			}
		}

		popDead := solverapi.Frame(s)
		if err := speculativeDeadLoop(ctx, log, s, in.Encoder, in.FeaturesAsBoolean, cfg, dead, false_, t, result); err != nil {
			popDead()
			popOuter()
			return nil, err
		}
		popDead()

		popFalse := solverapi.Frame(s)
		if err := speculativeFalseLoop(ctx, log, s, in.Encoder, in.FeaturesAsBoolean, false_, t, result); err != nil {
			popFalse()
			popOuter()
			return nil, err
		}
		popFalse()

		popOuter()
	}

	return result, nil
}

func speculativeDeadLoop(ctx context.Context, log *zap.SugaredLogger, s solverapi.Solver, enc solverapi.Encoder, featuresAsBoolean bool, cfg config.EngineConfig, dead, false_ candidate.Set, t int, result *anomaly.Result) error {
	startingBatch := cfg.StartingBatch
	if startingBatch <= 0 {
		startingBatch = 64
	}

	batch := minInt(startingBatch, maxInt(1, len(dead)/2))

	for len(dead) > 0 {
		log.Debugw("dead/false candidates remaining", "dead", len(dead), "false", len(false_))

		if batch == 1 {
			s.SetTimeout(solverapi.NoTimeout)
			s.Assert(solverapi.Or{Terms: selectTerms(enc, dead)})

			outcome, err := s.Check(ctx)
			if err != nil {
				return fmt.Errorf("strategy: speculative: singleton dead check at time %d: %w", t, err)
			}
			switch outcome {
			case solverapi.Unsat:
				for _, f := range dead.Slice() {
					result.AddDead(f, t)
				}
				false_.Remove(dead.Slice())
				dead = candidate.Set{}
			case solverapi.Sat:
				deadRemove, falseRemove := harvest.Harvest(log, dead, false_, s.ModelValue(), featuresAsBoolean)
				dead.Remove(deadRemove)
				false_.Remove(falseRemove)
				batch = minInt(startingBatch, maxInt(1, len(dead)/2))
			default:
				return fmt.Errorf("strategy: speculative: singleton dead check at time %d returned %s", t, outcome)
			}
			continue
		}

		pop := solverapi.Frame(s)
		s.SetTimeout(cfg.BatchTimeoutMS)
		s.Assert(enc.BuildPbGe(dead.Slice(), batch))

		outcome, err := s.Check(ctx)
		if err != nil {
			pop()
			return fmt.Errorf("strategy: speculative: batch dead check at time %d: %w", t, err)
		}

		switch outcome {
		case solverapi.Unsat:
			pop()
			batch = maxInt(1, batch/2)
		case solverapi.Sat:
			deadRemove, falseRemove := harvest.Harvest(log, dead, false_, s.ModelValue(), featuresAsBoolean)
			dead.Remove(deadRemove)
			false_.Remove(falseRemove)
			pop()
			batch = minInt(startingBatch, maxInt(1, len(dead)/2))
		case solverapi.Unknown:
			pop()
			batch = maxInt(1, batch/2)
		default:
			pop()
			return fmt.Errorf("strategy: speculative: batch dead check at time %d returned %s", t, outcome)
		}
	}

	return nil
}

func speculativeFalseLoop(ctx context.Context, log *zap.SugaredLogger, s solverapi.Solver, enc solverapi.Encoder, featuresAsBoolean bool, false_ candidate.Set, t int, result *anomaly.Result) error {
	for len(false_) > 0 {
		log.Debugw("false-optional candidates remaining", "false", len(false_))

		terms := make([]solverapi.Expr, 0, len(false_))
		for _, f := range false_.Slice() {
			terms = append(terms, enc.Deselect(f))
		}
		s.Assert(solverapi.Or{Terms: terms})

		outcome, err := s.Check(ctx)
		if err != nil {
			return fmt.Errorf("strategy: speculative: false-optional check at time %d: %w", t, err)
		}

		switch outcome {
		case solverapi.Unsat:
			for _, f := range false_.Slice() {
				result.AddFalse(f, t)
			}
			return nil
		case solverapi.Sat:
			_, falseRemove := harvest.Harvest(log, candidate.Set{}, false_, s.ModelValue(), featuresAsBoolean)
			false_.Remove(falseRemove)
		default:
			return fmt.Errorf("strategy: speculative: false-optional check at time %d returned %s", t, outcome)
		}
	}
	return nil
}

func selectTerms(enc solverapi.Encoder, set candidate.Set) []solverapi.Expr {
	names := set.Slice()
	terms := make([]solverapi.Expr, len(names))
	for i, f := range names {
		terms[i] = enc.Select(f)
	}
	return terms
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

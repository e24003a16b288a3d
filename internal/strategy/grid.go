package strategy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gitrdm/tfmguard/internal/anomaly"
	"github.com/gitrdm/tfmguard/internal/candidate"
	"github.com/gitrdm/tfmguard/internal/config"
	"github.com/gitrdm/tfmguard/internal/harvest"
	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// ErrIndeterminate is returned when the solver answers neither SAT nor
// UNSAT to a definitive grid-search query. Library code returns an
// error here rather than exiting the process; only cmd/tfmguard turns
// it into a process exit.
var ErrIndeterminate = errors.New("strategy: grid: solver returned neither sat nor unsat")

// RunGrid implements the grid-search strategy: one push/pop per
// candidate, harvesting a model only once per time instant to seed
// pruning. Preferred over the speculative strategy when model
// construction dominates solver time.
func RunGrid(ctx context.Context, log *zap.SugaredLogger, in Input, cfg config.EngineConfig) (*anomaly.Result, error) {
	result := anomaly.New()
	s := in.Solver

	for _, f := range in.Base {
		s.Assert(f)
	}

	if !cfg.NonIncrementalSolver {
		log.Debug("preliminary check")
		s.SetTimeout(solverapi.NoTimeout)
		if _, err := s.Check(ctx); err != nil {
			return nil, fmt.Errorf("strategy: grid: preliminary check: %w", err)
		}
	}

	for _, t := range in.Index.Instants() {
		dead := in.Index[t].Clone()
		false_ := in.Index[t].Clone()

		log.Debugw("processing time instant", "time", t, "candidates", len(dead))

		pop := solverapi.Frame(s)
		s.Assert(solverapi.IntEq(in.TimeContext, t))

		outcome, err := s.Check(ctx)
		if err != nil {
			pop()
			return nil, fmt.Errorf("strategy: grid: time-instant check at time %d: %w", t, err)
		}

		switch outcome {
		case solverapi.Unsat:
			log.Debugw("all candidates dead at time instant", "time", t)
			for _, f := range dead.Slice() {
				result.AddDead(f, t)
			}
			pop()
			continue
		case solverapi.Sat:
			deadRemove, falseRemove := harvest.Harvest(log, dead, false_, s.ModelValue(), in.FeaturesAsBoolean)
			dead.Remove(deadRemove)
			false_.Remove(falseRemove)
		default:
			pop()
			return nil, fmt.Errorf("%w: time %d returned %s", ErrIndeterminate, t, outcome)
		}

		if err := gridCheckDead(ctx, log, s, in.Encoder, dead, false_, t, result); err != nil {
			pop()
			return nil, err
		}
		if err := gridCheckFalse(ctx, log, s, in.Encoder, false_, t, result); err != nil {
			pop()
			return nil, err
		}

		pop()
	}

	return result, nil
}

func gridCheckDead(ctx context.Context, log *zap.SugaredLogger, s solverapi.Solver, enc solverapi.Encoder, dead, false_ candidate.Set, t int, result *anomaly.Result) error {
	candidates := dead.Slice()
	remaining := len(candidates)
	for _, f := range candidates {
		log.Debugw("checking candidate dead feature", "feature", f, "remaining", remaining)
		remaining--

		pop := solverapi.Frame(s)
		s.Assert(enc.Select(f))

		outcome, err := s.Check(ctx)
		if err != nil {
			pop()
			return fmt.Errorf("strategy: grid: dead check for %q at time %d: %w", f, t, err)
		}

		switch outcome {
		case solverapi.Unsat:
			log.Debugw("dead feature found", "feature", f, "time", t)
			result.AddDead(f, t)
			false_.Remove([]string{f})
		case solverapi.Sat:
			// nothing to prune; this single candidate is not dead.
		default:
			pop()
			return fmt.Errorf("%w: feature %q at time %d returned %s", ErrIndeterminate, f, t, outcome)
		}
		pop()
	}
	return nil
}

func gridCheckFalse(ctx context.Context, log *zap.SugaredLogger, s solverapi.Solver, enc solverapi.Encoder, false_ candidate.Set, t int, result *anomaly.Result) error {
	candidates := false_.Slice()
	remaining := len(candidates)
	for _, f := range candidates {
		// remaining is tracked but deliberately not logged here, unlike
		// the dead-check loop above: a cosmetic asymmetry kept as-is
		// rather than "fixed" into consistency with that loop.
		log.Debugw("checking candidate false optional feature", "feature", f)
		remaining--

		pop := solverapi.Frame(s)
		s.Assert(enc.Deselect(f))

		outcome, err := s.Check(ctx)
		if err != nil {
			pop()
			return fmt.Errorf("strategy: grid: false-optional check for %q at time %d: %w", f, t, err)
		}

		switch outcome {
		case solverapi.Unsat:
			log.Debugw("false optional feature found", "feature", f, "time", t)
			result.AddFalse(f, t)
		case solverapi.Sat:
			// nothing to prune.
		default:
			pop()
			return fmt.Errorf("%w: feature %q at time %d returned %s", ErrIndeterminate, f, t, outcome)
		}
		pop()
	}
	return nil
}

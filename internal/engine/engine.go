// Package engine wires the shared model-assembly utilities to whichever
// anomaly-detection strategy a caller selects, and serializes the
// result. Three entry points mirror the "one per strategy" interface;
// Dispatch picks one of them by name, for cmd/tfmguard, and RunAll runs
// all three and cross-checks their results.
package engine

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/gitrdm/tfmguard/internal/anomaly"
	"github.com/gitrdm/tfmguard/internal/candidate"
	"github.com/gitrdm/tfmguard/internal/config"
	"github.com/gitrdm/tfmguard/internal/fdsolver"
	"github.com/gitrdm/tfmguard/internal/parallel"
	"github.com/gitrdm/tfmguard/internal/solverapi"
	"github.com/gitrdm/tfmguard/internal/strategy"
	"github.com/gitrdm/tfmguard/internal/tfm"
)

// Request bundles the external parameters every engine entry point
// accepts: the TFM itself plus the non_incremental_solver tuning flag
// and an optional pre-declared time context name.
type Request struct {
	Features             []string
	FeaturesAsBoolean    bool
	Contexts             map[string]tfm.Bound
	Attributes           map[string]tfm.Bound
	Constraints          []solverapi.Expr
	OptionalFeatures     map[string][]tfm.TimeRange
	NonIncrementalSolver bool
	TimeContext          string
}

func (req Request) toModel() *tfm.Model {
	return &tfm.Model{
		Features:          append([]string(nil), req.Features...),
		FeaturesAsBoolean: req.FeaturesAsBoolean,
		Attributes:        cloneBounds(req.Attributes),
		Contexts:          cloneBounds(req.Contexts),
		Constraints:       append([]solverapi.Expr(nil), req.Constraints...),
		OptionalFeatures:  cloneRanges(req.OptionalFeatures),
		TimeContext:       req.TimeContext,
	}
}

func cloneBounds(m map[string]tfm.Bound) map[string]tfm.Bound {
	out := make(map[string]tfm.Bound, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRanges(m map[string][]tfm.TimeRange) map[string][]tfm.TimeRange {
	out := make(map[string][]tfm.TimeRange, len(m))
	for k, v := range m {
		out[k] = append([]tfm.TimeRange(nil), v...)
	}
	return out
}

// prepare performs the shared setup every strategy needs: model
// assembly, time-context synthesis, candidate indexing, and solver
// construction. The returned config carries the request's
// non_incremental_solver flag so strategies never have to look at
// Request directly.
func prepare(req Request, cfg config.EngineConfig) (strategy.Input, config.EngineConfig) {
	model := req.toModel()

	timeContext := tfm.EnsureTimeContext(model)
	base := tfm.BaseFormulas(model)
	index := candidate.Build(model.OptionalFeatures)
	solver := fdsolver.BuildFromModel(model)

	varNames := make([]string, 0, len(model.Features)+len(model.Attributes)+len(model.Contexts))
	varNames = append(varNames, model.Features...)
	for name := range model.Attributes {
		varNames = append(varNames, name)
	}
	for name := range model.Contexts {
		varNames = append(varNames, name)
	}

	cfg.NonIncrementalSolver = req.NonIncrementalSolver

	in := strategy.Input{
		Solver:            solver,
		Encoder:           solverapi.NewEncoder(model.FeaturesAsBoolean),
		Index:             index,
		TimeContext:       timeContext,
		FeaturesAsBoolean: model.FeaturesAsBoolean,
		Base:              base,
		VarNames:          varNames,
	}
	return in, cfg
}

// RunSpeculative drives the speculative strategy end to end and writes
// the resulting AnomalyResult to out.
func RunSpeculative(ctx context.Context, log *zap.SugaredLogger, req Request, cfg config.EngineConfig, out io.Writer) error {
	in, cfg := prepare(req, cfg)
	result, err := strategy.RunSpeculative(ctx, log, in, cfg)
	if err != nil {
		return err
	}
	return result.Write(out)
}

// RunGrid drives the grid-search strategy end to end and writes the
// resulting AnomalyResult to out.
func RunGrid(ctx context.Context, log *zap.SugaredLogger, req Request, cfg config.EngineConfig, out io.Writer) error {
	in, cfg := prepare(req, cfg)
	result, err := strategy.RunGrid(ctx, log, in, cfg)
	if err != nil {
		return err
	}
	return result.Write(out)
}

// RunQuantified drives the quantified strategy end to end and writes
// the resulting AnomalyResult to out.
func RunQuantified(ctx context.Context, log *zap.SugaredLogger, req Request, cfg config.EngineConfig, out io.Writer) error {
	in, _ := prepare(req, cfg)
	result, err := strategy.RunQuantified(ctx, log, in)
	if err != nil {
		return err
	}
	return result.Write(out)
}

// ErrStrategiesDisagree is returned by RunAll when the three strategies
// do not converge on the same AnomalyResult for the same request — a
// correctness bug in one of them, since they are independent decision
// procedures for the same property.
var ErrStrategiesDisagree = fmt.Errorf("engine: strategies disagree on the same request")

// RunAll runs all three strategies concurrently over the same request,
// using internal/parallel's worker pool, and writes a single result to
// out once every strategy has finished. Each strategy gets its own
// model/solver instance (fdsolver.Solver is not safe for concurrent
// use), so this costs three times the setup of a single run in
// exchange for catching any divergence between strategies up front.
func RunAll(ctx context.Context, log *zap.SugaredLogger, req Request, cfg config.EngineConfig, out io.Writer) error {
	results := make([]*anomaly.Result, 3)

	tasks := []parallel.Task{
		func(ctx context.Context) error {
			in, cfg := prepare(req, cfg)
			r, err := strategy.RunSpeculative(ctx, log, in, cfg)
			results[0] = r
			return err
		},
		func(ctx context.Context) error {
			in, cfg := prepare(req, cfg)
			r, err := strategy.RunGrid(ctx, log, in, cfg)
			results[1] = r
			return err
		},
		func(ctx context.Context) error {
			in, _ := prepare(req, cfg)
			r, err := strategy.RunQuantified(ctx, log, in)
			results[2] = r
			return err
		},
	}

	for i, err := range parallel.New(3).Run(ctx, tasks) {
		if err != nil {
			return fmt.Errorf("engine: run all: strategy %d: %w", i, err)
		}
	}

	unsat, err := globallyUnsatInstants(ctx, req, cfg)
	if err != nil {
		return fmt.Errorf("engine: run all: probing globally-unsat instants: %w", err)
	}

	speculative := dropInstants(results[0], unsat)
	grid := dropInstants(results[1], unsat)
	quantified := dropInstants(results[2], unsat)

	if !speculative.Equal(grid) || !speculative.Equal(quantified) {
		return fmt.Errorf("%w: speculative=%+v grid=%+v quantified=%+v", ErrStrategiesDisagree, results[0], results[1], results[2])
	}

	return results[0].Write(out)
}

// globallyUnsatInstants reports every time instant at which the base
// formulas alone (with no candidate feature forced either way) are
// already unsatisfiable. Per invariant §3.4, a candidate at such an
// instant may be reported both dead and false-optional — grid.go and
// speculative.go's short-circuits record it dead only, while
// quantified.go's witnessFormula finds it vacuously true for both the
// selected and the deselected witness, reporting it as both. That is
// not strategy disagreement, so RunAll excludes these instants before
// comparing.
func globallyUnsatInstants(ctx context.Context, req Request, cfg config.EngineConfig) (map[int]bool, error) {
	in, _ := prepare(req, cfg)
	s := in.Solver
	for _, f := range in.Base {
		s.Assert(f)
	}

	unsat := map[int]bool{}
	for _, t := range in.Index.Instants() {
		pop := solverapi.Frame(s)
		s.SetTimeout(solverapi.NoTimeout)
		s.Assert(solverapi.IntEq(in.TimeContext, t))
		outcome, err := s.Check(ctx)
		pop()
		if err != nil {
			return nil, fmt.Errorf("time-instant probe at time %d: %w", t, err)
		}
		if outcome == solverapi.Unsat {
			unsat[t] = true
		}
	}
	return unsat, nil
}

// dropInstants returns a copy of r with every (feature, instant) pair
// at an excluded instant removed from both the dead and false-optional
// maps, used to compare strategies only where their reports are
// required to agree.
func dropInstants(r *anomaly.Result, excluded map[int]bool) *anomaly.Result {
	out := anomaly.New()
	for f, instants := range r.Dead {
		for _, t := range instants {
			if !excluded[t] {
				out.AddDead(f, t)
			}
		}
	}
	for f, instants := range r.False {
		for _, t := range instants {
			if !excluded[t] {
				out.AddFalse(f, t)
			}
		}
	}
	return out
}

// Dispatch runs whichever strategy name selects, for callers (the CLI)
// that pick a strategy at runtime rather than at compile time.
func Dispatch(ctx context.Context, log *zap.SugaredLogger, name config.Strategy, req Request, cfg config.EngineConfig, out io.Writer) error {
	switch name {
	case config.StrategySpeculative:
		return RunSpeculative(ctx, log, req, cfg, out)
	case config.StrategyGrid:
		return RunGrid(ctx, log, req, cfg, out)
	case config.StrategyQuantified:
		return RunQuantified(ctx, log, req, cfg, out)
	default:
		return fmt.Errorf("engine: unknown strategy %q", name)
	}
}

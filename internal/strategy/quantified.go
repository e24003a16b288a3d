package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gitrdm/tfmguard/internal/anomaly"
	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// quantifiedIndexVar names the fresh selector variable this strategy
// introduces. The leading double underscore keeps it out of the way of
// any user-declared feature, attribute, or context name.
const quantifiedIndexVar = "__tfmguard_k"

// candidateRef is one entry of the flat, stably ordered candidate list
// this strategy enumerates over: time instant ascending, then feature
// name ascending within the instant.
type candidateRef struct {
	time    int
	feature string
}

func flatCandidates(in Input) []candidateRef {
	var out []candidateRef
	for _, t := range in.Index.Instants() {
		for _, f := range in.Index[t].Slice() {
			out = append(out, candidateRef{time: t, feature: f})
		}
	}
	return out
}

// RunQuantified implements the quantified strategy: a single
// ∀-formula parameterized by an index variable k selects which
// candidate is under test, enumerated by repeatedly checking, reading
// k from the model, and blocking it. The dead pass runs inside one
// push/pop frame; the false-optional pass reuses the identical formula
// shape with deselection in place of selection and runs on the base
// frame, so only its own k != v blocking clauses accumulate.
func RunQuantified(ctx context.Context, log *zap.SugaredLogger, in Input) (*anomaly.Result, error) {
	result := anomaly.New()
	s := in.Solver

	candidates := flatCandidates(in)
	if len(candidates) == 0 {
		return result, nil
	}

	s.DeclareIntVar(quantifiedIndexVar, 0, len(candidates)-1)

	pop := solverapi.Frame(s)
	if err := quantifiedPass(ctx, log, s, in, candidates, true, result); err != nil {
		pop()
		return nil, err
	}
	pop()

	if err := quantifiedPass(ctx, log, s, in, candidates, false, result); err != nil {
		return nil, err
	}

	return result, nil
}

func quantifiedPass(ctx context.Context, log *zap.SugaredLogger, s solverapi.Solver, in Input, candidates []candidateRef, dead bool, result *anomaly.Result) error {
	s.Assert(witnessFormula(in, candidates, dead))
	s.SetTimeout(solverapi.NoTimeout)

	for {
		outcome, err := s.Check(ctx)
		if err != nil {
			return fmt.Errorf("strategy: quantified: check: %w", err)
		}

		switch outcome {
		case solverapi.Unsat:
			return nil
		case solverapi.Sat:
			model := s.ModelValue()
			kv, ok := model.IntValue(quantifiedIndexVar)
			if !ok || kv < 0 || kv >= len(candidates) {
				return fmt.Errorf("strategy: quantified: model assigned no valid index to %q", quantifiedIndexVar)
			}
			c := candidates[kv]
			if dead {
				result.AddDead(c.feature, c.time)
				log.Debugw("dead feature found", "feature", c.feature, "time", c.time)
			} else {
				result.AddFalse(c.feature, c.time)
				log.Debugw("false optional feature found", "feature", c.feature, "time", c.time)
			}
			s.Assert(solverapi.Not{X: solverapi.IntEq(quantifiedIndexVar, kv)})
		default:
			return fmt.Errorf("strategy: quantified: check returned %s", outcome)
		}
	}
}

// witnessFormula builds:
//
//	∀ (features ∪ attributes ∪ contexts).
//	    ( ⋀ᵢ  k = i  →  ( candidateᵢ selected/deselected  ∧  time = tᵢ ) )
//	  →  ¬ ( ⋀ base_formulas )
//
// satisfied by a value of k exactly when forcing candidate k's feature and
// time makes the base formulas contradictory — i.e. that candidate is dead
// (or, with deselection in place of selection, false-optional).
func witnessFormula(in Input, candidates []candidateRef, dead bool) solverapi.Expr {
	implications := make([]solverapi.Expr, len(candidates))
	for i, c := range candidates {
		var membership solverapi.Expr
		if dead {
			membership = in.Encoder.Select(c.feature)
		} else {
			membership = in.Encoder.Deselect(c.feature)
		}
		implications[i] = solverapi.Implies{
			L: solverapi.IntEq(quantifiedIndexVar, i),
			R: solverapi.And{Terms: []solverapi.Expr{membership, solverapi.IntEq(in.TimeContext, c.time)}},
		}
	}

	return solverapi.ForAll{
		Vars: in.VarNames,
		Body: solverapi.Implies{
			L: solverapi.And{Terms: implications},
			R: solverapi.Not{X: solverapi.And{Terms: in.Base}},
		},
	}
}

package strategy

import (
	"context"

	"github.com/gitrdm/tfmguard/internal/candidate"
	"github.com/gitrdm/tfmguard/internal/fdsolver"
	"github.com/gitrdm/tfmguard/internal/solverapi"
	"github.com/gitrdm/tfmguard/internal/telemetry"
	"github.com/gitrdm/tfmguard/internal/tfm"
)

// buildInput assembles a strategy.Input from a TFM exactly the way
// internal/engine does, without going through the engine package
// (avoiding an import cycle in tests): build the candidate index, the
// encoder, and the base formulas, then hand them to whichever strategy
// the test wants to exercise.
func buildInput(m *tfm.Model) Input {
	m = m.Clone()
	timeContext := tfm.EnsureTimeContext(m)
	base := tfm.BaseFormulas(m)
	index := candidate.Build(m.OptionalFeatures)
	solver := fdsolver.BuildFromModel(m)

	varNames := append([]string(nil), m.Features...)
	for name := range m.Attributes {
		varNames = append(varNames, name)
	}
	for name := range m.Contexts {
		varNames = append(varNames, name)
	}

	return Input{
		Solver:            solver,
		Encoder:           solverapi.NewEncoder(m.FeaturesAsBoolean),
		Index:             index,
		TimeContext:       timeContext,
		FeaturesAsBoolean: m.FeaturesAsBoolean,
		Base:              base,
		VarNames:          varNames,
	}
}

var testLog = telemetry.Nop()

// countingSolver wraps a solverapi.Solver to count Check calls, letting
// tests assert on how many solver round trips a strategy needed.
type countingSolver struct {
	solverapi.Solver
	checks int
}

func (c *countingSolver) Check(ctx context.Context) (solverapi.Outcome, error) {
	c.checks++
	return c.Solver.Check(ctx)
}


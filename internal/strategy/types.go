// Package strategy implements the three anomaly-detection strategies —
// speculative, grid, and quantified — each driving a solverapi.Solver
// over a shared candidate index (internal/candidate) and encoder
// abstraction (internal/solverapi).
package strategy

import (
	"github.com/gitrdm/tfmguard/internal/candidate"
	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// Input bundles the pieces every strategy needs that are not themselves
// part of the strategy's own search logic: a solver over the model's
// variables, the feature encoding, and the candidate index. The solver
// carries no assertions yet; each strategy asserts Base itself (or, in
// the quantified strategy, embeds it in its ForAll formula).
// engine.go builds these once per run before selecting a strategy.
type Input struct {
	Solver            solverapi.Solver
	Encoder           solverapi.Encoder
	Index             candidate.Index
	TimeContext       string
	FeaturesAsBoolean bool
	// Base is the model's base formulas (internal/tfm.BaseFormulas),
	// computed once per run by the engine and handed to whichever
	// strategy runs.
	Base []solverapi.Expr
	// VarNames lists every feature, attribute, and context name in the
	// model. Only the quantified strategy needs it, to build the
	// variable scope of its ForAll formula.
	VarNames []string
}

// Package tfm implements the time-aware feature model data layer: the
// types describing a TFM and the translation of a TFM into the base SMT
// assertions every strategy conjoins with its own search formulas.
package tfm

import "github.com/gitrdm/tfmguard/internal/solverapi"

// Bound is an inclusive integer range, used for attribute and context
// declarations.
type Bound struct {
	Min int
	Max int
}

// TimeRange is a closed interval [Lo, Hi] during which a feature is
// declared optional.
type TimeRange struct {
	Lo int
	Hi int
}

// Model is the assembled, immutable time-aware feature model.
// Construction is the caller's (external parser's) responsibility;
// Model only carries already-typed data plus already-built constraint
// expressions.
type Model struct {
	// Features is the ordered list of feature names. Order fixes the
	// order in which fdsolver.BuildFromModel's search assigns features;
	// the quantified strategy enumerates candidates by feature name, not
	// by this order.
	Features []string

	// FeaturesAsBoolean selects the boolean vs. integer-in-{0,1} encoding.
	FeaturesAsBoolean bool

	// Attributes maps attribute name to its declared [min,max] bound.
	Attributes map[string]Bound

	// Contexts maps context name to its declared [min,max] bound. One
	// entry may be the time context (see TimeContext).
	Contexts map[string]Bound

	// Constraints is the opaque list of user SMT expressions.
	Constraints []solverapi.Expr

	// OptionalFeatures maps a feature name to the time ranges during
	// which it is optional. Features absent here are never candidates.
	OptionalFeatures map[string][]TimeRange

	// TimeContext names the distinguished time variable. Empty means the
	// caller did not declare one; EnsureTimeContext synthesizes it.
	TimeContext string
}

// Clone returns a deep-enough copy of m so that EnsureTimeContext can
// mutate OptionalFeatures and Contexts without surprising a caller who
// still holds the original Model.
func (m *Model) Clone() *Model {
	out := &Model{
		Features:          append([]string(nil), m.Features...),
		FeaturesAsBoolean: m.FeaturesAsBoolean,
		Constraints:       append([]solverapi.Expr(nil), m.Constraints...),
		TimeContext:       m.TimeContext,
		Attributes:        make(map[string]Bound, len(m.Attributes)),
		Contexts:          make(map[string]Bound, len(m.Contexts)),
		OptionalFeatures:  make(map[string][]TimeRange, len(m.OptionalFeatures)),
	}
	for k, v := range m.Attributes {
		out.Attributes[k] = v
	}
	for k, v := range m.Contexts {
		out.Contexts[k] = v
	}
	for k, v := range m.OptionalFeatures {
		out.OptionalFeatures[k] = append([]TimeRange(nil), v...)
	}
	return out
}

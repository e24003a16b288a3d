package tfm

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// BaseFormulas translates the model into the list of base assertions
// every strategy conjoins with its own search formula: variable bounds
// followed by the user constraints verbatim. Called once per strategy
// run by the engine's shared setup (engine.prepare), which hands the
// result to the strategy.
func BaseFormulas(m *Model) []solverapi.Expr {
	var formulas []solverapi.Expr

	if !m.FeaturesAsBoolean {
		for _, f := range m.Features {
			formulas = append(formulas,
				solverapi.Cmp{Op: solverapi.Le, L: solverapi.IntLit{Value: 0}, R: solverapi.IntVar(f)},
				solverapi.Cmp{Op: solverapi.Le, L: solverapi.IntVar(f), R: solverapi.IntLit{Value: 1}},
			)
		}
	}

	for name, b := range m.Attributes {
		formulas = append(formulas,
			solverapi.Cmp{Op: solverapi.Le, L: solverapi.IntLit{Value: b.Min}, R: solverapi.IntVar(name)},
			solverapi.Cmp{Op: solverapi.Le, L: solverapi.IntVar(name), R: solverapi.IntLit{Value: b.Max}},
		)
	}

	for name, b := range m.Contexts {
		formulas = append(formulas,
			solverapi.Cmp{Op: solverapi.Le, L: solverapi.IntLit{Value: b.Min}, R: solverapi.IntVar(name)},
			solverapi.Cmp{Op: solverapi.Le, L: solverapi.IntVar(name), R: solverapi.IntLit{Value: b.Max}},
		)
	}

	formulas = append(formulas, m.Constraints...)
	return formulas
}

// EnsureTimeContext returns the model's time context name, synthesizing a
// fresh one and binding it to the singleton instant 0 when the model
// declares none. When synthesizing, every optional feature's range list
// is extended with (0,0).
//
// The synthesized context's bound is written only after the map key is
// known to exist: writing into a just-read zero Bound before the map
// entry exists would silently drop the write.
func EnsureTimeContext(m *Model) string {
	if m.TimeContext != "" {
		return m.TimeContext
	}

	name := syntheticName()
	m.TimeContext = name

	if m.Contexts == nil {
		m.Contexts = make(map[string]Bound)
	}
	if _, exists := m.Contexts[name]; !exists {
		m.Contexts[name] = Bound{Min: 0, Max: 0}
	}

	if m.OptionalFeatures == nil {
		m.OptionalFeatures = make(map[string][]TimeRange)
	}
	for f, ranges := range m.OptionalFeatures {
		m.OptionalFeatures[f] = append(ranges, TimeRange{Lo: 0, Hi: 0})
	}

	return name
}

// syntheticName produces a random 128-bit hex name prefixed with "_",
// which makes a collision with a user-declared variable very unlikely.
// The name is not checked against the model's declared names.
func syntheticName() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a fixed, still-underscore-prefixed name
		// rather than panicking a library call.
		return "_time_fallback"
	}
	return "_" + hex.EncodeToString(buf[:])
}

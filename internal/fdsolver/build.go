package fdsolver

import (
	"sort"

	"github.com/gitrdm/tfmguard/internal/tfm"
)

// BuildFromModel constructs a Solver whose variable universe is exactly
// m's features, attributes, and contexts, ordering the search to assign
// features (domain size ≤ 2) before attributes and contexts so PbGe and
// disjunction pruning (eval.go) kicks in as early as possible.
func BuildFromModel(m *tfm.Model) *Solver {
	specs := make(map[string]VarSpec, len(m.Features)+len(m.Attributes)+len(m.Contexts))

	featureOrder := make([]string, 0, len(m.Features))
	for _, f := range m.Features {
		kind := KindInt
		if m.FeaturesAsBoolean {
			kind = KindBool
		}
		specs[f] = VarSpec{Kind: kind, Min: 0, Max: 1}
		featureOrder = append(featureOrder, f)
	}

	attrOrder := make([]string, 0, len(m.Attributes))
	for name, b := range m.Attributes {
		specs[name] = VarSpec{Kind: KindInt, Min: b.Min, Max: b.Max}
		attrOrder = append(attrOrder, name)
	}
	sort.Strings(attrOrder)

	ctxOrder := make([]string, 0, len(m.Contexts))
	for name, b := range m.Contexts {
		specs[name] = VarSpec{Kind: KindInt, Min: b.Min, Max: b.Max}
		ctxOrder = append(ctxOrder, name)
	}
	sort.Strings(ctxOrder)

	order := make([]string, 0, len(specs))
	order = append(order, featureOrder...)
	order = append(order, attrOrder...)
	order = append(order, ctxOrder...)

	return New(specs, order)
}

package solverapi

// Encoder abstracts the "boolean vs. integer-in-{0,1}" switch that
// recurs in every strategy. Strategies call only these four primitives
// and never branch on features_as_boolean themselves; BoolEncoder and
// IntEncoder are the two implementations living side by side.
type Encoder interface {
	// Select builds the formula asserting feature is selected (true / 1).
	Select(feature string) Expr
	// Deselect builds the formula asserting feature is not selected.
	Deselect(feature string) Expr
	// SelectedTerm returns a boolean-valued term usable inside PbGe,
	// meaning "feature is selected".
	SelectedTerm(feature string) Expr
	// BuildPbGe asserts that at least k of the given candidate features
	// are simultaneously selected.
	BuildPbGe(candidates []string, k int) Expr
}

// BoolEncoder encodes features as native booleans (features_as_boolean = true).
type BoolEncoder struct{}

func (BoolEncoder) Select(feature string) Expr   { return BoolVar(feature) }
func (BoolEncoder) Deselect(feature string) Expr { return Not{X: BoolVar(feature)} }
func (BoolEncoder) SelectedTerm(feature string) Expr {
	return BoolVar(feature)
}
func (BoolEncoder) BuildPbGe(candidates []string, k int) Expr {
	terms := make([]Expr, len(candidates))
	for i, c := range candidates {
		terms[i] = BoolVar(c)
	}
	return PbGe{Terms: terms, K: k}
}

// IntEncoder encodes features as integers constrained to {0,1}
// (features_as_boolean = false).
type IntEncoder struct{}

func (IntEncoder) Select(feature string) Expr   { return IntEq(feature, 1) }
func (IntEncoder) Deselect(feature string) Expr { return IntEq(feature, 0) }
func (IntEncoder) SelectedTerm(feature string) Expr {
	return IntEq(feature, 1)
}
func (IntEncoder) BuildPbGe(candidates []string, k int) Expr {
	terms := make([]Expr, len(candidates))
	for i, c := range candidates {
		terms[i] = IntEq(c, 1)
	}
	return PbGe{Terms: terms, K: k}
}

// NewEncoder picks the encoding matching features_as_boolean.
func NewEncoder(featuresAsBoolean bool) Encoder {
	if featuresAsBoolean {
		return BoolEncoder{}
	}
	return IntEncoder{}
}

package strategy

import (
	"context"
	"testing"

	"github.com/gitrdm/tfmguard/internal/anomaly"
	"github.com/gitrdm/tfmguard/internal/config"
	"github.com/gitrdm/tfmguard/internal/solverapi"
	"github.com/gitrdm/tfmguard/internal/tfm"
)

// Globally UNSAT at t: every optional candidate is reported dead, none
// false-optional (the short-circuit branch never reaches the
// per-feature loops).
func TestRunGrid_GloballyUnsatShortCircuits(t *testing.T) {
	m := &tfm.Model{
		Features:          []string{"a", "b"},
		FeaturesAsBoolean: true,
		Constraints:       []solverapi.Expr{solverapi.BoolLit{Value: false}},
		OptionalFeatures: map[string][]tfm.TimeRange{
			"a": {{Lo: 0, Hi: 0}},
			"b": {{Lo: 0, Hi: 0}},
		},
	}

	got, err := RunGrid(context.Background(), testLog, buildInput(m), config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := anomaly.New()
	want.AddDead("a", 0)
	want.AddDead("b", 0)
	if !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if len(got.False) != 0 {
		t.Fatalf("expected no false-optionals, got %+v", got.False)
	}
}

func TestRunGrid_TriviallyDead(t *testing.T) {
	m := &tfm.Model{
		Features:          []string{"a", "b"},
		FeaturesAsBoolean: true,
		Constraints: []solverapi.Expr{
			solverapi.Not{X: solverapi.Var{Name: "a"}},
		},
		OptionalFeatures: map[string][]tfm.TimeRange{
			"a": {{Lo: 0, Hi: 0}},
			"b": {{Lo: 0, Hi: 0}},
		},
	}

	got, err := RunGrid(context.Background(), testLog, buildInput(m), config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := anomaly.New()
	want.AddDead("a", 0)
	if !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRunGrid_FalseOptional(t *testing.T) {
	m := &tfm.Model{
		Features:          []string{"a", "b"},
		FeaturesAsBoolean: true,
		Constraints: []solverapi.Expr{
			solverapi.Or{Terms: []solverapi.Expr{solverapi.Var{Name: "a"}, solverapi.Var{Name: "b"}}},
			solverapi.Not{X: solverapi.Var{Name: "b"}},
		},
		OptionalFeatures: map[string][]tfm.TimeRange{
			"a": {{Lo: 0, Hi: 0}},
			"b": {{Lo: 0, Hi: 0}},
		},
	}

	got, err := RunGrid(context.Background(), testLog, buildInput(m), config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := anomaly.New()
	want.AddDead("b", 0)
	want.AddFalse("a", 0)
	if !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

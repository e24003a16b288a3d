package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gitrdm/tfmguard/internal/config"
	"github.com/gitrdm/tfmguard/internal/solverapi"
	"github.com/gitrdm/tfmguard/internal/tfm"
	"github.com/gitrdm/tfmguard/internal/telemetry"
)

var testLog = telemetry.Nop()

func sampleRequest() Request {
	return Request{
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
}

func TestRunAll_AgreesAndWritesWireFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := RunAll(context.Background(), testLog, sampleRequest(), config.Default(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	if !strings.HasSuffix(got, "\n") {
		t.Fatalf("expected output to end in a newline, got %q", got)
	}
	if !strings.Contains(got, `"dead_features"`) || !strings.Contains(got, `"false_optionals"`) {
		t.Fatalf("expected both wire keys, got %q", got)
	}
	if !strings.Contains(got, `"a":[0]`) {
		t.Fatalf("expected a to be reported dead at time 0, got %q", got)
	}
}

// S5: a globally-UNSAT instant makes quantified additionally report
// every candidate false-optional (its witness formula holds vacuously
// for both the selected and deselected case), while grid and
// speculative report dead only. RunAll must not treat this as
// disagreement.
func TestRunAll_GloballyUnsatInstantIsNotDisagreement(t *testing.T) {
	req := Request{
		Features:          []string{"a", "b"},
		FeaturesAsBoolean: true,
		Constraints: []solverapi.Expr{
			solverapi.BoolLit{Value: false},
		},
		OptionalFeatures: map[string][]tfm.TimeRange{
			"a": {{Lo: 0, Hi: 0}},
			"b": {{Lo: 0, Hi: 0}},
		},
	}

	var buf bytes.Buffer
	if err := RunAll(context.Background(), testLog, req, config.Default(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `"a":[0]`) || !strings.Contains(got, `"b":[0]`) {
		t.Fatalf("expected both a and b reported dead at time 0, got %q", got)
	}
}

func TestDispatch_UnknownStrategyErrors(t *testing.T) {
	var buf bytes.Buffer
	err := Dispatch(context.Background(), testLog, config.Strategy("bogus"), sampleRequest(), config.Default(), &buf)
	if err == nil {
		t.Fatal("expected an error for an unknown strategy name")
	}
}

func TestDispatch_RoutesToEachStrategy(t *testing.T) {
	for _, name := range []config.Strategy{config.StrategySpeculative, config.StrategyGrid, config.StrategyQuantified} {
		var buf bytes.Buffer
		if err := Dispatch(context.Background(), testLog, name, sampleRequest(), config.Default(), &buf); err != nil {
			t.Fatalf("strategy %s: unexpected error: %v", name, err)
		}
		if !strings.Contains(buf.String(), `"a":[0]`) {
			t.Fatalf("strategy %s: expected a dead at time 0, got %q", name, buf.String())
		}
	}
}

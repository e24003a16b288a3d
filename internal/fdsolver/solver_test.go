package fdsolver

import (
	"context"
	"testing"

	"github.com/gitrdm/tfmguard/internal/solverapi"
)

func boolSolver(names ...string) *Solver {
	specs := make(map[string]VarSpec, len(names))
	for _, n := range names {
		specs[n] = VarSpec{Kind: KindBool, Min: 0, Max: 1}
	}
	return New(specs, names)
}

func TestCheck_SatisfiableConjunction(t *testing.T) {
	s := boolSolver("a", "b")
	s.Assert(solverapi.Var{Name: "a"})
	s.Assert(solverapi.Not{X: solverapi.Var{Name: "b"}})

	outcome, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Sat {
		t.Fatalf("expected sat, got %s", outcome)
	}

	model := s.ModelValue()
	if v, ok := model.BoolValue("a"); !ok || !v {
		t.Fatalf("expected a=true in model, got %v,%v", v, ok)
	}
	if v, ok := model.BoolValue("b"); !ok || v {
		t.Fatalf("expected b=false in model, got %v,%v", v, ok)
	}
}

func TestCheck_UnsatisfiableConjunction(t *testing.T) {
	s := boolSolver("a")
	s.Assert(solverapi.Var{Name: "a"})
	s.Assert(solverapi.Not{X: solverapi.Var{Name: "a"}})

	outcome, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Unsat {
		t.Fatalf("expected unsat, got %s", outcome)
	}
}

func TestPushPop_RetractsAssertions(t *testing.T) {
	s := boolSolver("a")
	s.Assert(solverapi.Var{Name: "a"})

	s.Push()
	s.Assert(solverapi.Not{X: solverapi.Var{Name: "a"}})
	outcome, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Unsat {
		t.Fatalf("expected unsat inside the pushed frame, got %s", outcome)
	}
	s.Pop()

	outcome, err = s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Sat {
		t.Fatalf("expected sat after popping the contradictory frame, got %s", outcome)
	}
}

func TestDepth_TracksNetPushPop(t *testing.T) {
	s := boolSolver("a")
	if s.Depth() != 0 {
		t.Fatalf("expected depth 0 initially, got %d", s.Depth())
	}
	s.Push()
	s.Push()
	if s.Depth() != 2 {
		t.Fatalf("expected depth 2 after two pushes, got %d", s.Depth())
	}
	s.Pop()
	if s.Depth() != 1 {
		t.Fatalf("expected depth 1 after one pop, got %d", s.Depth())
	}
}

func TestPop_PastBasePanics(t *testing.T) {
	s := boolSolver("a")
	defer func() {
		if recover() == nil {
			t.Fatal("expected Pop past the base frame to panic")
		}
	}()
	s.Pop()
}

func TestCheck_PbGeCollapsesBatch(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	s := boolSolver(names...)

	terms := make([]solverapi.Expr, len(names))
	for i, n := range names {
		terms[i] = solverapi.Var{Name: n}
	}
	s.Assert(solverapi.PbGe{Terms: terms, K: 2})

	outcome, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Sat {
		t.Fatalf("expected sat, got %s", outcome)
	}

	model := s.ModelValue()
	selected := 0
	for _, n := range names {
		if v, ok := model.BoolValue(n); ok && v {
			selected++
		}
	}
	if selected < 2 {
		t.Fatalf("expected at least 2 of %v selected, got %d", names, selected)
	}
}

func TestCheck_ForAllOverBoundedDomain(t *testing.T) {
	s := boolSolver("p")
	// forall p. p=0 or p=1 -- trivially true for a {0,1}-domain boolean.
	body := solverapi.Or{Terms: []solverapi.Expr{
		solverapi.Cmp{Op: solverapi.Eq, L: solverapi.Var{Name: "p"}, R: solverapi.IntLit{Value: 0}},
		solverapi.Cmp{Op: solverapi.Eq, L: solverapi.Var{Name: "p"}, R: solverapi.IntLit{Value: 1}},
	}}
	s.Assert(solverapi.ForAll{Vars: []string{"p"}, Body: body})

	outcome, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Sat {
		t.Fatalf("expected sat for a tautological forall, got %s", outcome)
	}
}

func TestCheck_ForAllFalsifiedByOneAssignment(t *testing.T) {
	s := boolSolver("p")
	// forall p. p=0 -- false since p can be 1.
	s.Assert(solverapi.ForAll{
		Vars: []string{"p"},
		Body: solverapi.Cmp{Op: solverapi.Eq, L: solverapi.Var{Name: "p"}, R: solverapi.IntLit{Value: 0}},
	})

	outcome, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Unsat {
		t.Fatalf("expected unsat, got %s", outcome)
	}
}

func TestDeclareIntVar_ExtendsSearchUniverse(t *testing.T) {
	s := boolSolver("a")
	s.DeclareIntVar("k", 0, 3)
	s.Assert(solverapi.Cmp{Op: solverapi.Eq, L: solverapi.Var{Name: "k"}, R: solverapi.IntLit{Value: 2}})

	outcome, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != solverapi.Sat {
		t.Fatalf("expected sat, got %s", outcome)
	}
	if v, ok := s.ModelValue().IntValue("k"); !ok || v != 2 {
		t.Fatalf("expected k=2 in model, got %v,%v", v, ok)
	}
}

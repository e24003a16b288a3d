package fdsolver

import (
	"context"
	"time"

	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// Solver is the bounded finite-domain implementation of solverapi.Solver.
// It is the only Solver this module ships; everything in
// internal/strategy is written against the interface, not against this
// type, so a different solver backend could be swapped in without
// touching a single detection strategy.
type Solver struct {
	specs  map[string]VarSpec
	order  []string
	frames [][]solverapi.Expr

	timeoutMS int
	model     *assignmentModel
}

// New constructs a solver over the given variable universe. order fixes
// the search's variable assignment order; callers typically put
// small-domain variables (features) first so pruning kicks in before the
// search expands attribute/context domains (see build.go).
func New(specs map[string]VarSpec, order []string) *Solver {
	return &Solver{
		specs:     specs,
		order:     append([]string(nil), order...),
		frames:    [][]solverapi.Expr{nil},
		timeoutMS: solverapi.NoTimeout,
	}
}

// DeclareVar adds a variable to the search universe if not already
// present — used by the quantified strategy to introduce its fresh
// index variable after construction.
func (s *Solver) DeclareVar(name string, kind Kind, min, max int) {
	if _, exists := s.specs[name]; exists {
		return
	}
	s.specs[name] = VarSpec{Kind: kind, Min: min, Max: max}
	s.order = append(s.order, name)
}

// DeclareIntVar implements solverapi.Solver by declaring a fresh bounded
// integer variable.
func (s *Solver) DeclareIntVar(name string, min, max int) {
	s.DeclareVar(name, KindInt, min, max)
}

// Push opens a new assertion-stack frame.
func (s *Solver) Push() {
	s.frames = append(s.frames, nil)
}

// Pop discards the most recently opened frame.
func (s *Solver) Pop() {
	if len(s.frames) <= 1 {
		panic("fdsolver: pop without matching push")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth reports the number of open frames above the base frame, letting
// tests assert stack balance.
func (s *Solver) Depth() int {
	return len(s.frames) - 1
}

// Assert adds e to the current frame.
func (s *Solver) Assert(e solverapi.Expr) {
	last := len(s.frames) - 1
	s.frames[last] = append(s.frames[last], e)
}

// SetTimeout bounds the next Check call.
func (s *Solver) SetTimeout(ms int) {
	s.timeoutMS = ms
}

// ModelValue returns the most recent Sat Check's model.
func (s *Solver) ModelValue() solverapi.Model {
	return *s.model
}

// Check decides satisfiability of every assertion on the stack via
// bounded backtracking search with three-valued pruning (eval.go) so
// partially-assigned branches fail or succeed without enumerating every
// variable.
func (s *Solver) Check(ctx context.Context) (solverapi.Outcome, error) {
	var conjuncts []solverapi.Expr
	for _, frame := range s.frames {
		conjuncts = append(conjuncts, frame...)
	}

	e := newEnv(s.specs)
	start := time.Now()
	deadline := s.timeoutMS
	nodes := 0
	timedOut := false

	var dfs func(idx int) bool
	dfs = func(idx int) bool {
		nodes++
		if nodes%4096 == 0 {
			if ctx.Err() != nil {
				timedOut = true
				return false
			}
			if deadline > 0 && time.Since(start) > time.Duration(deadline)*time.Millisecond {
				timedOut = true
				return false
			}
		}
		if timedOut {
			return false
		}

		switch evalAnd(conjuncts, e) {
		case isFalse:
			return false
		case isTrue:
			// The conjunction is already decided: nothing left to branch
			// on. Fill the remaining variables with their preferred
			// domain value so the returned model is total over every
			// declared variable, the way a real SMT model would be,
			// rather than silently leaving candidates the formula never
			// needed to mention unresolved.
			for _, name := range s.order[idx:] {
				if !e.bound[name] {
					e.set(name, s.specs[name].domain()[0])
				}
			}
			return true
		}

		if idx == len(s.order) {
			// All declared variables are bound but the conjunction is
			// still "unknown": only possible if an asserted formula
			// references a name this solver never had declared. Treat
			// as unsatisfiable rather than silently reporting SAT.
			return false
		}

		name := s.order[idx]
		if e.bound[name] {
			return dfs(idx + 1)
		}
		for _, val := range s.specs[name].domain() {
			e.set(name, val)
			if dfs(idx + 1) {
				return true
			}
			if timedOut {
				return false
			}
		}
		e.unset(name)
		return false
	}

	found := dfs(0)
	if timedOut {
		return solverapi.Unknown, nil
	}
	if !found {
		return solverapi.Unsat, nil
	}

	values := make(map[string]int, len(e.values))
	for k, v := range e.values {
		values[k] = v
	}
	s.model = &assignmentModel{values: values, specs: s.specs}
	return solverapi.Sat, nil
}

package fdsolver

import "github.com/gitrdm/tfmguard/internal/solverapi"

// tri is a three-valued logic result: a partial variable assignment may
// already determine a formula's truth value, or leave it undetermined
// until more variables are assigned. Evaluating as soon as enough
// variables are bound is what lets the backtracking search in solver.go
// prune branches early instead of enumerating full assignments, which
// matters for PbGe-heavy batched queries, which can involve dozens of
// terms per call.
type tri int

const (
	unknown tri = iota
	isTrue
	isFalse
)

func not(t tri) tri {
	switch t {
	case isTrue:
		return isFalse
	case isFalse:
		return isTrue
	default:
		return unknown
	}
}

// env is a partial assignment: bound[name] is true once values[name] is
// meaningful. specs is carried along so ForAll can look up the domain of
// the variables it quantifies over (forall.go).
type env struct {
	values map[string]int
	bound  map[string]bool
	specs  map[string]VarSpec
}

func newEnv(specs map[string]VarSpec) *env {
	return &env{values: map[string]int{}, bound: map[string]bool{}, specs: specs}
}

func (e *env) set(name string, value int) {
	e.values[name] = value
	e.bound[name] = true
}

func (e *env) unset(name string) {
	delete(e.values, name)
	delete(e.bound, name)
}

func (e *env) intValue(x solverapi.Expr) (int, bool) {
	switch v := x.(type) {
	case solverapi.IntLit:
		return v.Value, true
	case solverapi.Var:
		if e.bound[v.Name] {
			return e.values[v.Name], true
		}
		return 0, false
	default:
		return 0, false
	}
}

// evalBool evaluates a boolean-position expression against the partial
// assignment, returning unknown when not enough variables are bound yet.
func evalBool(x solverapi.Expr, e *env) tri {
	switch v := x.(type) {
	case solverapi.BoolLit:
		if v.Value {
			return isTrue
		}
		return isFalse
	case solverapi.Var:
		// A bare Var in boolean position is the BoolEncoder's "feature
		// selected" literal.
		if val, ok := e.intValue(v); ok {
			if val != 0 {
				return isTrue
			}
			return isFalse
		}
		return unknown
	case solverapi.Not:
		return not(evalBool(v.X, e))
	case solverapi.Implies:
		return evalBool(solverapi.Or{Terms: []solverapi.Expr{solverapi.Not{X: v.L}, v.R}}, e)
	case solverapi.And:
		return evalAnd(v.Terms, e)
	case solverapi.Or:
		return evalOr(v.Terms, e)
	case solverapi.Cmp:
		return evalCmp(v, e)
	case solverapi.PbGe:
		return evalPbGe(v, e)
	case solverapi.ForAll:
		return evalForAll(v, e)
	default:
		return unknown
	}
}

func evalAnd(terms []solverapi.Expr, e *env) tri {
	allTrue := true
	for _, t := range terms {
		switch evalBool(t, e) {
		case isFalse:
			return isFalse
		case unknown:
			allTrue = false
		}
	}
	if allTrue {
		return isTrue
	}
	return unknown
}

func evalOr(terms []solverapi.Expr, e *env) tri {
	allFalse := true
	for _, t := range terms {
		switch evalBool(t, e) {
		case isTrue:
			return isTrue
		case unknown:
			allFalse = false
		}
	}
	if allFalse {
		return isFalse
	}
	return unknown
}

func evalCmp(c solverapi.Cmp, e *env) tri {
	l, lok := e.intValue(c.L)
	r, rok := e.intValue(c.R)
	if !lok || !rok {
		return unknown
	}
	var result bool
	switch c.Op {
	case solverapi.Eq:
		result = l == r
	case solverapi.Ne:
		result = l != r
	case solverapi.Lt:
		result = l < r
	case solverapi.Le:
		result = l <= r
	case solverapi.Gt:
		result = l > r
	case solverapi.Ge:
		result = l >= r
	}
	if result {
		return isTrue
	}
	return isFalse
}

// evalPbGe prunes as soon as the K threshold is already met by bound
// true terms, or can no longer be met by the remaining unbound terms —
// the same early-exit that lets a batched dead-feature check collapse
// into a handful of solver calls instead of one per candidate.
func evalPbGe(p solverapi.PbGe, e *env) tri {
	trueCount, unknownCount := 0, 0
	for _, t := range p.Terms {
		switch evalBool(t, e) {
		case isTrue:
			trueCount++
		case unknown:
			unknownCount++
		}
	}
	if trueCount >= p.K {
		return isTrue
	}
	if trueCount+unknownCount < p.K {
		return isFalse
	}
	return unknown
}

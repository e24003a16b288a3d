package fdsolver

import "github.com/gitrdm/tfmguard/internal/solverapi"

// evalForAll discharges a bounded universal quantifier by enumerating
// every combination of values its variables admit. Sound because every
// TFM variable carries an explicit [min,max] bound, so the quantifier
// ranges over a finite, known set rather than requiring true quantifier
// elimination.
func evalForAll(f solverapi.ForAll, e *env) tri {
	return forallRec(f.Vars, f.Body, e)
}

func forallRec(vars []string, body solverapi.Expr, e *env) tri {
	if len(vars) == 0 {
		return evalBool(body, e)
	}

	name := vars[0]
	spec := e.specs[name]
	prevBound, prevVal := e.bound[name], e.values[name]

	result := isTrue
	sawUnknown := false
	for _, val := range spec.domain() {
		e.set(name, val)
		switch forallRec(vars[1:], body, e) {
		case isFalse:
			result = isFalse
		case unknown:
			sawUnknown = true
		}
		if result == isFalse {
			break
		}
	}

	if prevBound {
		e.set(name, prevVal)
	} else {
		e.unset(name)
	}

	if result == isFalse {
		return isFalse
	}
	if sawUnknown {
		return unknown
	}
	return isTrue
}

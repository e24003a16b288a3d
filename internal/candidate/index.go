// Package candidate builds the candidate index: the mapping from time
// instant to the set of features optional at that instant.
package candidate

import (
	"sort"

	"github.com/gitrdm/tfmguard/internal/tfm"
)

// Set is a mutable set of feature names, used so the dead-check and
// false-optional-check sets for a time instant can shrink independently.
type Set map[string]struct{}

// NewSet builds a Set from a slice of feature names.
func NewSet(features []string) Set {
	s := make(Set, len(features))
	for _, f := range features {
		s[f] = struct{}{}
	}
	return s
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for f := range s {
		out[f] = struct{}{}
	}
	return out
}

// Remove deletes every feature in other from s, in place.
func (s Set) Remove(other []string) {
	for _, f := range other {
		delete(s, f)
	}
}

// Slice returns the set's members in sorted order, for deterministic
// iteration. Sorting does not change externally observed results, only
// makes internal iteration reproducible for tests.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Index maps a time instant to the candidates to check at it.
type Index map[int]Set

// Build computes the candidate index from a model's optional-feature
// ranges: naive interval expansion, one entry per covered instant. By
// construction, (t,f) is in the index iff f declares a range covering t.
func Build(optional map[string][]tfm.TimeRange) Index {
	byInstant := map[int][]string{}
	for feature, ranges := range optional {
		for _, r := range ranges {
			for t := r.Lo; t <= r.Hi; t++ {
				byInstant[t] = append(byInstant[t], feature)
			}
		}
	}

	idx := make(Index, len(byInstant))
	for t, features := range byInstant {
		idx[t] = NewSet(features)
	}
	return idx
}

// Instants returns the time instants in the index in ascending order, so
// strategies process instants in a fixed, reproducible order.
func (idx Index) Instants() []int {
	out := make([]int, 0, len(idx))
	for t := range idx {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

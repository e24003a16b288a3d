package fdsolver

import (
	"testing"

	"github.com/gitrdm/tfmguard/internal/tfm"
)

func TestBuildFromModel_FeaturesOrderedFirst(t *testing.T) {
	m := &tfm.Model{
		Features:   []string{"b", "a"},
		Attributes: map[string]tfm.Bound{"z": {Min: 0, Max: 5}},
		Contexts:   map[string]tfm.Bound{"T": {Min: 0, Max: 2}},
	}
	s := BuildFromModel(m)

	if len(s.order) != 4 {
		t.Fatalf("expected 4 ordered variables, got %d: %v", len(s.order), s.order)
	}
	if s.order[0] != "b" || s.order[1] != "a" {
		t.Fatalf("expected features first in declared order, got %v", s.order[:2])
	}
	if s.order[2] != "z" || s.order[3] != "T" {
		t.Fatalf("expected attributes then contexts sorted, got %v", s.order[2:])
	}
}

func TestBuildFromModel_FeatureDomainRespectsBooleanFlag(t *testing.T) {
	m := &tfm.Model{Features: []string{"a"}, FeaturesAsBoolean: true}
	s := BuildFromModel(m)
	if s.specs["a"].Kind != KindBool {
		t.Fatalf("expected boolean kind, got %v", s.specs["a"].Kind)
	}
}

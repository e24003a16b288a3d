// Package harvest implements model-harvest: pruning pending candidates
// from a single satisfying model so callers never recompute a model
// once per set.
package harvest

import (
	"go.uber.org/zap"

	"github.com/gitrdm/tfmguard/internal/candidate"
	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// Harvest inspects model against dead and false candidate sets and
// returns the subsets disproved by this one witness: a feature selected
// (value 1 / true) in the model cannot be dead, and a feature deselected
// (value 0 / false) cannot be false-optional. Callers difference-update
// their own sets with the two returned slices.
func Harvest(log *zap.SugaredLogger, dead, false_ candidate.Set, model solverapi.Model, featuresAsBoolean bool) (deadRemove, falseRemove []string) {
	for f := range dead {
		if selected(model, f, featuresAsBoolean) {
			deadRemove = append(deadRemove, f)
		}
	}
	for f := range false_ {
		if deselected(model, f, featuresAsBoolean) {
			falseRemove = append(falseRemove, f)
		}
	}

	if log != nil {
		log.Debugw("harvested candidates", "dead_removed", len(deadRemove), "false_removed", len(falseRemove))
	}
	return deadRemove, falseRemove
}

func selected(model solverapi.Model, feature string, featuresAsBoolean bool) bool {
	if featuresAsBoolean {
		v, ok := model.BoolValue(feature)
		return ok && v
	}
	v, ok := model.IntValue(feature)
	return ok && v == 1
}

func deselected(model solverapi.Model, feature string, featuresAsBoolean bool) bool {
	if featuresAsBoolean {
		v, ok := model.BoolValue(feature)
		return ok && !v
	}
	v, ok := model.IntValue(feature)
	return ok && v == 0
}

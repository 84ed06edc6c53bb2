// Package engine recomputes derived field values in dependency order.
package engine

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/depgraph"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// Result is the outcome of one recompute pass.
type Result struct {
	Values   model.ValueMap
	Warnings []model.ComputationWarning
}

// Recompute derives every derived field from the current values. The input
// map is never mutated; derivation is best-effort: a formula that cannot
// compute yet leaves the field's prior value untouched, and a formula that
// fails leaves the stale value in place and records a warning. Recompute is
// a pure function of (catalog, values) and idempotent given pure formulas.
func Recompute(cat *catalog.Catalog, graph *depgraph.Graph, values model.ValueMap) Result {
	return recompute(cat, graph.EvaluationOrder(), values)
}

// RecomputeAffected re-derives only the transitive dependents of the changed
// keys. Equivalent to a full Recompute for pure formulas, proportional to
// the affected subgraph instead of the whole basket.
func RecomputeAffected(cat *catalog.Catalog, graph *depgraph.Graph, values model.ValueMap, changed ...string) Result {
	return recompute(cat, graph.Affected(changed...), values)
}

func recompute(cat *catalog.Catalog, order []string, values model.ValueMap) Result {
	work := values.Clone()
	var warnings []model.ComputationWarning

	for _, key := range order {
		field, err := cat.Field(key)
		if err != nil || !field.Derived() {
			continue // inputs are left exactly as given
		}
		formula, ok := cat.Formula(key)
		if !ok {
			continue
		}

		derived, computed, err := safeDerive(formula, work)
		if err != nil {
			warnings = append(warnings, model.ComputationWarning{FieldKey: key, Cause: err})
			zap.L().Warn("engine: formula failed",
				zap.String("basket", cat.ID()),
				zap.String("field", key),
				zap.Error(err),
			)
			continue
		}
		if !computed {
			// Not yet computable; keep whatever was stored before.
			continue
		}
		if !derived.Compatible(field.Type) {
			warnings = append(warnings, model.ComputationWarning{
				FieldKey: key,
				Cause:    eris.Errorf("engine: formula for %q returned a value incompatible with %s", key, field.Type),
			})
			continue
		}
		work[key] = derived
	}

	return Result{Values: work, Warnings: warnings}
}

// safeDerive invokes a formula, converting a panic into an error so one
// misbehaving formula never aborts the pass.
func safeDerive(f catalog.Formula, values model.ValueMap) (v model.Value, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("engine: formula panicked: %v", r)
		}
	}()
	v, ok = f(values)
	return v, ok, nil
}

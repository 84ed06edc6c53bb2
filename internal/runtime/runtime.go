// Package runtime is the façade the UI/API layer calls: it binds one basket
// catalogue to one project's value map and owns every mutation of it.
package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/depgraph"
	"github.com/sells-group/underwrite-cli/internal/engine"
	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/store"
	"github.com/sells-group/underwrite-cli/internal/validate"
)

// ErrDerivedField is returned when a caller tries to write a computed field.
type ErrDerivedField struct {
	Key string
}

func (e *ErrDerivedField) Error() string {
	return fmt.Sprintf("runtime: field %q is derived and cannot be set directly", e.Key)
}

// BlockedSaveError reports that a save was refused because blocking
// validation issues exist at the requested tier.
type BlockedSaveError struct {
	Issues []model.ValidationIssue
}

func (e *BlockedSaveError) Error() string {
	return fmt.Sprintf("runtime: save blocked by %d validation issue(s)", len(e.Issues))
}

// Snapshot is the result of a mutation or load: the full value map plus any
// computation warnings from the recompute pass and validation issues at the
// requested tier.
type Snapshot struct {
	Values   model.ValueMap             `json:"values"`
	Warnings []model.ComputationWarning `json:"warnings,omitempty"`
	Issues   []model.ValidationIssue    `json:"issues,omitempty"`
}

// Runtime orchestrates the evaluator, validator, and tier filter for one
// basket instance bound to one project. It owns the value map: a single
// logical edit session, single writer, no internal locking.
type Runtime struct {
	cat       *catalog.Catalog
	graph     *depgraph.Graph
	st        store.Store
	projectID string
	values    model.ValueMap
}

// New creates a runtime with an empty value map seeded from catalogue
// defaults. Call Load to hydrate from the store.
func New(cat *catalog.Catalog, graph *depgraph.Graph, st store.Store, projectID string) *Runtime {
	return &Runtime{
		cat:       cat,
		graph:     graph,
		st:        st,
		projectID: projectID,
		values:    cat.Defaults(),
	}
}

// Load pulls persisted values from the store, layers them over catalogue
// defaults, and runs a full recompute so derived fields materialize. A
// project with no saved values starts from defaults alone.
func (r *Runtime) Load(ctx context.Context, tier model.Tier) (Snapshot, error) {
	stored, err := r.st.LoadBasket(ctx, r.projectID, r.cat.ID())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Snapshot{}, eris.Wrapf(err, "runtime: load basket %s", r.cat.ID())
	}

	values := r.cat.Defaults()
	for k, v := range stored {
		values[k] = v
	}

	result := engine.Recompute(r.cat, r.graph, values)
	r.values = result.Values

	return Snapshot{
		Values:   r.values.Clone(),
		Warnings: result.Warnings,
		Issues:   validate.Basket(r.cat, r.values, tier),
	}, nil
}

// Hydrate replaces the session's map with a caller-held snapshot, layered
// over defaults, and recomputes. Stateless API handlers use this to rebuild
// an edit session from the values the client is holding.
func (r *Runtime) Hydrate(values model.ValueMap, tier model.Tier) Snapshot {
	merged := r.cat.Defaults()
	for k, v := range values {
		merged[k] = v
	}

	result := engine.Recompute(r.cat, r.graph, merged)
	r.values = result.Values

	return Snapshot{
		Values:   r.values.Clone(),
		Warnings: result.Warnings,
		Issues:   validate.Basket(r.cat, r.values, tier),
	}
}

// Values returns a copy of the current value map.
func (r *Runtime) Values() model.ValueMap {
	return r.values.Clone()
}

// SetField is the single mutation entry point. It writes the input value,
// re-derives everything downstream of it, then validates the settled map at
// the given tier; validation never sees a partially recomputed map. A
// type-incompatible value is accepted and surfaced as a TypeMismatch issue
// rather than rejected, matching the form's permissiveness.
func (r *Runtime) SetField(key string, value model.Value, tier model.Tier) (Snapshot, error) {
	field, err := r.cat.Field(key)
	if err != nil {
		return Snapshot{}, err
	}
	if field.Derived() {
		return Snapshot{}, &ErrDerivedField{Key: key}
	}

	work := r.values.Clone()
	if value.IsAbsent() {
		delete(work, key)
	} else {
		work[key] = value
	}

	result := engine.RecomputeAffected(r.cat, r.graph, work, key)
	r.values = result.Values

	return Snapshot{
		Values:   r.values.Clone(),
		Warnings: result.Warnings,
		Issues:   validate.Basket(r.cat, r.values, tier),
	}, nil
}

// Validate re-checks the current map at a tier without mutating anything.
func (r *Runtime) Validate(tier model.Tier) []model.ValidationIssue {
	return validate.Basket(r.cat, r.values, tier)
}

// Save persists the current value map, refusing when blocking issues exist
// at the tier. Out-of-range values are soft and never block. A failed store
// write leaves the in-memory map untouched.
func (r *Runtime) Save(ctx context.Context, tier model.Tier) error {
	issues := validate.Basket(r.cat, r.values, tier)
	if model.HasBlocking(issues) {
		return &BlockedSaveError{Issues: issues}
	}

	if err := r.st.SaveBasket(ctx, r.projectID, r.cat.ID(), r.values); err != nil {
		return eris.Wrapf(err, "runtime: save basket %s", r.cat.ID())
	}

	zap.L().Info("basket saved",
		zap.String("project", r.projectID),
		zap.String("basket", r.cat.ID()),
		zap.Int("fields", len(r.values)),
	)
	return nil
}

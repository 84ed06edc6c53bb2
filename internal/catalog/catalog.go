// Package catalog holds the static field catalogues for each basket along
// with their formula registries, and provides tier-filtered views of them.
package catalog

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// Formula derives one field's value from the current value map. It must be
// pure and side-effect-free, and must read only the keys declared in the
// field's DependsOn list. ok is false when required inputs are absent; that
// is "not yet computable", not an error.
type Formula func(model.ValueMap) (model.Value, bool)

// UnknownFieldError reports a catalogue reference to a nonexistent field key.
// It is a configuration bug and fatal at load time.
type UnknownFieldError struct {
	Basket       string
	Key          string
	ReferencedBy string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("catalog: basket %q: %q referenced by %q does not exist",
		e.Basket, e.Key, e.ReferencedBy)
}

// Catalog is an immutable, indexed view of one basket's configuration plus
// its formula registry. Built once at load time.
type Catalog struct {
	cfg      model.BasketConfig
	byKey    map[string]*model.FieldDefinition
	index    map[string]int
	formulas map[string]Formula
	derived  []string
}

// New validates the configuration and builds an indexed Catalog. Every
// DependsOn key and group member must resolve within the basket, and a
// formula must be registered for exactly the fields that declare inputs.
func New(cfg model.BasketConfig, formulas map[string]Formula) (*Catalog, error) {
	c := &Catalog{
		cfg:      cfg,
		byKey:    make(map[string]*model.FieldDefinition, len(cfg.Fields)),
		index:    make(map[string]int, len(cfg.Fields)),
		formulas: formulas,
	}

	for i := range cfg.Fields {
		f := &cfg.Fields[i]
		if _, dup := c.byKey[f.Key]; dup {
			return nil, eris.Errorf("catalog: basket %q: duplicate field key %q", cfg.ID, f.Key)
		}
		c.byKey[f.Key] = f
		c.index[f.Key] = i
	}

	for _, f := range cfg.Fields {
		for _, dep := range f.DependsOn {
			if _, ok := c.byKey[dep]; !ok {
				return nil, &UnknownFieldError{Basket: cfg.ID, Key: dep, ReferencedBy: f.Key}
			}
		}
		if f.Derived() {
			if _, ok := formulas[f.Key]; !ok {
				return nil, eris.Errorf("catalog: basket %q: derived field %q has no registered formula", cfg.ID, f.Key)
			}
			c.derived = append(c.derived, f.Key)
		}
		if f.Default != nil && !f.Default.Compatible(f.Type) {
			return nil, eris.Errorf("catalog: basket %q: default for %q is not a %s", cfg.ID, f.Key, f.Type)
		}
	}

	for key := range formulas {
		f, ok := c.byKey[key]
		if !ok {
			return nil, &UnknownFieldError{Basket: cfg.ID, Key: key, ReferencedBy: "formula registry"}
		}
		if !f.Derived() {
			return nil, eris.Errorf("catalog: basket %q: field %q has a formula but no declared inputs", cfg.ID, key)
		}
	}

	for _, g := range cfg.Groups {
		for _, key := range g.FieldKeys {
			if _, ok := c.byKey[key]; !ok {
				return nil, &UnknownFieldError{Basket: cfg.ID, Key: key, ReferencedBy: "group " + g.Key}
			}
		}
	}

	return c, nil
}

// ID returns the basket identifier.
func (c *Catalog) ID() string { return c.cfg.ID }

// Name returns the basket display name.
func (c *Catalog) Name() string { return c.cfg.Name }

// Definition returns the underlying configuration.
func (c *Catalog) Definition() model.BasketConfig { return c.cfg }

// Field returns the definition for key, or an UnknownFieldError.
func (c *Catalog) Field(key string) (model.FieldDefinition, error) {
	f, ok := c.byKey[key]
	if !ok {
		return model.FieldDefinition{}, &UnknownFieldError{Basket: c.cfg.ID, Key: key, ReferencedBy: "lookup"}
	}
	return *f, nil
}

// Has reports whether key exists in the basket.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Index returns the declaration index of key, used as the deterministic
// tie-break for evaluation ordering. Unknown keys sort last.
func (c *Catalog) Index(key string) int {
	if i, ok := c.index[key]; ok {
		return i
	}
	return len(c.cfg.Fields)
}

// Fields returns all fields in declaration order.
func (c *Catalog) Fields() []model.FieldDefinition {
	return append([]model.FieldDefinition(nil), c.cfg.Fields...)
}

// FieldsForTier returns fields visible at the given tier in declaration
// order. Declaration order is display order, not dependency order.
func (c *Catalog) FieldsForTier(tier model.Tier) []model.FieldDefinition {
	var out []model.FieldDefinition
	for _, f := range c.cfg.Fields {
		if tier.Includes(f.Tier) {
			out = append(out, f)
		}
	}
	return out
}

// VisibleFields is the tier-filter projection of the field list; identical
// to FieldsForTier, named for the UI-facing contract.
func (c *Catalog) VisibleFields(tier model.Tier) []model.FieldDefinition {
	return c.FieldsForTier(tier)
}

// VisibleGroups returns groups visible at the tier. A group whose own tier is
// hidden, or with zero visible member fields, is omitted; member lists are
// filtered to the visible subset.
func (c *Catalog) VisibleGroups(tier model.Tier) []model.FieldGroup {
	var out []model.FieldGroup
	for _, g := range c.cfg.Groups {
		if !tier.Includes(g.Tier) {
			continue
		}
		var keys []string
		for _, key := range g.FieldKeys {
			if f, ok := c.byKey[key]; ok && tier.Includes(f.Tier) {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			continue
		}
		filtered := g
		filtered.FieldKeys = keys
		out = append(out, filtered)
	}
	return out
}

// Formula returns the registered formula for a derived field.
func (c *Catalog) Formula(key string) (Formula, bool) {
	f, ok := c.formulas[key]
	return f, ok
}

// DerivedKeys returns the keys of all derived fields in declaration order.
func (c *Catalog) DerivedKeys() []string {
	return append([]string(nil), c.derived...)
}

// Defaults returns a map of declared default values, used to seed a fresh
// basket instance. Centralized here so the engine and the UI share one
// source of truth.
func (c *Catalog) Defaults() model.ValueMap {
	out := make(model.ValueMap)
	for _, f := range c.cfg.Fields {
		if f.Default != nil {
			out[f.Key] = *f.Default
		}
	}
	return out
}

package model

// Format holds presentation hints for a field. Display-only; the engine never
// reads it.
type Format struct {
	Prefix   string `json:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	Decimals int    `json:"decimals"`
}

// Range is an inclusive numeric bound for validation.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FieldDefinition describes one named, typed value within a basket.
// Fields with a non-empty DependsOn list are derived: their value comes from a
// formula registered in the catalog under the same key, never from user input.
type FieldDefinition struct {
	Key       string    `json:"key"`
	Label     TierText  `json:"label"`
	Help      TierText  `json:"help,omitempty"`
	Type      ValueType `json:"type"`
	Tier      Tier      `json:"tier"`
	Required  bool      `json:"required"`
	Format    *Format   `json:"format,omitempty"`
	Range     *Range    `json:"range,omitempty"`
	DependsOn []string  `json:"depends_on,omitempty"`
	Options   []string  `json:"options,omitempty"` // dropdown fields only
	Default   *Value    `json:"default,omitempty"`
}

// Derived reports whether the field's value is computed rather than entered.
func (f FieldDefinition) Derived() bool {
	return len(f.DependsOn) > 0
}

// FieldGroup is a named, ordered cluster of field keys used for UI
// sectioning. It carries no computation semantics.
type FieldGroup struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Tier      Tier     `json:"tier"`
	FieldKeys []string `json:"field_keys"`
}

// BasketConfig defines one basket: its display metadata plus ordered groups
// and fields. Declaration order is display order. Every DependsOn key and
// every group member must resolve to a field in the same basket.
type BasketConfig struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Groups      []FieldGroup      `json:"groups"`
	Fields      []FieldDefinition `json:"fields"`
}

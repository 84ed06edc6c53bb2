package catalog

import (
	"math"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// def is shorthand for taking the address of a default value in basket
// definitions.
func def(v model.Value) *model.Value { return &v }

// nums fetches several numeric inputs at once. ok is false if any is absent
// or non-numeric, which a formula reports as "not yet computable".
func nums(values model.ValueMap, keys ...string) ([]float64, bool) {
	out := make([]float64, len(keys))
	for i, key := range keys {
		f, ok := values.Float64(key)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// round2 rounds to cents for currency-valued derivations.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package format renders field values for display using each field's
// presentation hints. Presentation only; the engine never depends on it.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/underwrite-cli/internal/model"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Number renders a grouped decimal, e.g. 1,000,000.00.
func Number(v float64, decimals int) string {
	return printer.Sprintf("%.*f", decimals, v)
}

// Value renders a value per the field's format hints. Absent values render
// as a placeholder the UI can style.
func Value(field model.FieldDefinition, v model.Value) string {
	if v.IsAbsent() {
		return "-"
	}

	prefix, suffix, decimals := "", "", defaultDecimals(field.Type)
	if field.Format != nil {
		prefix = field.Format.Prefix
		suffix = field.Format.Suffix
		decimals = field.Format.Decimals
	}

	switch field.Type {
	case model.TypeCurrency, model.TypePercentage, model.TypeNumber:
		f, ok := v.Float64()
		if !ok {
			return "-"
		}
		return prefix + Number(f, decimals) + suffix
	case model.TypeDate:
		d, ok := v.DateValue()
		if !ok {
			return "-"
		}
		return d.Format(model.DateLayout)
	case model.TypeToggle:
		b, ok := v.BoolValue()
		if !ok {
			return "-"
		}
		if b {
			return "Yes"
		}
		return "No"
	default:
		s, ok := v.Text()
		if !ok {
			return "-"
		}
		return prefix + s + suffix
	}
}

func defaultDecimals(t model.ValueType) int {
	switch t {
	case model.TypeCurrency:
		return 0
	case model.TypePercentage:
		return 2
	default:
		return 0
	}
}

// Package validate applies per-field requiredness, type, and range checks.
package validate

import (
	"fmt"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// Basket checks the values visible at the given tier and returns advisory
// issues. Hidden fields' constraints are dormant. Values are never mutated;
// the caller decides which issues block a save.
func Basket(cat *catalog.Catalog, values model.ValueMap, tier model.Tier) []model.ValidationIssue {
	var issues []model.ValidationIssue

	for _, field := range cat.VisibleFields(tier) {
		value, present := values.Get(field.Key)
		if !present {
			if field.Required {
				issues = append(issues, model.ValidationIssue{
					FieldKey: field.Key,
					Kind:     model.IssueMissingRequired,
					Message:  fmt.Sprintf("%s is required", field.Label.At(tier)),
				})
			}
			continue
		}

		if !value.Compatible(field.Type) {
			issues = append(issues, model.ValidationIssue{
				FieldKey: field.Key,
				Kind:     model.IssueTypeMismatch,
				Message:  fmt.Sprintf("%s must be a %s value", field.Label.At(tier), field.Type),
			})
			continue
		}

		if field.Range != nil {
			if f, ok := value.Float64(); ok && (f < field.Range.Min || f > field.Range.Max) {
				issues = append(issues, model.ValidationIssue{
					FieldKey: field.Key,
					Kind:     model.IssueOutOfRange,
					Message: fmt.Sprintf("%s should be between %g and %g",
						field.Label.At(tier), field.Range.Min, field.Range.Max),
				})
			}
		}

		if field.Type == model.TypeDropdown && len(field.Options) > 0 {
			if s, ok := value.Text(); ok && !contains(field.Options, s) {
				issues = append(issues, model.ValidationIssue{
					FieldKey: field.Key,
					Kind:     model.IssueTypeMismatch,
					Message:  fmt.Sprintf("%s must be one of the listed options", field.Label.At(tier)),
				})
			}
		}
	}

	return issues
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

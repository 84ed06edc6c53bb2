package model

import "fmt"

// IssueKind identifies a class of validation issue.
type IssueKind string

const (
	IssueMissingRequired IssueKind = "missing_required_value"
	IssueOutOfRange      IssueKind = "out_of_range"
	IssueTypeMismatch    IssueKind = "type_mismatch"
)

// ValidationIssue is an advisory per-field finding. Issues are returned as
// data, never thrown; the caller decides what blocks a save.
type ValidationIssue struct {
	FieldKey string    `json:"field_key"`
	Kind     IssueKind `json:"kind"`
	Message  string    `json:"message"`
}

// Blocking reports whether the issue should prevent a save. Out-of-range
// values are soft warnings; the form is deliberately permissive around edge
// values like zero-percent rates.
func (i ValidationIssue) Blocking() bool {
	return i.Kind != IssueOutOfRange
}

// HasBlocking reports whether any issue in the list blocks a save.
func HasBlocking(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Blocking() {
			return true
		}
	}
	return false
}

// ComputationWarning records a formula that failed during recompute. The
// field keeps its last known value; the warning is surfaced to the caller.
type ComputationWarning struct {
	FieldKey string `json:"field_key"`
	Cause    error  `json:"-"`
}

func (w ComputationWarning) String() string {
	return fmt.Sprintf("%s: %v", w.FieldKey, w.Cause)
}

// MarshalJSON renders the cause as a plain string for API responses.
func (w ComputationWarning) MarshalJSON() ([]byte, error) {
	msg := ""
	if w.Cause != nil {
		msg = w.Cause.Error()
	}
	return []byte(fmt.Sprintf(`{"field_key":%q,"cause":%q}`, w.FieldKey, msg)), nil
}

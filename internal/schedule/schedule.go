// Package schedule computes stepped growth-rate schedules: an ordered list
// of (rate, duration) steps chained end-to-end across analysis periods.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultHorizon is the analysis horizon in periods (15 years monthly).
const DefaultHorizon = 180

// EndSentinel is the duration value meaning "runs to the end of the
// analysis horizon".
const EndSentinel = "E"

// Step is one user-entered row of a rate track. Periods is either a positive
// integer, the end sentinel, or anything else (treated as not yet resolved,
// never an error).
type Step struct {
	Rate    string `json:"rate" yaml:"rate"`
	Periods string `json:"periods" yaml:"periods"`
}

// Track is a named ordered list of steps, e.g. "Custom 1" within a
// growth-rate category.
type Track struct {
	Name  string `json:"name" yaml:"name"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// ComputedStep adds the derived period span to a step. From and Thru are
// 1-based; zero means unresolved (the UI shows a placeholder).
type ComputedStep struct {
	Step
	From int `json:"from_period"`
	Thru int `json:"thru_period"`
}

// FromResolved reports whether the starting period is known.
func (s ComputedStep) FromResolved() bool { return s.From > 0 }

// ThruResolved reports whether the ending period is known.
func (s ComputedStep) ThruResolved() bool { return s.Thru > 0 }

// Label renders a period for display, "-" when unresolved.
func Label(period int) string {
	if period <= 0 {
		return "-"
	}
	return strconv.Itoa(period)
}

// Compute derives every step's from/thru span. Rules:
//   - step 0 starts at period 1; step i starts at thru(i-1)+1 when that is
//     resolved, otherwise its start is unresolved
//   - a step with the end sentinel always ends at the horizon, even when its
//     own start is unresolved
//   - a positive integer duration ends at from+periods-1 when from is
//     resolved
//   - anything else leaves the span unresolved
//
// A step after an end-sentinel step still chains off the horizon; its start
// can exceed the horizon, which is surfaced as computed, not suppressed.
func Compute(steps []Step, horizon int) []ComputedStep {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	out := make([]ComputedStep, len(steps))
	prevThru := 0
	prevResolved := true // step 0 starts at period 1

	for i, step := range steps {
		cs := ComputedStep{Step: step}

		if prevResolved {
			cs.From = prevThru + 1
		}

		if isEndSentinel(step.Periods) {
			cs.Thru = horizon
		} else if n, ok := parsePeriods(step.Periods); ok && cs.FromResolved() {
			cs.Thru = cs.From + n - 1
		}

		out[i] = cs
		prevThru = cs.Thru
		prevResolved = cs.ThruResolved()
	}

	return out
}

// Recompute applies an edit to the step at index and re-derives the spans.
// Only steps at or after the edited index can change; the full track is
// recomputed because earlier spans are a pure function of earlier steps.
func Recompute(steps []Step, index int, edited Step, horizon int) []ComputedStep {
	next := append([]Step(nil), steps...)
	if index >= 0 && index < len(next) {
		next[index] = edited
	}
	return Compute(next, horizon)
}

func isEndSentinel(periods string) bool {
	return strings.EqualFold(strings.TrimSpace(periods), EndSentinel)
}

func parsePeriods(periods string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(periods))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseRate converts a rate entry like "3.0%" or "3.0" to a fraction
// (0.03). Used for previews and exports, not by the span computation.
func ParseRate(s string) (float64, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return f / 100, true
}

// IssueKind identifies a class of track validation issue.
type IssueKind string

const (
	IssueNoEndSentinel        IssueKind = "no_end_sentinel"
	IssueMultipleEndSentinels IssueKind = "multiple_end_sentinels"
	IssueEndSentinelNotLast   IssueKind = "end_sentinel_not_last"
)

// Issue is an advisory finding about a track's shape. The calculator itself
// never fails on these; a well-formed track carries exactly one end sentinel
// as its last step.
type Issue struct {
	StepIndex int       `json:"step_index"`
	Kind      IssueKind `json:"kind"`
	Message   string    `json:"message"`
}

// ValidateTrack checks end-sentinel cardinality and position.
func ValidateTrack(steps []Step) []Issue {
	if len(steps) == 0 {
		return nil
	}
	var sentinels []int
	for i, s := range steps {
		if isEndSentinel(s.Periods) {
			sentinels = append(sentinels, i)
		}
	}

	var issues []Issue
	switch {
	case len(sentinels) == 0:
		issues = append(issues, Issue{
			StepIndex: len(steps) - 1,
			Kind:      IssueNoEndSentinel,
			Message:   "track never reaches the end of the analysis; the last step should run to end",
		})
	case len(sentinels) > 1:
		for _, i := range sentinels[1:] {
			issues = append(issues, Issue{
				StepIndex: i,
				Kind:      IssueMultipleEndSentinels,
				Message:   fmt.Sprintf("step %d also runs to end; only one step may", i+1),
			})
		}
	}
	if len(sentinels) > 0 {
		if last := sentinels[len(sentinels)-1]; last != len(steps)-1 {
			issues = append(issues, Issue{
				StepIndex: last,
				Kind:      IssueEndSentinelNotLast,
				Message:   "the run-to-end step should be the last step of the track",
			})
		}
	}
	return issues
}

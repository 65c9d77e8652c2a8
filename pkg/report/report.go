// Package report collects per-step outcomes of a provisioning run.
package report

import (
	"fmt"
	"strings"
)

// Outcome classifies what happened to a single step.
type Outcome int

const (
	// Applied means the step's apply action ran and succeeded.
	Applied Outcome = iota
	// Skipped means the check predicate reported the step already satisfied,
	// or the user declined an optional group.
	Skipped
	// FailedSoft means the step failed but the sequence continued, possibly
	// after a rollback.
	FailedSoft
	// FailedHard means a critical step failed and the sequence was aborted.
	FailedHard
	// WouldApply means a dry run determined the step is not yet satisfied.
	WouldApply
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case FailedSoft:
		return "failed"
	case FailedHard:
		return "aborted"
	case WouldApply:
		return "would apply"
	default:
		return "unknown"
	}
}

// Result is the outcome of one step.
type Result struct {
	Title   string
	Outcome Outcome
	Detail  string
}

func (r Result) String() string {
	if r.Detail == "" {
		return fmt.Sprintf("%s: %s", r.Title, r.Outcome)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Title, r.Outcome, r.Detail)
}

// Results aggregates step outcomes in run order.
type Results []Result

// Add appends a result.
func (rs *Results) Add(title string, outcome Outcome, detail string) {
	*rs = append(*rs, Result{Title: title, Outcome: outcome, Detail: detail})
}

// Count returns the number of results with the given outcome.
func (rs Results) Count(o Outcome) int {
	var n int
	for _, r := range rs {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// Aborted is true when the run ended with a hard failure.
func (rs Results) Aborted() bool {
	return rs.Count(FailedHard) > 0
}

// AllSkipped is true when every step reported already satisfied. A fully
// converged system yields this on a re-run.
func (rs Results) AllSkipped() bool {
	return len(rs) > 0 && rs.Count(Skipped) == len(rs)
}

// Summary renders a human-readable per-step listing.
func (rs Results) Summary() string {
	var sb strings.Builder
	for _, r := range rs {
		sb.WriteString("  - ")
		sb.WriteString(r.String())
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("  %d applied, %d skipped, %d failed", rs.Count(Applied), rs.Count(Skipped), rs.Count(FailedSoft)+rs.Count(FailedHard)))
	return sb.String()
}

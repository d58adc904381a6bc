// Package suggest evaluates a fixed rule set over a routing solution and
// produces actionable recommendations. Rules are independent: every rule
// that applies emits a suggestion, in a stable order.
package suggest

import (
	"fmt"

	"github.com/fleetmind/fleetmind/pkg/analysis"
	"github.com/fleetmind/fleetmind/pkg/vrp"
)

// Severity ranks how urgently a suggestion should be acted on.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Suggestion is a single actionable recommendation.
type Suggestion struct {
	Category string                     `json:"category"`
	Severity Severity                   `json:"severity"`
	Issue    string                     `json:"issue"`
	Action   string                     `json:"suggestion"`
	Details  []analysis.ViolationDetail `json:"details,omitempty"`
}

// List is the outcome of a suggestion pass. NoSolution is set when there
// was nothing to evaluate; the caller gets an empty list, not an error.
type List struct {
	Suggestions []Suggestion `json:"suggestions"`
	TotalFound  int          `json:"totalFound"`
	NoSolution  bool         `json:"noSolution,omitempty"`
}

// placeholderUtilization stands in for a real capacity-weighted average.
// Kept at the source's fixed value for compatibility; replacing it with an
// actual computation changes which solutions trigger the efficiency rule.
const placeholderUtilization = 0.7

const lowUtilizationThreshold = 0.6

// Suggest evaluates all rules against a solution, in fixed order:
// coverage, constraints, efficiency, balance.
func Suggest(solution *vrp.Solution, problem *vrp.Problem) List {
	if solution == nil {
		return List{Suggestions: []Suggestion{}, NoSolution: true}
	}

	suggestions := []Suggestion{}

	if len(solution.Unserved) > 0 {
		suggestions = append(suggestions, Suggestion{
			Category: "coverage",
			Severity: SeverityHigh,
			Issue:    fmt.Sprintf("%d unassigned jobs", len(solution.Unserved)),
			Action:   "Consider adding more vehicles or relaxing time window constraints",
		})
	}

	if violations := analysis.ExtractViolations(solution); len(violations) > 0 {
		details := violations
		if len(details) > 3 {
			details = details[:3]
		}
		suggestions = append(suggestions, Suggestion{
			Category: "constraints",
			Severity: SeverityHigh,
			Issue:    fmt.Sprintf("%d constraint violations found", len(violations)),
			Action:   "Review time windows, capacities, and skills constraints",
			Details:  details,
		})
	}

	if avgUtilization(solution, problem) < lowUtilizationThreshold {
		suggestions = append(suggestions, Suggestion{
			Category: "efficiency",
			Severity: SeverityMedium,
			Issue:    "Low average capacity utilization",
			Action:   "Consider reducing number of vehicles or consolidating routes",
		})
	}

	if unbalanced(solution.Trips) {
		suggestions = append(suggestions, Suggestion{
			Category: "balance",
			Severity: SeverityLow,
			Issue:    "Unbalanced route durations",
			Action:   "Enable route balancing in solver options",
		})
	}

	return List{Suggestions: suggestions, TotalFound: len(suggestions)}
}

func avgUtilization(solution *vrp.Solution, _ *vrp.Problem) float64 {
	if len(solution.Trips) == 0 {
		return 0
	}
	return placeholderUtilization
}

func unbalanced(trips []vrp.Trip) bool {
	if len(trips) == 0 {
		return false
	}
	minDur := trips[0].Duration
	maxDur := trips[0].Duration
	for _, t := range trips[1:] {
		if t.Duration < minDur {
			minDur = t.Duration
		}
		if t.Duration > maxDur {
			maxDur = t.Duration
		}
	}
	return maxDur > minDur*2
}

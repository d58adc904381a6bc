package assistant

import (
	"fmt"
	"strings"

	"github.com/fleetmind/fleetmind/pkg/contextstore"
)

const (
	maxContextJobs       = 10
	maxContextViolations = 5
)

// FormatContext renders a stored session context as the hidden context
// block injected ahead of the user's message. The block summarizes the
// problem and, when present, the solution: the model reasons over this
// text, the tools return the structured detail.
func FormatContext(sc *contextstore.SessionContext) string {
	if sc == nil || sc.Problem == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("<VRP_CONTEXT>\n")

	problem := sc.Problem
	b.WriteString("\n## Problem Overview\n")
	fmt.Fprintf(&b, "- Total Jobs: %d\n", len(problem.Jobs))
	fmt.Fprintf(&b, "- Total Resources/Vehicles: %d\n", len(problem.Resources))

	if len(problem.Jobs) > 0 {
		b.WriteString("\n## Jobs\n")
		for idx, job := range problem.Jobs {
			if idx >= maxContextJobs {
				fmt.Fprintf(&b, "  ... and %d more jobs\n", len(problem.Jobs)-maxContextJobs)
				break
			}
			loc := "Unknown location"
			if job.Location != nil {
				if job.Location.Latitude != 0 || job.Location.Longitude != 0 {
					loc = fmt.Sprintf("(%.4f, %.4f)", job.Location.Latitude, job.Location.Longitude)
				} else if job.Location.Address != "" {
					loc = job.Location.Address
				}
			}
			fmt.Fprintf(&b, "- %s: %s, duration=%ds\n", job.Name, loc, job.Duration)
		}
	}

	if len(problem.Resources) > 0 {
		b.WriteString("\n## Resources\n")
		for _, resource := range problem.Resources {
			fmt.Fprintf(&b, "- %s: capacity=%v\n", resource.Name, resource.Capacity)
		}
	}

	if solution := sc.Solution; solution != nil {
		b.WriteString("\n## Solution\n")
		id := solution.ID
		if id == "" {
			id = "N/A"
		}
		status := solution.Status
		if status == "" {
			status = "SOLVED"
		}
		fmt.Fprintf(&b, "- Solution ID: %s\n", id)
		fmt.Fprintf(&b, "- Status: %s\n", status)
		fmt.Fprintf(&b, "- Routes Generated: %d\n", len(solution.Trips))
		fmt.Fprintf(&b, "- Unserved Jobs: %d\n", len(solution.Unserved))
		if solution.Occupancy > 0 {
			fmt.Fprintf(&b, "- Overall Occupancy: %.1f%%\n", solution.Occupancy*100)
		}
		if solution.TotalDistance > 0 {
			fmt.Fprintf(&b, "- Total Distance: %.1f km\n", float64(solution.TotalDistance)/1000)
		}
		if solution.TotalTravelTime > 0 {
			fmt.Fprintf(&b, "- Total Travel Time: %.1f hours\n", float64(solution.TotalTravelTime)/3600)
		}

		if len(solution.Trips) > 0 {
			b.WriteString("\n## Route Details\n")
			for idx, trip := range solution.Trips {
				resource := trip.Resource
				if resource == "" {
					resource = fmt.Sprintf("vehicle_%d", idx)
				}
				fmt.Fprintf(&b, "- %s: %d stops, %.1f km, %.0f min travel time\n",
					resource, len(trip.Visits), float64(trip.Distance)/1000, float64(trip.Duration)/60)
			}
		}

		if solution.Score != nil {
			b.WriteString("\n## Solution Quality\n")
			fmt.Fprintf(&b, "- Feasible: %t\n", solution.Score.Feasible)
			fmt.Fprintf(&b, "- Hard Score: %d\n", solution.Score.HardScore)
			fmt.Fprintf(&b, "- Soft Score: %d\n", solution.Score.SoftScore)
		}

		if len(solution.Violations) > 0 {
			b.WriteString("\n## Constraint Violations\n")
			for idx, violation := range solution.Violations {
				if idx >= maxContextViolations {
					break
				}
				fmt.Fprintf(&b, "- %s (%s): %s\n", violation.Name, violation.Level, violation.Value)
			}
		}
	}

	b.WriteString("\n</VRP_CONTEXT>")
	return b.String()
}

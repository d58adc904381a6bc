// Package analysis derives structured insights from a stored routing
// solution. The engine is stateless: every call recomputes its result from
// the solution and problem it is handed, and a missing solution degrades
// to an explicit "nothing to analyze" result instead of failing.
package analysis

import (
	"strings"

	"github.com/fleetmind/fleetmind/pkg/vrp"
)

// Aspect selects which view of the solution to compute.
type Aspect int

const (
	AspectOverview Aspect = iota
	AspectRoutes
	AspectUtilization
	AspectConstraints
	AspectEfficiency
)

// String returns the aspect name used in tool output.
func (a Aspect) String() string {
	switch a {
	case AspectRoutes:
		return "routes"
	case AspectUtilization:
		return "utilization"
	case AspectConstraints:
		return "constraints"
	case AspectEfficiency:
		return "efficiency"
	default:
		return "overview"
	}
}

// ParseAspect maps free-text aspect input to an Aspect. Matching is
// case-insensitive substring search, checked in a fixed priority order so
// ambiguous input resolves the same way every time; anything unmatched
// falls back to the composite overview.
func ParseAspect(s string) Aspect {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "route"):
		return AspectRoutes
	case strings.Contains(lower, "utilization"), strings.Contains(lower, "capacity"):
		return AspectUtilization
	case strings.Contains(lower, "constraint"), strings.Contains(lower, "violation"):
		return AspectConstraints
	case strings.Contains(lower, "efficiency"), strings.Contains(lower, "performance"):
		return AspectEfficiency
	default:
		return AspectOverview
	}
}

// RouteStat describes a single trip in the route view.
type RouteStat struct {
	RouteID  int      `json:"routeId"`
	Resource string   `json:"resource"`
	Stops    int      `json:"stops"`
	Distance int      `json:"distance"`
	Duration int      `json:"duration"`
	Jobs     []string `json:"jobs"`
}

// RouteView is the per-trip breakdown of a solution.
type RouteView struct {
	NoTrips     bool        `json:"noTrips,omitempty"`
	TotalRoutes int         `json:"totalRoutes"`
	Routes      []RouteStat `json:"routes,omitempty"`
}

// VehicleUtilization pairs a trip's reported load with its resource's
// declared capacity.
type VehicleUtilization struct {
	Resource      string `json:"resource"`
	CapacityUsed  []int  `json:"capacityUsed,omitempty"`
	CapacityTotal []int  `json:"capacityTotal,omitempty"`
	Stops         int    `json:"stops"`
}

// UtilizationView reports per-vehicle load against declared capacity.
type UtilizationView struct {
	NoTrips           bool                 `json:"noTrips,omitempty"`
	ByVehicle         []VehicleUtilization `json:"utilizationByVehicle,omitempty"`
	VehiclesUsed      int                  `json:"vehiclesUsed"`
	VehiclesAvailable int                  `json:"totalVehiclesAvailable"`
}

// ViolationDetail pairs a violated visit with its job and owning resource.
type ViolationDetail struct {
	Job        string   `json:"job"`
	Resource   string   `json:"resource"`
	Violations []string `json:"violations"`
}

// ConstraintView lists constraint violations and unserved jobs.
type ConstraintView struct {
	TotalViolations int               `json:"totalViolations"`
	Violations      []ViolationDetail `json:"violations,omitempty"`
	UnassignedJobs  int               `json:"unassignedJobs"`
	Unassigned      []string          `json:"unassignedDetails,omitempty"`
	Status          string            `json:"status"`
}

// EfficiencyView aggregates distance, duration and stop counts.
type EfficiencyView struct {
	NoTrips            bool    `json:"noTrips,omitempty"`
	TotalDistance      int     `json:"totalDistance"`
	TotalDuration      int     `json:"totalDuration"`
	TotalStops         int     `json:"totalStops"`
	AvgDistancePerStop float64 `json:"avgDistancePerStop"`
	VehiclesUsed       int     `json:"vehiclesUsed"`
}

// Result is the outcome of a single Analyze call. Exactly one view is
// populated for a specific aspect; the overview aspect fills all four.
type Result struct {
	Aspect      string           `json:"aspect"`
	NoSolution  bool             `json:"noSolution,omitempty"`
	Routes      *RouteView       `json:"routes,omitempty"`
	Utilization *UtilizationView `json:"utilization,omitempty"`
	Constraints *ConstraintView  `json:"constraints,omitempty"`
	Efficiency  *EfficiencyView  `json:"efficiency,omitempty"`
}

// Analyze computes the requested view over a solution. A nil solution
// yields a structured no-solution result, never an error.
func Analyze(aspect Aspect, solution *vrp.Solution, problem *vrp.Problem) Result {
	if solution == nil {
		return Result{Aspect: aspect.String(), NoSolution: true}
	}

	result := Result{Aspect: aspect.String()}
	switch aspect {
	case AspectRoutes:
		result.Routes = analyzeRoutes(solution)
	case AspectUtilization:
		result.Utilization = analyzeUtilization(solution, problem)
	case AspectConstraints:
		result.Constraints = analyzeConstraints(solution)
	case AspectEfficiency:
		result.Efficiency = analyzeEfficiency(solution)
	default:
		result.Routes = analyzeRoutes(solution)
		result.Utilization = analyzeUtilization(solution, problem)
		result.Constraints = analyzeConstraints(solution)
		result.Efficiency = analyzeEfficiency(solution)
	}
	return result
}

func analyzeRoutes(solution *vrp.Solution) *RouteView {
	if len(solution.Trips) == 0 {
		return &RouteView{NoTrips: true}
	}

	routes := make([]RouteStat, 0, len(solution.Trips))
	for idx, trip := range solution.Trips {
		jobs := make([]string, 0, len(trip.Visits))
		for _, visit := range trip.Visits {
			jobs = append(jobs, visit.Job)
		}
		routes = append(routes, RouteStat{
			RouteID:  idx,
			Resource: trip.Resource,
			Stops:    len(trip.Visits),
			Distance: trip.Distance,
			Duration: trip.Duration,
			Jobs:     jobs,
		})
	}
	return &RouteView{TotalRoutes: len(solution.Trips), Routes: routes}
}

func analyzeUtilization(solution *vrp.Solution, problem *vrp.Problem) *UtilizationView {
	if len(solution.Trips) == 0 {
		return &UtilizationView{NoTrips: true}
	}

	view := &UtilizationView{
		VehiclesUsed: len(solution.Trips),
	}
	if problem != nil {
		view.VehiclesAvailable = len(problem.Resources)
	}
	for _, trip := range solution.Trips {
		vu := VehicleUtilization{
			Resource:     trip.Resource,
			CapacityUsed: trip.Load,
			Stops:        len(trip.Visits),
		}
		if resource, ok := problem.ResourceByName(trip.Resource); ok {
			vu.CapacityTotal = resource.Capacity
		}
		view.ByVehicle = append(view.ByVehicle, vu)
	}
	return view
}

func analyzeConstraints(solution *vrp.Solution) *ConstraintView {
	violations := ExtractViolations(solution)
	status := "feasible"
	if len(violations) > 0 {
		status = "has_violations"
	}
	return &ConstraintView{
		TotalViolations: len(violations),
		Violations:      violations,
		UnassignedJobs:  len(solution.Unserved),
		Unassigned:      solution.Unserved,
		Status:          status,
	}
}

func analyzeEfficiency(solution *vrp.Solution) *EfficiencyView {
	if len(solution.Trips) == 0 {
		return &EfficiencyView{NoTrips: true}
	}

	view := &EfficiencyView{VehiclesUsed: len(solution.Trips)}
	for _, trip := range solution.Trips {
		view.TotalDistance += trip.Distance
		view.TotalDuration += trip.Duration
		view.TotalStops += len(trip.Visits)
	}
	if view.TotalStops > 0 {
		view.AvgDistancePerStop = float64(view.TotalDistance) / float64(view.TotalStops)
	}
	return view
}

// ExtractViolations collects every visit carrying a non-empty violated
// constraint list, in trip and visit order. Shared with the suggestion
// rules.
func ExtractViolations(solution *vrp.Solution) []ViolationDetail {
	if solution == nil {
		return nil
	}
	var details []ViolationDetail
	for _, trip := range solution.Trips {
		for _, visit := range trip.Visits {
			if len(visit.ViolatedConstraints) == 0 {
				continue
			}
			details = append(details, ViolationDetail{
				Job:        visit.Job,
				Resource:   trip.Resource,
				Violations: visit.ViolatedConstraints,
			})
		}
	}
	return details
}

// Package complexity implements admission control for incoming routing
// problems. Validation is a pure function over the problem document and a
// set of limits; it never blocks a caller with an exception, it reports a
// structured result the caller can act on.
package complexity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fleetmind/fleetmind/pkg/vrp"
)

// Limits bounds problem size before a request is forwarded to the solver.
type Limits struct {
	MaxJobs              int `json:"maxJobs" mapstructure:"max_jobs"`
	MaxResources         int `json:"maxResources" mapstructure:"max_resources"`
	MaxTimeWindowsPerJob int `json:"maxTimeWindowsPerJob" mapstructure:"max_time_windows_per_job"`
	MaxBreaksPerResource int `json:"maxBreaksPerResource" mapstructure:"max_breaks_per_resource"`
}

// DefaultLimits are the limits applied to anonymous/public traffic.
func DefaultLimits() Limits {
	return Limits{
		MaxJobs:              250,
		MaxResources:         30,
		MaxTimeWindowsPerJob: 5,
		MaxBreaksPerResource: 3,
	}
}

// Actual records the measured size of a validated problem.
type Actual struct {
	JobCount         int `json:"jobCount"`
	ResourceCount    int `json:"resourceCount"`
	MaxTimeWindows   int `json:"maxTimeWindows"`
	TotalTimeWindows int `json:"totalTimeWindows"`
}

// Result is the outcome of a single validation call.
type Result struct {
	Valid            bool     `json:"valid"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	ActualComplexity Actual   `json:"actualComplexity"`
}

// Validate checks a problem against the given limits. Errors block
// admission; warnings do not. The result is deterministic for identical
// input.
func Validate(p *vrp.Problem, limits Limits) Result {
	var errors []string
	var warnings []string

	var jobs []vrp.Job
	var resources []vrp.Resource
	if p != nil {
		jobs = p.Jobs
		resources = p.Resources
	}
	jobCount := len(jobs)
	resourceCount := len(resources)

	if jobCount > limits.MaxJobs {
		errors = append(errors, fmt.Sprintf(
			"Too many jobs: %d (maximum %d)", jobCount, limits.MaxJobs))
	}
	if jobCount == 0 {
		errors = append(errors, "At least 1 job is required")
	}
	if resourceCount > limits.MaxResources {
		errors = append(errors, fmt.Sprintf(
			"Too many vehicles: %d (maximum %d)", resourceCount, limits.MaxResources))
	}
	if resourceCount == 0 {
		errors = append(errors, "At least 1 vehicle/resource is required")
	}

	maxWindows := 0
	totalWindows := 0
	for idx, job := range jobs {
		windowCount := len(job.Windows)
		totalWindows += windowCount
		if windowCount > maxWindows {
			maxWindows = windowCount
		}
		if windowCount > limits.MaxTimeWindowsPerJob {
			errors = append(errors, fmt.Sprintf(
				"Job %q has %d time windows (maximum %d)",
				jobLabel(job, idx), windowCount, limits.MaxTimeWindowsPerJob))
		}
	}

	for idx, resource := range resources {
		for shiftIdx, shift := range resource.Shifts {
			breakCount := len(shift.Breaks)
			if breakCount > limits.MaxBreaksPerResource {
				errors = append(errors, fmt.Sprintf(
					"Resource %q shift %d has %d breaks (maximum %d)",
					resourceLabel(resource, idx), shiftIdx, breakCount, limits.MaxBreaksPerResource))
			}
		}
	}

	// Warnings are advisory only and never block admission.
	if float64(jobCount) >= float64(limits.MaxJobs)*0.8 {
		warnings = append(warnings, fmt.Sprintf(
			"Approaching job limit (%d/%d)", jobCount, limits.MaxJobs))
	}
	if float64(resourceCount) >= float64(limits.MaxResources)*0.8 {
		warnings = append(warnings, fmt.Sprintf(
			"Approaching resource limit (%d/%d)", resourceCount, limits.MaxResources))
	}

	return Result{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
		ActualComplexity: Actual{
			JobCount:         jobCount,
			ResourceCount:    resourceCount,
			MaxTimeWindows:   maxWindows,
			TotalTimeWindows: totalWindows,
		},
	}
}

// ErrorMessage renders a rejected result as a numbered list for the UI.
// Formatting is separate from validation and never alters the result.
func ErrorMessage(result Result) string {
	if result.Valid {
		return ""
	}
	var b strings.Builder
	b.WriteString("Problem exceeds complexity limits:\n\n")
	for i, err := range result.Errors {
		fmt.Fprintf(&b, "%d. %s\n", i+1, err)
	}
	return b.String()
}

// EstimateSolveTime gives a rough solve-time estimate for a problem.
func EstimateSolveTime(p *vrp.Problem) time.Duration {
	if p == nil {
		return 2 * time.Second
	}
	// base time + per-job and per-resource cost
	est := 2*time.Second +
		time.Duration(len(p.Jobs))*100*time.Millisecond +
		time.Duration(len(p.Resources))*500*time.Millisecond
	return est
}

func jobLabel(job vrp.Job, idx int) string {
	if job.Name != "" {
		return job.Name
	}
	return strconv.Itoa(idx)
}

func resourceLabel(resource vrp.Resource, idx int) string {
	if resource.Name != "" {
		return resource.Name
	}
	return strconv.Itoa(idx)
}

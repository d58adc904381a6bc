package assistant

import (
	"context"

	"github.com/fleetmind/fleetmind/pkg/analysis"
	"github.com/fleetmind/fleetmind/pkg/contextstore"
	"github.com/fleetmind/fleetmind/pkg/suggest"
	"github.com/fleetmind/fleetmind/pkg/tools"
)

type contextKey struct{}

// WithSessionContext attaches a session snapshot to ctx for tool handlers.
func WithSessionContext(ctx context.Context, sc *contextstore.SessionContext) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// SessionContextFromContext returns the session snapshot attached to ctx.
func SessionContextFromContext(ctx context.Context) *contextstore.SessionContext {
	sc, _ := ctx.Value(contextKey{}).(*contextstore.SessionContext)
	return sc
}

// noSolutionResult is what a tool returns when the session has no solved
// problem yet. The agent narrates it; it is not an error.
type noSolutionResult struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
	Available  bool   `json:"available,omitempty"`
}

// RegisterTools registers the solution analysis tools on a registry.
func RegisterTools(registry *tools.Registry) error {
	defs := []tools.Definition{
		{
			Name:        "analyze_solution",
			Description: "Analyze a specific aspect of the VRP solution (routes, utilization, constraints, efficiency)",
			Parameters: []tools.Parameter{
				{
					Name:        "aspect",
					Type:        "string",
					Description: "Aspect to analyze (routes, utilization, constraints, efficiency)",
					Required:    true,
				},
			},
			Handler: analyzeSolutionHandler,
		},
		{
			Name:        "suggest_improvements",
			Description: "Suggest specific improvements for the VRP solution based on current metrics",
			Handler:     suggestImprovementsHandler,
		},
	}
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func analyzeSolutionHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	sc := SessionContextFromContext(ctx)
	if sc == nil {
		return noSolutionResult{
			Error:      "No VRP solution available to analyze",
			Suggestion: "Please solve a VRP problem first",
		}, nil
	}
	if sc.Solution == nil {
		return noSolutionResult{
			Error:     "No solution data available",
			Available: sc.Problem != nil,
		}, nil
	}

	aspect, _ := params["aspect"].(string)
	return analysis.Analyze(analysis.ParseAspect(aspect), sc.Solution, sc.Problem), nil
}

func suggestImprovementsHandler(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sc := SessionContextFromContext(ctx)
	if sc == nil {
		return suggest.Suggest(nil, nil), nil
	}
	return suggest.Suggest(sc.Solution, sc.Problem), nil
}

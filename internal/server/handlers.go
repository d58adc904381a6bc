package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/fleetmind/fleetmind/internal/observability"
	"github.com/fleetmind/fleetmind/pkg/complexity"
	"github.com/fleetmind/fleetmind/pkg/solver"
	"github.com/fleetmind/fleetmind/pkg/vrp"
)

// errorResponse is the standard error payload.
type errorResponse struct {
	Error   string             `json:"error"`
	Type    string             `json:"type"`
	Details *complexityDetails `json:"details,omitempty"`
}

// complexityDetails carries the admission check outcome on rejections so
// callers can self-diagnose.
type complexityDetails struct {
	Errors           []string          `json:"errors"`
	Warnings         []string          `json:"warnings"`
	ActualComplexity complexity.Actual `json:"actualComplexity"`
}

// storeContextRequest is the explicit context storage payload.
type storeContextRequest struct {
	SessionID string        `json:"sessionId"`
	Problem   *vrp.Problem  `json:"request"`
	Solution  *vrp.Solution `json:"solution,omitempty"`
}

// loadJobResponse returns a persisted job with whatever pieces loaded.
type loadJobResponse struct {
	Request          *vrp.Problem           `json:"request,omitempty"`
	Solution         *vrp.Solution          `json:"solution,omitempty"`
	Explanation      map[string]interface{} `json:"explanation,omitempty"`
	ExplanationError string                 `json:"explanationError,omitempty"`
}

// handleSolve validates complexity, forwards to the remote solver, and
// stores the resulting context for the session.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if s.solver == nil {
		writeError(w, http.StatusServiceUnavailable, "solver not configured", "server")
		return
	}

	var problem vrp.Problem
	if err := json.NewDecoder(r.Body).Decode(&problem); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}

	check := complexity.Validate(&problem, s.currentLimits())
	observability.RecordAdmission(check.Valid)
	if !check.Valid {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: complexity.ErrorMessage(check),
			Type:  "complexity_limit",
			Details: &complexityDetails{
				Errors:           check.Errors,
				Warnings:         check.Warnings,
				ActualComplexity: check.ActualComplexity,
			},
		})
		return
	}
	if len(check.Warnings) > 0 {
		log.Warn().Strs("warnings", check.Warnings).Msg("Problem approaching complexity limits")
	}

	solution, err := s.solver.Solve(r.Context(), &problem)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	sessionID := s.sessionID(r)
	s.store.Save(sessionID, &problem, solution)

	w.Header().Set("X-Session-Id", sessionID)
	writeJSON(w, http.StatusOK, solution)
}

// handleStoreContext lets the frontend store context explicitly, e.g.
// for a solution obtained outside this API.
func (s *Server) handleStoreContext(w http.ResponseWriter, r *http.Request) {
	var req storeContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required", "validation")
		return
	}
	if req.Problem == nil {
		writeError(w, http.StatusBadRequest, "request is required", "validation")
		return
	}

	s.store.Save(req.SessionID, req.Problem, req.Solution)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"sessionId": req.SessionID,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": s.store.ListSessions(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadJob loads a persisted job from the solver. The explanation is
// fetched best-effort; its absence does not fail the load.
func (s *Server) handleLoadJob(w http.ResponseWriter, r *http.Request) {
	if s.solver == nil {
		writeError(w, http.StatusServiceUnavailable, "solver not configured", "server")
		return
	}
	jobID := chi.URLParam(r, "jobID")

	problem, solution, err := s.solver.LoadJob(r.Context(), jobID)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	resp := loadJobResponse{Request: problem, Solution: solution}
	explanation, err := s.solver.Explanation(r.Context(), jobID)
	if err != nil {
		resp.ExplanationError = "Explanation not available"
		log.Debug().Str("job_id", jobID).Err(err).Msg("Explanation not available")
	} else {
		resp.Explanation = explanation
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExplanation(w http.ResponseWriter, r *http.Request) {
	if s.solver == nil {
		writeError(w, http.StatusServiceUnavailable, "solver not configured", "server")
		return
	}
	explanation, err := s.solver.Explanation(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeSolverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"store": "operational",
	}
	if s.solver != nil {
		services["solver"] = "operational"
	} else {
		services["solver"] = "disabled"
	}
	if s.orchestrator != nil {
		services["assistant"] = "operational"
	} else {
		services["assistant"] = "disabled"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"version":  Version,
		"services": services,
	})
}

// sessionID resolves the session for a request. Identity is the caller's
// concern: the header value is trusted as-is, and an anonymous session
// gets a random ID rather than one derived from request content, which
// would alias distinct sessions on collisions.
func (s *Server) sessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session-Id"); id != "" {
		return id
	}
	id, err := gonanoid.New()
	if err != nil {
		// gonanoid only fails when the OS entropy source does.
		log.Error().Err(err).Msg("Failed to generate session ID")
		return "anon"
	}
	return "anon_" + id
}

func writeSolverError(w http.ResponseWriter, err error) {
	if apiErr, ok := solver.AsAPIError(err); ok {
		writeError(w, apiErr.StatusCode, apiErr.Message, string(apiErr.Kind))
		return
	}
	log.Error().Err(err).Msg("Solver call failed")
	writeError(w, http.StatusInternalServerError, "internal server error", "server")
}

func writeError(w http.ResponseWriter, status int, message, errType string) {
	writeJSON(w, status, errorResponse{Error: message, Type: errType})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

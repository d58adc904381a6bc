package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetmind/fleetmind/pkg/complexity"
	"github.com/fleetmind/fleetmind/pkg/contextstore"
	"github.com/fleetmind/fleetmind/pkg/solver"
	"github.com/fleetmind/fleetmind/pkg/vrp"
)

func newTestServer(t *testing.T, solverClient *solver.Client) (*Server, *contextstore.Store) {
	t.Helper()
	store := contextstore.New()
	srv, err := New(Config{
		Port:   8080,
		Store:  store,
		Solver: solverClient,
		Limits: complexity.DefaultLimits(),
	})
	require.NoError(t, err)
	return srv, store
}

func fakeSolver(t *testing.T, handler http.HandlerFunc) *solver.Client {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	client, err := solver.New(solver.Config{BaseURL: upstream.URL, APIKey: "test-key", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client
}

func solveBody(t *testing.T, jobs, resources int) *bytes.Buffer {
	t.Helper()
	problem := vrp.Problem{}
	for i := 0; i < jobs; i++ {
		problem.Jobs = append(problem.Jobs, vrp.Job{Name: fmt.Sprintf("job-%d", i)})
	}
	for i := 0; i < resources; i++ {
		problem.Resources = append(problem.Resources, vrp.Resource{Name: fmt.Sprintf("van-%d", i)})
	}
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(problem))
	return buf
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Config{Port: 8080})
	assert.Error(t, err)
}

func TestNew_RequiresValidPort(t *testing.T) {
	_, err := New(Config{Store: contextstore.New()})
	assert.Error(t, err)
}

func TestSolve_Success(t *testing.T) {
	solverClient := fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(vrp.Solution{ID: "sol-1", Status: "solved"})
	})
	srv, store := newTestServer(t, solverClient)

	req := httptest.NewRequest(http.MethodPost, "/vrp/solve", solveBody(t, 3, 1))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	sessionID := rec.Header().Get("X-Session-Id")
	require.NotEmpty(t, sessionID)
	assert.True(t, strings.HasPrefix(sessionID, "anon_"))

	var solution vrp.Solution
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&solution))
	assert.Equal(t, "sol-1", solution.ID)

	stored, ok := store.Get(sessionID)
	require.True(t, ok)
	assert.Len(t, stored.Problem.Jobs, 3)
	assert.Equal(t, "sol-1", stored.Solution.ID)
}

func TestSolve_HonorsSessionHeader(t *testing.T) {
	solverClient := fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(vrp.Solution{ID: "sol-1"})
	})
	srv, store := newTestServer(t, solverClient)

	req := httptest.NewRequest(http.MethodPost, "/vrp/solve", solveBody(t, 1, 1))
	req.Header.Set("X-Session-Id", "my-session")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "my-session", rec.Header().Get("X-Session-Id"))
	_, ok := store.Get("my-session")
	assert.True(t, ok)
}

func TestSolve_RejectsOversizedProblem(t *testing.T) {
	srv, store := newTestServer(t, fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("solver must not be called for a rejected problem")
	}))

	req := httptest.NewRequest(http.MethodPost, "/vrp/solve", solveBody(t, 251, 1))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "complexity_limit", resp.Type)
	assert.Contains(t, resp.Error, "Problem exceeds complexity limits:")
	assert.Contains(t, resp.Error, "1. Too many jobs: 251 (maximum 250)")
	require.NotNil(t, resp.Details)
	assert.Equal(t, 251, resp.Details.ActualComplexity.JobCount)

	assert.Equal(t, 0, store.Len())
}

func TestSolve_LiveLimitUpdate(t *testing.T) {
	solverClient := fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(vrp.Solution{ID: "sol-1"})
	})
	srv, _ := newTestServer(t, solverClient)

	srv.SetLimits(complexity.Limits{MaxJobs: 2, MaxResources: 30, MaxTimeWindowsPerJob: 5, MaxBreaksPerResource: 3})

	req := httptest.NewRequest(http.MethodPost, "/vrp/solve", solveBody(t, 3, 1))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolve_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/vrp/solve", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolve_SolverUnavailable(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/vrp/solve", solveBody(t, 1, 1))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "server", resp.Type)
}

func TestSolve_SolverErrorMapped(t *testing.T) {
	solverClient := fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv, _ := newTestServer(t, solverClient)

	req := httptest.NewRequest(http.MethodPost, "/vrp/solve", solveBody(t, 1, 1))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "authentication", resp.Type)
}

func TestStoreContext(t *testing.T) {
	srv, store := newTestServer(t, nil)

	body := map[string]interface{}{
		"sessionId": "session-1",
		"request": map[string]interface{}{
			"jobs":      []map[string]interface{}{{"name": "job-1"}},
			"resources": []map[string]interface{}{{"name": "van-1"}},
		},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/vrp/context", buf)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	stored, ok := store.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, "job-1", stored.Problem.Jobs[0].Name)
	assert.Nil(t, stored.Solution)
}

func TestStoreContext_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	cases := []struct {
		name string
		body string
	}{
		{"no session", `{"request":{"jobs":[]}}`},
		{"no request", `{"sessionId":"s1"}`},
		{"broken json", `{broken`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/vrp/context", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			srv.routes().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListSessions(t *testing.T) {
	srv, store := newTestServer(t, nil)
	store.Save("b-session", &vrp.Problem{Jobs: []vrp.Job{{Name: "j"}}}, nil)
	store.Save("a-session", &vrp.Problem{Jobs: []vrp.Job{{Name: "j"}}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/vrp/sessions", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"a-session", "b-session"}, resp.Sessions)
}

func TestDeleteSession(t *testing.T) {
	srv, store := newTestServer(t, nil)
	store.Save("session-1", &vrp.Problem{Jobs: []vrp.Job{{Name: "j"}}}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/vrp/sessions/session-1", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := store.Get("session-1")
	assert.False(t, ok)
}

func TestLoadJob(t *testing.T) {
	solverClient := fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/vrp/jobs/abc":
			json.NewEncoder(w).Encode(vrp.Problem{Jobs: []vrp.Job{{Name: "job-1"}}})
		case "/v2/vrp/jobs/abc/solution":
			json.NewEncoder(w).Encode(vrp.Solution{ID: "sol-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv, _ := newTestServer(t, solverClient)

	req := httptest.NewRequest(http.MethodGet, "/vrp/jobs/abc/load", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp loadJobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Request)
	assert.Equal(t, "sol-1", resp.Solution.ID)
	assert.Equal(t, "Explanation not available", resp.ExplanationError)
}

func TestLoadJob_NotFound(t *testing.T) {
	solverClient := fakeSolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv, _ := newTestServer(t, solverClient)

	req := httptest.NewRequest(http.MethodGet, "/vrp/jobs/missing/load", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_found", resp.Type)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/vrp/health", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   string            `json:"status"`
		Version  string            `json:"version"`
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
	assert.Equal(t, "operational", resp.Services["store"])
	assert.Equal(t, "disabled", resp.Services["solver"])
	assert.Equal(t, "disabled", resp.Services["assistant"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "context_active_sessions")
}

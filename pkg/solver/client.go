// Package solver wraps the remote VRP solver service. The solver itself is
// opaque: this client ships a problem document over HTTP and hands back
// the solution document, mapping transport and status failures onto a
// small error taxonomy the API layer can translate.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fleetmind/fleetmind/internal/observability"
	"github.com/fleetmind/fleetmind/pkg/vrp"
)

// ErrorKind classifies solver API failures.
type ErrorKind string

const (
	ErrAuthentication ErrorKind = "authentication"
	ErrValidation     ErrorKind = "validation"
	ErrTimeout        ErrorKind = "timeout"
	ErrNotFound       ErrorKind = "not_found"
	ErrNetwork        ErrorKind = "network"
	ErrServer         ErrorKind = "server"
)

// APIError is a classified solver failure.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("solver: %s (%s)", e.Message, e.Kind)
}

// AsAPIError unwraps err into an APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrReorderUnsupported reports that the solver's change API is not
// exposed by this client yet.
var ErrReorderUnsupported = errors.New("solver: job reordering via the change API is not supported")

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the remote solver.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a solver client. The API key is required; without it every
// call would be rejected upstream anyway.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &APIError{Kind: ErrAuthentication, StatusCode: http.StatusInternalServerError, Message: "solver API key not configured"}
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("solver base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Solve submits a problem for synchronous solving.
func (c *Client) Solve(ctx context.Context, problem *vrp.Problem) (*vrp.Solution, error) {
	start := time.Now()
	log.Info().Int("jobs", len(problem.Jobs)).Msg("Solving VRP problem")

	var solution vrp.Solution
	err := c.do(ctx, http.MethodPost, "/v2/vrp/sync/solve", problem, &solution)
	observability.RecordSolve(time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return &solution, nil
}

// LoadJob retrieves a persisted job's request, plus its solution when one
// is ready. A missing solution is not a failure.
func (c *Client) LoadJob(ctx context.Context, jobID string) (*vrp.Problem, *vrp.Solution, error) {
	var problem vrp.Problem
	if err := c.do(ctx, http.MethodGet, "/v2/vrp/jobs/"+jobID, nil, &problem); err != nil {
		return nil, nil, err
	}

	var solution vrp.Solution
	if err := c.do(ctx, http.MethodGet, "/v2/vrp/jobs/"+jobID+"/solution", nil, &solution); err != nil {
		// Solution might not be ready yet.
		log.Debug().Str("job_id", jobID).Err(err).Msg("Job solution not available")
		return &problem, nil, nil
	}
	return &problem, &solution, nil
}

// Explanation retrieves the solver's explanation for a solved job. The
// payload shape is solver-defined, so it stays a raw document.
func (c *Client) Explanation(ctx context.Context, jobID string) (map[string]interface{}, error) {
	var explanation map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/v2/vrp/jobs/"+jobID+"/explanation", nil, &explanation); err != nil {
		return nil, err
	}
	return explanation, nil
}

// Reorder is not implemented by this client.
func (c *Client) Reorder(ctx context.Context, solutionID string, changes map[string]interface{}) (*vrp.Solution, error) {
	return nil, ErrReorderUnsupported
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapStatusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: ErrServer, StatusCode: resp.StatusCode, Message: "malformed solver response"}
	}
	return nil
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: ErrTimeout, StatusCode: http.StatusRequestTimeout, Message: "request timeout"}
	}
	var urlErr interface{ Timeout() bool }
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &APIError{Kind: ErrTimeout, StatusCode: http.StatusRequestTimeout, Message: "request timeout"}
	}
	return &APIError{Kind: ErrNetwork, StatusCode: http.StatusServiceUnavailable, Message: "network error"}
}

func mapStatusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &APIError{Kind: ErrAuthentication, StatusCode: http.StatusUnauthorized, Message: "invalid API key"}
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{Kind: ErrNotFound, StatusCode: http.StatusNotFound, Message: "job not found"}
	case resp.StatusCode == http.StatusRequestTimeout:
		return &APIError{Kind: ErrTimeout, StatusCode: http.StatusRequestTimeout, Message: "request timeout"}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &APIError{Kind: ErrValidation, StatusCode: http.StatusBadRequest, Message: "invalid request data"}
	default:
		log.Error().Int("status", resp.StatusCode).Str("body", string(msg)).Msg("Solver API error")
		return &APIError{Kind: ErrServer, StatusCode: http.StatusInternalServerError, Message: "internal server error"}
	}
}

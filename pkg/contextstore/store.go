package contextstore

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleetmind/fleetmind/internal/observability"
	"github.com/fleetmind/fleetmind/pkg/vrp"
)

// SessionContext is the stored problem/solution pair for one session.
// Solution is nil until a solve has succeeded for the session.
type SessionContext struct {
	SessionID string        `json:"sessionId"`
	Problem   *vrp.Problem  `json:"problem"`
	Solution  *vrp.Solution `json:"solution,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (c *SessionContext) clone() *SessionContext {
	return &SessionContext{
		SessionID: c.SessionID,
		Problem:   c.Problem.Clone(),
		Solution:  c.Solution.Clone(),
		UpdatedAt: c.UpdatedAt,
	}
}

// Store is a process-lifetime cache of session contexts.
type Store struct {
	mu       sync.Mutex
	contexts map[string]*SessionContext
	now      func() time.Time
}

// New creates an empty store.
func New() *Store {
	observability.EnsureRegistered()
	return &Store{
		contexts: make(map[string]*SessionContext),
		now:      time.Now,
	}
}

// Save inserts or fully replaces the context for a session.
func (s *Store) Save(sessionID string, problem *vrp.Problem, solution *vrp.Solution) {
	s.mu.Lock()
	s.contexts[sessionID] = &SessionContext{
		SessionID: sessionID,
		Problem:   problem.Clone(),
		Solution:  solution.Clone(),
		UpdatedAt: s.now(),
	}
	total := len(s.contexts)
	s.mu.Unlock()

	observability.RecordStoreOp("save")
	observability.SetActiveSessions(total)
	log.Info().
		Str("session_id", sessionID).
		Bool("has_solution", solution != nil).
		Int("total_sessions", total).
		Msg("Session context saved")
}

// Get returns a snapshot of the context for a session. The second return
// value reports whether the session exists; a miss is not an error.
func (s *Store) Get(sessionID string) (*SessionContext, bool) {
	s.mu.Lock()
	ctx, ok := s.contexts[sessionID]
	var snapshot *SessionContext
	if ok {
		snapshot = ctx.clone()
	}
	s.mu.Unlock()

	observability.RecordStoreOp("get")
	if !ok {
		observability.RecordStoreMiss("get")
		log.Warn().Str("session_id", sessionID).Msg("No session context found")
		return nil, false
	}
	log.Debug().
		Str("session_id", sessionID).
		Bool("has_solution", snapshot.Solution != nil).
		Msg("Session context retrieved")
	return snapshot, true
}

// UpdateSolution replaces only the solution for an existing session and
// refreshes its timestamp. Updating a session that does not exist is a
// logged no-op: no entry is created and the caller does not fail.
func (s *Store) UpdateSolution(sessionID string, solution *vrp.Solution) {
	s.mu.Lock()
	ctx, ok := s.contexts[sessionID]
	if ok {
		ctx.Solution = solution.Clone()
		ctx.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	observability.RecordStoreOp("update_solution")
	if !ok {
		observability.RecordStoreMiss("update_solution")
		log.Warn().Str("session_id", sessionID).Msg("Attempted to update non-existent session")
		return
	}
	log.Info().Str("session_id", sessionID).Msg("Session solution updated")
}

// Delete removes the context for a session if present.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	_, ok := s.contexts[sessionID]
	delete(s.contexts, sessionID)
	total := len(s.contexts)
	s.mu.Unlock()

	observability.RecordStoreOp("delete")
	observability.SetActiveSessions(total)
	if ok {
		log.Info().Str("session_id", sessionID).Msg("Session context deleted")
	}
}

// ListSessions returns a sorted snapshot of the current session IDs.
func (s *Store) ListSessions() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	observability.RecordStoreOp("list_sessions")
	sort.Strings(ids)
	return ids
}

// EvictOlderThan removes every entry whose age exceeds maxAge, measured
// from its last update, and returns the number removed. The store never
// evicts on its own; callers decide the cadence.
func (s *Store) EvictOlderThan(maxAge time.Duration) int {
	s.mu.Lock()
	cutoff := s.now().Add(-maxAge)
	var removed []string
	for id, ctx := range s.contexts {
		if ctx.UpdatedAt.Before(cutoff) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		delete(s.contexts, id)
	}
	total := len(s.contexts)
	s.mu.Unlock()

	observability.RecordStoreOp("evict")
	observability.RecordEvictions(len(removed))
	observability.SetActiveSessions(total)
	if len(removed) > 0 {
		log.Info().
			Int("removed", len(removed)).
			Dur("max_age", maxAge).
			Msg("Evicted stale session contexts")
	}
	return len(removed)
}

// Len returns the current number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contexts)
}

// Package assistant orchestrates conversational turns over stored routing
// context. It reads a session snapshot from the context store, injects it
// as hidden context for the agent, and exposes the analysis and suggestion
// engines as callable tools the agent can invoke mid-turn.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleetmind/fleetmind/internal/observability"
	"github.com/fleetmind/fleetmind/pkg/agent"
	"github.com/fleetmind/fleetmind/pkg/contextstore"
	"github.com/fleetmind/fleetmind/pkg/tools"
)

const (
	maxToolRounds     = 5
	maxHistoryPerTurn = 40
)

// Config configures the orchestrator.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Reply is the outcome of one conversational turn.
type Reply struct {
	Content   string   `json:"content"`
	ToolsUsed []string `json:"toolsUsed,omitempty"`
}

// Orchestrator runs conversational turns against the agent runtime.
type Orchestrator struct {
	store    *contextstore.Store
	registry *tools.Registry
	provider agent.Provider
	cfg      Config

	mu      sync.Mutex
	history map[string][]agent.Message
}

// New creates an orchestrator. The tool registry should already carry the
// analysis tools; see RegisterTools.
func New(store *contextstore.Store, registry *tools.Registry, provider agent.Provider, cfg Config) *Orchestrator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Orchestrator{
		store:    store,
		registry: registry,
		provider: provider,
		cfg:      cfg,
		history:  make(map[string][]agent.Message),
	}
}

// Respond handles one user turn for a session. The stored context is
// fetched before the agent runs so the model sees the current problem and
// solution from the start; a missing session degrades to a contextless
// turn, never an error.
func (o *Orchestrator) Respond(ctx context.Context, sessionID, userMessage string) (*Reply, error) {
	sc, ok := o.store.Get(sessionID)
	if !ok {
		log.Debug().Str("session_id", sessionID).Msg("Responding without routing context")
	}
	ctx = WithSessionContext(ctx, sc)

	userContent := userMessage
	if block := FormatContext(sc); block != "" {
		userContent = block + "\n\n" + userMessage
	}

	messages := append(o.historyFor(sessionID), agent.Message{Role: "user", Content: userContent})
	toolsUsed := []string{}

	start := time.Now()
	var reply string
	for round := 0; ; round++ {
		response, err := o.provider.Call(ctx, agent.Request{
			Model:        o.cfg.Model,
			Messages:     messages,
			Tools:        o.registry.Schemas(),
			Temperature:  o.cfg.Temperature,
			MaxTokens:    o.cfg.MaxTokens,
			SystemPrompt: Instructions,
		})
		if err != nil {
			observability.RecordAgentRun(o.provider.Name(), time.Since(start), false)
			return nil, fmt.Errorf("agent call failed: %w", err)
		}

		if len(response.ToolCalls) == 0 {
			reply = response.Content
			break
		}
		if round >= maxToolRounds {
			log.Warn().Str("session_id", sessionID).Msg("Tool round limit reached, stopping")
			reply = response.Content
			break
		}

		messages = append(messages, agent.Message{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})
		for _, call := range response.ToolCalls {
			toolsUsed = append(toolsUsed, call.Name)
			messages = append(messages, agent.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    o.runTool(ctx, call),
			})
		}
	}
	observability.RecordAgentRun(o.provider.Name(), time.Since(start), true)

	o.appendHistory(sessionID,
		agent.Message{Role: "user", Content: userMessage},
		agent.Message{Role: "assistant", Content: reply},
	)
	return &Reply{Content: reply, ToolsUsed: toolsUsed}, nil
}

// ResetHistory drops the in-memory transcript for a session.
func (o *Orchestrator) ResetHistory(sessionID string) {
	o.mu.Lock()
	delete(o.history, sessionID)
	o.mu.Unlock()
}

func (o *Orchestrator) runTool(ctx context.Context, call agent.ToolCall) string {
	output, err := o.registry.Execute(ctx, call.Name, call.Parameters)
	if err != nil {
		// Tool failures are narrated back to the model, not surfaced as
		// turn failures.
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	encoded, err := json.Marshal(output)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(encoded)
}

func (o *Orchestrator) historyFor(sessionID string) []agent.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]agent.Message(nil), o.history[sessionID]...)
}

func (o *Orchestrator) appendHistory(sessionID string, msgs ...agent.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	h := append(o.history[sessionID], msgs...)
	if len(h) > maxHistoryPerTurn {
		h = h[len(h)-maxHistoryPerTurn:]
	}
	o.history[sessionID] = h
}

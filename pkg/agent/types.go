package agent

// Message is a single conversation turn sent to a provider.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ToolSchema describes a callable tool to the model.
type ToolSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// TokenUsage tracks token consumption for one call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Request contains the parameters for one LLM call.
type Request struct {
	Model        string
	Messages     []Message
	Tools        []ToolSchema
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Response contains the model output for one LLM call.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

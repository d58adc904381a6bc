// Package agent abstracts the LLM providers behind a single Call
// interface. The conversational runtime is an external collaborator: this
// package only ships a context string plus tool definitions to a provider
// and returns the text and tool calls it produced.
package agent

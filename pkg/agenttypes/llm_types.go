// Package agenttypes defines LLM-related types and interfaces for archagent.
// This file contains the provider client abstraction and the conversation
// message shapes exchanged with it.
package agenttypes

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem is the system prompt.
	RoleSystem Role = "system"
	// RoleUser is end-user input.
	RoleUser Role = "user"
	// RoleAssistant is model output, possibly carrying tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool is a tool result answering a prior tool call.
	RoleTool Role = "tool"
)

// Message is one entry in the conversation sent to a provider.
// An assistant message may carry ToolCalls; a tool message answers exactly
// one of them, identified by ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolInvocation
	ToolCallID string
}

// TurnReply is one provider response: assistant text plus any tool calls the
// model requested in the same turn.
type TurnReply struct {
	Text       string
	ToolCalls  []ToolInvocation
	StopReason string
}

// HasToolCalls reports whether the reply requests tool execution.
func (r *TurnReply) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// LLMClient abstracts one LLM provider. Implementations translate the
// conversation and the registered tools' schemas into provider wire format
// and parse tool calls out of the response.
type LLMClient interface {
	// SendTurn sends the conversation and tool definitions, returning the
	// provider's reply for this turn.
	SendTurn(ctx context.Context, model string, messages []Message, tools []Tool) (*TurnReply, error)

	// GetProviderName returns the provider name (e.g. "openai", "anthropic").
	GetProviderName() string

	// IsConfigured returns true if the client has valid configuration and can make requests.
	IsConfigured() bool
}

// Package agenttypes defines tool contract types for archagent.
// This file contains the capability surface the dispatch orchestrator depends
// on from every registered tool, plus the invocation and result shapes that
// travel between the LLM turn layer and the orchestrator.
package agenttypes

import "fmt"

// Tool is the contract every registered tool implements. The orchestrator
// depends on nothing beyond this interface; tool-internal logic is free-form.
type Tool interface {
	Name() string
	Description() string
	// InputSchema returns a JSON-schema-shaped map describing the tool's
	// arguments, relayed verbatim to the LLM provider.
	InputSchema() map[string]any
	// RequiresTransaction reports whether executing the tool mutates the
	// model and therefore must run inside a transaction scope.
	RequiresTransaction() bool
	// RequiresConfirmation reports whether the tool needs explicit user
	// approval before it may execute.
	RequiresConfirmation() bool
	// DryRun produces a human-readable description of the intended effect
	// for the confirmation prompt. Only meaningful for confirmation-gated
	// tools; others may return "".
	DryRun(args map[string]any) string
	Execute(sess Session, args map[string]any) ToolResult
}

// ToolInvocation is one tool call requested by the LLM: an opaque routing key
// plus payload. The core never interprets tool-specific argument semantics.
type ToolInvocation struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of one tool execution. Success and Error are
// mutually exclusive; AffectedElements is empty unless the tool created or
// modified model elements.
type ToolResult struct {
	Success          bool        `json:"success"`
	Message          string      `json:"message,omitempty"`
	Error            string      `json:"error,omitempty"`
	AffectedElements []ElementID `json:"affected_elements,omitempty"`
	Payload          any         `json:"payload,omitempty"`
}

// SuccessResult builds a successful ToolResult with an optional list of
// affected elements.
func SuccessResult(message string, affected ...ElementID) ToolResult {
	return ToolResult{Success: true, Message: message, AffectedElements: affected}
}

// ErrorResult builds a failed ToolResult from a formatted error message.
func ErrorResult(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Text returns the string relayed back to the LLM for this result.
func (r ToolResult) Text() string {
	if r.Success {
		return r.Message
	}
	return "error: " + r.Error
}

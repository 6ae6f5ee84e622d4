// Package builtin provides the representative tool pack registered at plugin
// startup: model queries, UI selection, and a handful of mutating tools
// exercising every axis of the tool contract (transaction scoping,
// confirmation gating, dry-run descriptions, affected-element feedback).
package builtin

import (
	"fmt"
	"strings"

	"archagent/internal/tools"
	"archagent/pkg/agenttypes"
)

// ListElementsTool lists elements in the active document, optionally filtered
// by category. Pure query: no transaction, no confirmation.
type ListElementsTool struct{}

// Name returns the tool's registry name.
func (ListElementsTool) Name() string { return "list_elements" }

// Description returns the tool description relayed to the LLM.
func (ListElementsTool) Description() string {
	return "List elements in the active document, optionally filtered by category."
}

// InputSchema returns the JSON schema for the tool's arguments.
func (ListElementsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "Only list elements of this category (e.g. Wall, Door).",
			},
		},
	}
}

// RequiresTransaction reports that listing never mutates the model.
func (ListElementsTool) RequiresTransaction() bool { return false }

// RequiresConfirmation reports that listing needs no approval.
func (ListElementsTool) RequiresConfirmation() bool { return false }

// DryRun is unused for unconfirmed tools.
func (ListElementsTool) DryRun(_ map[string]any) string { return "" }

// Execute lists matching elements.
func (ListElementsTool) Execute(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult {
	category, err := tools.OptionalStringArg(args, "category", "")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}

	doc := sess.ActiveDocument()
	var lines []string
	for _, id := range doc.ElementIDs() {
		e, ok := doc.Element(id)
		if !ok {
			continue
		}
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		lines = append(lines, fmt.Sprintf("#%d %s %q", e.ID, e.Category, e.Name))
	}
	if len(lines) == 0 {
		return agenttypes.SuccessResult("no matching elements")
	}
	return agenttypes.ToolResult{
		Success: true,
		Message: fmt.Sprintf("%d elements:\n%s", len(lines), strings.Join(lines, "\n")),
	}
}

// GetElementTool returns one element with its parameters. Pure query.
type GetElementTool struct{}

// Name returns the tool's registry name.
func (GetElementTool) Name() string { return "get_element" }

// Description returns the tool description relayed to the LLM.
func (GetElementTool) Description() string {
	return "Get one element by id, including its parameters."
}

// InputSchema returns the JSON schema for the tool's arguments.
func (GetElementTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "integer",
				"description": "Element id.",
			},
		},
		"required": []string{"id"},
	}
}

// RequiresTransaction reports that reading never mutates the model.
func (GetElementTool) RequiresTransaction() bool { return false }

// RequiresConfirmation reports that reading needs no approval.
func (GetElementTool) RequiresConfirmation() bool { return false }

// DryRun is unused for unconfirmed tools.
func (GetElementTool) DryRun(_ map[string]any) string { return "" }

// Execute fetches the element.
func (GetElementTool) Execute(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult {
	id, err := tools.ElementIDArg(args, "id")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}
	e, ok := sess.ActiveDocument().Element(id)
	if !ok {
		return agenttypes.ErrorResult("no element with id %d", id)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s %q", e.ID, e.Category, e.Name)
	for _, key := range sortedKeys(e.Parameters) {
		fmt.Fprintf(&sb, "\n  %s = %s", key, e.Parameters[key])
	}
	return agenttypes.ToolResult{Success: true, Message: sb.String(), Payload: e}
}

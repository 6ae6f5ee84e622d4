package builtin

import (
	"fmt"

	"archagent/internal/tools"
	"archagent/pkg/agenttypes"
)

// SelectElementsTool replaces the UI selection. Pure UI state: no transaction.
type SelectElementsTool struct{}

// Name returns the tool's registry name.
func (SelectElementsTool) Name() string { return "select_elements" }

// Description returns the tool description relayed to the LLM.
func (SelectElementsTool) Description() string {
	return "Select elements in the UI by id, replacing the current selection."
}

// InputSchema returns the JSON schema for the tool's arguments.
func (SelectElementsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ids": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"description": "Element ids to select. An empty list clears the selection.",
			},
		},
		"required": []string{"ids"},
	}
}

// RequiresTransaction reports that selection is UI state, not model mutation.
func (SelectElementsTool) RequiresTransaction() bool { return false }

// RequiresConfirmation reports that selection needs no approval.
func (SelectElementsTool) RequiresConfirmation() bool { return false }

// DryRun is unused for unconfirmed tools.
func (SelectElementsTool) DryRun(_ map[string]any) string { return "" }

// Execute replaces the selection.
func (SelectElementsTool) Execute(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult {
	ids, err := tools.ElementIDsArg(args, "ids")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}
	if err := sess.Selection().Set(ids); err != nil {
		return agenttypes.ErrorResult("select elements: %v", err)
	}
	return agenttypes.SuccessResult(fmt.Sprintf("selected %d element(s)", len(ids)))
}

// Pack returns the builtin tool pack in registration order.
func Pack() []agenttypes.Tool {
	return []agenttypes.Tool{
		ListElementsTool{},
		GetElementTool{},
		SelectElementsTool{},
		CreateWallTool{},
		SetParameterTool{},
		DeleteElementsTool{},
	}
}

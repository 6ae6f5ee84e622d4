package builtin

import (
	"fmt"
	"sort"
	"strings"

	"archagent/internal/tools"
	"archagent/pkg/agenttypes"
)

// CreateWallTool creates a wall element. Mutating: runs inside a transaction
// scope opened by the orchestrator.
type CreateWallTool struct{}

// Name returns the tool's registry name.
func (CreateWallTool) Name() string { return "create_wall" }

// Description returns the tool description relayed to the LLM.
func (CreateWallTool) Description() string {
	return "Create a wall element with a type name and optional height in millimeters."
}

// InputSchema returns the JSON schema for the tool's arguments.
func (CreateWallTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Wall type name.",
			},
			"height_mm": map[string]any{
				"type":        "string",
				"description": "Unconnected height in millimeters.",
			},
		},
		"required": []string{"name"},
	}
}

// RequiresTransaction reports that creation mutates the model.
func (CreateWallTool) RequiresTransaction() bool { return true }

// RequiresConfirmation reports that creation needs no approval.
func (CreateWallTool) RequiresConfirmation() bool { return false }

// DryRun is unused for unconfirmed tools.
func (CreateWallTool) DryRun(_ map[string]any) string { return "" }

// Execute creates the wall and reports it as affected.
func (CreateWallTool) Execute(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult {
	name, err := tools.StringArg(args, "name")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}
	height, err := tools.OptionalStringArg(args, "height_mm", "3000")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}

	id, err := sess.ActiveDocument().CreateElement(agenttypes.Element{
		Category:   "Wall",
		Name:       name,
		Parameters: map[string]string{"height_mm": height},
	})
	if err != nil {
		return agenttypes.ErrorResult("create wall: %v", err)
	}
	return agenttypes.SuccessResult(fmt.Sprintf("created wall #%d %q", id, name), id)
}

// SetParameterTool sets one parameter on an existing element. Mutating.
type SetParameterTool struct{}

// Name returns the tool's registry name.
func (SetParameterTool) Name() string { return "set_parameter" }

// Description returns the tool description relayed to the LLM.
func (SetParameterTool) Description() string {
	return "Set a named parameter on an element to a new value."
}

// InputSchema returns the JSON schema for the tool's arguments.
func (SetParameterTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":    map[string]any{"type": "integer", "description": "Element id."},
			"name":  map[string]any{"type": "string", "description": "Parameter name."},
			"value": map[string]any{"type": "string", "description": "New value."},
		},
		"required": []string{"id", "name", "value"},
	}
}

// RequiresTransaction reports that parameter writes mutate the model.
func (SetParameterTool) RequiresTransaction() bool { return true }

// RequiresConfirmation reports that parameter writes need no approval.
func (SetParameterTool) RequiresConfirmation() bool { return false }

// DryRun is unused for unconfirmed tools.
func (SetParameterTool) DryRun(_ map[string]any) string { return "" }

// Execute updates the element's parameter.
func (SetParameterTool) Execute(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult {
	id, err := tools.ElementIDArg(args, "id")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}
	name, err := tools.StringArg(args, "name")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}
	value, err := tools.StringArg(args, "value")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}

	doc := sess.ActiveDocument()
	e, ok := doc.Element(id)
	if !ok {
		return agenttypes.ErrorResult("no element with id %d", id)
	}
	e.Parameters[name] = value
	if err := doc.UpdateElement(e); err != nil {
		return agenttypes.ErrorResult("set parameter: %v", err)
	}
	return agenttypes.SuccessResult(fmt.Sprintf("set %s = %s on #%d", name, value, id), id)
}

// DeleteElementsTool deletes elements. Mutating and destructive: gated on
// explicit user confirmation with a dry-run description.
type DeleteElementsTool struct{}

// Name returns the tool's registry name.
func (DeleteElementsTool) Name() string { return "delete_elements" }

// Description returns the tool description relayed to the LLM.
func (DeleteElementsTool) Description() string {
	return "Delete elements by id. Irreversible outside of undo; requires user confirmation."
}

// InputSchema returns the JSON schema for the tool's arguments.
func (DeleteElementsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ids": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"description": "Element ids to delete.",
			},
		},
		"required": []string{"ids"},
	}
}

// RequiresTransaction reports that deletion mutates the model.
func (DeleteElementsTool) RequiresTransaction() bool { return true }

// RequiresConfirmation reports that deletion needs explicit approval.
func (DeleteElementsTool) RequiresConfirmation() bool { return true }

// DryRun describes the intended deletion for the confirmation prompt.
func (DeleteElementsTool) DryRun(args map[string]any) string {
	ids, err := tools.ElementIDsArg(args, "ids")
	if err != nil {
		return "delete elements (ids unreadable: " + err.Error() + ")"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("permanently delete %d element(s): %s", len(ids), strings.Join(parts, ", "))
}

// Execute deletes the elements and reports them as affected.
func (DeleteElementsTool) Execute(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult {
	ids, err := tools.ElementIDsArg(args, "ids")
	if err != nil {
		return agenttypes.ErrorResult("%v", err)
	}
	if len(ids) == 0 {
		return agenttypes.ErrorResult("argument %q must not be empty", "ids")
	}

	doc := sess.ActiveDocument()
	for _, id := range ids {
		if err := doc.DeleteElement(id); err != nil {
			return agenttypes.ErrorResult("delete elements: %v", err)
		}
	}
	return agenttypes.SuccessResult(fmt.Sprintf("deleted %d element(s)", len(ids)), ids...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

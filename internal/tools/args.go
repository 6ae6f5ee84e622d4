package tools

import (
	"fmt"
	"math"

	"archagent/pkg/agenttypes"
)

// Argument accessors shared by tool implementations. LLM-provided arguments
// arrive as generic JSON, so numbers are float64 and ids need range checks.

// StringArg returns the required string argument with the given key.
func StringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

// OptionalStringArg returns the string argument with the given key, or the
// fallback when absent.
func OptionalStringArg(args map[string]any, key, fallback string) (string, error) {
	if _, ok := args[key]; !ok {
		return fallback, nil
	}
	return StringArg(args, key)
}

// ElementIDArg returns the required element-id argument with the given key.
func ElementIDArg(args map[string]any, key string) (agenttypes.ElementID, error) {
	v, ok := args[key]
	if !ok {
		return agenttypes.InvalidElementID, fmt.Errorf("missing required argument %q", key)
	}
	return toElementID(key, v)
}

// ElementIDsArg returns the required list-of-element-ids argument with the
// given key.
func ElementIDsArg(args map[string]any, key string) ([]agenttypes.ElementID, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be a list of element ids, got %T", key, v)
	}
	ids := make([]agenttypes.ElementID, 0, len(list))
	for _, item := range list {
		id, err := toElementID(key, item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toElementID(key string, v any) (agenttypes.ElementID, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < 0 {
			return agenttypes.InvalidElementID, fmt.Errorf("argument %q must be a non-negative integer id, got %v", key, n)
		}
		return agenttypes.ElementID(n), nil
	case int:
		return agenttypes.ElementID(n), nil
	case int64:
		return agenttypes.ElementID(n), nil
	case agenttypes.ElementID:
		return n, nil
	default:
		return agenttypes.InvalidElementID, fmt.Errorf("argument %q must be an element id, got %T", key, v)
	}
}

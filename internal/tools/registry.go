// Package tools provides tool registration and dispatch for archagent.
// It manages the registry of named tools and the orchestrator that executes
// LLM-requested tool invocations against the live document under the correct
// transaction scoping.
package tools

import (
	"fmt"
	"sort"
	"sync"

	"archagent/pkg/agenttypes"
)

// Registry manages tool registration and lookup. It provides thread-safe
// registration and retrieval of tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]agenttypes.Tool
}

// NewRegistry creates a new tool registry with an empty tool map.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]agenttypes.Tool),
	}
}

// Register adds a tool to the registry. Returns an error if the tool name is
// empty or already registered.
func (r *Registry) Register(tool agenttypes.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tool.Name() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[tool.Name()]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name())
	}

	r.tools[tool.Name()] = tool
	return nil
}

// MustRegister registers a tool and panics on error. For startup wiring where
// a duplicate registration is a programming bug.
func (r *Registry) MustRegister(tool agenttypes.Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get retrieves a tool by name. Returns the tool and true if found.
func (r *Registry) Get(name string) (agenttypes.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// GetAll returns all registered tools sorted by name. The returned slice is a
// copy and can be safely modified.
func (r *Registry) GetAll() []agenttypes.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]agenttypes.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		all = append(all, tool)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all
}

// IsValidTool checks whether a tool is registered under the given name.
func (r *Registry) IsValidTool(name string) bool {
	_, exists := r.Get(name)
	return exists
}

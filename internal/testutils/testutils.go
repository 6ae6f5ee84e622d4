// Package testutils provides shared fixtures for archagent tests: a seeded
// in-memory host session and a configurable mock tool.
package testutils

import (
	"fmt"

	"archagent/internal/host/memhost"
	"archagent/pkg/agenttypes"
)

// TestHostVersion is the host version test sessions report.
const TestHostVersion = "2.4.0"

// NewTestSession creates a session over a document seeded with a few
// elements, returning both for inspection.
func NewTestSession() (*memhost.Session, *memhost.Document) {
	doc := memhost.NewDocument("Test Project")
	doc.Seed(agenttypes.Element{Category: "Wall", Name: "Generic - 200mm", Parameters: map[string]string{"height_mm": "3000"}})
	doc.Seed(agenttypes.Element{Category: "Door", Name: "Single-Flush", Parameters: map[string]string{"width_mm": "915"}})
	return memhost.NewSession(doc, TestHostVersion), doc
}

// MockTool implements agenttypes.Tool with configurable behavior.
type MockTool struct {
	ToolName     string
	NeedsTxn     bool
	NeedsConfirm bool
	DryRunText   string
	ExecuteFunc  func(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult

	// Calls counts Execute invocations.
	Calls int
}

// NewMockTool creates a mock tool that succeeds with a canned message.
func NewMockTool(name string) *MockTool {
	return &MockTool{
		ToolName: name,
		ExecuteFunc: func(_ agenttypes.Session, _ map[string]any) agenttypes.ToolResult {
			return agenttypes.SuccessResult(fmt.Sprintf("mock tool %s ran", name))
		},
	}
}

// Name returns the mock tool's name.
func (m *MockTool) Name() string { return m.ToolName }

// Description returns a canned description.
func (m *MockTool) Description() string { return "Mock tool: " + m.ToolName }

// InputSchema returns a minimal object schema.
func (m *MockTool) InputSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

// RequiresTransaction reports the configured transaction requirement.
func (m *MockTool) RequiresTransaction() bool { return m.NeedsTxn }

// RequiresConfirmation reports the configured confirmation requirement.
func (m *MockTool) RequiresConfirmation() bool { return m.NeedsConfirm }

// DryRun returns the configured dry-run text.
func (m *MockTool) DryRun(_ map[string]any) string { return m.DryRunText }

// Execute runs the configured function and counts the call.
func (m *MockTool) Execute(sess agenttypes.Session, args map[string]any) agenttypes.ToolResult {
	m.Calls++
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(sess, args)
	}
	return agenttypes.SuccessResult("ok")
}

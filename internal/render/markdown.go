// Package render provides terminal rendering of assistant output using Glamour.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"archagent/internal/logger"
)

// MarkdownRenderer renders markdown to ANSI terminal output.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer with auto-style detection.
func NewMarkdownRenderer() (*MarkdownRenderer, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	logger.Debug("Markdown renderer initialized")
	return &MarkdownRenderer{renderer: renderer}, nil
}

// Render renders markdown content to a string with ANSI escape sequences.
// Blank input passes through unchanged.
func (m *MarkdownRenderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return markdown, nil
	}
	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

package render

import (
	"log"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders a whole answer in one pass with glamour, which
// highlights fenced code after the markdown has been laid out. The prompt
// command uses it for plain scrolling output.
type MarkdownRenderer struct {
	tr *glamour.TermRenderer
}

// NewMarkdownRenderer builds a renderer that picks a dark or light theme from
// the terminal. style overrides the theme when non-empty (e.g. "notty").
func NewMarkdownRenderer(width int, style string) (*MarkdownRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{tr: tr}, nil
}

// Render returns the formatted answer, or the raw text if rendering fails.
func (m *MarkdownRenderer) Render(content string) string {
	out, err := m.tr.Render(content)
	if err != nil {
		log.Printf("[render] markdown render failed: %v", err)
		return content
	}
	return out
}

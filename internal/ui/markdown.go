package ui

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultMarkdownWidth = 80
	defaultMarkdownStyle = "dark"
)

// markdownRenderer renders item bodies with glamour. The underlying renderer
// is rebuilt only when the width or style changes.
type markdownRenderer struct {
	r     *glamour.TermRenderer
	width int
	style string
}

func (m *markdownRenderer) ensure(width int, style string) error {
	if width < 1 {
		width = defaultMarkdownWidth
	}
	if style == "" {
		style = defaultMarkdownStyle
	}
	if m.r != nil && width == m.width && style == m.style {
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	m.r, m.width, m.style = r, width, style
	return nil
}

// Render returns content as styled terminal text, or content unchanged if
// glamour fails.
func (m *markdownRenderer) Render(content string, width int, style string) string {
	if content == "" {
		return ""
	}
	if err := m.ensure(width, style); err != nil {
		return content
	}
	rendered, err := m.r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// MarkdownStyleFor returns style when w is a terminal and the plain "notty"
// style otherwise, so piped output carries no escape codes.
func MarkdownStyleFor(w io.Writer, style string) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return style
	}
	return "notty"
}

package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

type pagerModel struct {
	viewport viewport.Model
	content  string
	theme    Theme
	ready    bool
	maxWidth int // maximum viewport width (0 = no limit)
	width    int
	height   int
}

func (m pagerModel) Init() tea.Cmd {
	return nil
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.contentWidth(), msg.Height-1)
			m.ready = true
		} else {
			m.viewport.Width = m.contentWidth()
			m.viewport.Height = msg.Height - 1
		}
		m.viewport.SetContent(m.content)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// contentWidth returns the effective content width, respecting maxWidth configuration.
func (m pagerModel) contentWidth() int {
	if m.maxWidth > 0 && m.width > m.maxWidth {
		return m.maxWidth
	}
	return m.width
}

func (m pagerModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	cw := m.contentWidth()
	body := m.theme.ViewPaneStyle().Width(cw).Render(m.viewport.View())
	footer := m.theme.HelpStyle().Width(cw).Render("↑/↓ scroll • q quit")
	return m.theme.PaintScreen(body+"\n"+footer, m.width, m.height, cw)
}

// PageOutput displays content through a Bubble Tea pager when stdout is a
// TTY and the content is taller than the terminal. Otherwise it writes
// directly to stdout.
func PageOutput(content string, theme Theme, maxWidth int) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Print(content)
		return nil
	}

	_, height, err := term.GetSize(fd)
	if err != nil || strings.Count(content, "\n")+1 <= height-2 {
		fmt.Print(content)
		return nil
	}

	p := tea.NewProgram(pagerModel{content: content, theme: theme, maxWidth: maxWidth}, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// OutputOrPage writes content to w, paging when w is the terminal's stdout.
// JSON output is never paged.
func OutputOrPage(w io.Writer, content string, jsonOutput bool, theme Theme, maxWidth int) error {
	if !jsonOutput && w == os.Stdout {
		return PageOutput(content, theme, maxWidth)
	}
	_, err := fmt.Fprint(w, content)
	return err
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

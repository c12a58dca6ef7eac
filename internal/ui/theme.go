package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/config"
)

// Theme holds resolved lipgloss colors for TUI rendering.
type Theme struct {
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Accent        lipgloss.Color
	Muted         lipgloss.Color
	Danger        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Info          lipgloss.Color
	Background    lipgloss.Color
	MarkdownStyle string
}

// Built-in presets.
var presets = map[string]Theme{
	"default-dark": {
		Primary:       lipgloss.Color("15"),
		Secondary:     lipgloss.Color("243"),
		Accent:        lipgloss.Color("33"),
		Muted:         lipgloss.Color("241"),
		Danger:        lipgloss.Color("9"),
		Success:       lipgloss.Color("10"),
		Warning:       lipgloss.Color("11"),
		Info:          lipgloss.Color("14"),
		Background:    lipgloss.Color("235"),
		MarkdownStyle: "dark",
	},
	"default-light": {
		Primary:       lipgloss.Color("0"),
		Secondary:     lipgloss.Color("240"),
		Accent:        lipgloss.Color("27"),
		Muted:         lipgloss.Color("245"),
		Danger:        lipgloss.Color("1"),
		Success:       lipgloss.Color("2"),
		Warning:       lipgloss.Color("3"),
		Info:          lipgloss.Color("6"),
		Background:    lipgloss.Color("254"),
		MarkdownStyle: "light",
	},
	"dracula": {
		Primary:       lipgloss.Color("#F8F8F2"),
		Secondary:     lipgloss.Color("#6272A4"),
		Accent:        lipgloss.Color("#BD93F9"),
		Muted:         lipgloss.Color("#6272A4"),
		Danger:        lipgloss.Color("#FF5555"),
		Success:       lipgloss.Color("#50FA7B"),
		Warning:       lipgloss.Color("#F1FA8C"),
		Info:          lipgloss.Color("#8BE9FD"),
		Background:    lipgloss.Color("#282A36"),
		MarkdownStyle: "dark",
	},
	"catppuccin-mocha": {
		Primary:       lipgloss.Color("#CDD6F4"),
		Secondary:     lipgloss.Color("#585B70"),
		Accent:        lipgloss.Color("#CBA6F7"),
		Muted:         lipgloss.Color("#6C7086"),
		Danger:        lipgloss.Color("#F38BA8"),
		Success:       lipgloss.Color("#A6E3A1"),
		Warning:       lipgloss.Color("#F9E2AF"),
		Info:          lipgloss.Color("#89DCEB"),
		Background:    lipgloss.Color("#1E1E2E"),
		MarkdownStyle: "dark",
	},
	"catppuccin-latte": {
		Primary:       lipgloss.Color("#4C4F69"),
		Secondary:     lipgloss.Color("#9CA0B0"),
		Accent:        lipgloss.Color("#8839EF"),
		Muted:         lipgloss.Color("#9CA0B0"),
		Danger:        lipgloss.Color("#D20F39"),
		Success:       lipgloss.Color("#40A02B"),
		Warning:       lipgloss.Color("#DF8E1D"),
		Info:          lipgloss.Color("#04A5E5"),
		Background:    lipgloss.Color("#EFF1F5"),
		MarkdownStyle: "light",
	},
	"gruvbox-dark": {
		Primary:       lipgloss.Color("#EBDBB2"),
		Secondary:     lipgloss.Color("#665C54"),
		Accent:        lipgloss.Color("#FABD2F"),
		Muted:         lipgloss.Color("#928374"),
		Danger:        lipgloss.Color("#FB4934"),
		Success:       lipgloss.Color("#B8BB26"),
		Warning:       lipgloss.Color("#FE8019"),
		Info:          lipgloss.Color("#83A598"),
		Background:    lipgloss.Color("#282828"),
		MarkdownStyle: "dark",
	},
}

// ResolveTheme builds a Theme from config, starting with a preset
// and applying any explicit overrides.
func ResolveTheme(cfg config.ThemeConfig) Theme {
	preset := cfg.Preset
	if preset == "" {
		preset = "default-dark"
	}

	theme, ok := presets[preset]
	if !ok {
		theme = presets["default-dark"]
	}

	overrides := []struct {
		value string
		dst   *lipgloss.Color
	}{
		{cfg.Primary, &theme.Primary},
		{cfg.Secondary, &theme.Secondary},
		{cfg.Accent, &theme.Accent},
		{cfg.Muted, &theme.Muted},
		{cfg.Danger, &theme.Danger},
		{cfg.Success, &theme.Success},
		{cfg.Warning, &theme.Warning},
		{cfg.Info, &theme.Info},
		{cfg.Background, &theme.Background},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}
	if cfg.MarkdownStyle != "" {
		theme.MarkdownStyle = cfg.MarkdownStyle
	}

	return theme
}

// CategoryColor maps a presentation category to a palette color.
func (t Theme) CategoryColor(c calendar.Category) lipgloss.Color {
	switch c {
	case calendar.CategoryInfo, calendar.CategoryArticle:
		return t.Info
	case calendar.CategoryWarning:
		return t.Warning
	case calendar.CategoryActive, calendar.CategoryPost:
		return t.Accent
	case calendar.CategorySuccess:
		return t.Success
	case calendar.CategoryDanger:
		return t.Danger
	case calendar.CategoryOutline:
		return t.Secondary
	default:
		return t.Muted
	}
}

// PillStyle returns the style for a status pill.
func (t Theme) PillStyle(p calendar.Pill) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.CategoryColor(p.Category)).Background(t.Background)
}

// DotStyle returns the style for an item's kind dot.
func (t Theme) DotStyle(c calendar.Category) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.CategoryColor(c)).Background(t.Background)
}

// HelpStyle returns a lipgloss style for help/footer text.
func (t Theme) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted).Background(t.Background)
}

// HeaderStyle returns a lipgloss style for headers.
func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Background(t.Background)
}

// AccentStyle returns a lipgloss style for accented/focused elements.
func (t Theme) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background)
}

// DangerStyle returns a lipgloss style for errors and rejected moves.
func (t Theme) DangerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Danger).Background(t.Background)
}

// SuccessStyle returns a lipgloss style for confirmations.
func (t Theme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Background(t.Background)
}

// BorderStyle returns a lipgloss style with a rounded border using secondary color.
func (t Theme) BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Secondary).
		BorderBackground(t.Background).
		Background(t.Background).
		Foreground(t.Primary)
}

// ViewPaneStyle returns a lipgloss style for content view panes with themed background.
func (t Theme) ViewPaneStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.Background).
		Foreground(t.Primary)
}

// gridStyles derives the calendar grid styles from the theme.
func (t Theme) gridStyles() gridStyles {
	base := t.ViewPaneStyle()
	return gridStyles{
		base:    base,
		weekday: t.HelpStyle().Bold(true),
		day:     base.Foreground(t.Secondary),
		weekend: base.Foreground(t.Muted),
		today:   base.Foreground(t.Accent).Bold(true),
		focus:   base.Reverse(true),
		target:  base.Foreground(t.Background).Background(t.Accent),
		more:    t.HelpStyle().Italic(true),
		dot:     t.DotStyle,
		pill:    t.PillStyle,
	}
}

// bgEscapeCode returns the raw ANSI escape sequence to set the theme's
// background color, for use with terminal control codes like \x1b[K.
func (t Theme) bgEscapeCode() string {
	s := string(t.Background)
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		var r, g, b int
		fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
	}
	return "\x1b[48;5;" + s + "m"
}

// PaintScreen fills every line to termWidth (with optional centering) and pads
// vertically to termHeight, using the theme background color. Each line also
// ends in \x1b[K so the background reaches the right edge even when
// lipgloss.Width is off by a cell.
func (t Theme) PaintScreen(content string, termWidth, termHeight, contentWidth int) string {
	bgPad := lipgloss.NewStyle().Background(t.Background)
	clearEOL := t.bgEscapeCode() + "\x1b[K"

	leftPad := 0
	if contentWidth > 0 && contentWidth < termWidth {
		leftPad = (termWidth - contentWidth) / 2
	}
	leftStr := ""
	if leftPad > 0 {
		leftStr = bgPad.Render(strings.Repeat(" ", leftPad))
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		rightPad := max(termWidth-leftPad-lipgloss.Width(line), 0)

		var b strings.Builder
		b.WriteString(leftStr)
		b.WriteString(line)
		if rightPad > 0 {
			b.WriteString(bgPad.Render(strings.Repeat(" ", rightPad)))
		}
		b.WriteString(clearEOL)
		lines[i] = b.String()
	}

	emptyLine := bgPad.Render(strings.Repeat(" ", termWidth)) + clearEOL
	for len(lines) < termHeight {
		lines = append(lines, emptyLine)
	}

	return strings.Join(lines[:termHeight], "\n")
}

// ClearLineEnds appends a terminal-level erase-to-end-of-line (\x1b[K) to
// every line. Use it for output produced by lipgloss.Place, which may not
// extend to the full terminal width.
func (t Theme) ClearLineEnds(content string) string {
	clearEOL := t.bgEscapeCode() + "\x1b[K"
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = line + clearEOL
	}
	return strings.Join(lines, "\n")
}

// NewList creates a list.Model with delegate and chrome styles derived from the theme.
func (t Theme) NewList(items []list.Item, width, height int) list.Model {
	l := list.New(items, t.ListDelegate(), width, height)
	l.Styles = t.ListStyles()
	return l
}

// ListDelegate returns a list.DefaultDelegate with item styles derived from the theme.
func (t Theme) ListDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Background(t.Background).
		Padding(0, 0, 0, 2)
	d.Styles.NormalDesc = d.Styles.NormalTitle.
		Foreground(t.Muted)
	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Accent).
		Foreground(t.Accent).
		Background(t.Background).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Foreground(t.Secondary)
	d.Styles.DimmedTitle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Background(t.Background).
		Padding(0, 0, 0, 2)
	d.Styles.DimmedDesc = d.Styles.DimmedTitle.
		Foreground(t.Muted)
	return d
}

// ListStyles returns list.Styles (chrome around the list) derived from the theme.
func (t Theme) ListStyles() list.Styles {
	s := list.DefaultStyles()
	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Background(t.Background)
	s.TitleBar = lipgloss.NewStyle().
		Background(t.Background)
	s.PaginationStyle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Background(t.Background)
	s.HelpStyle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Background(t.Background)
	s.NoItems = lipgloss.NewStyle().
		Foreground(t.Muted).
		Background(t.Background)
	return s
}

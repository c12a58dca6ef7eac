package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
)

const (
	dotGlyph  = "●"
	minColumn = 6
)

// gridStyles are the styles a grid is drawn with. The zero-color variant
// from plainStyles renders plain text.
type gridStyles struct {
	base    lipgloss.Style
	weekday lipgloss.Style
	day     lipgloss.Style
	weekend lipgloss.Style
	today   lipgloss.Style
	focus   lipgloss.Style
	target  lipgloss.Style
	more    lipgloss.Style
	dot     func(calendar.Category) lipgloss.Style
	pill    func(calendar.Pill) lipgloss.Style
}

func plainStyles() gridStyles {
	s := lipgloss.NewStyle()
	return gridStyles{
		base: s, weekday: s, day: s, weekend: s, today: s, focus: s, target: s, more: s,
		dot:  func(calendar.Category) lipgloss.Style { return s },
		pill: func(calendar.Pill) lipgloss.Style { return s },
	}
}

// gridMarks are the interactive highlights layered on a grid.
type gridMarks struct {
	focus    calendar.DayKey
	item     item.Ref
	dragging bool
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// renderGrid draws the cells of v in a width-wide block.
func renderGrid(v calendar.View, width int, st gridStyles, marks gridMarks) string {
	if v.View == calendar.Day.String() {
		return renderHours(v, width, st, marks)
	}

	colW := max(width/7, minColumn)
	inner := colW - 1
	gap := st.base.Render(" ")

	var b strings.Builder
	heads := make([]string, len(v.Weekdays))
	for i, name := range v.Weekdays {
		heads[i] = st.weekday.Width(inner).Render(truncate(name, inner))
	}
	b.WriteString(strings.Join(heads, gap))

	for _, row := range v.Rows() {
		blocks := make([][]string, len(row))
		height := 0
		for i, c := range row {
			blocks[i] = cellLines(c, inner, st, marks)
			height = max(height, len(blocks[i]))
		}

		b.WriteString("\n")
		cols := make([]string, len(row))
		for i, lines := range blocks {
			for len(lines) < height {
				lines = append(lines, st.base.Width(inner).Render(""))
			}
			if i < len(blocks)-1 {
				for j := range lines {
					lines[j] += gap
				}
			}
			cols[i] = strings.Join(lines, "\n")
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	return b.String()
}

func cellLines(c calendar.CellView, inner int, st gridStyles, marks gridMarks) []string {
	if c.Padding() {
		return []string{st.base.Width(inner).Render("")}
	}

	label := fmt.Sprintf("%2d", c.Day)
	if c.IsToday {
		label += " today"
	}
	if c.DragOrigin {
		label += " ↑"
	}
	headStyle := st.day
	switch {
	case c.Key == marks.focus && marks.dragging:
		headStyle = st.target
	case c.Key == marks.focus:
		headStyle = st.focus
	case c.IsToday:
		headStyle = st.today
	case c.IsWeekend:
		headStyle = st.weekend
	}
	lines := []string{headStyle.Width(inner).Render(truncate(label, inner))}

	for _, d := range c.Shown {
		lines = append(lines, itemLine(d, inner, st, marks))
	}
	if c.Hidden > 0 {
		lines = append(lines, st.more.Width(inner).Render(truncate(fmt.Sprintf("+%d more", c.Hidden), inner)))
	}
	return lines
}

func itemLine(d calendar.Descriptor, inner int, st gridStyles, marks gridMarks) string {
	text := truncate(d.Label, inner-2)
	style := st.base
	if d.Ref == marks.item {
		style = st.focus
	}
	dot := st.dot(d.Dot).Render(dotGlyph)
	return dot + st.base.Render(" ") + style.Width(inner-2).Render(text)
}

func renderHours(v calendar.View, width int, st gridStyles, marks gridMarks) string {
	var lines []string
	for _, h := range v.Hours {
		if len(h.Items) == 0 {
			continue
		}
		for i, d := range h.Items {
			hour := "     "
			if i == 0 {
				hour = fmt.Sprintf("%02d:00", h.Hour)
			}
			pill := "[" + d.Pill.Label + "]"
			labelW := max(width-len(hour)-len(pill)-5, minColumn)
			style := st.base
			if d.Ref == marks.item {
				style = st.focus
			}
			lines = append(lines, st.day.Render(hour)+st.base.Render("  ")+
				st.dot(d.Dot).Render(dotGlyph)+st.base.Render(" ")+
				style.Render(truncate(d.Label, labelW))+st.base.Render("  ")+
				st.pill(d.Pill).Render(pill))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, st.more.Render("Nothing scheduled."))
	}
	return strings.Join(lines, "\n")
}

// renderInvalid lists items that could not be placed on the grid.
func renderInvalid(v calendar.View, width int, style lipgloss.Style) string {
	if len(v.Invalid) == 0 {
		return ""
	}
	noun := "items"
	if len(v.Invalid) == 1 {
		noun = "item"
	}
	lines := []string{style.Render(fmt.Sprintf("%d %s could not be placed on the calendar:", len(v.Invalid), noun))}
	for _, inv := range v.Invalid {
		lines = append(lines, style.Render(truncate(fmt.Sprintf("  ! %s (%s): %s", inv.Label, inv.Ref, inv.Reason), width)))
	}
	return strings.Join(lines, "\n")
}

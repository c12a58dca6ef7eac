package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
)

// DefaultTextWidth is the grid width used for non-interactive output.
const DefaultTextWidth = 98

// FormatView writes a calendar view as plain text.
func FormatView(w io.Writer, v calendar.View, width int) {
	if width <= 0 {
		width = DefaultTextWidth
	}
	fmt.Fprintln(w, v.Title)
	if v.Error != "" {
		fmt.Fprintf(w, "error: %s\n", v.Error)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, stripTrailing(renderGrid(v, width, plainStyles(), gridMarks{})))
	if inv := renderInvalid(v, width, plainStyles().base); inv != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, inv)
	}
}

// stripTrailing drops the padding spaces at the end of each line.
func stripTrailing(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

// FormatDay writes the full item list of one day.
func FormatDay(w io.Writer, key calendar.DayKey, items []item.Item, loc *time.Location) {
	if len(items) == 0 {
		fmt.Fprintf(w, "Nothing scheduled on %s.\n", key)
		return
	}
	label := "items"
	if len(items) == 1 {
		label = "item"
	}
	fmt.Fprintf(w, "── %s (%d %s) ──────────\n", key, len(items), label)
	for _, it := range items {
		d := calendar.Present(it)
		fmt.Fprintf(w, "  %s  %-11s %-12s %s\n",
			anchorClock(it, loc),
			"["+d.Pill.Label+"]",
			it.Kind,
			d.Label,
		)
		if len(d.Platforms) > 0 {
			fmt.Fprintf(w, "                                 %s\n", strings.Join(d.Platforms, ", "))
		}
	}
}

func anchorClock(it item.Item, loc *time.Location) string {
	at, err := it.Anchor(loc)
	if err != nil {
		return "--:--"
	}
	return at.In(loc).Format("15:04")
}

// FormatItemFull writes one item with its metadata and rendered body.
func FormatItemFull(w io.Writer, it item.Item, loc *time.Location, markdownStyle string) {
	var md markdownRenderer
	formatItemFull(w, it, loc, markdownStyle, &md)
}

// FormatItemsFull writes each item in full, separated by a rule. All bodies
// share one markdown renderer.
func FormatItemsFull(w io.Writer, items []item.Item, loc *time.Location, markdownStyle string) {
	var md markdownRenderer
	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(w, "\n"+strings.Repeat("─", 40))
		}
		formatItemFull(w, it, loc, markdownStyle, &md)
	}
}

func formatItemFull(w io.Writer, it item.Item, loc *time.Location, markdownStyle string, md *markdownRenderer) {
	d := calendar.Present(it)
	fmt.Fprintf(w, "%s\n", d.Label)
	fmt.Fprintf(w, "Item: %s\n", it.Ref())
	fmt.Fprintf(w, "Status: %s\n", d.Pill.Label)
	if at, err := it.Anchor(loc); err == nil {
		_, field := it.AnchorField()
		fmt.Fprintf(w, "When: %s (%s)\n", at.In(loc).Format("Mon 2006-01-02 15:04"), field)
	}
	if len(d.Platforms) > 0 {
		fmt.Fprintf(w, "Platforms: %s\n", strings.Join(d.Platforms, ", "))
	}
	fmt.Fprintf(w, "Link: %s\n", d.Href)
	if d.Mutable {
		fmt.Fprintln(w, "Can be rescheduled.")
	}
	if it.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, md.Render(it.Body, defaultMarkdownWidth, markdownStyle))
	}
}

// FormatRescheduled writes a reschedule confirmation.
func FormatRescheduled(w io.Writer, intent calendar.Reschedule, loc *time.Location) {
	fmt.Fprintf(w, "Moved %s from %s to %s (%s)\n",
		intent.Ref, intent.From, intent.To, intent.NewDate.In(loc).Format("2006-01-02 15:04"))
}

// FormatJSON writes any value as JSON to the writer.
func FormatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DayJSON is the JSON representation of one day's items.
type DayJSON struct {
	Date  calendar.DayKey `json:"date"`
	Count int             `json:"count"`
	Items []DayItemJSON   `json:"items"`
}

// DayItemJSON pairs an item with its presentation.
type DayItemJSON struct {
	calendar.Descriptor
	Time string    `json:"time"`
	Item item.Item `json:"item"`
}

// BuildDayJSON builds the JSON form of a day.
func BuildDayJSON(key calendar.DayKey, items []item.Item, loc *time.Location) DayJSON {
	out := DayJSON{Date: key, Count: len(items), Items: make([]DayItemJSON, len(items))}
	for i, it := range items {
		out.Items[i] = DayItemJSON{Descriptor: calendar.Present(it), Time: anchorClock(it, loc), Item: it}
	}
	return out
}

package calendar

import (
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
)

// RenderOptions carries per-render inputs.
type RenderOptions struct {
	Today     DayKey
	WeekStart time.Weekday
	MonthCap  int
}

// CellView is a grid cell with its presented, overflow-capped items.
type CellView struct {
	Cell
	Shown      []Descriptor `json:"items"`
	Hidden     int          `json:"hidden"`
	Total      int          `json:"total"`
	Expanded   bool         `json:"expanded"`
	DragOrigin bool         `json:"drag_origin,omitempty"`
}

// HourView is one hour of the day layout.
type HourView struct {
	Hour  int          `json:"hour"`
	Items []Descriptor `json:"items"`
}

// InvalidView is an item that could not be placed on the calendar.
type InvalidView struct {
	Descriptor
	Reason string `json:"reason"`
}

// DragView describes the drag in progress.
type DragView struct {
	State  string     `json:"state"`
	Item   Descriptor `json:"item"`
	Origin DayKey     `json:"origin"`
}

// PanelView is the open detail panel.
type PanelView struct {
	Day   DayKey       `json:"day"`
	Items []Descriptor `json:"items"`
}

// View is a fully composed calendar ready for a renderer.
type View struct {
	View     string        `json:"view"`
	Ref      DayKey        `json:"ref"`
	Title    string        `json:"title"`
	Weekdays []string      `json:"weekdays"`
	State    string        `json:"state"`
	Error    string        `json:"error,omitempty"`
	Cells    []CellView    `json:"cells"`
	Hours    []HourView    `json:"hours,omitempty"`
	Invalid  []InvalidView `json:"invalid,omitempty"`
	Drag     *DragView     `json:"drag,omitempty"`
	Panel    *PanelView    `json:"panel,omitempty"`
}

// Rows returns the cells split into weeks.
func (v View) Rows() [][]CellView {
	var rows [][]CellView
	for i := 0; i < len(v.Cells); i += 7 {
		rows = append(rows, v.Cells[i:min(i+7, len(v.Cells))])
	}
	return rows
}

// Render composes the period containing ref.
func (b *Board) Render(ref time.Time, g Granularity, opts RenderOptions) View {
	grid := BuildGrid(ref, g, b.index, GridOptions{Today: opts.Today, WeekStart: opts.WeekStart})
	limit := CapFor(g, opts.MonthCap)

	v := View{
		View:     grid.View,
		Ref:      grid.Ref,
		Title:    grid.Title,
		Weekdays: grid.Weekdays,
		State:    b.state.String(),
	}
	if b.loadErr != nil {
		v.Error = b.loadErr.Error()
	}

	var origin DayKey
	if sess, ok := b.drag.Session(); ok {
		origin = sess.Origin
		v.Drag = &DragView{State: b.drag.State().String(), Item: Present(sess.Item), Origin: sess.Origin}
	}

	for _, c := range grid.Cells {
		expanded := c.Key != "" && b.expansion.Expanded(c.Key)
		split := VisibleSplit(c.Items, limit, expanded)
		v.Cells = append(v.Cells, CellView{
			Cell:       c,
			Shown:      presentAll(split.Shown),
			Hidden:     split.Hidden,
			Total:      len(c.Items),
			Expanded:   expanded,
			DragOrigin: origin != "" && c.Key == origin,
		})
	}
	for _, h := range grid.Hours {
		v.Hours = append(v.Hours, HourView{Hour: h.Hour, Items: presentAll(h.Items)})
	}
	for _, inv := range b.index.Invalid {
		v.Invalid = append(v.Invalid, InvalidView{Descriptor: Present(inv.Item), Reason: inv.Reason()})
	}
	if key, ok := b.panel.Current(); ok {
		v.Panel = &PanelView{Day: key, Items: presentAll(b.panel.Items(b.index))}
	}
	return v
}

func presentAll(items []item.Item) []Descriptor {
	out := make([]Descriptor, 0, len(items))
	for _, it := range items {
		out = append(out, Present(it))
	}
	return out
}

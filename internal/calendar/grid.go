package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
)

// Granularity selects the calendar layout.
type Granularity int

const (
	Month Granularity = iota
	Week
	Day
)

func (g Granularity) String() string {
	switch g {
	case Week:
		return "week"
	case Day:
		return "day"
	default:
		return "month"
	}
}

// ParseGranularity accepts "month", "week" or "day".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month":
		return Month, nil
	case "week":
		return Week, nil
	case "day":
		return Day, nil
	}
	return Month, fmt.Errorf("unknown view %q (want month, week or day)", s)
}

// ParseWeekStart accepts "sunday" or "monday".
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("unknown week start %q (want sunday or monday)", s)
}

// Cell is one day position in a grid. Padding cells outside the displayed
// month have Day == 0 and an empty Key.
type Cell struct {
	Key       DayKey      `json:"key,omitempty"`
	Day       int         `json:"day"`
	Weekday   string      `json:"weekday"`
	IsToday   bool        `json:"is_today"`
	IsWeekend bool        `json:"is_weekend"`
	Items     []item.Item `json:"-"`
}

// Padding reports whether the cell lies outside the displayed period.
func (c Cell) Padding() bool {
	return c.Day == 0
}

// HourSlot holds the items of one hour in the day layout.
type HourSlot struct {
	Hour  int         `json:"hour"`
	Items []item.Item `json:"-"`
}

// Grid is the layout for one period. Month grids always hold whole weeks.
type Grid struct {
	Granularity Granularity  `json:"-"`
	View        string       `json:"view"`
	Ref         DayKey       `json:"ref"`
	Title       string       `json:"title"`
	WeekStart   time.Weekday `json:"-"`
	Weekdays    []string     `json:"weekdays"`
	Cells       []Cell       `json:"cells"`
	Hours       []HourSlot   `json:"hours,omitempty"`
}

// Rows returns the cells split into weeks.
func (g Grid) Rows() [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := min(i+7, len(g.Cells))
		rows = append(rows, g.Cells[i:end])
	}
	return rows
}

// GridOptions carries per-render inputs. Today is captured once per render
// pass so every cell in a pass agrees on it.
type GridOptions struct {
	Today     DayKey
	WeekStart time.Weekday
}

// BuildGrid lays out the period containing ref at granularity g.
func BuildGrid(ref time.Time, g Granularity, ix Index, opts GridOptions) Grid {
	loc := ix.Location()
	ref = NormalizeDate(ref, loc)
	grid := Grid{
		Granularity: g,
		View:        g.String(),
		Ref:         KeyOf(ref, loc),
		WeekStart:   opts.WeekStart,
		Weekdays:    weekdayNames(opts.WeekStart),
	}

	switch g {
	case Week:
		start := weekStartOf(ref, opts.WeekStart)
		for i := 0; i < 7; i++ {
			grid.Cells = append(grid.Cells, dayCell(start.AddDate(0, 0, i), ix, opts))
		}
		end := start.AddDate(0, 0, 6)
		grid.Title = fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	case Day:
		cell := dayCell(ref, ix, opts)
		cell.Items, grid.Hours = hourSlots(cell.Items, ix)
		grid.Cells = []Cell{cell}
		grid.Title = ref.Format("Monday, January 2, 2006")
	default:
		y, m, _ := ref.Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		offset := (int(first.Weekday()) - int(opts.WeekStart) + 7) % 7
		days := first.AddDate(0, 1, -1).Day()
		rows := (offset + days + 6) / 7
		for i := 0; i < rows*7; i++ {
			n := i - offset + 1
			if n < 1 || n > days {
				grid.Cells = append(grid.Cells, Cell{Weekday: grid.Weekdays[i%7]})
				continue
			}
			grid.Cells = append(grid.Cells, dayCell(first.AddDate(0, 0, n-1), ix, opts))
		}
		grid.Title = first.Format("January 2006")
	}
	return grid
}

// Range returns the first and last local days shown by the period containing
// ref, for use as a source query hint.
func Range(ref time.Time, g Granularity, loc *time.Location, weekStart time.Weekday) (time.Time, time.Time) {
	ref = NormalizeDate(ref, loc)
	switch g {
	case Week:
		start := weekStartOf(ref, weekStart)
		return start, start.AddDate(0, 0, 6)
	case Day:
		return ref, ref
	default:
		y, m, _ := ref.Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		return first, first.AddDate(0, 1, -1)
	}
}

// Shift moves ref by n periods of granularity g.
func Shift(ref time.Time, g Granularity, n int) time.Time {
	switch g {
	case Week:
		return ref.AddDate(0, 0, 7*n)
	case Day:
		return ref.AddDate(0, 0, n)
	default:
		y, m, d := ref.Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location()).AddDate(0, n, 0)
		last := first.AddDate(0, 1, -1).Day()
		return time.Date(first.Year(), first.Month(), min(d, last), 0, 0, 0, 0, ref.Location())
	}
}

func dayCell(day time.Time, ix Index, opts GridOptions) Cell {
	key := KeyOf(day, ix.Location())
	wd := day.Weekday()
	return Cell{
		Key:       key,
		Day:       day.Day(),
		Weekday:   wd.String()[:3],
		IsToday:   opts.Today != "" && key == opts.Today,
		IsWeekend: wd == time.Saturday || wd == time.Sunday,
		Items:     ix.Day(key),
	}
}

// hourSlots sorts items ascending by anchor and slots them by local hour.
func hourSlots(items []item.Item, ix Index) ([]item.Item, []HourSlot) {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b item.Item) int {
		ta, _ := ix.Anchor(a.Ref())
		tb, _ := ix.Anchor(b.Ref())
		return ta.Compare(tb)
	})
	slots := make([]HourSlot, 24)
	for h := range slots {
		slots[h].Hour = h
	}
	for _, it := range sorted {
		anchor, _ := ix.Anchor(it.Ref())
		h := anchor.In(ix.Location()).Hour()
		slots[h].Items = append(slots[h].Items, it)
	}
	return sorted, slots
}

func weekStartOf(day time.Time, weekStart time.Weekday) time.Time {
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

func weekdayNames(weekStart time.Weekday) []string {
	names := make([]string, 7)
	for i := range names {
		names[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return names
}

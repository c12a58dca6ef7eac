package calendar

import "github.com/chris-regnier/contentcal/internal/item"

// MonthCap is the default number of items shown per month cell before the
// "+N more" affordance.
const MonthCap = 3

// Split is the visible/hidden partition of one bucket.
type Split struct {
	Shown  []item.Item
	Hidden int
}

// VisibleSplit returns the first limit items of a bucket, or all of them when
// expanded or limit <= 0. The bucket itself is never modified.
func VisibleSplit(items []item.Item, limit int, expanded bool) Split {
	if expanded || limit <= 0 || len(items) <= limit {
		return Split{Shown: items}
	}
	return Split{Shown: items[:limit:limit], Hidden: len(items) - limit}
}

// CapFor returns the overflow cap for a granularity. Only the month view is
// capped.
func CapFor(g Granularity, monthCap int) int {
	if g != Month {
		return 0
	}
	return monthCap
}

// Expansion records which days have been expanded past the cap.
type Expansion struct {
	days map[DayKey]struct{}
}

// Expanded reports whether key is expanded.
func (e *Expansion) Expanded(key DayKey) bool {
	_, ok := e.days[key]
	return ok
}

// Toggle flips the expansion of key and returns the new state. Other days
// are unaffected.
func (e *Expansion) Toggle(key DayKey) bool {
	if e.days == nil {
		e.days = make(map[DayKey]struct{})
	}
	if _, ok := e.days[key]; ok {
		delete(e.days, key)
		return false
	}
	e.days[key] = struct{}{}
	return true
}

// Reset collapses every day.
func (e *Expansion) Reset() {
	e.days = nil
}

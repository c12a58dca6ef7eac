// Package calendar turns a flat list of scheduled items into month, week and
// day grids keyed by the observer's local calendar day, and tracks the
// interactive state around them: overflow expansion, drag-to-reschedule and
// the day detail panel.
package calendar

import (
	"fmt"
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayKey is the canonical YYYY-MM-DD identity of a local calendar day.
// The zero value is the empty key, used for padding cells and "no target".
type DayKey string

// KeyOf returns the day key of t as seen from loc. The key always comes from
// the local date, never from the UTC date.
func KeyOf(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.Local
	}
	return DayKey(t.In(loc).Format(dayKeyLayout))
}

// ParseDayKey validates s and returns it as a DayKey.
func ParseDayKey(s string) (DayKey, error) {
	if _, err := time.Parse(dayKeyLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q (want YYYY-MM-DD)", s)
	}
	return DayKey(s), nil
}

// Date returns local midnight of the day in loc.
func (k DayKey) Date(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dayKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (want YYYY-MM-DD)", string(k))
	}
	return t, nil
}

func (k DayKey) String() string {
	return string(k)
}

// NormalizeDate returns midnight of t's local date in loc.
//
// Example:
//
//	input:  2024-01-15 14:30:45 +02:00
//	output: 2024-01-15 00:00:00 +02:00
func NormalizeDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// MoveToDay returns the instant on day target that has the same local
// time-of-day as anchor.
func MoveToDay(anchor time.Time, target DayKey, loc *time.Location) (time.Time, error) {
	day, err := target.Date(loc)
	if err != nil {
		return time.Time{}, err
	}
	local := anchor.In(day.Location())
	y, m, d := day.Date()
	return time.Date(y, m, d, local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), day.Location()), nil
}

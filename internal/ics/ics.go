// Package ics exports calendar items as an iCalendar feed.
package ics

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
)

const productID = "-//contentcal//content calendar//EN"

// EventDuration is the length given to every exported event.
const EventDuration = 30 * time.Minute

// Options controls an export.
type Options struct {
	Name    string    // calendar display name
	BaseURL string    // prefix for item links; empty leaves links relative
	Now     time.Time // DTSTAMP for every event
}

// Build converts the bucketed items of ix into a calendar. Items that could
// not be bucketed are skipped; callers report them from ix.Invalid.
func Build(ix calendar.Index, opts Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	for _, key := range ix.Keys() {
		for _, it := range ix.Day(key) {
			anchor, ok := ix.Anchor(it.Ref())
			if !ok {
				continue
			}
			addEvent(cal, it, anchor, opts)
		}
	}
	return cal
}

// Write serializes the calendar for ix to w.
func Write(w io.Writer, ix calendar.Index, opts Options) error {
	return Build(ix, opts).SerializeTo(w)
}

// UID returns the stable event identifier for an item.
func UID(ref item.Ref) string {
	return string(ref.Kind) + "-" + ref.ID + "@contentcal"
}

func addEvent(cal *ical.Calendar, it item.Item, anchor time.Time, opts Options) {
	d := calendar.Present(it)

	ev := cal.AddEvent(UID(it.Ref()))
	ev.SetDtStampTime(opts.Now.UTC())
	ev.SetStartAt(anchor.UTC())
	ev.SetEndAt(anchor.Add(EventDuration).UTC())
	ev.SetSummary(d.Label)
	ev.SetProperty(ical.ComponentPropertyCategories, string(it.Kind))
	ev.SetProperty(ical.ComponentPropertyUrl, strings.TrimRight(opts.BaseURL, "/")+d.Href)
	ev.SetProperty(ical.ComponentPropertyStatus, eventStatus(it))

	desc := d.Pill.Label
	if len(d.Platforms) > 0 {
		desc += " · " + strings.Join(d.Platforms, ", ")
	}
	if body := strings.TrimSpace(it.Body); body != "" {
		desc += "\n\n" + body
	}
	ev.SetDescription(desc)
}

func eventStatus(it item.Item) string {
	switch {
	case it.Status == item.StatusCancelled || it.Status == item.StatusFailed:
		return "CANCELLED"
	case it.Published() || it.Kind == item.KindOutline:
		return "CONFIRMED"
	default:
		return "TENTATIVE"
	}
}

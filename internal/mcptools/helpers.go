package mcptools

import (
	"context"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
)

func parseDate(s string, loc *time.Location) (time.Time, error) {
	key, err := calendar.ParseDayKey(s)
	if err != nil {
		return time.Time{}, err
	}
	return key.Date(loc)
}

// loadBoard fetches the items around [start, end] and loads them into a
// fresh board. Integrity errors are left on the board for the caller.
func loadBoard(ctx context.Context, src source.Source, loc *time.Location, start, end time.Time) (*calendar.Board, error) {
	items, err := src.List(ctx, source.ListOptions{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}
	b := calendar.NewBoard(loc)
	_ = b.Load(items)
	return b, nil
}

func itemResult(it item.Item, ix calendar.Index) ItemResult {
	d := calendar.Present(it)
	r := ItemResult{
		Kind:      string(it.Kind),
		ID:        it.ID,
		Title:     d.Label,
		Status:    d.Pill.Label,
		Href:      d.Href,
		Platforms: d.Platforms,
		Mutable:   d.Mutable,
	}
	if anchor, ok := ix.Anchor(it.Ref()); ok {
		r.Time = anchor.In(ix.Location()).Format("15:04")
	}
	return r
}

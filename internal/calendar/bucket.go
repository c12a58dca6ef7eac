package calendar

import (
	"errors"
	"slices"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
)

// Index groups items by local day key. It is rebuilt wholesale from the full
// item list on every load or mutation and never patched in place.
type Index struct {
	loc     *time.Location
	days    map[DayKey][]item.Item
	anchors map[item.Ref]time.Time
	keys    map[item.Ref]DayKey
	Invalid []InvalidItem
}

// Bucket groups items by the local day of their anchor timestamp. Within a
// bucket, items keep their input order. Items without a usable anchor are
// collected in Index.Invalid and reported in a single *IntegrityError; the
// returned index is complete for every other item.
func Bucket(items []item.Item, loc *time.Location) (Index, error) {
	if loc == nil {
		loc = time.Local
	}
	ix := Index{
		loc:     loc,
		days:    make(map[DayKey][]item.Item),
		anchors: make(map[item.Ref]time.Time, len(items)),
		keys:    make(map[item.Ref]DayKey, len(items)),
	}
	for _, it := range items {
		anchor, err := it.Anchor(loc)
		if err != nil {
			ix.Invalid = append(ix.Invalid, InvalidItem{Item: it, Err: err})
			continue
		}
		key := KeyOf(anchor, loc)
		ix.days[key] = append(ix.days[key], it)
		ix.anchors[it.Ref()] = anchor
		ix.keys[it.Ref()] = key
	}
	if len(ix.Invalid) > 0 {
		return ix, &IntegrityError{Items: ix.Invalid}
	}
	return ix, nil
}

// Location returns the observer location the index was built for.
func (ix Index) Location() *time.Location {
	if ix.loc == nil {
		return time.Local
	}
	return ix.loc
}

// Day returns a copy of the full bucket for key.
func (ix Index) Day(key DayKey) []item.Item {
	return slices.Clone(ix.days[key])
}

// Count returns the number of items bucketed under key.
func (ix Index) Count(key DayKey) int {
	return len(ix.days[key])
}

// Keys returns every non-empty day key in ascending order.
func (ix Index) Keys() []DayKey {
	keys := make([]DayKey, 0, len(ix.days))
	for k := range ix.days {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of bucketed items.
func (ix Index) Len() int {
	return len(ix.anchors)
}

// Anchor returns the resolved anchor instant for ref.
func (ix Index) Anchor(ref item.Ref) (time.Time, bool) {
	t, ok := ix.anchors[ref]
	return t, ok
}

// KeyFor returns the day an item is bucketed under.
func (ix Index) KeyFor(ref item.Ref) (DayKey, bool) {
	k, ok := ix.keys[ref]
	return k, ok
}

// Find returns the bucketed item for ref.
func (ix Index) Find(ref item.Ref) (item.Item, bool) {
	key, ok := ix.keys[ref]
	if !ok {
		return item.Item{}, false
	}
	for _, it := range ix.days[key] {
		if it.Ref() == ref {
			return it, true
		}
	}
	return item.Item{}, false
}

// IsIntegrityError reports whether err came from bucketing.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

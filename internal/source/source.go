// Package source defines where scheduled items come from and how a
// reschedule is committed.
package source

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
)

// Sentinel errors for source operations.
var (
	ErrNotFound   = errors.New("item not found")
	ErrRejected   = errors.New("reschedule rejected")
	ErrLoad       = errors.New("item source unreachable")
	ErrStorage    = errors.New("storage error")
	ErrValidation = errors.New("validation error")
)

// ListOptions narrows a List call. The date range is a hint: sources may
// return items outside it, and callers bucket client-side.
type ListOptions struct {
	Kinds []item.Kind // empty = all kinds
	Start *time.Time  // inclusive lower bound (nil = no lower bound)
	End   *time.Time  // inclusive upper bound (nil = no upper bound)
	Limit int         // 0 = no limit
}

// Source supplies items and commits reschedules.
type Source interface {
	List(ctx context.Context, opts ListOptions) ([]item.Item, error)
	// Reschedule moves ref to newDate. Repeating a call with the same
	// arguments is harmless. Items no longer in a mutable state are declined
	// with an error wrapping ErrRejected.
	Reschedule(ctx context.Context, ref item.Ref, newDate time.Time) (item.Item, error)
	Close() error
}

// Getter is implemented by sources that can fetch a single item.
type Getter interface {
	Get(ctx context.Context, ref item.Ref) (item.Item, error)
}

// Store is a Source that owns its data and can be written to directly.
type Store interface {
	Source
	Getter
	Create(ctx context.Context, it item.Item) error
	Delete(ctx context.Context, ref item.Ref) error
}

// Lookup fetches ref from src. Sources that implement Getter are asked
// directly; others are listed by kind without a limit.
func Lookup(ctx context.Context, src Source, ref item.Ref) (item.Item, error) {
	if g, ok := src.(Getter); ok {
		return g.Get(ctx, ref)
	}
	items, err := src.List(ctx, ListOptions{Kinds: []item.Kind{ref.Kind}})
	if err != nil {
		return item.Item{}, err
	}
	for _, it := range items {
		if it.Ref() == ref {
			return it, nil
		}
	}
	return item.Item{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// WantsKind reports whether opts selects kind k.
func (o ListOptions) WantsKind(k item.Kind) bool {
	return len(o.Kinds) == 0 || slices.Contains(o.Kinds, k)
}

// rangeSlack widens the range hint so that items near the edges are kept
// whatever the observer's offset from the stored zone.
const rangeSlack = 36 * time.Hour

// Filter applies opts to items that were loaded without filtering. Items
// whose anchor cannot be resolved are kept so the calendar can report them.
func Filter(items []item.Item, opts ListOptions) []item.Item {
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if !opts.WantsKind(it.Kind) {
			continue
		}
		if opts.Start != nil || opts.End != nil {
			anchor, err := it.Anchor(time.UTC)
			if err == nil {
				if opts.Start != nil && anchor.Before(opts.Start.Add(-rangeSlack)) {
					continue
				}
				if opts.End != nil && anchor.After(opts.End.Add(24*time.Hour+rangeSlack)) {
					continue
				}
			}
		}
		out = append(out, it)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

// CheckMutable returns an ErrRejected error when it can no longer be moved.
func CheckMutable(it item.Item) error {
	if it.Mutable() {
		return nil
	}
	return fmt.Errorf("%w: %s is %s", ErrRejected, it.Ref(), it.Status)
}

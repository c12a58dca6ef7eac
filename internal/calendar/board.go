package calendar

import (
	"slices"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
)

// LoadState describes whether the board holds data from its source.
type LoadState int

const (
	LoadPending LoadState = iota
	Loaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "loading"
	}
}

type pendingMove struct {
	intent   Reschedule
	snapshot []item.Item
	loadGen  uint64
}

// Board is the interactive calendar state: the source item list, its day
// index and the overflow, drag and detail panel state layered on top.
//
// A Board is not safe for concurrent use. Callers serialize access, either by
// owning it from a single event loop or by holding a lock.
type Board struct {
	loc       *time.Location
	items     []item.Item
	index     Index
	integrity error
	state     LoadState
	loadErr   error
	loadGen   uint64

	expansion Expansion
	drag      Dragger
	panel     DetailPanel
	pending   *pendingMove
	listeners []func(DayKey)
	closed    bool
}

// NewBoard returns an empty board for an observer in loc.
func NewBoard(loc *time.Location) *Board {
	if loc == nil {
		loc = time.Local
	}
	ix, _ := Bucket(nil, loc)
	return &Board{loc: loc, index: ix}
}

// Location returns the observer location.
func (b *Board) Location() *time.Location {
	return b.loc
}

// Load replaces the item list and rebuilds the index from scratch. The
// returned error is the bucketing *IntegrityError, if any; the board is
// loaded either way.
func (b *Board) Load(items []item.Item) error {
	if b.closed {
		return nil
	}
	b.loadGen++
	b.items = slices.Clone(items)
	b.rebuild()
	b.state = Loaded
	b.loadErr = nil
	return b.integrity
}

// LoadFailed records a failed fetch. A board that was loaded before keeps
// its last known good data.
func (b *Board) LoadFailed(err error) {
	if b.closed {
		return
	}
	b.loadErr = err
	if b.state != Loaded {
		b.state = LoadFailed
	}
}

// State returns the load state.
func (b *Board) State() LoadState {
	return b.state
}

// LoadErr returns the error from the most recent failed fetch, cleared by
// the next successful Load.
func (b *Board) LoadErr() error {
	return b.loadErr
}

// Integrity returns the bucketing error of the current index.
func (b *Board) Integrity() error {
	return b.integrity
}

// Index returns the current day index.
func (b *Board) Index() Index {
	return b.index
}

// Items returns a copy of the current item list.
func (b *Board) Items() []item.Item {
	return slices.Clone(b.items)
}

func (b *Board) rebuild() {
	b.index, b.integrity = Bucket(b.items, b.loc)
}

// StartDrag picks up the item ref from the day it is bucketed under.
func (b *Board) StartDrag(ref item.Ref) (bool, error) {
	if b.closed {
		return false, nil
	}
	if s := b.drag.State(); s == DragDragging || s == DragDropped {
		return false, ErrDragInProgress
	}
	it, ok := b.index.Find(ref)
	if !ok {
		return false, ErrUnknownItem
	}
	origin, _ := b.index.KeyFor(ref)
	return b.drag.Start(it, origin)
}

// DragState returns the drag machine state.
func (b *Board) DragState() DragState {
	return b.drag.State()
}

// DragSession returns the active drag session.
func (b *Board) DragSession() (DragSession, bool) {
	return b.drag.Session()
}

// CancelDrag abandons the active drag.
func (b *Board) CancelDrag() bool {
	return b.drag.Cancel()
}

// Drop ends the active drag over target. On a real move the item is moved in
// the board immediately and the returned intent must be sent to the mutation
// collaborator, whose outcome is reported back with Resolve.
func (b *Board) Drop(target DayKey) (Reschedule, bool) {
	if b.closed || b.drag.State() != DragDragging {
		return Reschedule{}, false
	}
	sess, _ := b.drag.Session()
	anchor, ok := b.index.Anchor(sess.Item.Ref())
	if !ok {
		b.drag.Cancel()
		return Reschedule{}, false
	}
	intent, ok := b.drag.Drop(target, anchor, b.loc)
	if !ok {
		return Reschedule{}, false
	}

	snapshot := b.items
	moved := make([]item.Item, len(b.items))
	for i, it := range b.items {
		if it.Ref() == intent.Ref {
			it = it.WithSchedule(intent.NewDate)
		}
		moved[i] = it
	}
	b.items = moved
	b.rebuild()
	b.pending = &pendingMove{intent: intent, snapshot: snapshot, loadGen: b.loadGen}
	return intent, true
}

// Pending returns the reschedule awaiting resolution.
func (b *Board) Pending() (Reschedule, bool) {
	if b.pending == nil {
		return Reschedule{}, false
	}
	return b.pending.intent, true
}

// Resolve settles the pending reschedule. On failure the board is restored to
// exactly its pre-drag state and a *RejectedError is returned, unless a newer
// Load has superseded that state. Results for unknown intents and results
// arriving after Close are ignored.
func (b *Board) Resolve(intent Reschedule, err error) error {
	if b.closed || b.pending == nil {
		return nil
	}
	p := b.pending
	if p.intent.Ref != intent.Ref || !p.intent.NewDate.Equal(intent.NewDate) {
		return nil
	}
	b.pending = nil
	b.drag.Settle()
	if err == nil {
		return nil
	}
	if p.loadGen == b.loadGen {
		b.items = p.snapshot
		b.rebuild()
	}
	return &RejectedError{Intent: intent, Err: err}
}

// OnSelect registers a day-selection listener.
func (b *Board) OnSelect(fn func(DayKey)) {
	b.listeners = append(b.listeners, fn)
}

// SelectDay emits the day-selection event and opens the detail panel on key.
func (b *Board) SelectDay(key DayKey) ([]item.Item, bool) {
	if b.closed {
		return nil, false
	}
	for _, fn := range b.listeners {
		fn(key)
	}
	return b.panel.Open(b.index, key)
}

// PanelDay returns the day shown in the detail panel.
func (b *Board) PanelDay() (DayKey, bool) {
	return b.panel.Current()
}

// PanelItems returns the full bucket of the open day.
func (b *Board) PanelItems() []item.Item {
	return b.panel.Items(b.index)
}

// ClosePanel hides the detail panel.
func (b *Board) ClosePanel() {
	b.panel.Close()
}

// ToggleExpansion flips the overflow expansion of key.
func (b *Board) ToggleExpansion(key DayKey) bool {
	return b.expansion.Toggle(key)
}

// Expanded reports whether key is expanded.
func (b *Board) Expanded(key DayKey) bool {
	return b.expansion.Expanded(key)
}

// Close tears the board down. Later loads and mutation results are dropped.
func (b *Board) Close() {
	b.closed = true
	b.pending = nil
	b.listeners = nil
}

// Closed reports whether Close was called.
func (b *Board) Closed() bool {
	return b.closed
}

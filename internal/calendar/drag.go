package calendar

import (
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
)

// DragState is the state of the drag-to-reschedule machine.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragDropped
)

func (s DragState) String() string {
	switch s {
	case DragDragging:
		return "dragging"
	case DragDropped:
		return "dropped"
	default:
		return "idle"
	}
}

// DragSession is the item being dragged and the day it was picked up from.
type DragSession struct {
	Item   item.Item
	Origin DayKey
}

// Reschedule is the intent produced by a successful drop. NewDate is the
// target day at the item's original local time-of-day.
type Reschedule struct {
	Ref     item.Ref  `json:"ref"`
	From    DayKey    `json:"from"`
	To      DayKey    `json:"to"`
	NewDate time.Time `json:"new_date"`
}

// Dragger tracks at most one drag session. A dropped session stays active
// until Settle so that a second drag cannot start while its reschedule is in
// flight.
type Dragger struct {
	state   DragState
	session *DragSession
}

// State returns the current state.
func (d *Dragger) State() DragState {
	return d.state
}

// Session returns the active session, if any.
func (d *Dragger) Session() (DragSession, bool) {
	if d.session == nil {
		return DragSession{}, false
	}
	return *d.session, true
}

// Start begins dragging it from origin. Dragging an immutable item is a
// no-op and returns false. Starting while another session is active returns
// ErrDragInProgress and leaves that session untouched.
func (d *Dragger) Start(it item.Item, origin DayKey) (bool, error) {
	if d.state == DragDragging || d.state == DragDropped {
		return false, ErrDragInProgress
	}
	if !it.Mutable() {
		return false, nil
	}
	d.session = &DragSession{Item: it, Origin: origin}
	d.state = DragDragging
	return true, nil
}

// Drop ends the drag over target. Dropping on the origin day or on no day
// cancels. Otherwise the returned intent moves the item to target keeping
// anchor's local time-of-day.
func (d *Dragger) Drop(target DayKey, anchor time.Time, loc *time.Location) (Reschedule, bool) {
	if d.state != DragDragging {
		return Reschedule{}, false
	}
	if target == "" || target == d.session.Origin {
		d.Cancel()
		return Reschedule{}, false
	}
	newDate, err := MoveToDay(anchor, target, loc)
	if err != nil {
		d.Cancel()
		return Reschedule{}, false
	}
	intent := Reschedule{
		Ref:     d.session.Item.Ref(),
		From:    d.session.Origin,
		To:      target,
		NewDate: newDate,
	}
	d.state = DragDropped
	return intent, true
}

// Cancel abandons the current drag without any mutation and returns the
// machine to idle. It reports whether a drag was cancelled.
func (d *Dragger) Cancel() bool {
	if d.state != DragDragging {
		return false
	}
	d.session = nil
	d.state = DragIdle
	return true
}

// Settle returns a dropped session to idle once its mutation has resolved.
func (d *Dragger) Settle() {
	if d.state == DragDropped {
		d.session = nil
		d.state = DragIdle
	}
}

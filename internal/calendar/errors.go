package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chris-regnier/contentcal/internal/item"
)

// Sentinel errors for calendar operations.
var (
	ErrDataIntegrity  = errors.New("data integrity error")
	ErrDragInProgress = errors.New("a drag is already in progress")
	ErrUnknownItem    = errors.New("item is not on the calendar")
)

// InvalidItem is an item whose anchor could not be resolved.
type InvalidItem struct {
	Item item.Item `json:"item"`
	Err  error     `json:"-"`
}

// Reason returns the error text for display.
func (i InvalidItem) Reason() string {
	if i.Err == nil {
		return ""
	}
	return i.Err.Error()
}

// IntegrityError reports every item the bucketer could not place.
type IntegrityError struct {
	Items []InvalidItem
}

func (e *IntegrityError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, inv := range e.Items {
		parts = append(parts, fmt.Sprintf("%s: %v", inv.Item.Ref(), inv.Err))
	}
	return fmt.Sprintf("%v: %d item(s) without a usable anchor (%s)", ErrDataIntegrity, len(e.Items), strings.Join(parts, "; "))
}

func (e *IntegrityError) Unwrap() error {
	return ErrDataIntegrity
}

// RejectedError is returned when a reschedule that was applied optimistically
// is declined by the mutation collaborator and has been rolled back.
type RejectedError struct {
	Intent Reschedule
	Err    error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("could not move %s to %s: %v", e.Intent.Ref, e.Intent.To, e.Err)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

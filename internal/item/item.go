// Package item defines the scheduled content items shown on the calendar:
// social posts, outlines and articles.
package item

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 8
)

var idPattern = regexp.MustCompile(`^[a-z0-9]{8}$`)

// ErrNoAnchor is returned when an item carries none of the timestamps its
// anchor rule needs.
var ErrNoAnchor = errors.New("item has no anchor timestamp")

// Kind identifies the type of a scheduled item. IDs are unique within a kind.
type Kind string

const (
	KindSocialPost Kind = "social-post"
	KindOutline    Kind = "outline"
	KindArticle    Kind = "article"
)

// Kinds lists every known kind in display order.
var Kinds = []Kind{KindSocialPost, KindOutline, KindArticle}

// Status is a kind-specific lifecycle state. Outlines have no status.
type Status string

// Social post statuses.
const (
	StatusPending   Status = "pending"
	StatusQueued    Status = "queued"
	StatusPosting   Status = "posting"
	StatusPosted    Status = "posted"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Article statuses. StatusFailed is shared with posts.
const (
	StatusDraft      Status = "draft"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusPublished  Status = "published"
)

var kindStatuses = map[Kind][]Status{
	KindSocialPost: {StatusPending, StatusQueued, StatusPosting, StatusPosted, StatusFailed, StatusCancelled},
	KindArticle:    {StatusDraft, StatusGenerating, StatusCompleted, StatusPublished, StatusFailed},
	KindOutline:    nil,
}

// publishedStatus is the terminal "went live" state of each kind that has one.
var publishedStatus = map[Kind]Status{
	KindSocialPost: StatusPosted,
	KindArticle:    StatusPublished,
}

// mutableStatus is the pre-commitment state in which an item may still be moved.
var mutableStatus = map[Kind]Status{
	KindSocialPost: StatusPending,
	KindArticle:    StatusDraft,
}

// Ref addresses one item across kinds.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (r Ref) String() string {
	return string(r.Kind) + "/" + r.ID
}

// Item is a single scheduled content item as delivered by an item source.
// Timestamps are kept in their wire form so that a malformed value reaches
// the bucketer and is reported there instead of being lost in decoding.
type Item struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Status      Status   `json:"status,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	Body        string   `json:"body,omitempty"`
	ScheduledAt string   `json:"scheduled_at,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// Ref returns the cross-kind reference for the item.
func (it Item) Ref() Ref {
	return Ref{Kind: it.Kind, ID: it.ID}
}

// Mutable reports whether the item may still be rescheduled.
func (it Item) Mutable() bool {
	if it.Kind == KindOutline {
		return true
	}
	want, ok := mutableStatus[it.Kind]
	return ok && it.Status == want
}

// Published reports whether the item is in its kind's published terminal state.
func (it Item) Published() bool {
	want, ok := publishedStatus[it.Kind]
	return ok && it.Status == want
}

// AnchorField returns the raw timestamp the item is bucketed by and the name
// of the field it came from. Published items use their publish time, all
// others their scheduled time, and both fall back to the creation time.
func (it Item) AnchorField() (string, string) {
	primary, name := it.ScheduledAt, "scheduled_at"
	if it.Published() {
		primary, name = it.PublishedAt, "published_at"
	}
	if strings.TrimSpace(primary) != "" {
		return primary, name
	}
	return it.CreatedAt, "created_at"
}

// Anchor parses the item's anchor timestamp. Zoneless values are read in loc.
func (it Item) Anchor(loc *time.Location) (time.Time, error) {
	raw, field := it.AnchorField()
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, ErrNoAnchor
	}
	t, err := ParseTimestamp(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// WithSchedule returns a copy of the item scheduled at t.
func (it Item) WithSchedule(t time.Time) Item {
	out := it
	out.ScheduledAt = FormatTimestamp(t)
	if len(it.Platforms) > 0 {
		out.Platforms = append([]string(nil), it.Platforms...)
	}
	return out
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts RFC 3339 (with or without fractional seconds) and a
// few zoneless layouts, which are interpreted in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// FormatTimestamp renders t in the wire format used by every source.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// NewID generates a new nanoid for an item.
func NewID() string {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		panic(fmt.Sprintf("nanoid generation failed: %v", err))
	}
	return id
}

// ValidateID checks whether an ID matches the expected pattern.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid item ID: %q (must be 8 lowercase alphanumeric characters)", id)
	}
	return nil
}

// ParseKind accepts a kind name or one of its common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "social-post", "social_post", "post", "posts":
		return KindSocialPost, nil
	case "outline", "outlines":
		return KindOutline, nil
	case "article", "articles":
		return KindArticle, nil
	}
	return "", fmt.Errorf("unknown item kind %q (want social-post, outline or article)", s)
}

// Statuses returns the valid statuses for a kind.
func Statuses(k Kind) []Status {
	return kindStatuses[k]
}

// Validate checks the fields every source must supply.
func (it Item) Validate() error {
	if err := ValidateID(it.ID); err != nil {
		return err
	}
	statuses, ok := kindStatuses[it.Kind]
	if !ok {
		return fmt.Errorf("unknown item kind %q", it.Kind)
	}
	if strings.TrimSpace(it.Title) == "" {
		return fmt.Errorf("item title must not be empty")
	}
	if len(statuses) == 0 {
		if it.Status != "" {
			return fmt.Errorf("%s items have no status, got %q", it.Kind, it.Status)
		}
		return nil
	}
	for _, s := range statuses {
		if it.Status == s {
			return nil
		}
	}
	return fmt.Errorf("invalid %s status %q", it.Kind, it.Status)
}

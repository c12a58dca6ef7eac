package calendar_test

import (
	"testing"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
)

func post(id, scheduledAt string) item.Item {
	return item.Item{
		ID:          id,
		Kind:        item.KindSocialPost,
		Title:       "Post " + id,
		Status:      item.StatusPending,
		Platforms:   []string{"linkedin"},
		ScheduledAt: scheduledAt,
		CreatedAt:   "2024-01-01T09:00:00Z",
	}
}

func mustDate(t *testing.T, key string, loc *time.Location) time.Time {
	t.Helper()
	d, err := calendar.DayKey(key).Date(loc)
	if err != nil {
		t.Fatalf("Date(%q): %v", key, err)
	}
	return d
}

func ids(items []item.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

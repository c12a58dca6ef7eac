package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/chris-regnier/contentcal/internal/config"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source/markdown"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *markdown.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := markdown.New(dir)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// setupTestEnv points the command globals at a fresh markdown store with the
// observer in UTC on 2024-06-10.
func setupTestEnv(t *testing.T) *markdown.Store {
	t.Helper()
	s := setupTestStore(t)
	src = s
	appConfig = &config.Config{
		Source:    config.SourceMarkdown,
		WeekStart: "sunday",
		MonthCap:  3,
		Refresh:   "*/5 * * * *",
	}
	observerLoc = time.UTC
	jsonOutput = false
	now = func() time.Time { return testNow }

	t.Cleanup(func() {
		src = nil
		now = time.Now
		jsonOutput = false
		viewAs = "month"
		showFull = false
		rescheduleYes = false
		icsFrom, icsTo, icsOutput, icsBaseURL = "", "", "", ""
	})
	return s
}

func createItems(t *testing.T, s *markdown.Store, items ...item.Item) {
	t.Helper()
	for _, it := range items {
		if err := s.Create(context.Background(), it); err != nil {
			t.Fatalf("Create %s: %v", it.Ref(), err)
		}
	}
}

func testPost(id, title string, status item.Status, at string) item.Item {
	return item.Item{
		ID:          id,
		Kind:        item.KindSocialPost,
		Title:       title,
		Status:      status,
		ScheduledAt: at,
		CreatedAt:   "2024-06-01T08:00:00Z",
	}
}

package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
)

func TestNewEnablesWAL(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestNewReopensExistingDatabase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it := item.Item{
		ID:          item.NewID(),
		Kind:        item.KindSocialPost,
		Title:       "Launch",
		Status:      item.StatusPending,
		ScheduledAt: "2024-06-15T09:30:00Z",
		CreatedAt:   "2024-06-01T09:00:00Z",
	}
	if err := s.Create(ctx, it); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Close()

	s, err = New(dir)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	moved, err := s.Reschedule(ctx, it.Ref(), time.Date(2024, 6, 17, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Reschedule after reopen: %v", err)
	}
	if moved.ScheduledAt != "2024-06-17T09:30:00Z" {
		t.Errorf("ScheduledAt = %q, want 2024-06-17T09:30:00Z", moved.ScheduledAt)
	}
}

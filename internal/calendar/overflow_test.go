package calendar_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
)

func fiveOnOneDay() []item.Item {
	var items []item.Item
	for i := 0; i < 5; i++ {
		items = append(items, post(fmt.Sprintf("p%d", i), fmt.Sprintf("2024-06-15T%02d:00:00Z", 9+i)))
	}
	return items
}

func TestVisibleSplit(t *testing.T) {
	items := fiveOnOneDay()

	tests := []struct {
		name       string
		limit      int
		expanded   bool
		wantShown  int
		wantHidden int
	}{
		{"month cap", calendar.MonthCap, false, 3, 2},
		{"expanded", calendar.MonthCap, true, 5, 0},
		{"uncapped", 0, false, 5, 0},
		{"under cap", 10, false, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := calendar.VisibleSplit(items, tt.limit, tt.expanded)
			if len(s.Shown) != tt.wantShown || s.Hidden != tt.wantHidden {
				t.Errorf("VisibleSplit() = %d shown / %d hidden, want %d / %d", len(s.Shown), s.Hidden, tt.wantShown, tt.wantHidden)
			}
			if len(items) != 5 {
				t.Error("VisibleSplit modified the bucket")
			}
		})
	}
}

func TestVisibleSplitAppendDoesNotClobberBucket(t *testing.T) {
	items := fiveOnOneDay()
	s := calendar.VisibleSplit(items, 3, false)
	_ = append(s.Shown, item.Item{ID: "zzz"})
	if items[3].ID != "p3" {
		t.Error("appending to Shown overwrote the bucket")
	}
}

func TestExpansionToggleIsPerDayAndInvolutive(t *testing.T) {
	var e calendar.Expansion
	if !e.Toggle("2024-06-15") {
		t.Fatal("first toggle should expand")
	}
	if e.Expanded("2024-06-16") {
		t.Error("expanding one day affected another")
	}
	if e.Toggle("2024-06-15") {
		t.Error("second toggle should collapse")
	}
	if e.Expanded("2024-06-15") {
		t.Error("day still expanded after two toggles")
	}
}

func TestRenderMonthOverflow(t *testing.T) {
	b := calendar.NewBoard(time.UTC)
	if err := b.Load(fiveOnOneDay()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	opts := calendar.RenderOptions{MonthCap: calendar.MonthCap}

	cell := func(v calendar.View) calendar.CellView {
		for _, c := range v.Cells {
			if c.Key == "2024-06-15" {
				return c
			}
		}
		t.Fatal("2024-06-15 not in view")
		return calendar.CellView{}
	}

	c := cell(b.Render(ref, calendar.Month, opts))
	if len(c.Shown) != 3 || c.Hidden != 2 || c.Total != 5 {
		t.Errorf("capped cell = %d shown / %d hidden / %d total", len(c.Shown), c.Hidden, c.Total)
	}

	b.ToggleExpansion("2024-06-15")
	c = cell(b.Render(ref, calendar.Month, opts))
	if len(c.Shown) != 5 || c.Hidden != 0 || !c.Expanded {
		t.Errorf("expanded cell = %d shown / %d hidden", len(c.Shown), c.Hidden)
	}

	b.ToggleExpansion("2024-06-15")
	c = cell(b.Render(ref, calendar.Month, opts))
	if len(c.Shown) != 3 || c.Hidden != 2 {
		t.Errorf("after second toggle = %d shown / %d hidden, want 3 / 2", len(c.Shown), c.Hidden)
	}

	week := b.Render(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), calendar.Week, opts)
	if c := cell(week); len(c.Shown) != 5 || c.Hidden != 0 {
		t.Errorf("week view should be uncapped, got %d shown / %d hidden", len(c.Shown), c.Hidden)
	}
}

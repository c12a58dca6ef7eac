package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
)

func TestViewMonthText(t *testing.T) {
	s := setupTestEnv(t)
	for i := 1; i <= 5; i++ {
		createItems(t, s, testPost(fmt.Sprintf("post000%d", i), fmt.Sprintf("Post %d", i), item.StatusPending, fmt.Sprintf("2024-06-15T0%d:00:00Z", i)))
	}

	var buf bytes.Buffer
	viewCmd.SetOut(&buf)
	if err := viewCmd.RunE(viewCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"June 2024", "10 today", "Post 1", "+2 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Post 5") {
		t.Errorf("month view should cap the day at 3 items:\n%s", out)
	}
}

func TestViewWeekJSON(t *testing.T) {
	s := setupTestEnv(t)
	createItems(t, s, testPost("post0001", "Launch", item.StatusPending, "2024-06-15T09:30:00Z"))

	jsonOutput = true
	viewAs = "week"

	var buf bytes.Buffer
	viewCmd.SetOut(&buf)
	if err := viewCmd.RunE(viewCmd, []string{"2024-06-14"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	var v calendar.View
	if err := json.Unmarshal(buf.Bytes(), &v); err != nil {
		t.Fatalf("JSON unmarshal: %v", err)
	}
	if v.View != "week" || len(v.Cells) != 7 {
		t.Fatalf("view = %q with %d cells, want week with 7", v.View, len(v.Cells))
	}
	if v.Cells[0].Key != "2024-06-09" {
		t.Errorf("first day = %s, want 2024-06-09", v.Cells[0].Key)
	}
	last := v.Cells[6]
	if last.Key != "2024-06-15" || len(last.Shown) != 1 || last.Shown[0].Label != "Launch" {
		t.Errorf("unexpected Saturday cell: %+v", last)
	}
}

func TestViewInvalidArgs(t *testing.T) {
	setupTestEnv(t)

	viewAs = "year"
	if err := viewCmd.RunE(viewCmd, nil); err == nil {
		t.Error("expected error for unknown layout")
	}

	viewAs = "month"
	if err := viewCmd.RunE(viewCmd, []string{"15/06/2024"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestViewReportsUnplaceableItems(t *testing.T) {
	s := setupTestEnv(t)
	createItems(t, s,
		testPost("post0001", "Fine", item.StatusPending, "2024-06-15T09:30:00Z"),
		testPost("post0002", "Broken", item.StatusPending, "2024-13-45T99:00:00Z"),
	)

	var buf bytes.Buffer
	viewCmd.SetOut(&buf)
	if err := viewCmd.RunE(viewCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Fine") || !strings.Contains(out, "could not be placed") || !strings.Contains(out, "Broken") {
		t.Errorf("expected valid item and invalid row:\n%s", out)
	}
}

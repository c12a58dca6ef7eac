package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chris-regnier/contentcal/internal/ics"
	"github.com/chris-regnier/contentcal/internal/item"
)

func TestExportICSRange(t *testing.T) {
	s := setupTestEnv(t)
	june := testPost("post0001", "Launch", item.StatusPending, "2024-06-15T09:30:00Z")
	july := testPost("post0002", "Follow-up", item.StatusPending, "2024-07-02T09:30:00Z")
	createItems(t, s, june, july)

	icsFrom, icsTo = "2024-06-01", "2024-06-30"
	icsBaseURL = "https://dash.example.com"

	var buf bytes.Buffer
	exportICSCmd.SetOut(&buf)
	if err := exportICSCmd.RunE(exportICSCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 1 {
		t.Errorf("got %d events, want 1:\n%s", n, out)
	}
	if !strings.Contains(out, ics.UID(june.Ref())) {
		t.Error("missing June event")
	}
	if strings.Contains(out, ics.UID(july.Ref())) {
		t.Error("July event outside the range")
	}
	if !strings.Contains(out, "https://dash.example.com/social-posts/post0001") {
		t.Errorf("missing item link:\n%s", out)
	}
}

func TestExportICSDefaultsToCurrentMonth(t *testing.T) {
	s := setupTestEnv(t)
	createItems(t, s,
		testPost("post0001", "In June", item.StatusPending, "2024-06-30T09:30:00Z"),
		testPost("post0002", "In May", item.StatusPending, "2024-05-31T09:30:00Z"),
	)

	path := filepath.Join(t.TempDir(), "june.ics")
	icsOutput = path

	var errBuf bytes.Buffer
	exportICSCmd.SetErr(&errBuf)
	if err := exportICSCmd.RunE(exportICSCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if n := strings.Count(string(data), "BEGIN:VEVENT"); n != 1 {
		t.Errorf("got %d events, want 1", n)
	}
	if !strings.Contains(errBuf.String(), "Wrote 1 events") {
		t.Errorf("unexpected stderr: %q", errBuf.String())
	}
}

func TestExportICSRejectsBackwardsRange(t *testing.T) {
	setupTestEnv(t)
	icsFrom, icsTo = "2024-06-30", "2024-06-01"
	if err := exportICSCmd.RunE(exportICSCmd, nil); err == nil {
		t.Error("expected error for backwards range")
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/chris-regnier/contentcal/internal/item"
)

func TestShowListsWholeDay(t *testing.T) {
	s := setupTestEnv(t)
	for i := 1; i <= 5; i++ {
		createItems(t, s, testPost(fmt.Sprintf("post000%d", i), fmt.Sprintf("Post %d", i), item.StatusPending, fmt.Sprintf("2024-06-15T0%d:00:00Z", i)))
	}

	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	if err := showCmd.RunE(showCmd, []string{"2024-06-15"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "2024-06-15 (5 items)") {
		t.Errorf("missing day header:\n%s", out)
	}
	for i := 1; i <= 5; i++ {
		if !strings.Contains(out, fmt.Sprintf("Post %d", i)) {
			t.Errorf("missing Post %d:\n%s", i, out)
		}
	}
}

func TestShowEmptyDay(t *testing.T) {
	setupTestEnv(t)

	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	if err := showCmd.RunE(showCmd, []string{"2024-06-16"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "Nothing scheduled on 2024-06-16." {
		t.Errorf("output = %q", buf.String())
	}
}

func TestShowFull(t *testing.T) {
	s := setupTestEnv(t)
	a := item.Item{
		ID:          "art00001",
		Kind:        item.KindArticle,
		Title:       "Release notes",
		Status:      item.StatusDraft,
		Body:        "Everything that shipped this month.",
		ScheduledAt: "2024-06-15T09:30:00Z",
	}
	createItems(t, s, a)

	showFull = true
	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	if err := showCmd.RunE(showCmd, []string{"2024-06-15"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Item: article/art00001", "Link: /articles/art00001", "shipped this month"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("piped output contains escape codes:\n%q", out)
	}
}

func TestShowJSONOutput(t *testing.T) {
	s := setupTestEnv(t)
	createItems(t, s, testPost("post0001", "Launch", item.StatusPending, "2024-06-15T09:30:00Z"))
	jsonOutput = true

	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	if err := showCmd.RunE(showCmd, []string{"2024-06-15"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	var result struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
		Items []struct {
			Href string `json:"href"`
			Time string `json:"time"`
		} `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("JSON unmarshal: %v", err)
	}
	if result.Date != "2024-06-15" || result.Count != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Items[0].Href != "/social-posts/post0001" || result.Items[0].Time != "09:30" {
		t.Errorf("unexpected item: %+v", result.Items[0])
	}
}

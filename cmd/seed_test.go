package cmd

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
)

func TestSeedProfiles(t *testing.T) {
	for name, p := range profiles {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			items := generateItems(p, testNow, rng)
			if len(items) == 0 {
				t.Fatal("expected items")
			}
			for _, it := range items {
				if err := it.Validate(); err != nil {
					t.Errorf("%s: %v", it.Ref(), err)
				}
				if _, err := it.Anchor(time.UTC); err != nil {
					t.Errorf("%s: %v", it.Ref(), err)
				}
				future := it.ScheduledAt > item.FormatTimestamp(testNow)
				if future && it.Published() {
					t.Errorf("%s: scheduled in the future but already %s", it.Ref(), it.Status)
				}
			}
		})
	}
}

func TestSeedLaunchOverflows(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := generateItems(profiles["launch"], testNow, rng)

	launch := testNow.AddDate(0, 0, 3).Format("2006-01-02")
	n := 0
	for _, it := range items {
		if strings.HasPrefix(it.ScheduledAt, launch) {
			n++
		}
	}
	if n <= 3 {
		t.Errorf("launch day has %d items, want more than the month cap", n)
	}
}

func TestSeedCommand(t *testing.T) {
	s := setupTestEnv(t)
	if err := seedCmd.Flags().Set("seed", "42"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { seedCmd.Flags().Set("seed", "0") })

	var buf bytes.Buffer
	seedCmd.SetOut(&buf)
	if err := seedCmd.RunE(seedCmd, []string{"editorial"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if !strings.Contains(buf.String(), `Seeded with profile "editorial"`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	items, err := s.List(context.Background(), source.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) == 0 {
		t.Error("expected seeded items in the store")
	}
}

func TestSeedUnknownProfile(t *testing.T) {
	setupTestEnv(t)
	if err := seedCmd.RunE(seedCmd, []string{"podcaster"}); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestSeedList(t *testing.T) {
	setupTestEnv(t)
	if err := seedCmd.Flags().Set("list", "true"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { seedCmd.Flags().Set("list", "false") })

	var buf bytes.Buffer
	seedCmd.SetOut(&buf)
	if err := seedCmd.RunE(seedCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	for name := range profiles {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("missing profile %q in:\n%s", name, buf.String())
		}
	}
}

// readOnlySource is a source without local write access.
type readOnlySource struct{}

func (readOnlySource) List(context.Context, source.ListOptions) ([]item.Item, error) { return nil, nil }
func (readOnlySource) Reschedule(context.Context, item.Ref, time.Time) (item.Item, error) {
	return item.Item{}, source.ErrRejected
}
func (readOnlySource) Close() error { return nil }

func TestSeedRequiresLocalStore(t *testing.T) {
	setupTestEnv(t)
	src = readOnlySource{}
	appConfig.Source = "rest"

	if err := seedCmd.RunE(seedCmd, nil); err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Errorf("expected read-only error, got %v", err)
	}
}

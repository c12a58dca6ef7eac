package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/contentcal/internal/api"
	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/chris-regnier/contentcal/internal/source/markdown"
	"github.com/chris-regnier/contentcal/internal/source/rest"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// failingSource serves a fixed list and declines every reschedule.
type failingSource struct {
	items []item.Item
	err   error
	calls int
}

func (f *failingSource) List(context.Context, source.ListOptions) ([]item.Item, error) {
	return append([]item.Item(nil), f.items...), nil
}

func (f *failingSource) Reschedule(context.Context, item.Ref, time.Time) (item.Item, error) {
	f.calls++
	return item.Item{}, f.err
}

func (f *failingSource) Close() error { return nil }

func post(id string, status item.Status, at string) item.Item {
	return item.Item{
		ID:          id,
		Kind:        item.KindSocialPost,
		Title:       "Post " + id,
		Status:      status,
		ScheduledAt: at,
		CreatedAt:   "2024-06-01T08:00:00Z",
	}
}

func testOptions() api.Options {
	return api.Options{
		Location: time.UTC,
		MonthCap: 3,
		Now:      func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) },
	}
}

func newStore(t *testing.T, items ...item.Item) *markdown.Store {
	t.Helper()
	store, err := markdown.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	for _, it := range items {
		if err := store.Create(context.Background(), it); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}
	}
	return store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := api.NewServer(newStore(t), testOptions())
	w := do(t, srv.Handler(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCalendarMonth(t *testing.T) {
	store := newStore(t,
		post("post0001", item.StatusPending, "2024-06-15T09:00:00Z"),
		post("post0002", item.StatusPending, "2024-06-15T10:00:00Z"),
		post("post0003", item.StatusPending, "2024-06-15T11:00:00Z"),
		post("post0004", item.StatusPending, "2024-06-15T12:00:00Z"),
	)
	srv := api.NewServer(store, testOptions())

	w := do(t, srv.Handler(), http.MethodGet, "/api/calendar?view=month&date=2024-06-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var v calendar.View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding view: %v", err)
	}
	if v.Title != "June 2024" || len(v.Cells)%7 != 0 {
		t.Errorf("title = %q, cells = %d", v.Title, len(v.Cells))
	}
	for _, c := range v.Cells {
		if c.Key == "2024-06-15" {
			if len(c.Shown) != 3 || c.Hidden != 1 {
				t.Errorf("2024-06-15 shown %d hidden %d, want 3 and 1", len(c.Shown), c.Hidden)
			}
			return
		}
	}
	t.Error("2024-06-15 not in grid")
}

func TestDayIsUncapped(t *testing.T) {
	store := newStore(t,
		post("post0001", item.StatusPending, "2024-06-15T09:00:00Z"),
		post("post0002", item.StatusPending, "2024-06-15T10:00:00Z"),
		post("post0003", item.StatusPending, "2024-06-15T11:00:00Z"),
		post("post0004", item.StatusPending, "2024-06-15T12:00:00Z"),
	)
	srv := api.NewServer(store, testOptions())

	w := do(t, srv.Handler(), http.MethodGet, "/api/days/2024-06-15", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Day   string `json:"day"`
		Items []struct {
			Href string    `json:"href"`
			Item item.Item `json:"item"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(body.Items) != 4 {
		t.Fatalf("got %d items, want 4", len(body.Items))
	}
	if body.Items[0].Href != "/social-posts/post0001" {
		t.Errorf("href = %q", body.Items[0].Href)
	}

	w = do(t, srv.Handler(), http.MethodGet, "/api/days/June-15", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad key status = %d, want 400", w.Code)
	}
}

func TestRescheduleByDate(t *testing.T) {
	store := newStore(t,
		post("post0001", item.StatusPending, "2024-06-15T09:30:00Z"),
		post("post0002", item.StatusPosted, "2024-06-14T09:30:00Z"),
	)
	srv := api.NewServer(store, testOptions())
	h := srv.Handler()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"moves pending post", "/api/items/social-post/post0001/reschedule", `{"date":"2024-06-20"}`, http.StatusOK},
		{"refuses posted post", "/api/items/social-post/post0002/reschedule", `{"date":"2024-06-20"}`, http.StatusConflict},
		{"unknown item", "/api/items/social-post/missing1/reschedule", `{"date":"2024-06-20"}`, http.StatusNotFound},
		{"unknown kind", "/api/items/podcast/post0001/reschedule", `{"date":"2024-06-20"}`, http.StatusBadRequest},
		{"empty body", "/api/items/social-post/post0001/reschedule", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	got, err := store.Get(context.Background(), item.Ref{Kind: item.KindSocialPost, ID: "post0001"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ScheduledAt != "2024-06-20T09:30:00Z" {
		t.Errorf("ScheduledAt = %q, want 2024-06-20T09:30:00Z", got.ScheduledAt)
	}
}

func TestRescheduleFailureRollsBack(t *testing.T) {
	src := &failingSource{
		items: []item.Item{post("post0001", item.StatusPending, "2024-06-15T09:30:00Z")},
		err:   errors.New("boom"),
	}
	srv := api.NewServer(src, testOptions())
	h := srv.Handler()

	w := do(t, h, http.MethodPost, "/api/items/post/post0001/reschedule", `{"date":"2024-06-20"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if src.calls != 1 {
		t.Errorf("Reschedule called %d times, want 1", src.calls)
	}

	w = do(t, h, http.MethodGet, "/api/days/2024-06-15", "")
	if !strings.Contains(w.Body.String(), "post0001") {
		t.Errorf("item not back on its original day: %s", w.Body.String())
	}

	// The board accepts a new drag once the failed one settled.
	src.err = nil
	w = do(t, h, http.MethodPost, "/api/items/post/post0001/reschedule", `{"date":"2024-06-20"}`)
	if w.Code != http.StatusOK {
		t.Errorf("second attempt status = %d, want 200", w.Code)
	}
}

func TestAuth(t *testing.T) {
	opts := testOptions()
	opts.Token = "secret"
	h := api.NewServer(newStore(t), opts).Handler()

	if w := do(t, h, http.MethodGet, "/api/items", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("bearer token status = %d, want 200", w.Code)
	}

	if w := do(t, h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health should not need a token, got %d", w.Code)
	}
}

func TestRestClientRoundTrip(t *testing.T) {
	store := newStore(t,
		post("post0001", item.StatusPending, "2024-06-15T09:30:00Z"),
		post("post0002", item.StatusPosted, "2024-06-14T09:30:00Z"),
	)
	opts := testOptions()
	opts.Token = "secret"
	ts := httptest.NewServer(api.NewServer(store, opts).Handler())
	defer ts.Close()

	client, err := rest.New(rest.Options{BaseURL: ts.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	defer client.Close()
	ctx := context.Background()

	items, err := client.List(ctx, source.ListOptions{Kinds: []item.Kind{item.KindSocialPost}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List returned %d items, want 2", len(items))
	}

	got, err := client.Get(ctx, item.Ref{Kind: item.KindSocialPost, ID: "post0002"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != item.StatusPosted {
		t.Errorf("Get status = %q, want posted", got.Status)
	}
	if _, err := client.Get(ctx, item.Ref{Kind: item.KindSocialPost, ID: "nothere1"}); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Get missing: expected ErrNotFound, got %v", err)
	}

	moved, err := client.Reschedule(ctx, item.Ref{Kind: item.KindSocialPost, ID: "post0001"}, time.Date(2024, 6, 21, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if moved.ScheduledAt != "2024-06-21T08:00:00Z" {
		t.Errorf("ScheduledAt = %q", moved.ScheduledAt)
	}

	_, err = client.Reschedule(ctx, item.Ref{Kind: item.KindSocialPost, ID: "post0002"}, time.Date(2024, 6, 21, 8, 0, 0, 0, time.UTC))
	if !errors.Is(err, source.ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}

	_, err = client.Reschedule(ctx, item.Ref{Kind: item.KindSocialPost, ID: "nothere1"}, time.Date(2024, 6, 21, 8, 0, 0, 0, time.UTC))
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

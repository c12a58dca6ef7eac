package calendar_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
)

var errDeclined = errors.New("declined")

func loadedBoard(t *testing.T, items ...item.Item) *calendar.Board {
	t.Helper()
	b := calendar.NewBoard(time.UTC)
	if err := b.Load(items); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func snapshot(b *calendar.Board) map[calendar.DayKey][]item.Item {
	out := make(map[calendar.DayKey][]item.Item)
	ix := b.Index()
	for _, k := range ix.Keys() {
		out[k] = ix.Day(k)
	}
	return out
}

func TestBoardDragMovesItemOptimistically(t *testing.T) {
	b := loadedBoard(t, post("a", "2024-06-15T14:00:00Z"))
	ref := item.Ref{Kind: item.KindSocialPost, ID: "a"}

	if ok, err := b.StartDrag(ref); !ok || err != nil {
		t.Fatalf("StartDrag = %v, %v", ok, err)
	}
	intent, ok := b.Drop("2024-06-20")
	if !ok {
		t.Fatal("Drop returned no intent")
	}

	ix := b.Index()
	if ix.Count("2024-06-20") != 1 || ix.Count("2024-06-15") != 0 {
		t.Errorf("after drop: 20th=%d 15th=%d, want 1 and 0", ix.Count("2024-06-20"), ix.Count("2024-06-15"))
	}
	anchor, _ := ix.Anchor(ref)
	if anchor.Hour() != 14 || anchor.Minute() != 0 {
		t.Errorf("time of day not preserved: %v", anchor)
	}
	if want := mustDate(t, "2024-06-20", time.UTC).Add(14 * time.Hour); !intent.NewDate.Equal(want) {
		t.Errorf("intent.NewDate = %v, want %v", intent.NewDate, want)
	}

	if err := b.Resolve(intent, nil); err != nil {
		t.Errorf("Resolve(success) = %v", err)
	}
	if b.Index().Count("2024-06-20") != 1 {
		t.Error("successful resolve should keep the optimistic state")
	}
	if b.DragState() != calendar.DragIdle {
		t.Errorf("drag state = %s, want idle", b.DragState())
	}
}

func TestBoardRollbackRestoresExactState(t *testing.T) {
	b := loadedBoard(t,
		post("a", "2024-06-15T14:00:00Z"),
		post("b", "2024-06-15T09:00:00Z"),
		post("c", "2024-06-20T11:00:00Z"),
	)
	before := snapshot(b)
	itemsBefore := b.Items()

	b.StartDrag(item.Ref{Kind: item.KindSocialPost, ID: "a"})
	intent, ok := b.Drop("2024-06-20")
	if !ok {
		t.Fatal("Drop returned no intent")
	}

	err := b.Resolve(intent, errDeclined)
	var rejected *calendar.RejectedError
	if !errors.As(err, &rejected) || !errors.Is(err, errDeclined) {
		t.Fatalf("Resolve(failure) = %v, want RejectedError wrapping the cause", err)
	}
	if !reflect.DeepEqual(snapshot(b), before) {
		t.Errorf("buckets after rollback = %v, want %v", snapshot(b), before)
	}
	if !reflect.DeepEqual(b.Items(), itemsBefore) {
		t.Error("item list after rollback differs from the pre-drag list")
	}
	if got := ids(b.Index().Day("2024-06-15")); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("order after rollback = %v, want [a b]", got)
	}
}

func TestBoardNewerLoadWinsOverRollback(t *testing.T) {
	b := loadedBoard(t, post("a", "2024-06-15T14:00:00Z"))
	b.StartDrag(item.Ref{Kind: item.KindSocialPost, ID: "a"})
	intent, _ := b.Drop("2024-06-20")

	if err := b.Load([]item.Item{post("a", "2024-06-22T14:00:00Z")}); err != nil {
		t.Fatal(err)
	}
	b.Resolve(intent, errDeclined)

	if b.Index().Count("2024-06-22") != 1 || b.Index().Count("2024-06-15") != 0 {
		t.Errorf("rollback overwrote a newer load: keys = %v", b.Index().Keys())
	}
}

func TestBoardImmutableDragIsNoop(t *testing.T) {
	posted := item.Item{ID: "x", Kind: item.KindSocialPost, Title: "Done", Status: item.StatusPosted, PublishedAt: "2024-06-15T10:00:00Z"}
	b := loadedBoard(t, posted)

	ok, err := b.StartDrag(posted.Ref())
	if ok || err != nil {
		t.Errorf("StartDrag(posted) = %v, %v; want false, nil", ok, err)
	}
	if _, ok := b.Drop("2024-06-20"); ok {
		t.Error("Drop without a session produced an intent")
	}
	if b.Index().Count("2024-06-15") != 1 {
		t.Error("immutable item moved")
	}
}

func TestBoardSecondDragRejected(t *testing.T) {
	b := loadedBoard(t, post("a", "2024-06-15T10:00:00Z"), post("b", "2024-06-16T10:00:00Z"))
	b.StartDrag(item.Ref{Kind: item.KindSocialPost, ID: "a"})

	if _, err := b.StartDrag(item.Ref{Kind: item.KindSocialPost, ID: "b"}); !errors.Is(err, calendar.ErrDragInProgress) {
		t.Errorf("second StartDrag = %v, want ErrDragInProgress", err)
	}
	if sess, _ := b.DragSession(); sess.Item.ID != "a" {
		t.Errorf("active session = %q, want a", sess.Item.ID)
	}
}

func TestBoardDropOnOriginCancels(t *testing.T) {
	b := loadedBoard(t, post("a", "2024-06-15T10:00:00Z"))
	before := snapshot(b)
	b.StartDrag(item.Ref{Kind: item.KindSocialPost, ID: "a"})

	if _, ok := b.Drop("2024-06-15"); ok {
		t.Error("drop on origin produced an intent")
	}
	if _, ok := b.Pending(); ok {
		t.Error("drop on origin left a pending reschedule")
	}
	if !reflect.DeepEqual(snapshot(b), before) {
		t.Error("drop on origin changed buckets")
	}
}

func TestBoardStartDragUnknownItem(t *testing.T) {
	b := loadedBoard(t, post("a", "2024-06-15T10:00:00Z"))
	if _, err := b.StartDrag(item.Ref{Kind: item.KindOutline, ID: "a"}); !errors.Is(err, calendar.ErrUnknownItem) {
		t.Errorf("StartDrag(unknown) = %v, want ErrUnknownItem", err)
	}
}

func TestBoardResolveAfterCloseIsNoop(t *testing.T) {
	b := loadedBoard(t, post("a", "2024-06-15T10:00:00Z"))
	b.StartDrag(item.Ref{Kind: item.KindSocialPost, ID: "a"})
	intent, _ := b.Drop("2024-06-20")
	b.Close()

	if err := b.Resolve(intent, errDeclined); err != nil {
		t.Errorf("Resolve after Close = %v, want nil", err)
	}
	if err := b.Load(nil); err != nil {
		t.Errorf("Load after Close = %v", err)
	}
	if b.Index().Count("2024-06-20") != 1 {
		t.Error("closed board state changed")
	}
}

func TestBoardLoadFailure(t *testing.T) {
	b := calendar.NewBoard(time.UTC)
	b.LoadFailed(errors.New("connection refused"))
	if b.State() != calendar.LoadFailed {
		t.Errorf("state = %s, want failed", b.State())
	}
	v := b.Render(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), calendar.Month, calendar.RenderOptions{})
	if v.State != "failed" || v.Error == "" {
		t.Errorf("view should expose the failure, got state=%q error=%q", v.State, v.Error)
	}

	b.Load([]item.Item{post("a", "2024-06-15T10:00:00Z")})
	b.LoadFailed(errors.New("timeout"))
	if b.State() != calendar.Loaded {
		t.Errorf("state after refresh failure = %s, want loaded (last known good)", b.State())
	}
	if b.Index().Count("2024-06-15") != 1 {
		t.Error("refresh failure discarded last known good data")
	}
}

func TestBoardLoadReportsIntegrity(t *testing.T) {
	b := calendar.NewBoard(time.UTC)
	err := b.Load([]item.Item{post("a", "2024-06-15T10:00:00Z"), {ID: "bad", Kind: item.KindOutline, Title: "x", CreatedAt: "soon"}})
	if !calendar.IsIntegrityError(err) {
		t.Fatalf("Load = %v, want integrity error", err)
	}
	if b.State() != calendar.Loaded {
		t.Error("integrity errors should not fail the load")
	}
	v := b.Render(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), calendar.Month, calendar.RenderOptions{})
	if len(v.Invalid) != 1 || v.Invalid[0].Reason == "" {
		t.Errorf("view should list the invalid item, got %+v", v.Invalid)
	}
}

func TestBoardSelectDay(t *testing.T) {
	items := fiveOnOneDay()
	b := loadedBoard(t, items...)

	var selected []calendar.DayKey
	b.OnSelect(func(k calendar.DayKey) { selected = append(selected, k) })

	got, ok := b.SelectDay("2024-06-15")
	if !ok || len(got) != 5 {
		t.Fatalf("SelectDay = %d items, %v; want 5, true", len(got), ok)
	}
	if key, open := b.PanelDay(); !open || key != "2024-06-15" {
		t.Errorf("panel day = %q, %v", key, open)
	}

	if _, ok := b.SelectDay("2024-06-16"); ok {
		t.Error("empty day should not open the panel")
	}
	if key, _ := b.PanelDay(); key != "2024-06-15" {
		t.Errorf("empty selection replaced the open day with %q", key)
	}
	if !reflect.DeepEqual(selected, []calendar.DayKey{"2024-06-15", "2024-06-16"}) {
		t.Errorf("selection events = %v", selected)
	}

	v := b.Render(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), calendar.Month, calendar.RenderOptions{MonthCap: calendar.MonthCap})
	if v.Panel == nil || len(v.Panel.Items) != 5 {
		t.Error("panel should show the uncapped bucket")
	}

	b.ClosePanel()
	if _, open := b.PanelDay(); open {
		t.Error("panel still open after ClosePanel")
	}
}

func TestRenderMarksDragOrigin(t *testing.T) {
	b := loadedBoard(t, post("a", "2024-06-15T10:00:00Z"))
	b.StartDrag(item.Ref{Kind: item.KindSocialPost, ID: "a"})
	v := b.Render(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), calendar.Week, calendar.RenderOptions{})
	if v.Drag == nil || v.Drag.Origin != "2024-06-15" || v.Drag.State != "dragging" {
		t.Fatalf("Drag = %+v", v.Drag)
	}
	for _, c := range v.Cells {
		if c.DragOrigin != (c.Key == "2024-06-15") {
			t.Errorf("cell %s DragOrigin = %v", c.Key, c.DragOrigin)
		}
	}
}

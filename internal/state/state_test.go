package state

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/sky"
)

func rec(hr, name, ra, dec string, v float64) catalog.Record {
	return catalog.Record{
		HR:  catalog.StringField(hr),
		N:   catalog.StringField(name),
		RA:  catalog.StringField(ra),
		Dec: catalog.StringField(dec),
		V:   catalog.NumberField(v),
	}
}

// testRecords are three well-separated stars, given dimmest first.
func testRecords() []catalog.Record {
	return []catalog.Record{
		rec("3", "Faint", "18h 0m 0s", "-30 0 0", 5.5),
		rec("1", "Bright", "6h 0m 0s", "+30 0 0", 0.5),
		rec("2", "Middle", "12h 0m 0s", "+0 0 0", 2.0),
	}
}

var testViewport = sky.Viewport{Width: 1000, Height: 500}

func pointFor(t *testing.T, snap Snapshot, id string) sky.Point {
	t.Helper()
	for _, s := range snap.AllStars {
		if s.ID == id {
			return testViewport.Project(s)
		}
	}
	t.Fatalf("star %s not loaded", id)
	return sky.Point{}
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.MagnitudeLimit() != cfg.MagnitudeLimit {
		t.Errorf("MagnitudeLimit = %v, want %v", m.MagnitudeLimit(), cfg.MagnitudeLimit)
	}
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
	if got := m.Status(); got != StatusLoading {
		t.Errorf("Status = %q, want %q", got, StatusLoading)
	}
}

func TestManager_LoadSortsAndFilters(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.BeginLoad("test")
	stats := m.Load(testRecords())

	if stats.Accepted != 3 {
		t.Fatalf("Accepted = %d, want 3", stats.Accepted)
	}

	snap := m.Snapshot()
	if snap.LoadState != LoadLoaded {
		t.Errorf("LoadState = %v, want loaded", snap.LoadState)
	}
	if snap.Status != StatusLoaded {
		t.Errorf("Status = %q, want %q", snap.Status, StatusLoaded)
	}
	want := []string{"hr-1", "hr-2", "hr-3"}
	for i, s := range snap.VisibleStars {
		if s.ID != want[i] {
			t.Errorf("VisibleStars[%d] = %s, want %s", i, s.ID, want[i])
		}
	}
}

func TestManager_SortIsStable(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load([]catalog.Record{
		rec("10", "", "1h 0m 0s", "+0 0 0", 2.0),
		rec("11", "", "2h 0m 0s", "+0 0 0", 1.0),
		rec("12", "", "3h 0m 0s", "+0 0 0", 2.0),
	})

	snap := m.Snapshot()
	got := []string{snap.AllStars[0].ID, snap.AllStars[1].ID, snap.AllStars[2].ID}
	want := []string{"hr-11", "hr-10", "hr-12"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllStars order = %v, want %v", got, want)
			break
		}
	}
}

func TestManager_SetMagnitudeLimit(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())

	tests := []struct {
		limit float64
		want  int
	}{
		{6.5, 3},
		{2.0, 2}, // inclusive
		{1.99, 1},
		{-5, 0},
		{math.Inf(1), 3},
	}
	for _, tt := range tests {
		if !m.SetMagnitudeLimit(tt.limit) {
			t.Fatalf("SetMagnitudeLimit(%v) rejected", tt.limit)
		}
		snap := m.Snapshot()
		if len(snap.VisibleStars) != tt.want {
			t.Errorf("limit %v: %d visible, want %d", tt.limit, len(snap.VisibleStars), tt.want)
		}
		for _, s := range snap.VisibleStars {
			if s.Mag > tt.limit {
				t.Errorf("limit %v: %s (mag %v) should be hidden", tt.limit, s.ID, s.Mag)
			}
		}
	}
}

func TestManager_SetMagnitudeLimitNaN(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	m.SetMagnitudeLimit(3)

	if m.SetMagnitudeLimit(math.NaN()) {
		t.Error("NaN limit should be rejected")
	}
	if m.MagnitudeLimit() != 3 {
		t.Errorf("MagnitudeLimit = %v, want 3", m.MagnitudeLimit())
	}
}

func TestManager_FilterClearsHiddenSelection(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())

	if _, ok := m.SelectStarByID("hr-3"); !ok {
		t.Fatal("SelectStarByID(hr-3) failed")
	}
	m.SetMagnitudeLimit(3)

	snap := m.Snapshot()
	if snap.Selected != nil {
		t.Errorf("Selected = %s, want nil after filtering it out", snap.Selected.ID)
	}
	if snap.Status != StatusNoSelected {
		t.Errorf("Status = %q, want %q", snap.Status, StatusNoSelected)
	}

	// A visible selection survives.
	m.SelectStarByID("hr-1")
	m.SetMagnitudeLimit(1)
	if snap := m.Snapshot(); snap.Selected == nil || snap.Selected.ID != "hr-1" {
		t.Error("visible selection should survive a filter change")
	}
}

func TestManager_SelectStarAt(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	snap := m.Snapshot()

	star, ok := m.SelectStarAt(pointFor(t, snap, "hr-2"), testViewport)
	if !ok {
		t.Fatal("click on star should hit")
	}
	if star.ID != "hr-2" {
		t.Errorf("selected %s, want hr-2", star.ID)
	}
	if got := m.Status(); got != "Selected: Middle" {
		t.Errorf("Status = %q", got)
	}

	// Empty space changes nothing.
	if _, ok := m.SelectStarAt(sky.Point{X: 1, Y: 1}, testViewport); ok {
		t.Error("click on empty space should miss")
	}
	snap = m.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != "hr-2" {
		t.Error("miss should keep the selection")
	}
	if len(snap.Lines) != 0 {
		t.Errorf("Lines = %v, want none", snap.Lines)
	}
}

func TestManager_SelectionDrawsLines(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())

	m.SelectStarByID("hr-1")
	m.SelectStarByID("hr-1") // reselect: no self line
	m.SelectStarByID("hr-2")
	m.SelectStarByID("hr-3")
	m.SelectStarByID("hr-1")

	snap := m.Snapshot()
	want := []Line{{"hr-1", "hr-2"}, {"hr-2", "hr-3"}, {"hr-3", "hr-1"}}
	if len(snap.Lines) != len(want) {
		t.Fatalf("Lines = %v, want %v", snap.Lines, want)
	}
	for i := range want {
		if snap.Lines[i] != want[i] {
			t.Errorf("Lines[%d] = %v, want %v", i, snap.Lines[i], want[i])
		}
	}
}

func TestManager_ClearSelectionKeepsLines(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	m.SelectStarByID("hr-1")
	m.SelectStarByID("hr-2")

	m.ClearSelection()
	snap := m.Snapshot()
	if snap.Selected != nil {
		t.Error("Selected should be nil")
	}
	if len(snap.Lines) != 1 {
		t.Errorf("Lines = %d, want 1", len(snap.Lines))
	}
	if snap.Status != StatusNoSelected {
		t.Errorf("Status = %q, want %q", snap.Status, StatusNoSelected)
	}

	// Next selection starts a fresh chain.
	m.SelectStarByID("hr-3")
	if got := len(m.Snapshot().Lines); got != 1 {
		t.Errorf("Lines = %d after reselect, want 1", got)
	}
}

func TestManager_ClearLinesKeepsSelection(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	m.SelectStarByID("hr-1")
	m.SelectStarByID("hr-2")

	m.ClearLines()
	snap := m.Snapshot()
	if len(snap.Lines) != 0 {
		t.Errorf("Lines = %v, want none", snap.Lines)
	}
	if snap.Selected == nil || snap.Selected.ID != "hr-2" {
		t.Error("selection should survive ClearLines")
	}
}

func TestManager_LoadResetsAnnotations(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	m.SelectStarByID("hr-1")
	m.SelectStarByID("hr-2")

	m.Load(testRecords())
	snap := m.Snapshot()
	if snap.Selected != nil || len(snap.Lines) != 0 {
		t.Error("reload should clear selection and lines")
	}
	if snap.Status != StatusLoaded {
		t.Errorf("Status = %q, want %q", snap.Status, StatusLoaded)
	}
}

func TestManager_LoadFailedKeepsStars(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())

	m.BeginLoad("again")
	m.LoadFailed(errors.New("boom"))

	snap := m.Snapshot()
	if len(snap.AllStars) != 3 {
		t.Errorf("AllStars = %d, want previous 3", len(snap.AllStars))
	}
	if snap.LoadState != LoadFailed {
		t.Errorf("LoadState = %v, want failed", snap.LoadState)
	}
	if snap.Status != StatusLoadFailed {
		t.Errorf("Status = %q, want %q", snap.Status, StatusLoadFailed)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Errorf("LastError = %v", snap.LastError)
	}

	// The stars that stayed loaded can still be selected.
	if _, ok := m.SelectStarByID("hr-1"); !ok {
		t.Fatal("SelectStarByID(hr-1) failed after a failed reload")
	}
	if got := m.Status(); got != StatusSelected+"Bright" {
		t.Errorf("Status = %q after selecting, want %q", got, StatusSelected+"Bright")
	}

	// A new load reports itself until the next interaction.
	m.BeginLoad("third")
	if got := m.Status(); got != StatusLoading {
		t.Errorf("Status = %q after BeginLoad, want %q", got, StatusLoading)
	}
	m.SelectStarByID("hr-2")
	if got := m.Status(); got != StatusSelected+"Middle" {
		t.Errorf("Status = %q while loading, want %q", got, StatusSelected+"Middle")
	}
}

func TestManager_FilterBeforeLoadKeepsLoadingStatus(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.BeginLoad("stars.json")
	m.SetMagnitudeLimit(4)

	if got := m.Status(); got != StatusLoading {
		t.Errorf("Status = %q, want %q", got, StatusLoading)
	}
}

func TestManager_Hover(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	snap := m.Snapshot()

	if _, ok := m.SetHovered(pointFor(t, snap, "hr-1"), testViewport); !ok {
		t.Fatal("hover over star should hit")
	}
	if h := m.Snapshot().Hovered; h == nil || h.ID != "hr-1" {
		t.Error("Hovered should be hr-1")
	}
	if m.Snapshot().Selected != nil {
		t.Error("hover must not select")
	}

	m.SetHovered(sky.Point{X: 1, Y: 1}, testViewport)
	if m.Snapshot().Hovered != nil {
		t.Error("hover over empty space should clear")
	}

	m.SetHovered(pointFor(t, snap, "hr-1"), testViewport)
	m.ClearHovered()
	if m.Snapshot().Hovered != nil {
		t.Error("ClearHovered should clear")
	}
}

func TestManager_RedrawHook(t *testing.T) {
	m := NewManager(DefaultConfig())
	calls := 0
	m.SetRedrawHook(func() {
		calls++
		// The hook must be able to read state.
		_ = m.Snapshot()
	})

	m.Load(testRecords())
	m.SelectStarByID("hr-1")
	m.SetMagnitudeLimit(4)
	m.ClearLines()
	m.ClearSelection()

	if calls != 5 {
		t.Errorf("redraw calls = %d, want 5", calls)
	}

	// A miss does not redraw.
	m.SelectStarByID("nope")
	if calls != 5 {
		t.Errorf("redraw calls = %d after miss, want 5", calls)
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	m.SelectStarByID("hr-1")
	m.SelectStarByID("hr-2")

	snap := m.Snapshot()
	snap.AllStars[0].ID = "mutated"
	snap.Lines[0].From = "mutated"
	snap.Selected.ID = "mutated"

	fresh := m.Snapshot()
	if fresh.AllStars[0].ID == "mutated" || fresh.Lines[0].From == "mutated" || fresh.Selected.ID == "mutated" {
		t.Error("Snapshot should not alias manager state")
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m := NewManager(cfg)
	m.Load(testRecords())

	for i := 0; i < 10; i++ {
		m.SetMagnitudeLimit(float64(i))
	}

	events := m.RecentEvents(100)
	if len(events) != 5 {
		t.Errorf("events count = %d, want 5 (max)", len(events))
	}
	last := events[len(events)-1]
	if last.Type != EventFilterChanged || last.Limit != 9 {
		t.Errorf("last event = %+v, want FILTER_CHANGED 9", last)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events not in chronological order at index %d", i)
		}
	}
}

func TestManager_Events(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())
	m.SelectStarByID("hr-1")
	m.SelectStarByID("hr-2")
	m.ClearLines()

	var types []EventType
	for _, e := range m.Snapshot().Events {
		types = append(types, e.Type)
	}
	want := []EventType{EventLoaded, EventSelected, EventLineAdded, EventSelected, EventLinesCleared}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Load(testRecords())

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.SetMagnitudeLimit(float64(i % 7))
			m.SelectStarByID("hr-1")
			m.ClearSelection()
		}
	}()

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Snapshot()
				_ = m.Status()
			}
		}()
	}

	wg.Wait()
}

// End to end: load three records, filter, click a star, read the status.
func TestManager_LoadFilterClick(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.BeginLoad("inline")
	m.Load(testRecords())
	m.SetMagnitudeLimit(2.5)

	snap := m.Snapshot()
	if len(snap.VisibleStars) != 2 {
		t.Fatalf("visible = %d, want 2", len(snap.VisibleStars))
	}

	if _, ok := m.SelectStarAt(pointFor(t, snap, "hr-1"), testViewport); !ok {
		t.Fatal("click should select hr-1")
	}
	if status := m.Status(); !strings.Contains(status, "Bright") {
		t.Errorf("Status = %q, want it to name Bright", status)
	}

	// The filtered-out star cannot be clicked.
	if _, ok := m.SelectStarAt(pointFor(t, snap, "hr-3"), testViewport); ok {
		t.Error("hidden star should not be selectable")
	}
}

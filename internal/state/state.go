// Package state owns the star-map session: the loaded catalog, the
// magnitude-filtered view, the current selection, and the user-drawn lines.
package state

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/sky"
)

// Status texts written to the selection status surface.
const (
	StatusLoading    = "Loading stars..."
	StatusLoaded     = "Loaded star catalog"
	StatusLoadFailed = "Could not load stars"
	StatusNoSelected = "No star selected"
	StatusSelected   = "Selected: "
)

// LoadState is the lifecycle of the catalog.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadLoading
	LoadLoaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadIdle:
		return "idle"
	case LoadLoading:
		return "loading"
	case LoadLoaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventType represents the type of session event.
type EventType string

const (
	EventLoaded           EventType = "LOADED"
	EventLoadFailed       EventType = "LOAD_FAILED"
	EventSelected         EventType = "SELECTED"
	EventLineAdded        EventType = "LINE_ADDED"
	EventSelectionCleared EventType = "SELECTION_CLEARED"
	EventLinesCleared     EventType = "LINES_CLEARED"
	EventFilterChanged    EventType = "FILTER_CHANGED"
)

// Event records a session mutation.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	StarID    string    `json:"star_id,omitempty"`
	FromID    string    `json:"from_id,omitempty"`
	ToID      string    `json:"to_id,omitempty"`
	Limit     float64   `json:"limit,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Line is a user-drawn connector between two star identifiers. It is an
// undirected edge; From/To only record click order.
type Line struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Config holds configuration for the state manager.
type Config struct {
	MagnitudeLimit float64
	MaxEvents      int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MagnitudeLimit: 6.5,
		MaxEvents:      50,
	}
}

// Manager is the catalog store and annotation model for one session.
type Manager struct {
	mu sync.RWMutex

	// Catalog
	allStars     []catalog.Star
	visibleStars []catalog.Star
	limit        float64
	loadState    LoadState
	lastError    error
	lastLoad     time.Time
	loadStats    catalog.NormalizeStats
	source       string

	// Annotation
	selected   *catalog.Star
	hovered    *catalog.Star
	lines      []Line
	interacted bool // any selection/filter change since the last load state change

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	redraw func()
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	limit := cfg.MagnitudeLimit
	if math.IsNaN(limit) {
		limit = DefaultConfig().MagnitudeLimit
	}
	return &Manager{
		limit:     limit,
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// SetRedrawHook registers fn to be called after every mutation. The hook is
// invoked without the lock held.
func (m *Manager) SetRedrawHook(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redraw = fn
}

func (m *Manager) requestRedraw() {
	m.mu.RLock()
	fn := m.redraw
	m.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// BeginLoad marks a catalog load as in flight.
func (m *Manager) BeginLoad(source string) {
	m.mu.Lock()
	m.loadState = LoadLoading
	m.source = source
	m.interacted = false
	m.mu.Unlock()
	m.requestRedraw()
}

// Load normalizes records, sorts them brightest first (stable), and replaces
// the catalog. Selection and lines are cleared and the visible set is
// recomputed for the current magnitude limit.
func (m *Manager) Load(records []catalog.Record) catalog.NormalizeStats {
	stars, stats := catalog.NormalizeAll(records)
	slices.SortStableFunc(stars, func(a, b catalog.Star) int {
		switch {
		case a.Mag < b.Mag:
			return -1
		case a.Mag > b.Mag:
			return 1
		default:
			return 0
		}
	})

	m.mu.Lock()
	m.allStars = stars
	m.selected = nil
	m.hovered = nil
	m.lines = nil
	m.loadState = LoadLoaded
	m.lastError = nil
	m.lastLoad = time.Now()
	m.loadStats = stats
	m.interacted = false
	m.applyFilterLocked()
	m.addEvent(Event{
		Type:      EventLoaded,
		Timestamp: m.lastLoad,
		Detail:    m.source,
	})
	m.mu.Unlock()

	m.requestRedraw()
	return stats
}

// LoadFailed records that the catalog could not be fetched or parsed.
// Previously loaded stars stay in place; nothing is partially applied.
func (m *Manager) LoadFailed(err error) {
	m.mu.Lock()
	m.loadState = LoadFailed
	m.lastError = err
	m.interacted = false
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	m.addEvent(Event{Type: EventLoadFailed, Timestamp: time.Now(), Detail: detail})
	m.mu.Unlock()

	m.requestRedraw()
}

// SetMagnitudeLimit filters the visible set to stars with mag <= limit. A
// selection that falls outside the new visible set is cleared. NaN is
// ignored and reported as false.
func (m *Manager) SetMagnitudeLimit(limit float64) bool {
	if math.IsNaN(limit) {
		return false
	}

	m.mu.Lock()
	m.limit = limit
	m.interacted = true
	m.applyFilterLocked()
	m.addEvent(Event{Type: EventFilterChanged, Timestamp: time.Now(), Limit: limit})
	m.mu.Unlock()

	m.requestRedraw()
	return true
}

// applyFilterLocked recomputes the visible set in full. Caller holds mu.
func (m *Manager) applyFilterLocked() {
	visible := make([]catalog.Star, 0, len(m.allStars))
	for _, s := range m.allStars {
		if s.Mag <= m.limit {
			visible = append(visible, s)
		}
	}
	m.visibleStars = visible

	if m.selected != nil && !containsID(visible, m.selected.ID) {
		m.addEvent(Event{
			Type:      EventSelectionCleared,
			Timestamp: time.Now(),
			StarID:    m.selected.ID,
			Detail:    "filtered out",
		})
		m.selected = nil
	}
	if m.hovered != nil && !containsID(visible, m.hovered.ID) {
		m.hovered = nil
	}
}

func containsID(stars []catalog.Star, id string) bool {
	for _, s := range stars {
		if s.ID == id {
			return true
		}
	}
	return false
}

// SelectStarAt resolves p to a visible star and selects it. When a different
// star was already selected, a line from it to the new star is appended. It
// returns the star found, if any; a miss changes nothing.
func (m *Manager) SelectStarAt(p sky.Point, vp sky.Viewport) (catalog.Star, bool) {
	m.mu.Lock()
	star, ok := sky.FindStarAt(p, m.visibleStars, vp, sky.Radius)
	if ok {
		m.selectLocked(star)
	}
	m.mu.Unlock()

	if ok {
		m.requestRedraw()
	}
	return star, ok
}

// SelectStarByID selects the visible star with the given identifier, with the
// same line-drawing rule as SelectStarAt.
func (m *Manager) SelectStarByID(id string) (catalog.Star, bool) {
	m.mu.Lock()
	var (
		star  catalog.Star
		found bool
	)
	for _, s := range m.visibleStars {
		if s.ID == id {
			star, found = s, true
			break
		}
	}
	if found {
		m.selectLocked(star)
	}
	m.mu.Unlock()

	if found {
		m.requestRedraw()
	}
	return star, found
}

func (m *Manager) selectLocked(star catalog.Star) {
	now := time.Now()
	if m.selected != nil && m.selected.ID != star.ID {
		line := Line{From: m.selected.ID, To: star.ID}
		m.lines = append(m.lines, line)
		m.addEvent(Event{Type: EventLineAdded, Timestamp: now, FromID: line.From, ToID: line.To})
	}
	selected := star
	m.selected = &selected
	m.interacted = true
	m.addEvent(Event{Type: EventSelected, Timestamp: now, StarID: star.ID})
}

// ClearSelection drops the current selection. Lines are untouched.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	if m.selected != nil {
		m.addEvent(Event{Type: EventSelectionCleared, Timestamp: time.Now(), StarID: m.selected.ID})
	}
	m.selected = nil
	m.interacted = true
	m.mu.Unlock()

	m.requestRedraw()
}

// ClearLines removes every line. The selection is untouched.
func (m *Manager) ClearLines() {
	m.mu.Lock()
	m.lines = nil
	m.addEvent(Event{Type: EventLinesCleared, Timestamp: time.Now()})
	m.mu.Unlock()

	m.requestRedraw()
}

// SetHovered recomputes the transient hover star for a pointer position.
func (m *Manager) SetHovered(p sky.Point, vp sky.Viewport) (catalog.Star, bool) {
	m.mu.Lock()
	star, ok := sky.FindStarAt(p, m.visibleStars, vp, sky.Radius)
	if ok {
		hovered := star
		m.hovered = &hovered
	} else {
		m.hovered = nil
	}
	m.mu.Unlock()
	return star, ok
}

// ClearHovered drops the hover state (pointer left the surface).
func (m *Manager) ClearHovered() {
	m.mu.Lock()
	m.hovered = nil
	m.mu.Unlock()
}

// addEvent adds an event to the ring buffer. Caller holds mu.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	AllStars       []catalog.Star
	VisibleStars   []catalog.Star
	Lines          []Line
	Selected       *catalog.Star
	Hovered        *catalog.Star
	MagnitudeLimit float64
	LoadState      LoadState
	LastError      error
	LastLoad       time.Time
	LoadStats      catalog.NormalizeStats
	Source         string
	Status         string
	Events         []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		AllStars:       slices.Clone(m.allStars),
		VisibleStars:   slices.Clone(m.visibleStars),
		Lines:          slices.Clone(m.lines),
		MagnitudeLimit: m.limit,
		LoadState:      m.loadState,
		LastError:      m.lastError,
		LastLoad:       m.lastLoad,
		LoadStats:      m.loadStats,
		Source:         m.source,
		Status:         m.statusLocked(),
		Events:         m.getEventsOrdered(),
	}
	if m.selected != nil {
		s := *m.selected
		snap.Selected = &s
	}
	if m.hovered != nil {
		h := *m.hovered
		snap.Hovered = &h
	}
	return snap
}

// statusLocked derives the status text. Caller holds mu. The load state is
// reported until the user selects or filters stars that are already loaded.
func (m *Manager) statusLocked() string {
	if m.interacted && m.allStars != nil {
		if m.selected != nil {
			return StatusSelected + catalog.SelectionLabel(*m.selected)
		}
		return StatusNoSelected
	}
	switch m.loadState {
	case LoadFailed:
		return StatusLoadFailed
	case LoadIdle, LoadLoading:
		return StatusLoading
	}
	return StatusLoaded
}

// Status returns the current status text.
func (m *Manager) Status() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

// MagnitudeLimit returns the current magnitude limit.
func (m *Manager) MagnitudeLimit() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limit
}

// HasData returns true once a catalog load has succeeded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allStars != nil
}

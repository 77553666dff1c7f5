package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/render"
	"github.com/litescript/ls-starmap/internal/sky"
	"github.com/litescript/ls-starmap/internal/state"
)

// magnitudeStep is how far one +/- press moves the magnitude limit.
const magnitudeStep = 0.5

// SkyViewModel renders the star map and turns mouse and keyboard input into
// selection, line, and filter changes on the state manager.
type SkyViewModel struct {
	state      *state.Manager
	highlights render.Highlights
	keys       KeyMap

	// Canvas size in cells and its top-left corner on the terminal.
	width   int
	height  int
	originX int
	originY int

	cursorX    int
	cursorY    int
	showCursor bool
	labels     bool

	frame render.Frame
}

// NewSkyViewModel creates a new sky view model.
func NewSkyViewModel(mgr *state.Manager, highlights render.Highlights) SkyViewModel {
	return SkyViewModel{
		state:      mgr,
		highlights: highlights,
		keys:       DefaultKeyMap,
		labels:     true,
	}
}

// SetSize updates the canvas size and its position on screen.
func (m SkyViewModel) SetSize(width, height, originX, originY int) SkyViewModel {
	m.width = width
	m.height = height
	m.originX = originX
	m.originY = originY
	m.cursorX = clamp(m.cursorX, 0, max(0, width-1))
	m.cursorY = clamp(m.cursorY, 0, max(0, height-1))
	return m
}

// UpdateData rebuilds the frame from a snapshot.
func (m SkyViewModel) UpdateData(snapshot state.Snapshot) SkyViewModel {
	m.frame = render.BuildFrame(snapshot, m.highlights)
	return m
}

func (m SkyViewModel) canvas() render.Canvas {
	return render.Canvas{
		Width:      m.width,
		Height:     m.height,
		Color:      true,
		ShowCursor: m.showCursor,
		CursorX:    m.cursorX,
		CursorY:    m.cursorY,
		Labels:     m.labels,
	}
}

// cellAt maps terminal coordinates to a canvas cell.
func (m SkyViewModel) cellAt(x, y int) (int, int, bool) {
	cx, cy := x-m.originX, y-m.originY
	if cx < 0 || cy < 0 || cx >= m.width || cy >= m.height {
		return 0, 0, false
	}
	return cx, cy, true
}

// Update handles messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m = m.moveCursor(0, -1)
		case key.Matches(msg, m.keys.Down):
			m = m.moveCursor(0, 1)
		case key.Matches(msg, m.keys.Left):
			m = m.moveCursor(-1, 0)
		case key.Matches(msg, m.keys.Right):
			m = m.moveCursor(1, 0)
		case key.Matches(msg, m.keys.Select):
			m.showCursor = true
			m.state.SelectStarAt(render.CellCenter(m.cursorX, m.cursorY), m.canvas().Viewport())
		case key.Matches(msg, m.keys.ClearSelection):
			m.state.ClearSelection()
		case key.Matches(msg, m.keys.ClearLines):
			m.state.ClearLines()
		case key.Matches(msg, m.keys.Fainter):
			m.state.SetMagnitudeLimit(m.state.MagnitudeLimit() + magnitudeStep)
		case key.Matches(msg, m.keys.Brighter):
			m.state.SetMagnitudeLimit(m.state.MagnitudeLimit() - magnitudeStep)
		case key.Matches(msg, m.keys.Labels):
			m.labels = !m.labels
		}
	}
	return m, nil
}

func (m SkyViewModel) handleMouse(msg tea.MouseMsg) SkyViewModel {
	cx, cy, inside := m.cellAt(msg.X, msg.Y)
	vp := m.canvas().Viewport()

	switch msg.Action {
	case tea.MouseActionPress:
		if !inside {
			return m
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.cursorX, m.cursorY = cx, cy
			m.state.SelectStarAt(render.CellCenter(cx, cy), vp)
		case tea.MouseButtonRight:
			m.state.ClearSelection()
		}

	case tea.MouseActionMotion:
		if !inside {
			m.state.ClearHovered()
			return m
		}
		m.state.SetHovered(render.CellCenter(cx, cy), vp)
	}
	return m
}

func (m SkyViewModel) moveCursor(dx, dy int) SkyViewModel {
	if !m.showCursor {
		// First keypress reveals the cursor where it is.
		m.showCursor = true
		return m.hoverCursor()
	}
	m.cursorX = clamp(m.cursorX+dx, 0, max(0, m.width-1))
	m.cursorY = clamp(m.cursorY+dy, 0, max(0, m.height-1))
	return m.hoverCursor()
}

// hoverCursor treats the keyboard cursor like a pointer for hover feedback.
func (m SkyViewModel) hoverCursor() SkyViewModel {
	m.state.SetHovered(render.CellCenter(m.cursorX, m.cursorY), m.canvas().Viewport())
	return m
}

// Cursor returns the cursor cell and whether it is shown.
func (m SkyViewModel) Cursor() (x, y int, shown bool) {
	return m.cursorX, m.cursorY, m.showCursor
}

// Viewport is the sky surface in hit-test units.
func (m SkyViewModel) Viewport() sky.Viewport {
	return m.canvas().Viewport()
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	if m.width < 20 || m.height < 5 {
		return "Sky view requires larger terminal"
	}
	return m.canvas().Render(m.frame)
}

// renderHeader summarizes the filter and annotation state in one line.
func (m SkyViewModel) renderHeader(snapshot state.Snapshot) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))

	title := titleStyle.Render("Star Map")
	mag := accentStyle.Render(fmt.Sprintf("mag ≤ %.1f", snapshot.MagnitudeLimit))
	counts := dimStyle.Render(fmt.Sprintf("%d/%d stars", len(snapshot.VisibleStars), len(snapshot.AllStars)))
	lines := dimStyle.Render(fmt.Sprintf("%d lines", len(snapshot.Lines)))
	if m.frame.Skipped > 0 {
		lines = dimStyle.Render(fmt.Sprintf("%d lines (%d hidden)", len(snapshot.Lines), m.frame.Skipped))
	}
	labels := dimStyle.Render("labels: off")
	if m.labels {
		labels = accentStyle.Render("labels: on")
	}

	return fmt.Sprintf("%s | %s | %s | %s | %s", title, mag, counts, lines, labels)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/render"
)

// saveRequestedMsg asks the root model to export a PNG with the given title.
type saveRequestedMsg struct {
	title string
}

// saveCanceledMsg closes the dialog without exporting.
type saveCanceledMsg struct{}

// SaveDialogModel prompts for an optional title before PNG export.
type SaveDialogModel struct {
	input  textinput.Model
	active bool
}

var dialogStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#f4bfff")).
	Padding(0, 1)

// NewSaveDialogModel creates an inactive save dialog.
func NewSaveDialogModel() SaveDialogModel {
	ti := textinput.New()
	ti.Placeholder = "Orion"
	ti.Prompt = "Title: "
	ti.CharLimit = 80
	ti.Width = 40
	return SaveDialogModel{input: ti}
}

// Open activates the dialog with an empty title.
func (m SaveDialogModel) Open() (SaveDialogModel, tea.Cmd) {
	m.active = true
	m.input.SetValue("")
	return m, m.input.Focus()
}

// Close deactivates the dialog.
func (m SaveDialogModel) Close() SaveDialogModel {
	m.active = false
	m.input.Blur()
	return m
}

// Active reports whether the dialog owns the keyboard.
func (m SaveDialogModel) Active() bool {
	return m.active
}

// Update handles messages while the dialog is active.
func (m SaveDialogModel) Update(msg tea.Msg) (SaveDialogModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			title := strings.TrimSpace(m.input.Value())
			m = m.Close()
			return m, func() tea.Msg { return saveRequestedMsg{title: title} }
		case tea.KeyEsc:
			m = m.Close()
			return m, func() tea.Msg { return saveCanceledMsg{} }
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the dialog.
func (m SaveDialogModel) View() string {
	if !m.active {
		return ""
	}
	hint := panelDimStyle.Render("→ " + render.ExportFilename(strings.TrimSpace(m.input.Value())) + "   enter: save · esc: cancel")
	return dialogStyle.Render(panelTitleStyle.Render("Save PNG") + "\n" + m.input.View() + "\n" + hint)
}

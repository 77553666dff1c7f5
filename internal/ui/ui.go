// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/logging"
	"github.com/litescript/ls-starmap/internal/render"
	"github.com/litescript/ls-starmap/internal/state"
	"github.com/litescript/ls-starmap/internal/version"
)

// Panel is shown beside the sky only when the terminal is at least this wide.
const minPanelWidth = 80

// Msg types for Bubble Tea
type (
	// CatalogLoadedMsg carries the outcome of a catalog load.
	CatalogLoadedMsg struct {
		Result catalog.LoadResult
	}

	// RedrawMsg asks the model to re-read state. The state manager's redraw
	// hook sends it whenever the store or the annotations change.
	RedrawMsg struct{}

	// exportDoneMsg reports a finished PNG export.
	exportDoneMsg struct {
		path string
		err  error
	}
)

// Options configures the root model.
type Options struct {
	Context    context.Context
	Loader     *catalog.Loader
	Source     string
	Highlights render.Highlights
	Exporter   *render.PNGRenderer
	ExportDir  string
	Logger     *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	ctx        context.Context
	state      *state.Manager
	loader     *catalog.Loader
	source     string
	highlights render.Highlights
	exporter   *render.PNGRenderer
	exportDir  string
	logger     *logging.Logger

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string // Result of the last reload or export.
	keys      KeyMap

	// Sub-models
	spinner    spinner.Model
	help       help.Model
	skyView    SkyViewModel
	saveDialog SaveDialogModel

	snapshot state.Snapshot
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Loader == nil {
		opts.Loader = catalog.NewLoader()
	}
	if opts.Source == "" {
		opts.Source = catalog.DefaultSource
	}
	if opts.Highlights.Constellations == nil && opts.Highlights.Stars == nil {
		opts.Highlights = render.DefaultHighlights()
	}
	if opts.Exporter == nil {
		opts.Exporter = render.NewPNGRenderer(0, 0, 1)
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	return Model{
		ctx:        opts.Context,
		state:      stateMgr,
		loader:     opts.Loader,
		source:     opts.Source,
		highlights: opts.Highlights,
		exporter:   opts.Exporter,
		exportDir:  opts.ExportDir,
		logger:     opts.Logger.With("ui"),
		keys:       DefaultKeyMap,
		spinner:    spin,
		help:       help.New(),
		skyView:    NewSkyViewModel(stateMgr, opts.Highlights),
		saveDialog: NewSaveDialogModel(),
		snapshot:   stateMgr.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

// loadCmd marks the store as loading and fetches the catalog off the UI
// goroutine.
func (m Model) loadCmd() tea.Cmd {
	m.state.BeginLoad(m.source)
	m.logger.Info("Loading catalog from %s", m.source)

	ctx, loader, source := m.ctx, m.loader, m.source
	return func() tea.Msg {
		return CatalogLoadedMsg{Result: loader.Load(ctx, source)}
	}
}

// exportCmd renders the current frame to a PNG in the export directory.
func (m Model) exportCmd(title string) tea.Cmd {
	frame := render.BuildFrame(m.state.Snapshot(), m.highlights)
	path := filepath.Join(m.exportDir, render.ExportFilename(title))
	exporter := m.exporter
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: exporter.WriteFile(path, frame, title)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.saveDialog.Active() {
			var cmd tea.Cmd
			m.saveDialog, cmd = m.saveDialog.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m = m.layout()

		case key.Matches(msg, m.keys.Reload):
			if m.snapshot.LoadState != state.LoadLoading {
				m.statusMsg = ""
				cmds = append(cmds, m.loadCmd(), m.spinner.Tick)
			}

		case key.Matches(msg, m.keys.Save):
			// Export works on whatever is loaded, even an empty sky.
			var cmd tea.Cmd
			m.saveDialog, cmd = m.saveDialog.Open()
			cmds = append(cmds, cmd)

		default:
			var cmd tea.Cmd
			m.skyView, cmd = m.skyView.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		if !m.saveDialog.Active() {
			var cmd tea.Cmd
			m.skyView, cmd = m.skyView.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m = m.layout()

	case spinner.TickMsg:
		// Let the spinner stop once loading is over.
		if ls := m.snapshot.LoadState; ls == state.LoadLoading || ls == state.LoadIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case CatalogLoadedMsg:
		res := msg.Result
		if res.Error != nil {
			m.state.LoadFailed(res.Error)
			m.logger.Error("Catalog load failed: %v", res.Error)
			m.statusMsg = res.Error.Error()
		} else {
			stats := m.state.Load(res.Records)
			m.logger.Info("Loaded %d of %d records from %s in %v (%d rejected)",
				stats.Accepted, stats.Total, res.Source, res.Duration, stats.Rejected)
			if len(stats.DuplicateIDs) > 0 {
				m.logger.Warn("Duplicate star ids: %s", strings.Join(stats.DuplicateIDs, ", "))
			}
		}

	case saveRequestedMsg:
		m.statusMsg = "Saving " + render.ExportFilename(msg.title) + "..."
		cmds = append(cmds, m.exportCmd(msg.title))

	case saveCanceledMsg:
		m.statusMsg = ""

	case exportDoneMsg:
		if msg.err != nil {
			m.logger.Error("Export failed: %v", msg.err)
			m.statusMsg = "Export failed: " + msg.err.Error()
		} else {
			m.logger.Info("Exported %s", msg.path)
			m.statusMsg = "Saved " + msg.path
		}

	case RedrawMsg:
		// Refreshed below.

	default:
		if m.saveDialog.Active() {
			var cmd tea.Cmd
			m.saveDialog, cmd = m.saveDialog.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m = m.refresh()
	return m, tea.Batch(cmds...)
}

// refresh pulls a fresh snapshot from the state manager.
func (m Model) refresh() Model {
	m.snapshot = m.state.Snapshot()
	m.skyView = m.skyView.UpdateData(m.snapshot)
	return m
}

// layout sizes the sky canvas to whatever the header, footer, and panel leave.
func (m Model) layout() Model {
	if !m.ready {
		return m
	}
	skyWidth := m.width
	if m.width >= minPanelWidth {
		skyWidth -= StarPanelWidth
	}
	skyHeight := m.height - 1 - m.footerHeight()
	m.skyView = m.skyView.SetSize(max(skyWidth, 0), max(skyHeight, 0), 0, 1)
	m.help.Width = m.width
	return m
}

func (m Model) footerHeight() int {
	if m.help.ShowAll {
		longest := 0
		for _, group := range m.keys.FullHelp() {
			longest = max(longest, len(group))
		}
		return 1 + longest
	}
	return 2
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.skyView.renderHeader(m.snapshot)

	content := m.skyView.View()
	if m.saveDialog.Active() {
		content = lipgloss.Place(m.skyView.width, m.skyView.height,
			lipgloss.Center, lipgloss.Center, m.saveDialog.View())
	}
	if m.width >= minPanelWidth {
		panel := renderStarPanel(m.snapshot, m.skyView.height)
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return header + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#e9edf5"))

	var status string
	switch m.snapshot.LoadState {
	case state.LoadLoading, state.LoadIdle:
		status = m.spinner.View() + " " + statusStyle.Render(m.snapshot.Status)
	case state.LoadFailed:
		status = errorStyle.Render(m.snapshot.Status)
	default:
		status = statusStyle.Render(m.snapshot.Status)
	}

	line := " " + status
	if m.statusMsg != "" {
		line += "  " + dimStyle.Render("|") + "  " + dimStyle.Render(m.statusMsg)
	}
	line += "  " + dimStyle.Render("v"+version.Version)

	return line + "\n" + m.help.View(m.keys)
}

// Snapshot returns the snapshot the model last rendered.
func (m Model) Snapshot() state.Snapshot {
	return m.snapshot
}

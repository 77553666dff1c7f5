package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/state"
)

// StarPanelWidth is the width of the details panel including its border.
const StarPanelWidth = 34

var (
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f4bfff"))
	panelLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	panelValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))
	panelDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	panelBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5A4FCF")).
			Padding(0, 1)
)

// renderStarPanel renders details for the selected and hovered stars.
func renderStarPanel(snapshot state.Snapshot, height int) string {
	var b strings.Builder

	b.WriteString(panelTitleStyle.Render("Selected"))
	b.WriteString("\n")
	if snapshot.Selected != nil {
		writeStarDetails(&b, *snapshot.Selected)
	} else {
		b.WriteString(panelDimStyle.Render("click a star"))
		b.WriteString("\n")
	}

	if h := snapshot.Hovered; h != nil && (snapshot.Selected == nil || h.ID != snapshot.Selected.ID) {
		b.WriteString("\n")
		b.WriteString(panelTitleStyle.Render("Pointer"))
		b.WriteString("\n")
		writeStarDetails(&b, *h)
	}

	b.WriteString("\n")
	writeField(&b, "Limit", fmt.Sprintf("mag ≤ %.1f", snapshot.MagnitudeLimit))
	writeField(&b, "Visible", fmt.Sprintf("%d of %d", len(snapshot.VisibleStars), len(snapshot.AllStars)))
	writeField(&b, "Lines", fmt.Sprintf("%d", len(snapshot.Lines)))
	if snapshot.LoadStats.Rejected > 0 {
		writeField(&b, "Rejected", fmt.Sprintf("%d records", snapshot.LoadStats.Rejected))
	}

	style := panelBoxStyle.Width(StarPanelWidth - 2)
	if height > 2 {
		style = style.Height(height - 2)
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func writeStarDetails(b *strings.Builder, s catalog.Star) {
	b.WriteString(panelValueStyle.Bold(true).Render(truncate(catalog.SelectionLabel(s), StarPanelWidth-4)))
	b.WriteString("\n")
	writeField(b, "ID", s.ID)
	writeField(b, "RA", astro.FormatRA(s.RA))
	writeField(b, "Dec", astro.FormatDec(s.Dec))
	writeField(b, "Mag", fmt.Sprintf("%.2f", s.Mag))
	if s.Constellation != "" {
		writeField(b, "Const", s.Constellation)
	}
	if s.HR != "" {
		writeField(b, "HR", s.HR)
	}
	if s.Bayer != "" {
		writeField(b, "Bayer", s.Bayer)
	}
	if s.Flamsteed != "" {
		writeField(b, "Flamsteed", s.Flamsteed)
	}
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(panelLabelStyle.Render(fmt.Sprintf("%-9s", label)))
	b.WriteString(" ")
	b.WriteString(panelValueStyle.Render(truncate(value, StarPanelWidth-14)))
	b.WriteString("\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/state"
)

// SnapshotExport is the JSON-serializable representation of a session.
type SnapshotExport struct {
	ExportedAt     time.Time              `json:"exported_at"`
	Source         string                 `json:"source,omitempty"`
	LoadState      string                 `json:"load_state"`
	Status         string                 `json:"status"`
	MagnitudeLimit float64                `json:"magnitude_limit"`
	Stats          catalog.NormalizeStats `json:"stats"`
	Stars          []StarExport           `json:"stars"`
	Lines          []state.Line           `json:"lines"`
	Selected       *StarExport            `json:"selected,omitempty"`
}

// StarExport is a JSON-friendly star with formatted coordinates.
type StarExport struct {
	catalog.Star
	Label   string `json:"label"`
	RAText  string `json:"ra_text"`
	DecText string `json:"dec_text"`
}

func exportStar(s catalog.Star) StarExport {
	return StarExport{
		Star:    s,
		Label:   catalog.SelectionLabel(s),
		RAText:  astro.FormatRA(s.RA),
		DecText: astro.FormatDec(s.Dec),
	}
}

// ExportSnapshot converts a state snapshot to an exportable format. Only
// visible stars are exported; every line is kept, resolvable or not.
func ExportSnapshot(snap state.Snapshot, exportedAt time.Time) *SnapshotExport {
	export := &SnapshotExport{
		ExportedAt:     exportedAt,
		Source:         snap.Source,
		LoadState:      snap.LoadState.String(),
		Status:         snap.Status,
		MagnitudeLimit: snap.MagnitudeLimit,
		Stats:          snap.LoadStats,
		Stars:          make([]StarExport, 0, len(snap.VisibleStars)),
		Lines:          snap.Lines,
	}
	if export.Lines == nil {
		export.Lines = []state.Line{}
	}
	for _, s := range snap.VisibleStars {
		export.Stars = append(export.Stars, exportStar(s))
	}
	if snap.Selected != nil {
		sel := exportStar(*snap.Selected)
		export.Selected = &sel
	}
	return export
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummaryRow represents one row in the summary table.
type SummaryRow struct {
	ID            string
	Label         string
	Constellation string
	RA            string
	Dec           string
	Mag           float64
}

// GenerateSummaryRows returns up to limit rows of the brightest visible
// stars. A non-positive limit means all of them.
func GenerateSummaryRows(snap state.Snapshot, limit int) []SummaryRow {
	stars := snap.VisibleStars
	if limit > 0 && len(stars) > limit {
		stars = stars[:limit]
	}

	rows := make([]SummaryRow, 0, len(stars))
	for _, s := range stars {
		rows = append(rows, SummaryRow{
			ID:            s.ID,
			Label:         catalog.SelectionLabel(s),
			Constellation: s.Constellation,
			RA:            astro.FormatRA(s.RA),
			Dec:           astro.FormatDec(s.Dec),
			Mag:           s.Mag,
		})
	}
	return rows
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, snap state.Snapshot, limit int, timestamp time.Time) {
	rows := GenerateSummaryRows(snap, limit)

	fmt.Fprintf(w, "Star Map @ %s  (mag <= %.1f)\n", timestamp.Format(time.RFC3339), snap.MagnitudeLimit)
	fmt.Fprintln(w, strings.Repeat("─", 78))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No visible stars")
		return
	}

	// Header
	fmt.Fprintf(w, "%-10s %-20s %-5s %-14s %-14s %5s\n",
		"ID", "Star", "Const", "RA", "Dec", "Mag")
	fmt.Fprintln(w, strings.Repeat("─", 78))

	// Rows
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s %-20s %-5s %-14s %-14s %5.2f\n",
			truncateStr(r.ID, 10),
			truncateStr(r.Label, 20),
			truncateStr(r.Constellation, 5),
			r.RA,
			r.Dec,
			r.Mag,
		)
	}

	fmt.Fprintf(w, "\nShowing %d of %d visible stars (%d loaded)\n",
		len(rows), len(snap.VisibleStars), len(snap.AllStars))
	if len(snap.Lines) > 0 {
		fmt.Fprintf(w, "Lines: %d\n", len(snap.Lines))
	}
	if snap.Selected != nil {
		fmt.Fprintf(w, "%s\n", snap.Status)
	}
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}

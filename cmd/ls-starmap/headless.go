package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/config"
	"github.com/litescript/ls-starmap/internal/logging"
	"github.com/litescript/ls-starmap/internal/render"
	"github.com/litescript/ls-starmap/internal/state"
)

// miniSkyRows is the height of the --mini-sky canvas in terminal rows.
const miniSkyRows = 18

type headlessParams struct {
	opts       options
	cfg        *config.Config
	source     string
	loader     *catalog.Loader
	state      *state.Manager
	highlights render.Highlights
	logger     *logging.Logger
	out        io.Writer
	termWidth  int
}

// runHeadless loads the catalog once and writes every requested output.
func runHeadless(ctx context.Context, p headlessParams) error {
	p.state.BeginLoad(p.source)
	res := p.loader.Load(ctx, p.source)
	if res.Error != nil {
		p.state.LoadFailed(res.Error)
		return res.Error
	}
	stats := p.state.Load(res.Records)
	p.logger.Info("Loaded %d of %d records from %s in %v", stats.Accepted, stats.Total, res.Source, res.Duration.Round(time.Millisecond))
	if stats.Rejected > 0 {
		p.logger.Debug("Rejected %d records", stats.Rejected)
	}
	if len(stats.DuplicateIDs) > 0 {
		p.logger.Warn("Duplicate star ids: %s", strings.Join(stats.DuplicateIDs, ", "))
	}

	if err := connectStars(p.state, p.opts.connect); err != nil {
		return err
	}

	snap := p.state.Snapshot()
	now := time.Now()
	wrote := false

	// Export JSON if requested
	if p.opts.snapshotPath != "" {
		if err := writeSnapshot(p.opts.snapshotPath, p.out, render.ExportSnapshot(snap, now)); err != nil {
			return err
		}
		wrote = p.opts.snapshotPath == "-"
	}

	// Print summary table if requested
	if p.opts.summary {
		render.WriteSummaryTable(p.out, snap, p.opts.limitRows, now)
		wrote = true
	}

	// Mini sky view
	if p.opts.miniSky {
		if wrote {
			fmt.Fprintln(p.out)
		}
		canvas := render.Canvas{Width: max(p.termWidth, 20), Height: miniSkyRows, Labels: true}
		fmt.Fprintln(p.out, canvas.Render(render.BuildFrame(snap, p.highlights)))
	}

	if p.opts.exportPath != "" {
		path := exportTarget(p.opts.exportPath, p.opts.title)
		r := render.NewPNGRenderer(p.cfg.Export.Width, p.cfg.Export.Height, p.cfg.Export.PixelRatio)
		if err := r.WriteFile(path, render.BuildFrame(snap, p.highlights), p.opts.title); err != nil {
			return fmt.Errorf("export png: %w", err)
		}
		p.logger.Info("Exported %s", path)
	}
	return nil
}

// connectStars selects each id in order, which draws a line between every
// consecutive pair.
func connectStars(mgr *state.Manager, ids []string) error {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := mgr.SelectStarByID(id); !ok {
			return fmt.Errorf("connect: star %q is not loaded or is fainter than the magnitude limit", id)
		}
	}
	return nil
}

func writeSnapshot(path string, stdout io.Writer, export *render.SnapshotExport) error {
	if path == "-" {
		if err := export.WriteJSON(stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	if err := export.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return f.Close()
}

// exportTarget returns path itself, or the title-derived file name inside path
// when path is a directory.
func exportTarget(path, title string) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return filepath.Join(path, render.ExportFilename(title))
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, render.ExportFilename(title))
	}
	return path
}

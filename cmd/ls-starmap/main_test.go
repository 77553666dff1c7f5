package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/config"
	"github.com/litescript/ls-starmap/internal/logging"
	"github.com/litescript/ls-starmap/internal/render"
	"github.com/litescript/ls-starmap/internal/state"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv(config.ConfigEnvVar, "")
	cfg, opts, err := parseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, catalog.DefaultSource, cfg.Catalog.Source)
	assert.Equal(t, 6.5, cfg.View.MagnitudeLimit)
	assert.False(t, opts.headless())
	assert.Equal(t, 20, opts.limitRows)
}

func TestParseFlags_FlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("view:\n  magnitude_limit: 3\ncatalog:\n  source: stars.json\n"), 0o644))

	cfg, opts, err := parseFlags([]string{"--config", path, "--mag", "4.5", "--summary", "--connect", "hr-1,hr-2", "--connect", "hr-3"})
	require.NoError(t, err)

	assert.Equal(t, 4.5, cfg.View.MagnitudeLimit, "explicit flag wins")
	assert.Equal(t, "stars.json", cfg.Catalog.Source, "unset flag keeps the file value")
	assert.True(t, opts.headless())
	assert.Equal(t, []string{"hr-1", "hr-2", "hr-3"}, opts.connect)
}

func TestParseFlags_Errors(t *testing.T) {
	t.Setenv(config.ConfigEnvVar, "")
	_, _, err := parseFlags([]string{"--pixel-ratio", "0"})
	assert.ErrorContains(t, err, "pixel_ratio")

	_, _, err = parseFlags([]string{"--limit-rows", "-1"})
	assert.ErrorContains(t, err, "limit-rows")

	_, _, err = parseFlags([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestHighlightsFromConfig(t *testing.T) {
	cfg := config.Default()
	h, err := highlightsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, render.DefaultHighlights(), h)

	cfg.Highlights.Constellations = map[string]string{"Cas": "#00ffaa"}
	h, err = highlightsFromConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, h.Constellations, "Cas")
	assert.NotContains(t, h.Constellations, "Ori", "configured tables replace the stock ones")

	cfg.Highlights.Stars = map[string]string{"hr-1": "blue"}
	_, err = highlightsFromConfig(cfg)
	assert.ErrorContains(t, err, "hr-1")
}

func TestResolveSource(t *testing.T) {
	logger := logging.Discard()
	assert.Equal(t, "https://example.com/c.json", resolveSource("https://example.com/c.json", logger))

	wd, err := os.Getwd()
	require.NoError(t, err)
	if _, err := os.Stat(filepath.Join(wd, catalog.DefaultSource)); err != nil {
		assert.Equal(t, catalog.BuiltinSource, resolveSource(catalog.DefaultSource, logger))
	}
}

func TestExportTarget(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "winter-hexagon.png"), exportTarget(dir, "Winter Hexagon"))
	assert.Equal(t, filepath.Join(dir, "constellation.png"), exportTarget(dir+string(os.PathSeparator), ""))
	assert.Equal(t, "out.png", exportTarget("out.png", "ignored"))
}

func newHeadlessParams(t *testing.T, opts options, out *bytes.Buffer) headlessParams {
	t.Helper()
	return headlessParams{
		opts:       opts,
		cfg:        config.Default(),
		source:     catalog.BuiltinSource,
		loader:     catalog.NewLoader(),
		state:      state.NewManager(state.DefaultConfig()),
		highlights: render.DefaultHighlights(),
		logger:     logging.Discard(),
		out:        out,
		termWidth:  80,
	}
}

func TestRunHeadless_Summary(t *testing.T) {
	var out bytes.Buffer
	p := newHeadlessParams(t, options{summary: true, limitRows: 5}, &out)
	require.NoError(t, runHeadless(context.Background(), p))

	assert.Contains(t, out.String(), "Sirius")
	assert.Contains(t, out.String(), "Showing 5 of")
}

func TestRunHeadless_SnapshotAndConnect(t *testing.T) {
	var out bytes.Buffer
	p := newHeadlessParams(t, options{snapshotPath: "-", connect: []string{"hr-2061", " hr-1713 ", "hr-1903"}}, &out)
	require.NoError(t, runHeadless(context.Background(), p))

	var export render.SnapshotExport
	require.NoError(t, json.Unmarshal(out.Bytes(), &export))
	assert.Equal(t, []state.Line{{From: "hr-2061", To: "hr-1713"}, {From: "hr-1713", To: "hr-1903"}}, export.Lines)
	require.NotNil(t, export.Selected)
	assert.Equal(t, "hr-1903", export.Selected.ID)
}

func TestRunHeadless_ConnectUnknownStar(t *testing.T) {
	var out bytes.Buffer
	p := newHeadlessParams(t, options{summary: true, connect: []string{"hr-2061", "hr-0"}}, &out)
	err := runHeadless(context.Background(), p)
	assert.ErrorContains(t, err, `"hr-0"`)
}

func TestRunHeadless_MiniSkyAndExport(t *testing.T) {
	var out bytes.Buffer
	dir := t.TempDir()
	p := newHeadlessParams(t, options{miniSky: true, exportPath: dir, title: "Orion Belt", connect: []string{"hr-1903", "hr-1948"}}, &out)
	p.cfg.Export.Width, p.cfg.Export.Height = 200, 100

	require.NoError(t, runHeadless(context.Background(), p))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, miniSkyRows)

	info, err := os.Stat(filepath.Join(dir, "orion-belt.png"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunHeadless_LoadFailure(t *testing.T) {
	var out bytes.Buffer
	p := newHeadlessParams(t, options{summary: true}, &out)
	p.source = filepath.Join(t.TempDir(), "missing.json")
	p.loader = catalog.NewLoader(catalog.WithTimeout(time.Second))

	err := runHeadless(context.Background(), p)
	var fetchErr *catalog.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, state.StatusLoadFailed, p.state.Status())
}

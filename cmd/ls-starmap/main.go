// Command ls-starmap is a terminal star map for drawing constellations.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/config"
	"github.com/litescript/ls-starmap/internal/logging"
	"github.com/litescript/ls-starmap/internal/render"
	"github.com/litescript/ls-starmap/internal/state"
	"github.com/litescript/ls-starmap/internal/ui"
	"github.com/litescript/ls-starmap/internal/version"
)

// options holds everything decided on the command line.
type options struct {
	configPath string

	// Headless modes
	summary      bool
	limitRows    int
	snapshotPath string
	miniSky      bool
	exportPath   string
	title        string
	connect      []string
	showVersion  bool
}

func (o options) headless() bool {
	return o.summary || o.snapshotPath != "" || o.miniSky || o.exportPath != ""
}

func main() {
	cfg, opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Printf("ls-starmap v%s\n", version.Version)
		return
	}

	highlights, err := highlightsFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stateCfg := state.DefaultConfig()
	stateCfg.MagnitudeLimit = cfg.View.MagnitudeLimit
	stateMgr := state.NewManager(stateCfg)

	isTTY := term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))

	// Without a terminal there is nothing to draw a TUI on.
	if !opts.headless() && !isTTY {
		opts.summary = true
	}

	if opts.headless() {
		logger := logging.New(logging.ParseLevel(cfg.Log.Level))
		source := resolveSource(cfg.Catalog.Source, logger)
		loader := catalog.NewLoader(catalog.WithTimeout(cfg.Catalog.Timeout), catalog.WithLogger(logger.With("catalog")))
		if err := runHeadless(ctx, headlessParams{
			opts:       opts,
			cfg:        cfg,
			source:     source,
			loader:     loader,
			state:      stateMgr,
			highlights: highlights,
			logger:     logger,
			out:        os.Stdout,
			termWidth:  terminalWidth(isTTY),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The terminal belongs to Bubble Tea, so TUI logs go to a file or nowhere.
	logger := logging.Discard()
	if cfg.Log.File != "" {
		fileLogger, closeLog, err := logging.NewFile(cfg.Log.File, logging.ParseLevel(cfg.Log.Level))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
		logger = fileLogger
	}
	source := resolveSource(cfg.Catalog.Source, logger)

	model := ui.New(stateMgr, ui.Options{
		Context:    ctx,
		Loader:     catalog.NewLoader(catalog.WithTimeout(cfg.Catalog.Timeout), catalog.WithLogger(logger.With("catalog"))),
		Source:     source,
		Highlights: highlights,
		Exporter:   render.NewPNGRenderer(cfg.Export.Width, cfg.Export.Height, cfg.Export.PixelRatio),
		ExportDir:  cfg.Export.Dir,
		Logger:     logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	// Send blocks until the program reads it, and the hook also fires from
	// inside Update, so deliver asynchronously.
	stateMgr.SetRedrawHook(func() {
		go p.Send(ui.RedrawMsg{})
	})

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags loads the configuration and applies explicitly set flags on top.
func parseFlags(args []string) (*config.Config, options, error) {
	var opts options
	fs := pflag.NewFlagSet("ls-starmap", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.ConfigEnvVar+")")
	source := fs.String("catalog", catalog.DefaultSource, "Catalog file, http(s) URL, or \"builtin:\"")
	mag := fs.Float64("mag", 6.5, "Magnitude limit: show stars with magnitude <= this value")
	timeout := fs.Duration("timeout", catalog.DefaultTimeout, "Catalog load timeout")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error, off)")
	logFile := fs.String("log-file", "", "Write TUI logs to this file")

	fs.BoolVar(&opts.summary, "summary", false, "Print a table of the brightest visible stars instead of the TUI")
	fs.IntVar(&opts.limitRows, "limit-rows", 20, "Rows in the --summary table (0 = all)")
	fs.StringVar(&opts.snapshotPath, "snapshot-path", "", "Export a JSON snapshot to file (use - for stdout)")
	fs.BoolVar(&opts.miniSky, "mini-sky", false, "Print a braille mini sky to stdout")
	fs.StringVar(&opts.exportPath, "export", "", "Render a PNG to this file or directory")
	fs.StringVar(&opts.title, "title", "", "Title drawn on the exported PNG")
	fs.StringSliceVar(&opts.connect, "connect", nil, "Star ids to select in order, drawing lines between them")
	width := fs.Int("width", render.DefaultExportWidth, "PNG width in logical pixels")
	height := fs.Int("height", render.DefaultExportHeight, "PNG height in logical pixels")
	ratio := fs.Float64("pixel-ratio", 1, "PNG device pixel ratio")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, opts, err
	}

	if fs.Changed("catalog") {
		cfg.Catalog.Source = *source
	}
	if fs.Changed("mag") {
		cfg.View.MagnitudeLimit = *mag
	}
	if fs.Changed("timeout") {
		cfg.Catalog.Timeout = *timeout
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if fs.Changed("log-file") {
		cfg.Log.File = *logFile
	}
	if fs.Changed("width") {
		cfg.Export.Width = *width
	}
	if fs.Changed("height") {
		cfg.Export.Height = *height
	}
	if fs.Changed("pixel-ratio") {
		cfg.Export.PixelRatio = *ratio
	}
	if opts.limitRows < 0 {
		return nil, opts, fmt.Errorf("--limit-rows must not be negative")
	}

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

// highlightsFromConfig returns the configured highlight tables, or the stock
// ones when none are configured.
func highlightsFromConfig(cfg *config.Config) (render.Highlights, error) {
	if cfg.Highlights.IsZero() {
		return render.DefaultHighlights(), nil
	}
	h, err := render.HighlightsFromHex(cfg.Highlights.Constellations, cfg.Highlights.Stars)
	if err != nil {
		return render.Highlights{}, fmt.Errorf("highlights: %w", err)
	}
	return h, nil
}

// resolveSource falls back to the built-in catalog when the default catalog
// file is not present.
func resolveSource(source string, logger *logging.Logger) string {
	if source != catalog.DefaultSource {
		return source
	}
	if _, err := os.Stat(source); err != nil {
		logger.Info("%s not found, using the built-in catalog", source)
		return catalog.BuiltinSource
	}
	return source
}

func terminalWidth(isTTY bool) int {
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

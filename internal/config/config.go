// Package config loads ls-starmap settings.
//
// Values are layered: built-in defaults, then an optional YAML file (given
// with --config or STARMAP_CONFIG), then STARMAP_* environment variables.
// Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STARMAP_"

// ConfigEnvVar names the environment variable holding the config file path.
const ConfigEnvVar = EnvPrefix + "CONFIG"

// Config is the complete runtime configuration.
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog" envPrefix:"CATALOG_"`
	View       ViewConfig       `yaml:"view" envPrefix:"VIEW_"`
	Export     ExportConfig     `yaml:"export" envPrefix:"EXPORT_"`
	Log        LogConfig        `yaml:"log" envPrefix:"LOG_"`
	Highlights HighlightsConfig `yaml:"highlights" envPrefix:"HIGHLIGHT_"`
}

// CatalogConfig selects where stars come from.
type CatalogConfig struct {
	// Source is a file path, an http(s) URL, or "builtin:".
	Source string `yaml:"source" env:"SOURCE"`

	// Timeout bounds a single load.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// ViewConfig holds the initial view state.
type ViewConfig struct {
	MagnitudeLimit float64 `yaml:"magnitude_limit" env:"MAG"`
}

// ExportConfig controls PNG export.
type ExportConfig struct {
	Width      int     `yaml:"width" env:"WIDTH"`
	Height     int     `yaml:"height" env:"HEIGHT"`
	PixelRatio float64 `yaml:"pixel_ratio" env:"PIXEL_RATIO"`
	Dir        string  `yaml:"dir" env:"DIR"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`

	// File receives log output in TUI mode. Empty discards TUI logs.
	File string `yaml:"file" env:"FILE"`
}

// HighlightsConfig maps constellation abbreviations and star identifiers to
// "#rrggbb" colors. When both tables are empty the stock highlights apply.
type HighlightsConfig struct {
	Constellations map[string]string `yaml:"constellations" env:"CONSTELLATIONS"`
	Stars          map[string]string `yaml:"stars" env:"STARS"`
}

// IsZero reports whether no highlight was configured.
func (h HighlightsConfig) IsZero() bool {
	return len(h.Constellations) == 0 && len(h.Stars) == 0
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source:  "./bsc5-short.json",
			Timeout: 30 * time.Second,
		},
		View: ViewConfig{
			MagnitudeLimit: 6.5,
		},
		Export: ExportConfig{
			Width:      1200,
			Height:     600,
			PixelRatio: 1,
			Dir:        ".",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or the
// one named by STARMAP_CONFIG when path is empty), and the process
// environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Catalog.Source == "" {
		errs = append(errs, errors.New("catalog.source is required"))
	}
	if c.Catalog.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("catalog.timeout must be positive, got %s", c.Catalog.Timeout))
	}
	if math.IsNaN(c.View.MagnitudeLimit) {
		errs = append(errs, errors.New("view.magnitude_limit must be a number"))
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		errs = append(errs, fmt.Errorf("export size must be positive, got %dx%d", c.Export.Width, c.Export.Height))
	}
	if !(c.Export.PixelRatio > 0 && c.Export.PixelRatio <= 4) {
		errs = append(errs, fmt.Errorf("export.pixel_ratio must be in (0, 4], got %v", c.Export.PixelRatio))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

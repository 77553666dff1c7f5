// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - PNG export with title band, save dialog, configurable highlights
// 0.2.0 - Mouse selection and hover, gzip/zstd and HTTP catalogs, YAML/env config
// 0.1.0 - Initial release: braille sky view, magnitude filter, headless modes

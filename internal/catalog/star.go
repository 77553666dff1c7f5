// Package catalog turns raw bright-star catalog records into normalized Star
// values and loads catalog documents from disk, HTTP, or the built-in set.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/litescript/ls-starmap/internal/astro"
)

// Star is a normalized catalog entry. It is never mutated after Normalize
// returns it.
type Star struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	RA   float64 `json:"ra"`  // hours, [0, 24)
	Dec  float64 `json:"dec"` // degrees, [-90, 90]
	Mag  float64 `json:"mag"` // apparent visual magnitude (lower = brighter)
	X    float64 `json:"x"`   // projected, [0, 1]
	Y    float64 `json:"y"`   // projected, [0, 1]

	// Optional descriptive fields; empty means absent.
	Constellation string `json:"constellation,omitempty"`
	HR            string `json:"hr,omitempty"`
	Bayer         string `json:"bayer,omitempty"`
	Flamsteed     string `json:"flamsteed,omitempty"`
	ProperName    string `json:"proper_name,omitempty"`
}

var slugRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name, collapses every run of non-alphanumeric
// characters into one hyphen, and trims hyphens from both ends.
func Slugify(name string) string {
	if name == "" {
		return ""
	}
	s := slugRuns.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// Normalize converts a raw record into a Star. The record is rejected (false)
// unless magnitude, right ascension, and declination all parse.
func Normalize(rec Record, index int) (Star, bool) {
	mag, ok := parseMagnitude(rec.magnitudeField())
	if !ok {
		return Star{}, false
	}
	ra, ok := astro.ParseRAHours(presentText(rec.RA))
	if !ok {
		return Star{}, false
	}
	dec, ok := astro.ParseDecDegrees(presentText(rec.Dec))
	if !ok {
		return Star{}, false
	}

	id := deriveID(rec, index)
	x, y := astro.Project(ra, dec)

	return Star{
		ID:            id,
		Name:          deriveName(rec, id),
		RA:            ra,
		Dec:           dec,
		Mag:           mag,
		X:             x,
		Y:             y,
		Constellation: presentText(rec.constellationField()),
		HR:            presentText(rec.HR),
		Bayer:         presentText(rec.B),
		Flamsteed:     presentText(rec.F),
		ProperName:    presentText(rec.N),
	}, true
}

func parseMagnitude(f Field) (float64, bool) {
	if !f.IsSet() {
		return 0, false
	}
	return astro.ParseNumber(f.String())
}

func presentText(f Field) string {
	if !f.Present() {
		return ""
	}
	return f.String()
}

// deriveID applies the identifier precedence: HR, HD, name, Flamsteed with
// constellation, then the positional index.
func deriveID(rec Record, index int) string {
	constellation := rec.constellationField()
	switch {
	case rec.HR.Present():
		return "hr-" + rec.HR.String()
	case rec.HD.Present():
		return "hd-" + rec.HD.String()
	case rec.nameField().Present():
		return "nm-" + Slugify(rec.nameField().String())
	case rec.F.Present() && constellation.Present():
		return "nm-" + Slugify(rec.F.String()+"-"+constellation.String())
	default:
		return fmt.Sprintf("star-%d", index)
	}
}

// deriveName picks the best display name available for the record.
func deriveName(rec Record, id string) string {
	constellation := rec.constellationField()
	switch {
	case rec.nameField().Present():
		return rec.nameField().String()
	case rec.F.Present() && constellation.Present():
		return rec.F.String() + " " + constellation.String()
	case constellation.Present():
		return constellation.String()
	case rec.HR.Present():
		return "HR " + rec.HR.String()
	case rec.HD.Present():
		return "HD " + rec.HD.String()
	default:
		return id
	}
}

// SelectionLabel is the human-readable label used for the selection status
// and hover tooltip. Bayer designations are rendered as "<bayer><const>".
func SelectionLabel(s Star) string {
	if s.ProperName != "" {
		return s.ProperName
	}
	if s.Bayer != "" {
		return s.Bayer + s.Constellation
	}
	if s.Constellation != "" {
		label := s.Constellation
		if s.HR != "" {
			label = "HR " + s.HR + " " + s.Constellation
		}
		return strings.TrimSpace(label)
	}
	if s.HR != "" {
		return "HR " + s.HR
	}
	return s.Name
}

// NormalizeStats summarizes a bulk normalization pass.
type NormalizeStats struct {
	Total        int      `json:"total"`
	Accepted     int      `json:"accepted"`
	Rejected     int      `json:"rejected"`
	DuplicateIDs []string `json:"duplicate_ids,omitempty"`
}

// NormalizeAll normalizes records in order, dropping rejected entries. The
// positional index passed to Normalize is the record's index in records.
// Duplicate identifiers are kept and reported in the stats.
func NormalizeAll(records []Record) ([]Star, NormalizeStats) {
	stats := NormalizeStats{Total: len(records)}
	stars := make([]Star, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		star, ok := Normalize(rec, i)
		if !ok {
			stats.Rejected++
			continue
		}
		seen[star.ID]++
		if seen[star.ID] == 2 {
			stats.DuplicateIDs = append(stats.DuplicateIDs, star.ID)
		}
		stars = append(stars, star)
	}
	stats.Accepted = len(stars)
	return stars, stats
}

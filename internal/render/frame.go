// Package render turns a session snapshot into something to look at: a
// resolved frame, a PNG image, a terminal braille sky, or a text/JSON export.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/sky"
	"github.com/litescript/ls-starmap/internal/state"
)

// Highlight is the accent used for a star: a core color and a faint glow.
type Highlight struct {
	Color color.NRGBA
	Glow  color.NRGBA
}

// Highlights maps constellations and individual stars to accents. A star
// entry wins over its constellation.
type Highlights struct {
	Constellations map[string]Highlight
	Stars          map[string]Highlight
}

var (
	highlightRed     = Highlight{Color: color.NRGBA{255, 92, 92, 230}, Glow: color.NRGBA{255, 92, 92, 51}}
	highlightGold    = Highlight{Color: color.NRGBA{255, 210, 90, 230}, Glow: color.NRGBA{255, 210, 90, 51}}
	highlightMagenta = Highlight{Color: color.NRGBA{255, 145, 255, 242}, Glow: color.NRGBA{255, 145, 255, 64}}
)

// DefaultHighlights returns the stock accents: Orion and Scorpius in red,
// Crux in gold, and the Centauri pointers in magenta.
func DefaultHighlights() Highlights {
	return Highlights{
		Constellations: map[string]Highlight{
			"Ori": highlightRed,
			"Sco": highlightRed,
			"Cru": highlightGold,
		},
		Stars: map[string]Highlight{
			"hr-5267": highlightMagenta,
			"hr-5459": highlightMagenta,
			"hr-5460": highlightMagenta,
		},
	}
}

// Lookup returns the accent for a star, if any.
func (h Highlights) Lookup(s catalog.Star) (Highlight, bool) {
	if hl, ok := h.Stars[s.ID]; ok {
		return hl, true
	}
	if s.Constellation != "" {
		if hl, ok := h.Constellations[s.Constellation]; ok {
			return hl, true
		}
	}
	return Highlight{}, false
}

// HighlightsFromHex builds a highlight table from "#rrggbb" color strings.
func HighlightsFromHex(constellations, stars map[string]string) (Highlights, error) {
	h := Highlights{
		Constellations: make(map[string]Highlight, len(constellations)),
		Stars:          make(map[string]Highlight, len(stars)),
	}
	for k, v := range constellations {
		hl, err := HighlightFromHex(v)
		if err != nil {
			return Highlights{}, fmt.Errorf("constellation %s: %w", k, err)
		}
		h.Constellations[k] = hl
	}
	for k, v := range stars {
		hl, err := HighlightFromHex(v)
		if err != nil {
			return Highlights{}, fmt.Errorf("star %s: %w", k, err)
		}
		h.Stars[k] = hl
	}
	return h, nil
}

// HighlightFromHex parses "#rrggbb" (or "rrggbb") into a highlight with the
// standard core and glow opacities.
func HighlightFromHex(s string) (Highlight, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Highlight{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Highlight{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := uint8(v>>16), uint8(v>>8), uint8(v)
	return Highlight{
		Color: color.NRGBA{r, g, b, 230},
		Glow:  color.NRGBA{r, g, b, 51},
	}, nil
}

// Hex returns the core color as "#rrggbb".
func (h Highlight) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", h.Color.R, h.Color.G, h.Color.B)
}

// Segment is a line whose endpoints are both visible.
type Segment struct {
	From, To catalog.Star
}

// FrameStar is a visible star with its draw attributes.
type FrameStar struct {
	catalog.Star
	Radius    float64
	Highlight *Highlight
}

// Frame is everything a renderer needs for one draw, resolved from a
// snapshot. Lines with a hidden endpoint are skipped, not removed.
type Frame struct {
	Stars    []FrameStar
	Segments []Segment
	Selected *FrameStar
	Hovered  *catalog.Star
	Status   string
	Skipped  int
}

// BuildFrame resolves a snapshot into a frame. Stars keep the store's
// brightest-first order so fainter stars are drawn on top.
func BuildFrame(snap state.Snapshot, highlights Highlights) Frame {
	f := Frame{
		Stars:  make([]FrameStar, 0, len(snap.VisibleStars)),
		Status: snap.Status,
	}

	byID := make(map[string]catalog.Star, len(snap.VisibleStars))
	for _, s := range snap.VisibleStars {
		// first match wins for duplicate identifiers
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = s
		}
		f.Stars = append(f.Stars, newFrameStar(s, highlights))
	}

	for _, l := range snap.Lines {
		from, ok1 := byID[l.From]
		to, ok2 := byID[l.To]
		if !ok1 || !ok2 {
			f.Skipped++
			continue
		}
		f.Segments = append(f.Segments, Segment{From: from, To: to})
	}

	if snap.Selected != nil {
		if _, ok := byID[snap.Selected.ID]; ok {
			fs := newFrameStar(*snap.Selected, highlights)
			f.Selected = &fs
		}
	}
	if snap.Hovered != nil {
		h := *snap.Hovered
		f.Hovered = &h
	}
	return f
}

func newFrameStar(s catalog.Star, highlights Highlights) FrameStar {
	fs := FrameStar{Star: s, Radius: sky.Radius(s.Mag)}
	if hl, ok := highlights.Lookup(s); ok {
		fs.Highlight = &hl
	}
	return fs
}

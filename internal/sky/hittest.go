// Package sky maps normalized star positions onto a drawing surface and
// resolves pointer positions back to stars.
package sky

import (
	"math"

	"github.com/litescript/ls-starmap/internal/catalog"
)

const (
	// HitPadding extends every star's radius when hit-testing, in screen units.
	HitPadding = 6.0

	// MinRadius keeps the faintest stars drawable and clickable.
	MinRadius = 1.5
)

// Point is a position on the drawing surface, in screen units.
type Point struct {
	X, Y float64
}

// Viewport is the size of the drawing surface in screen units.
type Viewport struct {
	Width, Height float64
}

// Project maps a star's normalized position onto the viewport.
func (v Viewport) Project(s catalog.Star) Point {
	return Point{X: s.X * v.Width, Y: s.Y * v.Height}
}

// RadiusFunc returns a star's draw radius for its magnitude.
type RadiusFunc func(mag float64) float64

// Radius is the default radius function: brighter stars are larger, floored
// at MinRadius.
func Radius(mag float64) float64 {
	return math.Max(MinRadius, 6-mag)
}

// FindStarAt returns the star under p. Candidates are scanned from last to
// first so the star drawn last wins where stars overlap. A star matches when
// p lies within radius(mag)+HitPadding of its projected center.
func FindStarAt(p Point, candidates []catalog.Star, vp Viewport, radius RadiusFunc) (catalog.Star, bool) {
	if radius == nil {
		radius = Radius
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		star := candidates[i]
		c := vp.Project(star)
		if math.Hypot(p.X-c.X, p.Y-c.Y) <= radius(star.Mag)+HitPadding {
			return star, true
		}
	}
	return catalog.Star{}, false
}

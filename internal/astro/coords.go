// Package astro provides celestial coordinate parsing, formatting, and the
// equatorial-to-screen projection used by the star map.
package astro

import (
	"fmt"
	"math"
)

const (
	hoursPerDay    = 24.0
	decSpanDegrees = 180.0
)

// Project converts equatorial coordinates into normalized screen coordinates.
//
// Right ascension maps linearly left-to-right across the full 24 hours.
// Declination maps linearly with the north celestial pole (+90°) at the top
// (y=0) and the south pole (-90°) at the bottom (y=1). Both outputs are
// clamped to [0, 1], so marginal input never leaves the unit square.
func Project(raHours, decDeg float64) (x, y float64) {
	x = Clamp01(raHours / hoursPerDay)
	y = Clamp01(1 - (decDeg+90)/decSpanDegrees)
	return x, y
}

// Clamp01 limits v to [0, 1]. NaN clamps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FormatRA renders decimal hours as "HHh MMm SS.Ss".
func FormatRA(hours float64) string {
	totalTenths := int(math.Round(hours * 36000))
	h := totalTenths / 36000
	rem := totalTenths % 36000
	m := rem / 600
	s := float64(rem%600) / 10
	return fmt.Sprintf("%02dh %02dm %04.1fs", h, m, s)
}

// FormatDec renders decimal degrees as "+DD° MM′ SS″".
func FormatDec(deg float64) string {
	sign := '+'
	if deg < 0 {
		sign = '-'
		deg = -deg
	}
	totalSec := int(math.Round(deg * 3600))
	d := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	return fmt.Sprintf("%c%02d° %02d′ %02d″", sign, d, m, s)
}

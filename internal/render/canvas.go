package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/sky"
)

const (
	// Braille micro-grid per terminal cell.
	cellDotsX = 2
	cellDotsY = 4

	// Star glyphs by magnitude
	glyphStarBright  = '✶' // mag < 1.5
	glyphStarMedium  = '✸' // mag 1.5-3.0
	glyphStarDim     = '•' // mag 3.0-4.0
	glyphStarVeryDim = '·' // mag > 4.0
	glyphSelected    = '◉'
	glyphCursor      = '┼'

	// Star colors
	colorStarBright  = "255"
	colorStarMedium  = "250"
	colorStarDim     = "244"
	colorStarVeryDim = "240"

	colorLine     = "#7bd8ff"
	colorSelected = "#f4bfff"
	colorLabel    = "229"
	colorCursor   = "135"
	colorEmpty    = "236"
)

// Canvas renders frames onto a grid of terminal cells. Lines are drawn on a
// braille micro-grid of 2x4 dots per cell; the surface's screen units are
// those dots, so hit-testing works at sub-cell precision.
type Canvas struct {
	Width  int // cells
	Height int // cells

	// Color enables lipgloss styling; off yields plain text.
	Color bool

	// Cursor, when ShowCursor is set, marks the cell at CursorX/CursorY.
	ShowCursor bool
	CursorX    int
	CursorY    int

	// Labels draws the selection and hover labels next to their stars.
	Labels bool
}

// Viewport is the canvas surface in braille dot units.
func (c Canvas) Viewport() sky.Viewport {
	return sky.Viewport{Width: float64(c.Width * cellDotsX), Height: float64(c.Height * cellDotsY)}
}

// CellCenter maps a cell to the dot-unit point at its center.
func CellCenter(cx, cy int) sky.Point {
	return sky.Point{X: float64(cx*cellDotsX + 1), Y: float64(cy*cellDotsY + 2)}
}

// cellOf returns the cell containing a star.
func (c Canvas) cellOf(s catalog.Star) (int, int) {
	mx, my := c.dotOf(s)
	return mx / cellDotsX, my / cellDotsY
}

// dotOf returns the micro-grid dot containing a star, clamped to the surface.
func (c Canvas) dotOf(s catalog.Star) (int, int) {
	p := c.Viewport().Project(s)
	mx := clampInt(int(math.Floor(p.X)), 0, c.Width*cellDotsX-1)
	my := clampInt(int(math.Floor(p.Y)), 0, c.Height*cellDotsY-1)
	return mx, my
}

type cell struct {
	r     rune
	color string
}

// Render draws f and returns the canvas as newline-separated rows.
func (c Canvas) Render(f Frame) string {
	if c.Width <= 0 || c.Height <= 0 {
		return ""
	}

	grid := make([][]cell, c.Height)
	for y := range grid {
		grid[y] = make([]cell, c.Width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' ', color: colorEmpty}
		}
	}

	// Lines first so stars sit on top.
	br := newBrailleBuf(c.Width, c.Height)
	for _, seg := range f.Segments {
		x0, y0 := c.dotOf(seg.From)
		x1, y1 := c.dotOf(seg.To)
		br.drawLine(x0, y0, x1, y1)
	}
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			if mask := br.m[y][x]; mask != 0 {
				grid[y][x] = cell{r: rune(0x2800 + int(mask)), color: colorLine}
			}
		}
	}

	for _, s := range f.Stars {
		x, y := c.cellOf(s.Star)
		r, col := starGlyph(s.Mag)
		if s.Highlight != nil {
			col = s.Highlight.Hex()
		}
		grid[y][x] = cell{r: r, color: col}
	}

	if f.Selected != nil {
		x, y := c.cellOf(f.Selected.Star)
		grid[y][x] = cell{r: glyphSelected, color: colorSelected}
		if c.Labels {
			c.drawLabel(grid, x, y, catalog.SelectionLabel(f.Selected.Star), colorSelected)
		}
	}
	if c.Labels && f.Hovered != nil && (f.Selected == nil || f.Hovered.ID != f.Selected.ID) {
		x, y := c.cellOf(*f.Hovered)
		c.drawLabel(grid, x, y, catalog.SelectionLabel(*f.Hovered), colorLabel)
	}

	if c.ShowCursor && c.CursorY >= 0 && c.CursorY < c.Height && c.CursorX >= 0 && c.CursorX < c.Width {
		cur := &grid[c.CursorY][c.CursorX]
		if cur.r == ' ' || (cur.r >= 0x2800 && cur.r <= 0x28ff) {
			cur.r = glyphCursor
		}
		cur.color = colorCursor
	}

	return c.flush(grid)
}

// drawLabel writes text to the right of (x, y), or to the left when it would
// run off the edge.
func (c Canvas) drawLabel(grid [][]cell, x, y int, text, color string) {
	runes := []rune(text)
	start := x + 2
	if start+len(runes) > c.Width {
		start = x - 1 - len(runes)
	}
	for i, r := range runes {
		cx := start + i
		if cx < 0 || cx >= c.Width || cx == x {
			continue
		}
		grid[y][cx] = cell{r: r, color: color}
	}
}

func (c Canvas) flush(grid [][]cell) string {
	var b strings.Builder
	for y, row := range grid {
		if !c.Color {
			for _, cl := range row {
				b.WriteRune(cl.r)
			}
		} else {
			// batch runs of the same color into one styled span
			start := 0
			for x := 1; x <= len(row); x++ {
				if x < len(row) && row[x].color == row[start].color {
					continue
				}
				var run strings.Builder
				for _, cl := range row[start:x] {
					run.WriteRune(cl.r)
				}
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(row[start].color))
				b.WriteString(style.Render(run.String()))
				start = x
			}
		}
		if y < len(grid)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// starGlyph returns the glyph and color for a star based on its magnitude.
func starGlyph(mag float64) (rune, string) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	case mag < 3.0:
		return glyphStarMedium, colorStarMedium
	case mag < 4.0:
		return glyphStarDim, colorStarDim
	default:
		return glyphStarVeryDim, colorStarVeryDim
	}
}

// brailleBuf is a per-cell 8-bit braille dot mask.
type brailleBuf struct {
	w, h int
	m    [][]uint8
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// brailleBits[column][row] is the Unicode braille dot bit.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (b *brailleBuf) setDot(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/cellDotsX, mx%cellDotsX
	cy, ry := my/cellDotsY, my%cellDotsY
	if cx >= b.w || cy >= b.h {
		return
	}
	b.m[cy][cx] |= brailleBits[rx][ry]
}

// drawLine draws a dot line with Bresenham's algorithm.
func (b *brailleBuf) drawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setDot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

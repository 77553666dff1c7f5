package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	// DefaultExportWidth and DefaultExportHeight are the export surface size
	// in screen units, before the pixel ratio is applied.
	DefaultExportWidth  = 1200
	DefaultExportHeight = 600

	titleBandHeight = 80
	lineWidth       = 2.5
	lineGlowWidth   = 8.0
	selectionGap    = 5.0
	selectionWidth  = 2.0
	glowScale       = 2.4 // gradient extent relative to the star radius
	circleSegments  = 48
)

var (
	colorBackground = color.NRGBA{0, 0, 0, 255}
	colorLineCore   = color.NRGBA{123, 216, 255, 166}
	colorLineGlow   = color.NRGBA{123, 216, 255, 32}
	colorRing       = color.NRGBA{244, 191, 255, 204}
	colorTitleBand  = color.NRGBA{0, 0, 0, 140}
	colorTitleText  = color.NRGBA{233, 237, 245, 255}

	plainStar = Highlight{Color: color.NRGBA{255, 255, 255, 235}, Glow: color.NRGBA{123, 216, 255, 26}}
	plainMid  = color.NRGBA{255, 255, 255, 191}
)

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func titleFont() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// PNGRenderer rasterizes frames to images.
type PNGRenderer struct {
	Width      int
	Height     int
	PixelRatio float64
}

// NewPNGRenderer returns a renderer for a width x height surface. Non-positive
// sizes fall back to the defaults; a non-positive ratio is treated as 1.
func NewPNGRenderer(width, height int, pixelRatio float64) *PNGRenderer {
	if width <= 0 {
		width = DefaultExportWidth
	}
	if height <= 0 {
		height = DefaultExportHeight
	}
	if pixelRatio <= 0 || math.IsNaN(pixelRatio) {
		pixelRatio = 1
	}
	return &PNGRenderer{Width: width, Height: height, PixelRatio: pixelRatio}
}

// Bounds returns the output image bounds in device pixels.
func (r *PNGRenderer) Bounds() image.Rectangle {
	return image.Rect(0, 0,
		int(math.Round(float64(r.Width)*r.PixelRatio)),
		int(math.Round(float64(r.Height)*r.PixelRatio)))
}

// Render draws the frame: black background, lines, stars, the selection ring,
// and, when title is non-empty, a translucent title band along the bottom.
func (r *PNGRenderer) Render(f Frame, title string) (*image.NRGBA, error) {
	b := r.Bounds()
	img := image.NewNRGBA(b)
	draw.Draw(img, b, image.NewUniform(colorBackground), image.Point{}, draw.Src)

	scaleX := float64(r.Width) * r.PixelRatio
	scaleY := float64(r.Height) * r.PixelRatio
	ratio := r.PixelRatio

	if len(f.Stars) > 0 {
		for _, seg := range f.Segments {
			x0, y0 := seg.From.X*scaleX, seg.From.Y*scaleY
			x1, y1 := seg.To.X*scaleX, seg.To.Y*scaleY
			strokeSegment(img, x0, y0, x1, y1, lineGlowWidth*ratio, colorLineGlow)
			strokeSegment(img, x0, y0, x1, y1, lineWidth*ratio, colorLineCore)
		}

		for _, s := range f.Stars {
			cx, cy := s.X*scaleX, s.Y*scaleY
			radius := s.Radius * ratio
			hl, mid := plainStar, plainMid
			if s.Highlight != nil {
				hl, mid = *s.Highlight, s.Highlight.Color
			}
			grad := &radialGradient{
				cx: cx, cy: cy, extent: radius * glowScale,
				stops: [3]color.NRGBA{hl.Color, mid, hl.Glow},
			}
			fillArea(img, circleBounds(cx, cy, radius), grad, func(p pen) {
				p.circle(cx, cy, radius, false)
			})
		}

		if f.Selected != nil {
			cx, cy := f.Selected.X*scaleX, f.Selected.Y*scaleY
			ring := (f.Selected.Radius + selectionGap) * ratio
			half := selectionWidth * ratio / 2
			fillArea(img, circleBounds(cx, cy, ring+half), image.NewUniform(colorRing), func(p pen) {
				p.circle(cx, cy, ring+half, false)
				p.circle(cx, cy, math.Max(0, ring-half), true)
			})
		}
	}

	if title != "" {
		if err := drawTitle(img, title, ratio); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// Encode renders the frame and writes it as PNG.
func (r *PNGRenderer) Encode(w io.Writer, f Frame, title string) error {
	img, err := r.Render(f, title)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WriteFile renders the frame to a PNG file at path.
func (r *PNGRenderer) WriteFile(path string, f Frame, title string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Encode(file, f, title); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// drawTitle darkens a band along the bottom edge and centers title in it.
func drawTitle(img *image.NRGBA, title string, ratio float64) error {
	b := img.Bounds()
	bandH := int(math.Round(titleBandHeight * ratio))
	band := image.Rect(b.Min.X, b.Max.Y-bandH, b.Max.X, b.Max.Y).Intersect(b)
	draw.Draw(img, band, image.NewUniform(colorTitleBand), image.Point{}, draw.Over)

	otf, err := titleFont()
	if err != nil {
		return fmt.Errorf("parse title font: %w", err)
	}
	size := math.Max(18, math.Round(24*ratio))
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("title face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorTitleText),
		Face: face,
	}
	width := d.MeasureString(title)
	metrics := face.Metrics()
	centerY := fixed.I(b.Max.Y) - fixed.I(bandH)/2
	d.Dot = fixed.Point26_6{
		X: fixed.I(b.Dx())/2 - width/2,
		Y: centerY + (metrics.Ascent-metrics.Descent)/2,
	}
	d.DrawString(title)
	return nil
}

// pen adds path segments to a rasterizer whose origin is at (ox, oy) in
// image coordinates.
type pen struct {
	z      *vector.Rasterizer
	ox, oy float64
}

func (p pen) moveTo(x, y float64) { p.z.MoveTo(float32(x-p.ox), float32(y-p.oy)) }
func (p pen) lineTo(x, y float64) { p.z.LineTo(float32(x-p.ox), float32(y-p.oy)) }

// circle adds a closed polygonal circle. reverse winds it the other way,
// which cuts a hole when combined with an enclosing circle.
func (p pen) circle(cx, cy, r float64, reverse bool) {
	if r <= 0 {
		return
	}
	dir := 1.0
	if reverse {
		dir = -1
	}
	p.moveTo(cx+r, cy)
	for i := 1; i < circleSegments; i++ {
		a := dir * 2 * math.Pi * float64(i) / circleSegments
		p.lineTo(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	p.z.ClosePath()
}

// fillArea rasterizes the path built by path and composites src through it
// onto dst. Only area (clipped to dst) is touched.
func fillArea(dst *image.NRGBA, area image.Rectangle, src image.Image, path func(p pen)) {
	area = area.Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	z := vector.NewRasterizer(area.Dx(), area.Dy())
	path(pen{z: z, ox: float64(area.Min.X), oy: float64(area.Min.Y)})
	z.Draw(dst, area, src, area.Min)
}

func circleBounds(cx, cy, r float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(cx-r))-1, int(math.Floor(cy-r))-1,
		int(math.Ceil(cx+r))+1, int(math.Ceil(cy+r))+1)
}

// strokeSegment fills the rectangle of the given width around a segment.
func strokeSegment(dst *image.NRGBA, x0, y0, x1, y1, width float64, c color.NRGBA) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	pad := width/2 + 1
	area := image.Rect(
		int(math.Floor(math.Min(x0, x1)-pad)), int(math.Floor(math.Min(y0, y1)-pad)),
		int(math.Ceil(math.Max(x0, x1)+pad)), int(math.Ceil(math.Max(y0, y1)+pad)))
	fillArea(dst, area, image.NewUniform(c), func(p pen) {
		p.moveTo(x0+nx, y0+ny)
		p.lineTo(x1+nx, y1+ny)
		p.lineTo(x1-nx, y1-ny)
		p.lineTo(x0-nx, y0-ny)
		p.z.ClosePath()
	})
}

// radialGradient is an image whose color fades from stops[0] at the center,
// through stops[1] at 40% of extent, to stops[2] at extent and beyond.
type radialGradient struct {
	cx, cy, extent float64
	stops          [3]color.NRGBA
}

func (g *radialGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *radialGradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g *radialGradient) At(x, y int) color.Color {
	if g.extent <= 0 {
		return g.stops[0]
	}
	t := math.Hypot(float64(x)+0.5-g.cx, float64(y)+0.5-g.cy) / g.extent
	switch {
	case t <= 0:
		return g.stops[0]
	case t < 0.4:
		return lerpNRGBA(g.stops[0], g.stops[1], t/0.4)
	case t < 1:
		return lerpNRGBA(g.stops[1], g.stops[2], (t-0.4)/0.6)
	default:
		return g.stops[2]
	}
}

func lerpNRGBA(a, b color.NRGBA, t float64) color.NRGBA {
	l := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{l(a.R, b.R), l(a.G, b.G), l(a.B, b.B), l(a.A, b.A)}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFilename derives the PNG file name from an optional title: runs of
// whitespace become hyphens and the result is lowercased. Path separators are
// replaced as well. An empty title yields "constellation.png".
func ExportFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "constellation.png"
	}
	name := whitespaceRun.ReplaceAllString(title, "-")
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(name)
	return strings.ToLower(name) + ".png"
}

package export

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/planvec/internal/extractor"
	"github.com/ironsheep/planvec/internal/geometry"
)

// OverlayOptions controls how Overlay draws a result.
type OverlayOptions struct {
	// BorderWidth and SublotWidth are stroke widths in pixels.
	BorderWidth float64
	SublotWidth float64

	// Vertices marks every polygon vertex with a dot.
	Vertices bool

	// GridSpacing draws a coordinate grid every GridSpacing pixels; 0
	// disables the grid.
	GridSpacing int

	// GridColor is a "#rrggbb" hex color for grid lines and labels.
	GridColor string

	// GridLabels writes "x,y" at every grid intersection.
	GridLabels bool
}

// DefaultOverlayOptions returns the options used by the CLI.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		BorderWidth: 4,
		SublotWidth: 2,
		Vertices:    true,
		GridColor:   "#ff0000",
	}
}

// Overlay draws result on top of raster. Borders and sublots get distinct
// colors from Palette, borders first; borders are stroked wider. The raster
// is not modified.
func Overlay(raster image.Image, result *extractor.ExtractionResult, opts OverlayOptions) (*image.NRGBA, error) {
	dc := gg.NewContextForImage(raster)

	if opts.GridSpacing > 0 {
		gridColor, err := colorful.Hex(opts.GridColor)
		if err != nil {
			return nil, fmt.Errorf("invalid grid color %q: %w", opts.GridColor, err)
		}
		drawGrid(dc, opts.GridSpacing, gridColor, opts.GridLabels)
	}

	palette := Palette(len(result.Borders) + len(result.Sublots))
	for i, p := range result.Borders {
		drawPolygon(dc, p, palette[i], opts.BorderWidth, opts.Vertices)
	}
	for i, p := range result.Sublots {
		drawPolygon(dc, p, palette[len(result.Borders)+i], opts.SublotWidth, opts.Vertices)
	}

	return imaging.Clone(dc.Image()), nil
}

// SaveOverlayPNG renders Overlay and writes it to path as PNG.
func SaveOverlayPNG(path string, raster image.Image, result *extractor.ExtractionResult, opts OverlayOptions) error {
	img, err := Overlay(raster, result, opts)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// goldenAngle spaces consecutive hues so that neighbours in the palette are
// far apart on the color wheel.
const goldenAngle = 137.50776405003785

// Palette returns n saturated colors with well separated hues. The sequence
// is deterministic.
func Palette(n int) []colorful.Color {
	out := make([]colorful.Color, n)
	for i := range out {
		hue := math.Mod(float64(i)*goldenAngle, 360)
		out[i] = colorful.Hsv(hue, 0.85, 0.9)
	}
	return out
}

func drawPolygon(dc *gg.Context, p geometry.Polygon, c colorful.Color, width float64, vertices bool) {
	if len(p) < 2 {
		return
	}
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.MoveTo(px(p[0].X), px(p[0].Y))
	for _, pt := range p[1:] {
		dc.LineTo(px(pt.X), px(pt.Y))
	}
	dc.ClosePath()
	dc.Stroke()

	if vertices {
		for _, pt := range p {
			dc.DrawCircle(px(pt.X), px(pt.Y), width)
		}
		dc.Fill()
	}
}

// drawGrid draws the coordinate grid and optional labels.
func drawGrid(dc *gg.Context, spacing int, c colorful.Color, labels bool) {
	w, h := dc.Width(), dc.Height()

	dc.SetRGBA(c.R, c.G, c.B, 0.5)
	dc.SetLineWidth(1)
	for x := spacing; x < w; x += spacing {
		dc.DrawLine(px(x), 0, px(x), float64(h))
	}
	for y := spacing; y < h; y += spacing {
		dc.DrawLine(0, px(y), float64(w), px(y))
	}
	dc.Stroke()

	if !labels {
		return
	}
	for y := spacing; y < h; y += spacing {
		for x := spacing; x < w; x += spacing {
			label := fmt.Sprintf("%d,%d", x, y)
			tw, th := dc.MeasureString(label)
			dc.SetRGBA(0, 0, 0, 0.7)
			dc.DrawRectangle(float64(x+1), float64(y+1), tw+2, th+4)
			dc.Fill()
			dc.SetRGB(1, 1, 1)
			dc.DrawString(label, float64(x+2), float64(y+2)+th)
		}
	}
}

// px centers a stroke on the pixel at integer coordinate v.
func px(v int) float64 {
	return float64(v) + 0.5
}

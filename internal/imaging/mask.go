package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// EdgeMask is a binary single-channel raster. Every pixel is either 0
// (background) or 255 (edge).
type EdgeMask struct {
	Width  int
	Height int

	// Pix holds Width*Height bytes in row-major order.
	Pix []uint8
}

// NewEdgeMask returns an all-background mask.
func NewEdgeMask(width, height int) *EdgeMask {
	return &EdgeMask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// On reports whether (x, y) is an edge pixel. Coordinates outside the mask
// are background.
func (m *EdgeMask) On(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks (x, y) as edge or background.
func (m *EdgeMask) Set(x, y int, on bool) {
	var v uint8
	if on {
		v = 255
	}
	m.Pix[y*m.Width+x] = v
}

// FillRect marks every pixel of r, clipped to the mask, with on.
func (m *EdgeMask) FillRect(r image.Rectangle, on bool) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, on)
		}
	}
}

// Count returns the number of edge pixels.
func (m *EdgeMask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Image returns the mask as a grayscale image sharing no memory with m.
func (m *EdgeMask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(img.Pix, m.Pix)
	return img
}

// MaskFromImage thresholds img at mid-gray: pixels whose luminance is at
// least 128 become edge pixels. It is used to feed pre-computed masks back
// into contour extraction.
func MaskFromImage(img image.Image) *EdgeMask {
	b := img.Bounds()
	m := NewEdgeMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.GrayModel.Convert(img.At(x+b.Min.X, y+b.Min.Y)).(color.Gray)
			if g.Y >= 128 {
				m.Pix[y*m.Width+x] = 255
			}
		}
	}
	return m
}

// EdgeMaskResult contains a rendered edge mask encoded as base64 PNG.
type EdgeMaskResult struct {
	// Width of the mask in pixels (same as the decoded raster).
	Width int `json:"width"`

	// Height of the mask in pixels.
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edge.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the mask encoded as base64 PNG, edges in white.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// WriteMaskPNG encodes m as a grayscale PNG.
func WriteMaskPNG(w io.Writer, m *EdgeMask) error {
	if err := png.Encode(w, m.Image()); err != nil {
		return fmt.Errorf("failed to encode edge mask: %w", err)
	}
	return nil
}

// EncodeMaskPNG renders m for transport in a JSON payload.
func EncodeMaskPNG(m *EdgeMask) (*EdgeMaskResult, error) {
	var buf bytes.Buffer
	if err := WriteMaskPNG(&buf, m); err != nil {
		return nil, err
	}
	return &EdgeMaskResult{
		Width:       m.Width,
		Height:      m.Height,
		EdgePixels:  m.Count(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

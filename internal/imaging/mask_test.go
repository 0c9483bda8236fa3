package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestEdgeMask_Basics(t *testing.T) {
	m := NewEdgeMask(10, 5)
	m.FillRect(image.Rect(8, 3, 20, 20), true)

	if got := m.Count(); got != 4 {
		t.Errorf("Count: got %d, want 4 (rectangle clipped to the mask)", got)
	}
	if !m.On(9, 4) {
		t.Error("expected (9,4) on")
	}
	if m.On(-1, 0) || m.On(10, 4) {
		t.Error("out-of-range pixels must read as background")
	}
}

func TestEncodeMaskPNG(t *testing.T) {
	m := NewEdgeMask(30, 20)
	m.FillRect(image.Rect(5, 5, 10, 10), true)

	result, err := EncodeMaskPNG(m)
	if err != nil {
		t.Fatalf("EncodeMaskPNG failed: %v", err)
	}

	if result.Width != 30 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if result.EdgePixels != 25 {
		t.Errorf("EdgePixels: got %d, want 25", result.EdgePixels)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	back := MaskFromImage(img)
	if back.Count() != 25 || !back.On(7, 7) {
		t.Errorf("round trip: got %d edge pixels", back.Count())
	}
}

func TestMaskFromImage_Threshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(0, 0, color.Gray{127})
	img.SetGray(1, 0, color.Gray{128})
	img.SetGray(2, 0, color.Gray{255})

	m := MaskFromImage(img)
	if m.On(0, 0) || !m.On(1, 0) || !m.On(2, 0) {
		t.Errorf("threshold at 128: got %v", m.Pix)
	}
}

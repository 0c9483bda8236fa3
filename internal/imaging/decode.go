package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// SourceKind selects the decoding path for an input payload.
type SourceKind int

const (
	// KindRaster is a single raster image (PNG, JPEG, GIF, BMP, TIFF, WebP).
	KindRaster SourceKind = iota

	// KindDocument is a PDF document; only its first page is used.
	KindDocument
)

func (k SourceKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	default:
		return "raster"
	}
}

// KindFromName chooses the decoding path from a filename hint. Only the
// extension is consulted: ".pdf" in any case selects KindDocument.
func KindFromName(name string) SourceKind {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return KindDocument
	}
	return KindRaster
}

var pdfMagic = []byte("%PDF-")

// Sentinel causes wrapped by DecodeError.
var (
	ErrEmptyInput            = errors.New("empty input")
	ErrNoPages               = errors.New("document has no pages")
	ErrRasterizerUnavailable = errors.New("no document rasterizer available")
)

// DecodeError reports input that could not be turned into a raster. It is
// fatal to the extraction that produced it and is never retried.
type DecodeError struct {
	// Kind is the decoding path that was attempted.
	Kind SourceKind

	// Err is the underlying cause.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder turns input bytes into a single opaque raster.
//
// The zero value decodes raster images and rasterizes documents at DefaultDPI
// with the poppler rasterizer.
type Decoder struct {
	// DPI is the document rasterization resolution. Zero means DefaultDPI.
	DPI int

	// Rasterizer renders the first page of a document. Nil means
	// PopplerRasterizer.
	Rasterizer Rasterizer
}

// DefaultDPI is the resolution at which document pages are rasterized.
const DefaultDPI = 600

// Decode converts data into an *image.NRGBA with every pixel fully opaque.
//
// Parameters:
//   - ctx: Cancels document rasterization.
//   - data: The raw payload.
//   - kind: The decoding path chosen from the filename hint. A payload that
//     starts with the PDF magic bytes always takes the document path.
//
// Returns:
//   - *image.NRGBA: The decoded raster, flattened onto white so that any
//     transparency or palette is normalized to plain RGB.
//   - error: A *DecodeError for empty, unreadable, unsupported or page-less
//     input.
func (d *Decoder) Decode(ctx context.Context, data []byte, kind SourceKind) (*image.NRGBA, error) {
	if bytes.HasPrefix(data, pdfMagic) {
		kind = KindDocument
	}
	if len(data) == 0 {
		return nil, &DecodeError{Kind: kind, Err: ErrEmptyInput}
	}

	var (
		img image.Image
		err error
	)
	switch kind {
	case KindDocument:
		img, err = d.decodeDocument(ctx, data)
	default:
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, &DecodeError{Kind: kind, Err: err}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &DecodeError{Kind: kind, Err: fmt.Errorf("image has zero size %dx%d", b.Dx(), b.Dy())}
	}
	return Flatten(img), nil
}

func (d *Decoder) decodeDocument(ctx context.Context, data []byte) (image.Image, error) {
	pages, err := PageCount(data)
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		return nil, ErrNoPages
	}

	dpi := d.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	r := d.Rasterizer
	if r == nil {
		r = PopplerRasterizer{}
	}
	return r.RasterizeFirstPage(ctx, data, dpi)
}

// Flatten composites img over an opaque white canvas of the same size and
// returns it as NRGBA with its origin at (0,0).
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

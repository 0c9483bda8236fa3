package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PageCount validates a PDF document and returns its number of pages.
func PageCount(data []byte) (int, error) {
	// pdfcpu otherwise creates a configuration directory under the user's
	// home on first use.
	disableConfigDir.Do(api.DisableConfigDir)

	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("read document: %w", err)
	}
	return n, nil
}

// Rasterizer renders the first page of a PDF document.
type Rasterizer interface {
	RasterizeFirstPage(ctx context.Context, pdf []byte, dpi int) (image.Image, error)
}

// PopplerRasterizer renders pages with poppler's pdftoppm binary.
type PopplerRasterizer struct {
	// Binary is the pdftoppm executable. Empty means "pdftoppm" on PATH.
	Binary string
}

// RasterizeFirstPage writes the document to a temporary directory, runs
//
//	pdftoppm -png -f 1 -l 1 -r <dpi> -singlefile in.pdf page
//
// and decodes the resulting PNG. ErrRasterizerUnavailable is returned when
// the binary cannot be found.
func (p PopplerRasterizer) RasterizeFirstPage(ctx context.Context, pdf []byte, dpi int) (image.Image, error) {
	bin := p.Binary
	if bin == "" {
		bin = "pdftoppm"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterizerUnavailable, err)
	}

	dir, err := os.MkdirTemp("", "planvec-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write temp document: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path,
		"-png", "-f", "1", "-l", "1",
		"-r", strconv.Itoa(dpi),
		"-singlefile", in, prefix)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	img, err := imaging.Open(prefix + ".png")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("pdftoppm produced no output")
		}
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}

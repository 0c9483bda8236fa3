package extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/planvec/internal/config"
	"github.com/ironsheep/planvec/internal/detection"
	"github.com/ironsheep/planvec/internal/geometry"
	"github.com/ironsheep/planvec/internal/imaging"
	"github.com/ironsheep/planvec/internal/vectorize"
)

// ErrInputTooLarge is returned when a payload exceeds the configured
// max_input_bytes.
var ErrInputTooLarge = errors.New("input exceeds size limit")

// Extractor runs the plan vectorization pipeline with a fixed configuration.
// It holds no per-run state and is safe for concurrent use.
type Extractor struct {
	cfg     config.Config
	hooks   Hooks
	decoder *imaging.Decoder
	region  image.Rectangle

	// regionSpec is resolved against the decoded raster size.
	regionSpec string
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithHooks routes pipeline events to h.
func WithHooks(h Hooks) Option {
	return func(e *Extractor) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithDecoder replaces the default decoder, for example to plug in a
// different document rasterizer.
func WithDecoder(d *imaging.Decoder) Option {
	return func(e *Extractor) {
		if d != nil {
			e.decoder = d
		}
	}
}

// WithRegion restricts extraction to r, in raster pixel coordinates. Result
// coordinates stay in the full raster's frame. An empty rectangle means the
// whole raster.
func WithRegion(r image.Rectangle) Option {
	return func(e *Extractor) {
		e.region = r
	}
}

// WithRegionSpec restricts extraction to a region given by name ("top-left",
// "center", "full", ...) or as "x1,y1,x2,y2". The spec is resolved once the
// raster size is known and takes precedence over WithRegion. An empty spec is
// ignored.
func WithRegionSpec(spec string) Option {
	return func(e *Extractor) {
		e.regionSpec = spec
	}
}

// New returns an Extractor for cfg. The configuration is used as given; run
// cfg.Validate first when it comes from outside the process.
func New(cfg config.Config, opts ...Option) *Extractor {
	e := &Extractor{
		cfg:     cfg,
		hooks:   NoopHooks{},
		decoder: &imaging.Decoder{DPI: cfg.DPI},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the configuration the extractor runs with.
func (e *Extractor) Config() config.Config {
	return e.cfg
}

// Extract decodes data and returns its vector representation.
//
// Parameters:
//   - ctx: Cancels the run between stages and during document rasterization.
//   - data: Raster image or PDF bytes.
//   - name: Filename hint; a ".pdf" suffix selects the document decoder.
//
// Returns:
//   - *ExtractionResult: Empty lists, not an error, when no shapes are found.
//   - error: *imaging.DecodeError for unusable input, ErrInputTooLarge, or a
//     context or region error. No partial result is returned.
func (e *Extractor) Extract(ctx context.Context, data []byte, name string) (*ExtractionResult, error) {
	runID := uuid.NewString()

	raster, mask, offset, err := e.edgeMask(ctx, runID, data, name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := e.extractMask(ctx, runID, mask, offset)
	res.Width, res.Height = raster.Dx(), raster.Dy()
	return res, nil
}

// EdgeMask runs only the decode and preprocessing stages and returns the
// binary edge mask the contour tracer would see. With a region set, the mask
// covers the region only.
func (e *Extractor) EdgeMask(ctx context.Context, data []byte, name string) (*imaging.EdgeMask, error) {
	_, mask, _, err := e.edgeMask(ctx, uuid.NewString(), data, name)
	return mask, err
}

// ExtractMask runs contour tracing through simplification on an existing
// edge mask. The region option does not apply; coordinates are in the
// mask's frame.
func (e *Extractor) ExtractMask(ctx context.Context, mask *imaging.EdgeMask) *ExtractionResult {
	return e.extractMask(ctx, uuid.NewString(), mask, image.Point{})
}

// Raster runs only the decode stage. The result is the full raster even when
// a region is set.
func (e *Extractor) Raster(ctx context.Context, data []byte, name string) (*image.NRGBA, error) {
	return e.decode(ctx, uuid.NewString(), data, name)
}

func (e *Extractor) decode(ctx context.Context, runID string, data []byte, name string) (*image.NRGBA, error) {
	if limit := e.cfg.MaxInputBytes; limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(data), limit)
	}

	start := time.Now()
	img, err := e.decoder.Decode(ctx, data, imaging.KindFromName(name))
	if err != nil {
		return nil, err
	}
	e.hooks.OnStage(ctx, StageEvent{RunID: runID, Stage: StageDecode, Duration: time.Since(start), Items: 1})
	return img, nil
}

// regionFor returns the rectangle to extract from a raster of the given
// size, or an empty rectangle for the whole raster.
func (e *Extractor) regionFor(bounds image.Rectangle) (image.Rectangle, error) {
	if e.regionSpec != "" {
		return imaging.ParseRegion(bounds.Dx(), bounds.Dy(), e.regionSpec)
	}
	return e.region, nil
}

func (e *Extractor) edgeMask(ctx context.Context, runID string, data []byte, name string) (image.Rectangle, *imaging.EdgeMask, image.Point, error) {
	img, err := e.decode(ctx, runID, data, name)
	if err != nil {
		return image.Rectangle{}, nil, image.Point{}, err
	}
	bounds := img.Bounds()

	region, err := e.regionFor(bounds)
	if err != nil {
		return image.Rectangle{}, nil, image.Point{}, fmt.Errorf("region: %w", err)
	}
	src := img
	var offset image.Point
	if !region.Empty() {
		src, err = imaging.CropRegion(img, region)
		if err != nil {
			return image.Rectangle{}, nil, image.Point{}, fmt.Errorf("region: %w", err)
		}
		offset = region.Min
	}
	if err := ctx.Err(); err != nil {
		return image.Rectangle{}, nil, image.Point{}, err
	}

	start := time.Now()
	mask := imaging.Preprocess(src, imaging.PreprocessOptions{
		Blur:        e.cfg.Blur,
		CannyLow:    e.cfg.CannyLow,
		CannyHigh:   e.cfg.CannyHigh,
		MorphKernel: e.cfg.MorphKernel,
		ClipLimit:   e.cfg.CLAHEClipLimit,
		TileGrid:    e.cfg.CLAHETileGrid,
	})
	e.hooks.OnStage(ctx, StageEvent{RunID: runID, Stage: StagePreprocess, Duration: time.Since(start), Items: mask.Count()})

	return bounds, mask, offset, nil
}

func (e *Extractor) extractMask(ctx context.Context, runID string, mask *imaging.EdgeMask, offset image.Point) *ExtractionResult {
	w, h := mask.Width, mask.Height
	stage := func(s Stage, start time.Time, items int) {
		e.hooks.OnStage(ctx, StageEvent{RunID: runID, Stage: s, Duration: time.Since(start), Items: items})
	}

	start := time.Now()
	set := detection.FilterByArea(detection.FindContours(mask), e.cfg.MinContourArea)
	stage(StageContours, start, len(set))

	start = time.Now()
	classified := detection.Classify(set, detection.SublotCriteria{
		MinArea:  e.cfg.MinSublotArea,
		MinAngle: e.cfg.MinAngle,
	})
	stage(StageClassify, start, len(classified.External)+len(classified.Sublots))

	start = time.Now()
	borders := e.unify(ctx, runID, ListBorders, classified.External, w, h, e.cfg.MergeDistancePercent)
	sublots := e.unify(ctx, runID, ListSublots, classified.Sublots, w, h, e.cfg.MergeDistancePercent*config.SublotMergeFactor)
	stage(StageUnify, start, len(borders)+len(sublots))

	start = time.Now()
	borders, mstats := vectorize.MergeEndpoints(borders, w, h, e.cfg.BorderMergePercent)
	e.hooks.OnEndpointsMerged(ctx, runID, mstats)
	for _, s := range mstats.Skipped {
		e.hooks.OnItemSkipped(ctx, runID, StageMerge, s)
	}
	stage(StageMerge, start, len(borders))

	start = time.Now()
	borders = e.simplify(ctx, runID, borders)
	sublots = e.simplify(ctx, runID, sublots)
	stage(StageSimplify, start, len(borders)+len(sublots))

	if offset != (image.Point{}) {
		borders = translateAll(borders, offset)
		sublots = translateAll(sublots, offset)
	}
	return newResult(runID, w, h, borders, sublots)
}

func (e *Extractor) unify(ctx context.Context, runID string, list List, polys []geometry.Polygon, w, h int, pct float64) []geometry.Polygon {
	out, stats := vectorize.Unify(polys, w, h, pct)
	e.hooks.OnClusters(ctx, runID, list, stats)
	for _, d := range stats.Dropped {
		e.hooks.OnContourDropped(ctx, runID, list, d)
	}
	return out
}

func (e *Extractor) simplify(ctx context.Context, runID string, polys []geometry.Polygon) []geometry.Polygon {
	out, skipped := vectorize.SimplifyAll(polys, e.cfg.Epsilon)
	for _, s := range skipped {
		e.hooks.OnItemSkipped(ctx, runID, StageSimplify, s)
	}
	return out
}

func translateAll(polys []geometry.Polygon, d image.Point) []geometry.Polygon {
	out := make([]geometry.Polygon, len(polys))
	for i, p := range polys {
		out[i] = p.Translate(d.X, d.Y)
	}
	return out
}

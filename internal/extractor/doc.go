// Package extractor composes the plan vectorization pipeline.
//
// An Extractor takes raster or PDF bytes through every stage:
//
//	decode -> preprocess -> trace contours -> filter by area -> classify
//	       -> unify points -> merge border endpoints -> simplify
//
// and returns an ExtractionResult holding the outer boundaries
// (bordes_externos) and validated subdivisions (sublotes). Finding no shapes
// is not an error.
//
// # Observability
//
// Each run is tagged with a random run ID. Stage timings, clustering
// statistics, dropped contours and skipped items are reported through the
// Hooks interface; LogHooks writes them with charmbracelet/log, NoopHooks
// discards them.
//
// # Example
//
//	ex := extractor.New(config.Default(), extractor.WithHooks(extractor.NewLogHooks(logger)))
//	res, err := ex.Extract(ctx, data, "plan.pdf")
package extractor

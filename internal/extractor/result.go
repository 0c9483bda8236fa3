package extractor

import (
	"github.com/ironsheep/planvec/internal/geometry"
)

// ExtractionResult is the vector representation of one plan. The JSON field
// names are the wire format consumed by the plan storage service.
//
// Lists are never nil, so they always encode as JSON arrays.
type ExtractionResult struct {
	// Vectors is Borders followed by Sublots.
	Vectors []geometry.Polygon `json:"vectores"`

	// Borders are the outer plot boundaries.
	Borders []geometry.Polygon `json:"bordes_externos"`

	// Sublots are validated internal subdivisions.
	Sublots []geometry.Polygon `json:"sublotes"`

	TotalVectors int `json:"total_vectores"`
	TotalBorders int `json:"total_bordes_externos"`
	TotalSublots int `json:"total_sublotes"`

	// Width and Height are the size of the decoded raster. Coordinates are
	// in its pixel space even when a region was extracted.
	Width  int `json:"width"`
	Height int `json:"height"`

	// RunID tags the log events of the run that produced this result.
	RunID string `json:"run_id"`
}

func newResult(runID string, width, height int, borders, sublots []geometry.Polygon) *ExtractionResult {
	if borders == nil {
		borders = []geometry.Polygon{}
	}
	if sublots == nil {
		sublots = []geometry.Polygon{}
	}
	vectors := make([]geometry.Polygon, 0, len(borders)+len(sublots))
	vectors = append(vectors, borders...)
	vectors = append(vectors, sublots...)

	return &ExtractionResult{
		Vectors:      vectors,
		Borders:      borders,
		Sublots:      sublots,
		TotalVectors: len(vectors),
		TotalBorders: len(borders),
		TotalSublots: len(sublots),
		Width:        width,
		Height:       height,
		RunID:        runID,
	}
}

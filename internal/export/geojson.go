package export

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ironsheep/planvec/internal/extractor"
	"github.com/ironsheep/planvec/internal/geometry"
)

// Feature kinds written to the "kind" property.
const (
	KindBorder = "borde_externo"
	KindSublot = "sublote"
)

// GeoJSON encodes result as a FeatureCollection with one Polygon feature per
// border and sublot, borders first. Coordinates are raster pixels with y
// growing downward; no geo-referencing is applied.
//
// Each feature carries the properties:
//   - kind: KindBorder or KindSublot
//   - index: position within its list
//   - area: Shoelace area in square pixels
//   - vertices: vertex count before the ring is closed
func GeoJSON(result *extractor.ExtractionResult) ([]byte, error) {
	fc := FeatureCollection(result)
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return data, nil
}

// FeatureCollection builds the collection GeoJSON encodes. The run ID and
// raster size are stored as foreign members.
func FeatureCollection(result *extractor.ExtractionResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	add := func(kind string, polys []geometry.Polygon) {
		for i, p := range polys {
			f := geojson.NewFeature(orb.Polygon{p.Ring()})
			f.Properties["kind"] = kind
			f.Properties["index"] = i
			f.Properties["area"] = geometry.Area(p)
			f.Properties["vertices"] = len(p)
			fc.Append(f)
		}
	}
	add(KindBorder, result.Borders)
	add(KindSublot, result.Sublots)

	fc.ExtraMembers = geojson.Properties{
		"run_id": result.RunID,
		"width":  result.Width,
		"height": result.Height,
	}
	return fc
}

// ParseGeoJSON reads a collection written by GeoJSON back into an
// ExtractionResult. Features of unknown kind or non-polygon geometry are
// rejected.
func ParseGeoJSON(data []byte) (*extractor.ExtractionResult, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON: %w", err)
	}

	res := &extractor.ExtractionResult{
		Borders: []geometry.Polygon{},
		Sublots: []geometry.Polygon{},
	}
	for i, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok || len(poly) == 0 {
			return nil, fmt.Errorf("feature %d: expected a Polygon geometry, got %T", i, f.Geometry)
		}
		p := openRing(poly[0])
		switch kind := f.Properties.MustString("kind", ""); kind {
		case KindBorder:
			res.Borders = append(res.Borders, p)
		case KindSublot:
			res.Sublots = append(res.Sublots, p)
		default:
			return nil, fmt.Errorf("feature %d: unknown kind %q", i, kind)
		}
	}

	res.Vectors = append(append([]geometry.Polygon{}, res.Borders...), res.Sublots...)
	res.TotalBorders = len(res.Borders)
	res.TotalSublots = len(res.Sublots)
	res.TotalVectors = len(res.Vectors)
	if id, ok := fc.ExtraMembers["run_id"].(string); ok {
		res.RunID = id
	}
	res.Width = int(fc.ExtraMembers.MustFloat64("width", 0))
	res.Height = int(fc.ExtraMembers.MustFloat64("height", 0))
	return res, nil
}

// openRing drops the closing vertex GeoJSON rings repeat.
func openRing(r orb.Ring) geometry.Polygon {
	ls := orb.LineString(r)
	if len(ls) > 1 && ls[0] == ls[len(ls)-1] {
		ls = ls[:len(ls)-1]
	}
	return geometry.FromLineString(ls)
}

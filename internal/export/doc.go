// Package export renders extraction results for consumers outside the
// pipeline: GeoJSON feature collections (paulmach/orb) and PNG overlays of
// the polygons on the source raster (fogleman/gg).
package export

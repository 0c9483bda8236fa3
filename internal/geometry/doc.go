// Package geometry holds the integer pixel-space primitives shared by every
// stage of plan extraction: points, polygons, distances, Shoelace area and
// internal-angle computation.
//
// Coordinates follow the imaging convention used throughout the module:
// (0,0) is the top-left pixel, X increases rightward and Y downward.
//
// Conversions to github.com/paulmach/orb types are provided for export and
// interop; the algorithms themselves work on the integer types directly so
// that results are exact and deterministic.
package geometry

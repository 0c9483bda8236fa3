// Package detection traces contours from edge masks and classifies them into
// plot boundaries and sublots.
//
// FindContours follows every border of the mask's foreground and records
// which contour encloses which. FilterByArea removes noise contours while
// keeping the hierarchy consistent, and Classify splits the survivors:
//
//   - External: contours with no parent, the outer plot boundaries
//   - Sublots: nested contours that pass ValidateSublot
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Sublot Validation
//
// A nested polygon is a sublot when it has 3 to 7 vertices, encloses at
// least the configured minimum area, and has no internal angle below the
// configured minimum. Sliver triangles and long staircase chains are the
// typical rejections.
package detection

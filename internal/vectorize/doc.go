// Package vectorize cleans traced contours into compact polylines.
//
// The three stages run in order on each contour list:
//
//  1. Unify merges vertex clusters closer than the merge distance and drops
//     degenerate contours.
//  2. MergeEndpoints stitches open fragments whose ends nearly touch. It is
//     applied to external boundaries only.
//  3. Simplify removes vertices that deviate less than epsilon from the
//     surrounding segment.
//
// Merge distances are fractions of the image diagonal, so results do not
// depend on the scan resolution. All functions are pure: inputs are never
// modified and no state is kept between calls.
package vectorize

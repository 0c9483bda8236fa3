package detection

import (
	"math"

	"github.com/ironsheep/planvec/internal/geometry"
)

// Vertex count bounds for a sublot, inclusive.
const (
	MinSublotVertices = 3
	MaxSublotVertices = 7
)

// SublotCriteria holds the geometric thresholds a nested contour must meet
// to be accepted as a sublot.
type SublotCriteria struct {
	// MinArea is the smallest accepted enclosed area, in square pixels.
	MinArea float64

	// MinAngle is the smallest accepted internal angle, in degrees.
	MinAngle float64
}

// Rejection reasons reported by ValidateSublot.
const (
	ReasonOK          = "ok"
	ReasonVertexCount = "vertex_count"
	ReasonArea        = "area"
	ReasonAngle       = "angle"
)

// SublotValidation is the outcome of checking one polygon.
type SublotValidation struct {
	Valid bool `json:"valid"`

	// Reason is ReasonOK for valid polygons, otherwise the first failed
	// check in the order vertex count, area, angle.
	Reason string `json:"reason"`

	Vertices int     `json:"vertices"`
	Area     float64 `json:"area"`

	// MinAngle is the smallest internal angle in degrees. It is omitted when
	// the vertex count check failed first.
	MinAngle *float64 `json:"min_angle,omitempty"`
}

// ValidateSublot checks poly against the sublot rules:
//   - vertex count within [MinSublotVertices, MaxSublotVertices]
//   - enclosed area >= criteria.MinArea
//   - every internal angle >= criteria.MinAngle
func ValidateSublot(poly geometry.Polygon, criteria SublotCriteria) SublotValidation {
	v := SublotValidation{
		Reason:   ReasonOK,
		Vertices: len(poly),
		Area:     geometry.Area(poly),
	}
	if len(poly) < MinSublotVertices || len(poly) > MaxSublotVertices {
		v.Reason = ReasonVertexCount
		return v
	}

	minAngle := math.Inf(1)
	for _, a := range geometry.InternalAngles(poly) {
		minAngle = math.Min(minAngle, a)
	}
	v.MinAngle = &minAngle

	switch {
	case v.Area < criteria.MinArea:
		v.Reason = ReasonArea
	case minAngle < criteria.MinAngle:
		v.Reason = ReasonAngle
	default:
		v.Valid = true
	}
	return v
}

// IsValidSublot reports whether poly passes every check of ValidateSublot.
func IsValidSublot(poly geometry.Polygon, criteria SublotCriteria) bool {
	return ValidateSublot(poly, criteria).Valid
}

// ClassifiedContours splits a ContourSet into external boundaries and
// accepted sublots. The two lists are disjoint.
type ClassifiedContours struct {
	External []geometry.Polygon
	Sublots  []geometry.Polygon

	// Rejected counts nested contours that failed sublot validation.
	Rejected int
}

// Classify sorts contours by hierarchy. Contours with fewer than 3 points
// are ignored. A contour with no parent is external; a nested contour is a
// sublot candidate and is kept only when it satisfies IsValidSublot.
// Rejected candidates are dropped without error.
func Classify(set ContourSet, criteria SublotCriteria) ClassifiedContours {
	var out ClassifiedContours
	for i, c := range set {
		if len(c.Points) < 3 {
			continue
		}
		if !set.HasParent(i) {
			out.External = append(out.External, c.Points.Clone())
			continue
		}
		if IsValidSublot(c.Points, criteria) {
			out.Sublots = append(out.Sublots, c.Points.Clone())
		} else {
			out.Rejected++
		}
	}
	return out
}

package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Point is an integer pixel coordinate. (0,0) is the top-left corner of the
// raster, X grows rightward and Y grows downward.
//
// Points serialise as a two-element JSON array [x, y], which is the wire
// format consumers of extraction results already store.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("point must be an [x, y] array: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("point must have exactly 2 coordinates, got %d", len(xy))
	}
	p.X = int(math.Round(xy[0]))
	p.Y = int(math.Round(xy[1]))
	return nil
}

// Polygon is an ordered vertex sequence. Depending on context it is read as
// an open polyline (endpoint merging, simplification) or as a closed ring
// (area, angles), where the last vertex connects back to the first.
type Polygon []Point

// Clone returns an independent copy of p.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Reverse returns a reversed copy of p.
func (p Polygon) Reverse() Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// PointSegmentDistance returns the distance from p to the segment a-b.
//
// The projection parameter is clamped to [0, 1], so points beyond either end
// measure their distance to the nearest endpoint rather than to the infinite
// line. A degenerate segment (a == b) measures the distance to a.
func PointSegmentDistance(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px := float64(a.X) + t*dx
	py := float64(a.Y) + t*dy
	return math.Hypot(float64(p.X)-px, float64(p.Y)-py)
}

// PolylineLength returns the summed length of consecutive segments of p,
// without the closing segment.
func PolylineLength(p Polygon) float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// Area returns the enclosed area of p read as a closed ring, using the
// Shoelace formula:
//
//	area = |Σ (x_i·y_{i+1} − x_{i+1}·y_i)| / 2
//
// with indices taken cyclically. Polygons with fewer than 3 vertices have
// zero area. The result is invariant under cyclic rotation and reversal of
// the vertex list.
func Area(p Polygon) float64 {
	if len(p) < 3 {
		return 0
	}
	var sum int64
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += int64(p[i].X)*int64(p[j].Y) - int64(p[j].X)*int64(p[i].Y)
	}
	if sum < 0 {
		sum = -sum
	}
	return float64(sum) / 2
}

// InternalAngles returns the angle in degrees at every vertex of p read as a
// closed ring. The angle at vertex i is measured between the vectors to its
// predecessor and successor:
//
//	cos θ = (v1 · v2) / (|v1| |v2|)
//
// The cosine is clamped to [-1, 1] before the inverse cosine so that
// floating-point drift never leaves the domain of acos. A vertex that
// coincides with a neighbour has no defined angle and is reported as 0.
//
// Returns nil for polygons with fewer than 3 vertices.
func InternalAngles(p Polygon) []float64 {
	n := len(p)
	if n < 3 {
		return nil
	}
	angles := make([]float64, n)
	for i := 0; i < n; i++ {
		prev := p[(i-1+n)%n]
		cur := p[i]
		next := p[(i+1)%n]

		v1x, v1y := float64(prev.X-cur.X), float64(prev.Y-cur.Y)
		v2x, v2y := float64(next.X-cur.X), float64(next.Y-cur.Y)
		norm := math.Hypot(v1x, v1y) * math.Hypot(v2x, v2y)
		if norm == 0 {
			angles[i] = 0
			continue
		}
		cos := (v1x*v2x + v1y*v2y) / norm
		cos = math.Max(-1, math.Min(1, cos))
		angles[i] = math.Acos(cos) * 180 / math.Pi
	}
	return angles
}

// Translate returns a copy of p shifted by (dx, dy).
func (p Polygon) Translate(dx, dy int) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = Point{X: pt.X + dx, Y: pt.Y + dy}
	}
	return out
}

// Ring converts p to a closed orb.Ring. The first vertex is repeated at the
// end when p is not already closed, as GeoJSON requires.
func (p Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(p)+1)
	for _, pt := range p {
		ring = append(ring, orb.Point{float64(pt.X), float64(pt.Y)})
	}
	if len(p) > 0 && p[0] != p[len(p)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// FromLineString converts an orb.LineString back to integer pixel
// coordinates, rounding each ordinate.
func FromLineString(ls orb.LineString) Polygon {
	out := make(Polygon, len(ls))
	for i, pt := range ls {
		out[i] = Point{X: int(math.Round(pt[0])), Y: int(math.Round(pt[1]))}
	}
	return out
}

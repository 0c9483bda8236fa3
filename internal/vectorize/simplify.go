package vectorize

import (
	"fmt"

	"github.com/ironsheep/planvec/internal/geometry"
)

// Simplify reduces points with the Ramer-Douglas-Peucker algorithm.
//
// The vertex farthest from the segment between a span's first and last
// vertex is kept when its distance exceeds epsilon, and the span is split
// there; otherwise the whole span collapses to its two ends. Distances are
// measured to the segment, not the infinite line. Spans are processed from
// an explicit stack, so nearly collinear input cannot exhaust the goroutine
// stack. Among equally distant vertices the first one wins.
//
// Sequences of 2 or fewer points, and any epsilon <= 0, return a copy of the
// input. An infinite epsilon returns just the first and last point.
func Simplify(points geometry.Polygon, epsilon float64) geometry.Polygon {
	n := len(points)
	if n <= 2 || !(epsilon > 0) {
		return points.Clone()
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ first, last int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		index, dmax := s.first, 0.0
		for i := s.first + 1; i < s.last; i++ {
			d := geometry.PointSegmentDistance(points[i], points[s.first], points[s.last])
			if d > dmax {
				index, dmax = i, d
			}
		}
		if dmax > epsilon {
			keep[index] = true
			stack = append(stack, span{index, s.last}, span{s.first, index})
		}
	}

	out := make(geometry.Polygon, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// SimplifyAll simplifies every polyline in list. Results with fewer than 2
// points are dropped. A polyline whose simplification panics is reported in
// the skipped list and left out; the rest are still processed.
func SimplifyAll(list []geometry.Polygon, epsilon float64) ([]geometry.Polygon, []SkippedItem) {
	out := make([]geometry.Polygon, 0, len(list))
	var skipped []SkippedItem
	for i, p := range list {
		s, err := simplifyOne(p, epsilon)
		if err != nil {
			skipped = append(skipped, SkippedItem{Index: i, Err: err})
			continue
		}
		if len(s) >= 2 {
			out = append(out, s)
		}
	}
	return out, skipped
}

func simplifyOne(p geometry.Polygon, epsilon float64) (s geometry.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("simplify: %v", r)
		}
	}()
	return Simplify(p, epsilon), nil
}

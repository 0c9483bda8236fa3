package vectorize

import (
	"fmt"
	"sort"

	"github.com/ironsheep/planvec/internal/geometry"
)

// SkippedItem records an item whose processing failed unexpectedly and was
// left out of the result.
type SkippedItem struct {
	Index int
	Err   error
}

// MergeStats summarizes one MergeEndpoints call.
type MergeStats struct {
	MergeDistance float64

	// Candidates is the number of endpoint pairs within the merge distance.
	Candidates int

	// Merged is the number of pairs that were joined.
	Merged int

	// Skipped lists candidate pairs (by position in distance order) whose
	// join failed.
	Skipped []SkippedItem
}

// endpoint ids: contour c owns 2c (start) and 2c+1 (end).
type endpointPair struct {
	a, b int
	dist float64
}

func endpointContour(e int) int { return e / 2 }

// MergeEndpoints stitches open contours whose endpoints lie within the merge
// distance of each other.
//
// Every pair of endpoints from different contours within the merge distance
// is a candidate. Candidates are processed from the closest pair outward
// (ties in discovery order) and accepted greedily: an endpoint joins at most
// once, and two endpoints that already belong to the same chain are never
// joined. Each accepted pair concatenates the two chains so that the matched
// endpoints become adjacent:
//
//	start-start: reverse(A) + B
//	start-end:   B + A
//	end-start:   A + B
//	end-end:     A + reverse(B)
//
// The merged chain takes the first contour's slot and the second slot is
// removed. The result keeps the surviving slots in order, without chains of
// fewer than 2 vertices. The total vertex count never grows.
func MergeEndpoints(contours []geometry.Polygon, width, height int, percent float64) ([]geometry.Polygon, MergeStats) {
	md := MergeDistance(width, height, percent)
	stats := MergeStats{MergeDistance: md}

	n := len(contours)
	seqs := make([]geometry.Polygon, n)
	for i, c := range contours {
		seqs[i] = c.Clone()
	}

	endpointAt := func(e int) geometry.Point {
		c := contours[endpointContour(e)]
		if e%2 == 0 {
			return c[0]
		}
		return c[len(c)-1]
	}

	var pairs []endpointPair
	for e1 := 0; e1 < 2*n; e1++ {
		if len(contours[endpointContour(e1)]) < 2 {
			continue
		}
		for e2 := e1 + 1; e2 < 2*n; e2++ {
			if endpointContour(e1) == endpointContour(e2) || len(contours[endpointContour(e2)]) < 2 {
				continue
			}
			if d := geometry.Distance(endpointAt(e1), endpointAt(e2)); d <= md {
				pairs = append(pairs, endpointPair{a: e1, b: e2, dist: d})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].dist < pairs[j].dist })
	stats.Candidates = len(pairs)

	// Slots start as one chain per contour. owner is a union-find forest
	// over contours; slotStart and slotEnd hold the endpoint ids currently
	// at each end of a slot's chain.
	owner := make([]int, n)
	slotStart := make([]int, n)
	slotEnd := make([]int, n)
	removed := make([]bool, n)
	for i := range owner {
		owner[i] = i
		slotStart[i] = 2 * i
		slotEnd[i] = 2*i + 1
	}
	find := func(i int) int {
		for owner[i] != i {
			owner[i] = owner[owner[i]]
			i = owner[i]
		}
		return i
	}
	consumed := make([]bool, 2*n)

	for pi, p := range pairs {
		if consumed[p.a] || consumed[p.b] {
			continue
		}
		s1, s2 := find(endpointContour(p.a)), find(endpointContour(p.b))
		if s1 == s2 {
			continue
		}

		merged, start, end, err := joinChains(seqs[s1], seqs[s2], p.a == slotStart[s1], p.b == slotStart[s2],
			slotStart[s1], slotEnd[s1], slotStart[s2], slotEnd[s2])
		if err != nil {
			stats.Skipped = append(stats.Skipped, SkippedItem{Index: pi, Err: err})
			continue
		}

		seqs[s1] = merged
		seqs[s2] = nil
		removed[s2] = true
		owner[s2] = s1
		slotStart[s1], slotEnd[s1] = start, end
		consumed[p.a], consumed[p.b] = true, true
		stats.Merged++
	}

	out := make([]geometry.Polygon, 0, n)
	for i, s := range seqs {
		if removed[i] || len(s) < 2 {
			continue
		}
		out = append(out, s)
	}
	return out, stats
}

// joinChains concatenates a and b according to which of their ends meet and
// returns the endpoint ids now at the start and end of the merged chain. A
// panic while building the chain is returned as an error.
func joinChains(a, b geometry.Polygon, aStart, bStart bool, aFirst, aLast, bFirst, bLast int) (merged geometry.Polygon, start, end int, err error) {
	defer func() {
		if r := recover(); r != nil {
			merged, err = nil, fmt.Errorf("join chains: %v", r)
		}
	}()

	merged = make(geometry.Polygon, 0, len(a)+len(b))
	switch {
	case aStart && bStart:
		merged = append(append(merged, a.Reverse()...), b...)
		start, end = aLast, bLast
	case aStart && !bStart:
		merged = append(append(merged, b...), a...)
		start, end = bFirst, aLast
	case !aStart && bStart:
		merged = append(append(merged, a...), b...)
		start, end = aFirst, bLast
	default:
		merged = append(append(merged, a...), b.Reverse()...)
		start, end = aFirst, bFirst
	}
	return merged, start, end, nil
}

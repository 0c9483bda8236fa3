package vectorize

import (
	"math"

	"github.com/ironsheep/planvec/internal/geometry"
)

// maxUnifyPasses bounds the number of rewrite passes Unify runs while
// looking for a fixed point.
const maxUnifyPasses = 64

// endpointWeight is the centroid weight of a contour's first and last
// vertex; interior vertices weigh 1.
const endpointWeight = 2.0

// MergeDistance converts a fraction of the image diagonal into pixels.
func MergeDistance(width, height int, percent float64) float64 {
	return math.Hypot(float64(width), float64(height)) * percent
}

// DroppedContour records a contour discarded as degenerate.
type DroppedContour struct {
	// Pass is the 1-based unification pass that dropped it.
	Pass int

	// Index is the contour's position in the input of that pass.
	Index int

	// Vertices and Length describe the contour after rewriting.
	Vertices int
	Length   float64
}

// UnifyStats summarizes one Unify call.
type UnifyStats struct {
	MergeDistance float64
	Passes        int

	// Clusters counts multi-vertex clusters over all passes.
	Clusters int

	Dropped []DroppedContour
}

// Unify merges near-duplicate vertices within and across contours.
//
// Parameters:
//   - contours: Polylines in pixel coordinates. Not modified.
//   - width, height: Raster size; the merge distance is percent of its
//     diagonal.
//   - percent: Merge distance as a fraction of the diagonal.
//
// # Algorithm
//
//  1. Every vertex is bucketed into a grid with cells of twice the merge
//     distance.
//  2. Vertices are visited in contour order. Each unclustered vertex seeds a
//     cluster and absorbs every unclustered vertex within the merge distance
//     of it, searching only the 3x3 block of cells around the seed.
//  3. Each multi-vertex cluster collapses to its weighted centroid, where a
//     contour's first and last vertices count double.
//  4. Consecutive vertices closer than half the merge distance collapse.
//  5. Contours left with fewer than 2 vertices or shorter than twice the
//     merge distance are dropped.
//
// The pass repeats until it changes nothing, so Unify applied to its own
// output returns it unchanged. A non-positive merge distance returns a copy
// of the input.
func Unify(contours []geometry.Polygon, width, height int, percent float64) ([]geometry.Polygon, UnifyStats) {
	md := MergeDistance(width, height, percent)
	stats := UnifyStats{MergeDistance: md}

	out := make([]geometry.Polygon, len(contours))
	for i, c := range contours {
		out[i] = c.Clone()
	}
	if !(md > 0) || len(contours) == 0 {
		return out, stats
	}

	for stats.Passes < maxUnifyPasses {
		stats.Passes++
		next, clusters, dropped := unifyPass(out, md)
		stats.Clusters += clusters
		for _, d := range dropped {
			d.Pass = stats.Passes
			stats.Dropped = append(stats.Dropped, d)
		}
		if equalContours(out, next) {
			break
		}
		out = next
	}
	return out, stats
}

type vertexRef struct {
	contour int
	index   int
}

type cellKey struct{ x, y int }

func unifyPass(contours []geometry.Polygon, md float64) ([]geometry.Polygon, int, []DroppedContour) {
	cell := 2 * md
	keyOf := func(p geometry.Point) cellKey {
		return cellKey{
			x: int(math.Floor(float64(p.X) / cell)),
			y: int(math.Floor(float64(p.Y) / cell)),
		}
	}

	var refs []vertexRef
	grid := make(map[cellKey][]int)
	for ci, c := range contours {
		for vi, p := range c {
			grid[keyOf(p)] = append(grid[keyOf(p)], len(refs))
			refs = append(refs, vertexRef{contour: ci, index: vi})
		}
	}
	at := func(r vertexRef) geometry.Point { return contours[r.contour][r.index] }
	weight := func(r vertexRef) float64 {
		if r.index == 0 || r.index == len(contours[r.contour])-1 {
			return endpointWeight
		}
		return 1
	}

	replaced := make(map[vertexRef]geometry.Point)
	merged := make([]bool, len(refs))
	clusters := 0
	for seed := range refs {
		if merged[seed] {
			continue
		}
		merged[seed] = true
		cluster := []int{seed}
		sp := at(refs[seed])
		k := keyOf(sp)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, cand := range grid[cellKey{k.x + dx, k.y + dy}] {
					if merged[cand] {
						continue
					}
					if geometry.Distance(sp, at(refs[cand])) <= md {
						merged[cand] = true
						cluster = append(cluster, cand)
					}
				}
			}
		}
		if len(cluster) < 2 {
			continue
		}
		clusters++

		var wx, wy, total float64
		for _, m := range cluster {
			p, w := at(refs[m]), weight(refs[m])
			wx += float64(p.X) * w
			wy += float64(p.Y) * w
			total += w
		}
		centroid := geometry.Pt(int(math.RoundToEven(wx/total)), int(math.RoundToEven(wy/total)))
		for _, m := range cluster {
			replaced[refs[m]] = centroid
		}
	}

	var out []geometry.Polygon
	var dropped []DroppedContour
	for ci, c := range contours {
		rewritten := make(geometry.Polygon, 0, len(c))
		for vi, p := range c {
			if q, ok := replaced[vertexRef{ci, vi}]; ok {
				p = q
			}
			if n := len(rewritten); n > 0 && geometry.Distance(rewritten[n-1], p) < md*0.5 {
				continue
			}
			rewritten = append(rewritten, p)
		}

		length := geometry.PolylineLength(rewritten)
		if len(rewritten) < 2 || length < 2*md {
			dropped = append(dropped, DroppedContour{Index: ci, Vertices: len(rewritten), Length: length})
			continue
		}
		out = append(out, rewritten)
	}
	return out, clusters, dropped
}

func equalContours(a, b []geometry.Polygon) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

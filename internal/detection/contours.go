package detection

import (
	"math"

	"github.com/ironsheep/planvec/internal/geometry"
	"github.com/ironsheep/planvec/internal/imaging"
)

// NoParent is the parent index of a top-level contour.
const NoParent = -1

// Contour is a closed boundary curve traced from an edge mask.
type Contour struct {
	// Points are the vertices of the compressed boundary chain, in tracing
	// order. The closing segment back to Points[0] is implicit.
	Points geometry.Polygon

	// Parent is the index of the enclosing contour in the same ContourSet,
	// or NoParent.
	Parent int

	// Hole is true when the contour is the inner border of a foreground
	// region rather than its outer border.
	Hole bool

	// Area is the Shoelace area of Points.
	Area float64
}

// ContourSet is an arena of contours whose Parent fields index into the
// same slice.
type ContourSet []Contour

// HasParent reports whether contour i is nested inside another contour.
func (s ContourSet) HasParent(i int) bool {
	return s[i].Parent != NoParent
}

// Parent returns the index of contour i's parent, or NoParent.
func (s ContourSet) Parent(i int) int {
	return s[i].Parent
}

// Neighbour offsets in counterclockwise screen order starting east. Stepping
// the index forward turns counterclockwise, stepping it back turns clockwise.
var neighbours = [8]struct{ dx, dy int }{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

func neighbourIndex(dx, dy int) int {
	for i, n := range neighbours {
		if n.dx == dx && n.dy == dy {
			return i
		}
	}
	return 0
}

// border is the bookkeeping record of one traced border. Border numbers
// start at 2; number 1 is the image frame.
type border struct {
	hole   bool
	parent int
	points []geometry.Point
}

// FindContours traces every border of the 8-connected foreground of mask and
// records the containment tree between them.
//
// # Algorithm
//
// Topological border following (Suzuki and Abe, 1985):
//
//  1. The mask is copied into a label grid padded with a one pixel frame, so
//     every border is closed and the frame acts as the outermost hole.
//  2. A raster scan finds the starting pixel of each unvisited outer border
//     (a foreground pixel with background to its west) and hole border
//     (background to its east). Each border gets a new number.
//  3. The border is followed counterclockwise, labelling its pixels with the
//     border number (negated where the pixel's east neighbour is background)
//     so that it is never started twice.
//  4. The parent of a new border follows from the type of the last border
//     crossed on the scan line: an outer border inside a hole, or a hole
//     inside an outer border, is its direct child; otherwise it is a sibling
//     and shares that border's parent.
//
// Traced chains are then compressed to the pixels where the direction
// changes, and single-pixel diagonal corner cuts are snapped back to the
// corner of the adjoining runs. A hole traced inside an axis-aligned
// rectangle therefore yields 4 vertices, like its outer border.
func FindContours(mask *imaging.EdgeMask) ContourSet {
	w, h := mask.Width+2, mask.Height+2
	f := make([]int32, w*h)
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.On(x, y) {
				f[(y+1)*w+x+1] = 1
			}
		}
	}

	// borders[0] is unused, borders[1] is the frame.
	borders := []border{{}, {hole: true, parent: 0}}
	nbd := int32(1)

	for y := 1; y < h-1; y++ {
		lnbd := int32(1)
		for x := 1; x < w-1; x++ {
			i := y*w + x
			v := f[i]
			if v == 0 {
				continue
			}

			var (
				start bool
				hole  bool
				fromX int
			)
			switch {
			case v == 1 && f[i-1] == 0:
				start, fromX = true, x-1
			case v >= 1 && f[i+1] == 0:
				start, hole, fromX = true, true, x+1
				if v > 1 {
					lnbd = v
				}
			}

			if start {
				nbd++
				prev := borders[lnbd]
				parent := int(lnbd)
				if hole == prev.hole {
					parent = prev.parent
				}
				pts := followBorder(f, w, x, y, fromX, y, nbd)
				borders = append(borders, border{hole: hole, parent: parent, points: pts})
			}

			if v := f[i]; v != 1 {
				if v < 0 {
					v = -v
				}
				lnbd = v
			}
		}
	}

	set := make(ContourSet, 0, len(borders)-2)
	for _, b := range borders[2:] {
		parent := NoParent
		if b.parent >= 2 {
			parent = b.parent - 2
		}
		pts := compressChain(b.points)
		set = append(set, Contour{
			Points: pts,
			Parent: parent,
			Hole:   b.hole,
			Area:   geometry.Area(pts),
		})
	}
	return set
}

// followBorder traces one border starting at (x, y), where (fromX, fromY) is
// the background neighbour that triggered the start. It labels the grid and
// returns the visited pixels in mask coordinates.
func followBorder(f []int32, w, x, y, fromX, fromY int, nbd int32) []geometry.Point {
	at := func(px, py int) int32 { return f[py*w+px] }
	pt := func(px, py int) geometry.Point { return geometry.Pt(px-1, py-1) }

	// Clockwise search from the trigger pixel for the first foreground
	// neighbour.
	d0 := neighbourIndex(fromX-x, fromY-y)
	x1, y1 := -1, -1
	for k := 0; k < 8; k++ {
		n := neighbours[(d0-k+8)%8]
		if at(x+n.dx, y+n.dy) != 0 {
			x1, y1 = x+n.dx, y+n.dy
			break
		}
	}
	if x1 < 0 {
		f[y*w+x] = -nbd
		return []geometry.Point{pt(x, y)}
	}

	points := []geometry.Point{pt(x, y)}
	x2, y2 := x1, y1
	x3, y3 := x, y
	for {
		// Counterclockwise search around (x3, y3), starting just after
		// (x2, y2).
		d := neighbourIndex(x2-x3, y2-y3)
		eastExamined := false
		var x4, y4 int
		for k := 1; k <= 8; k++ {
			dir := (d + k) % 8
			n := neighbours[dir]
			if at(x3+n.dx, y3+n.dy) != 0 {
				x4, y4 = x3+n.dx, y3+n.dy
				break
			}
			if dir == 0 {
				eastExamined = true
			}
		}

		switch {
		case eastExamined:
			f[y3*w+x3] = -nbd
		case at(x3, y3) == 1:
			f[y3*w+x3] = nbd
		}

		if x4 == x && y4 == y && x3 == x1 && y3 == y1 {
			return points
		}
		points = append(points, pt(x4, y4))
		x2, y2 = x3, y3
		x3, y3 = x4, y4
	}
}

// compressChain reduces a closed pixel chain to the pixels at which the
// step direction changes, then snaps diagonal corner cuts.
func compressChain(chain []geometry.Point) geometry.Polygon {
	n := len(chain)
	if n <= 2 {
		return geometry.Polygon(chain).Clone()
	}

	step := func(i int) geometry.Point {
		a, b := chain[i], chain[(i+1)%n]
		return geometry.Pt(b.X-a.X, b.Y-a.Y)
	}

	out := make(geometry.Polygon, 0, 8)
	for i := 0; i < n; i++ {
		if step((i-1+n)%n) != step(i) {
			out = append(out, chain[i])
		}
	}
	if len(out) == 0 {
		// A chain that never turns cannot close; keep its first pixel.
		out = append(out, chain[0])
	}
	return dropCollinear(recoverCorners(out))
}

// cornerSnap is the largest distance a snapped corner may lie from either
// endpoint of the cut it replaces.
const cornerSnap = 1.5

// recoverCorners replaces each single-step edge P->Q that joins two
// non-parallel runs with the intersection of those runs, when that
// intersection lies within cornerSnap of both P and Q.
func recoverCorners(pts geometry.Polygon) geometry.Polygon {
	for i := 0; i < len(pts) && len(pts) >= 5; i++ {
		n := len(pts)
		p, q := pts[i], pts[(i+1)%n]
		if abs(q.X-p.X) > 1 || abs(q.Y-p.Y) > 1 {
			continue
		}
		a, b := pts[(i-1+n)%n], pts[(i+2)%n]
		c, ok := lineIntersection(a, p, q, b)
		if !ok || dist(c, p) > cornerSnap || dist(c, q) > cornerSnap {
			continue
		}

		pts[i] = geometry.Pt(int(math.Round(c[0])), int(math.Round(c[1])))
		j := (i + 1) % n
		pts = append(pts[:j], pts[j+1:]...)
		if j < i {
			i--
		}
	}
	return pts
}

// lineIntersection intersects the infinite line through a1-a2 with the one
// through b1-b2. ok is false for parallel lines.
func lineIntersection(a1, a2, b1, b2 geometry.Point) (pt [2]float64, ok bool) {
	dax, day := float64(a2.X-a1.X), float64(a2.Y-a1.Y)
	dbx, dby := float64(b2.X-b1.X), float64(b2.Y-b1.Y)
	den := dax*dby - day*dbx
	if den == 0 {
		return pt, false
	}
	t := (float64(b1.X-a1.X)*dby - float64(b1.Y-a1.Y)*dbx) / den
	return [2]float64{float64(a1.X) + t*dax, float64(a1.Y) + t*day}, true
}

// dropCollinear removes repeated vertices and vertices lying on a straight
// continuation of their neighbours in a closed polygon.
func dropCollinear(pts geometry.Polygon) geometry.Polygon {
	changed := true
	for changed && len(pts) > 2 {
		changed = false
		for i := 0; i < len(pts) && len(pts) > 2; i++ {
			n := len(pts)
			a, p, b := pts[(i-1+n)%n], pts[i], pts[(i+1)%n]
			ux, uy := p.X-a.X, p.Y-a.Y
			vx, vy := b.X-p.X, b.Y-p.Y
			dup := ux == 0 && uy == 0
			straight := ux*vy-uy*vx == 0 && ux*vx+uy*vy > 0
			if dup || straight {
				pts = append(pts[:i], pts[i+1:]...)
				i--
				changed = true
			}
		}
	}
	return pts
}

func dist(c [2]float64, p geometry.Point) float64 {
	return math.Hypot(c[0]-float64(p.X), c[1]-float64(p.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FilterByArea keeps the contours whose area is strictly greater than
// minArea. Parent indices are rewritten to the nearest surviving ancestor, or
// NoParent when none survives.
func FilterByArea(set ContourSet, minArea float64) ContourSet {
	newIndex := make([]int, len(set))
	out := make(ContourSet, 0, len(set))
	for i, c := range set {
		if c.Area > minArea {
			newIndex[i] = len(out)
			out = append(out, c)
		} else {
			newIndex[i] = NoParent
		}
	}

	k := 0
	for i := range set {
		if newIndex[i] == NoParent {
			continue
		}
		p := set[i].Parent
		for p != NoParent && newIndex[p] == NoParent {
			p = set[p].Parent
		}
		if p != NoParent {
			p = newIndex[p]
		}
		out[k].Parent = p
		k++
	}
	return out
}

package detection

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ironsheep/planvec/internal/geometry"
	"github.com/ironsheep/planvec/internal/imaging"
)

// createFilledMask returns a mask with a filled rectangle and optional
// rectangular holes cut out of it.
func createFilledMask(width, height int, rect image.Rectangle, holes ...image.Rectangle) *imaging.EdgeMask {
	m := imaging.NewEdgeMask(width, height)
	m.FillRect(rect, true)
	for _, h := range holes {
		m.FillRect(h, false)
	}
	return m
}

func TestFindContours_Empty(t *testing.T) {
	set := FindContours(imaging.NewEdgeMask(20, 20))
	if len(set) != 0 {
		t.Errorf("got %d contours, want 0", len(set))
	}
}

func TestFindContours_FilledRectangle(t *testing.T) {
	set := FindContours(createFilledMask(60, 40, image.Rect(10, 5, 50, 35)))
	if len(set) != 1 {
		t.Fatalf("got %d contours, want 1", len(set))
	}

	c := set[0]
	if c.Parent != NoParent || c.Hole {
		t.Errorf("rectangle should be a top-level outer border, got parent=%d hole=%v", c.Parent, c.Hole)
	}
	want := geometry.Polygon{{X: 10, Y: 5}, {X: 10, Y: 34}, {X: 49, Y: 34}, {X: 49, Y: 5}}
	if diff := cmp.Diff(want, c.Points); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if c.Area != 39*29 {
		t.Errorf("Area: got %v, want %v", c.Area, 39*29)
	}
}

func TestFindContours_RectangleWithHole(t *testing.T) {
	mask := createFilledMask(200, 150, image.Rect(20, 20, 180, 130), image.Rect(60, 50, 110, 90))
	set := FindContours(mask)
	if len(set) != 2 {
		t.Fatalf("got %d contours, want 2", len(set))
	}

	outer, hole := set[0], set[1]
	if outer.Hole || outer.Parent != NoParent {
		t.Errorf("outer: hole=%v parent=%d", outer.Hole, outer.Parent)
	}
	if !hole.Hole || hole.Parent != 0 {
		t.Errorf("hole: hole=%v parent=%d, want hole with parent 0", hole.Hole, hole.Parent)
	}

	// The hole border runs through the foreground pixels around the hole,
	// with its diagonal corner cuts snapped back to square corners.
	want := geometry.Polygon{{X: 59, Y: 49}, {X: 110, Y: 49}, {X: 110, Y: 90}, {X: 59, Y: 90}}
	if diff := cmp.Diff(want, hole.Points); diff != "" {
		t.Errorf("hole vertices mismatch (-want +got):\n%s", diff)
	}
	if !set.HasParent(1) || set.Parent(1) != 0 {
		t.Error("hierarchy lookup disagrees with Parent field")
	}
}

func TestFindContours_NestedIsland(t *testing.T) {
	// Outer square, hole, and a filled island inside the hole.
	mask := createFilledMask(100, 100, image.Rect(5, 5, 95, 95), image.Rect(20, 20, 80, 80))
	mask.FillRect(image.Rect(40, 40, 60, 60), true)

	set := FindContours(mask)
	if len(set) != 3 {
		t.Fatalf("got %d contours, want 3", len(set))
	}

	var island = -1
	for i, c := range set {
		if !c.Hole && c.Parent != NoParent {
			island = i
		}
	}
	if island < 0 {
		t.Fatal("island contour not found")
	}
	parent := set.Parent(island)
	if !set[parent].Hole {
		t.Error("island should be a child of the hole")
	}
	if set.Parent(parent) != 0 {
		t.Errorf("hole parent: got %d, want 0", set.Parent(parent))
	}
}

func TestFindContours_SinglePixelAndTouchingEdges(t *testing.T) {
	m := imaging.NewEdgeMask(10, 10)
	m.Set(0, 0, true)
	m.FillRect(image.Rect(5, 5, 10, 10), true)

	set := FindContours(m)
	if len(set) != 2 {
		t.Fatalf("got %d contours, want 2", len(set))
	}
	if len(set[0].Points) != 1 || set[0].Points[0] != geometry.Pt(0, 0) {
		t.Errorf("single pixel contour: got %v", set[0].Points)
	}
	if len(set[1].Points) != 4 {
		t.Errorf("corner rectangle: got %d vertices, want 4", len(set[1].Points))
	}
}

func TestFilterByArea(t *testing.T) {
	set := ContourSet{
		{Points: geometry.Polygon{{X: 0, Y: 0}}, Parent: NoParent, Area: 5000},
		{Parent: 0, Area: 10, Hole: true},
		{Parent: 1, Area: 2000},
		{Parent: NoParent, Area: 1000},
	}

	got := FilterByArea(set, 1000)
	if len(got) != 2 {
		t.Fatalf("got %d contours, want 2", len(got))
	}
	if got[0].Parent != NoParent {
		t.Errorf("first: parent %d, want none", got[0].Parent)
	}
	if got[1].Parent != 0 {
		t.Errorf("re-parented: got %d, want 0 (grandparent)", got[1].Parent)
	}
	if set[2].Parent != 1 {
		t.Error("FilterByArea must not modify its input")
	}
}

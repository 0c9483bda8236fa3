package geometry

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
)

func TestArea(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want float64
	}{
		{"empty", nil, 0},
		{"two points", Polygon{{0, 0}, {10, 0}}, 0},
		{"unit square", Polygon{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 1},
		{"rectangle", Polygon{{10, 10}, {110, 10}, {110, 60}, {10, 60}}, 5000},
		{"triangle", Polygon{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"collinear", Polygon{{0, 0}, {5, 5}, {10, 10}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Area(tt.poly); got != tt.want {
				t.Errorf("Area: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArea_RotationAndReversalInvariant(t *testing.T) {
	poly := Polygon{{3, 1}, {9, 2}, {11, 8}, {6, 12}, {1, 7}}
	want := Area(poly)

	for shift := 0; shift < len(poly); shift++ {
		rotated := append(poly[shift:].Clone(), poly[:shift]...)
		if got := Area(rotated); got != want {
			t.Errorf("rotation %d: got %v, want %v", shift, got, want)
		}
		if got := Area(rotated.Reverse()); got != want {
			t.Errorf("reversed rotation %d: got %v, want %v", shift, got, want)
		}
	}
}

func TestPointSegmentDistance(t *testing.T) {
	tests := []struct {
		name    string
		p, a, b Point
		want    float64
	}{
		{"on segment", Pt(5, 0), Pt(0, 0), Pt(10, 0), 0},
		{"perpendicular", Pt(5, 3), Pt(0, 0), Pt(10, 0), 3},
		{"beyond end clamps", Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{"before start clamps", Pt(-3, 4), Pt(0, 0), Pt(10, 0), 5},
		{"degenerate segment", Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointSegmentDistance(tt.p, tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInternalAngles(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	for i, a := range InternalAngles(square) {
		if math.Abs(a-90) > 1e-9 {
			t.Errorf("square angle %d: got %v, want 90", i, a)
		}
	}

	triangle := Polygon{{0, 0}, {100, 0}, {50, 5}}
	angles := InternalAngles(triangle)
	if len(angles) != 3 {
		t.Fatalf("got %d angles, want 3", len(angles))
	}
	if angles[0] > 10 || angles[1] > 10 {
		t.Errorf("flat triangle base angles should be small, got %v", angles)
	}

	if InternalAngles(Polygon{{0, 0}, {1, 1}}) != nil {
		t.Error("fewer than 3 vertices should have no angles")
	}

	withDuplicate := Polygon{{0, 0}, {0, 0}, {10, 0}, {10, 10}}
	if got := InternalAngles(withDuplicate)[0]; got != 0 {
		t.Errorf("coincident vertex angle: got %v, want 0", got)
	}
}

func TestInternalAngles_StraightAngleStaysInDomain(t *testing.T) {
	// Collinear neighbours give a cosine of exactly -1, which must not
	// produce NaN.
	angles := InternalAngles(Polygon{{0, 0}, {5, 0}, {10, 0}, {5, 5}})
	for i, a := range angles {
		if math.IsNaN(a) {
			t.Errorf("angle %d is NaN", i)
		}
	}
	if math.Abs(angles[1]-180) > 1e-9 {
		t.Errorf("straight angle: got %v, want 180", angles[1])
	}
}

func TestPolylineLength(t *testing.T) {
	p := Polygon{{0, 0}, {3, 4}, {3, 10}}
	if got := PolylineLength(p); got != 11 {
		t.Errorf("got %v, want 11", got)
	}
	if got := PolylineLength(Polygon{{1, 1}}); got != 0 {
		t.Errorf("single point: got %v, want 0", got)
	}
}

func TestPointJSON(t *testing.T) {
	poly := Polygon{{1, 2}, {30, 40}}
	data, err := json.Marshal(poly)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[[1,2],[30,40]]" {
		t.Errorf("got %s, want [[1,2],[30,40]]", data)
	}

	var decoded Polygon
	if err := json.Unmarshal([]byte(`[[5, 6], [7.4, 8.6]]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(Polygon{{5, 6}, {7, 9}}, decoded); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}

	var bad Point
	if err := json.Unmarshal([]byte(`[1, 2, 3]`), &bad); err == nil {
		t.Error("expected error for 3-element point")
	}
}

func TestRingClosesPolygon(t *testing.T) {
	ring := Polygon{{0, 0}, {4, 0}, {4, 4}}.Ring()
	if len(ring) != 4 {
		t.Fatalf("ring length: got %d, want 4", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("ring should be closed")
	}

	back := FromLineString(orb.LineString{{2.4, 3}, {3.6, 4.5}})
	if diff := cmp.Diff(Polygon{{2, 3}, {4, 5}}, back); diff != "" {
		t.Errorf("rounded line string (-want +got):\n%s", diff)
	}
}

func TestTranslate(t *testing.T) {
	got := Polygon{{1, 1}, {2, 3}}.Translate(10, -1)
	if diff := cmp.Diff(Polygon{{11, 0}, {12, 2}}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

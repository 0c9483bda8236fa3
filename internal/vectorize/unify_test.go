package vectorize

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ironsheep/planvec/internal/geometry"
)

// A 300x400 raster has a 500 pixel diagonal, so 0.01 gives a merge distance
// of 5 pixels.
const (
	testWidth   = 300
	testHeight  = 400
	testPercent = 0.01
)

func TestMergeDistance(t *testing.T) {
	if got := MergeDistance(testWidth, testHeight, testPercent); got != 5 {
		t.Errorf("got %v, want 5", got)
	}
}

func TestUnify(t *testing.T) {
	tests := []struct {
		name string
		in   []geometry.Polygon
		want []geometry.Polygon
	}{
		{
			name: "nearby endpoints snap to a shared centroid",
			in: []geometry.Polygon{
				{{X: 0, Y: 0}, {X: 100, Y: 0}},
				{{X: 102, Y: 1}, {X: 200, Y: 0}},
			},
			want: []geometry.Polygon{
				{{X: 0, Y: 0}, {X: 101, Y: 0}},
				{{X: 101, Y: 0}, {X: 200, Y: 0}},
			},
		},
		{
			name: "staircase vertices collapse",
			in: []geometry.Polygon{
				{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}, {X: 50, Y: 0}, {X: 100, Y: 0}},
			},
			want: []geometry.Polygon{
				{{X: 1, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}},
			},
		},
		{
			name: "far apart vertices unchanged",
			in: []geometry.Polygon{
				{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}},
			},
			want: []geometry.Polygon{
				{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}},
			},
		},
		{
			name: "short contour dropped",
			in: []geometry.Polygon{
				{{X: 10, Y: 10}, {X: 13, Y: 10}},
				{{X: 0, Y: 200}, {X: 0, Y: 250}},
			},
			want: []geometry.Polygon{
				{{X: 0, Y: 200}, {X: 0, Y: 250}},
			},
		},
		{
			name: "empty",
			in:   nil,
			want: []geometry.Polygon{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Unify(tt.in, testWidth, testHeight, testPercent)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Unify mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnify_EndpointsWeighDouble(t *testing.T) {
	// Endpoint at x=0 (weight 2) and interior vertex at x=3 (weight 1):
	// centroid x = (0*2 + 3*1) / 3 = 1.
	in := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 60, Y: 0}},
		{{X: 100, Y: 100}, {X: 3, Y: 0}, {X: 100, Y: 0}},
	}
	got, stats := Unify(in, testWidth, testHeight, testPercent)
	if got[0][0] != geometry.Pt(1, 0) {
		t.Errorf("centroid: got %v, want (1,0)", got[0][0])
	}
	if got[1][1] != geometry.Pt(1, 0) {
		t.Errorf("interior vertex should move to the centroid, got %v", got[1][1])
	}
	if stats.Clusters == 0 {
		t.Error("expected at least one cluster")
	}
}

func TestUnify_Stats(t *testing.T) {
	in := []geometry.Polygon{
		{{X: 10, Y: 10}, {X: 13, Y: 10}},
		{{X: 0, Y: 200}, {X: 0, Y: 250}},
	}
	_, stats := Unify(in, testWidth, testHeight, testPercent)
	if stats.MergeDistance != 5 {
		t.Errorf("MergeDistance: got %v, want 5", stats.MergeDistance)
	}
	if len(stats.Dropped) != 1 || stats.Dropped[0].Index != 0 || stats.Dropped[0].Pass != 1 {
		t.Errorf("Dropped: got %+v", stats.Dropped)
	}
	if stats.Passes < 1 {
		t.Errorf("Passes: got %d", stats.Passes)
	}
}

func TestUnify_NonPositiveDistanceCopies(t *testing.T) {
	in := []geometry.Polygon{{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}}}
	got, stats := Unify(in, testWidth, testHeight, 0)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if stats.Passes != 0 {
		t.Errorf("Passes: got %d, want 0", stats.Passes)
	}
	got[0][0] = geometry.Pt(9, 9)
	if in[0][0] == geometry.Pt(9, 9) {
		t.Error("result must not share memory with the input")
	}
}

func TestUnify_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var in []geometry.Polygon
	for c := 0; c < 6; c++ {
		var p geometry.Polygon
		for i := 0; i < 40; i++ {
			p = append(p, geometry.Pt(rng.Intn(testWidth), rng.Intn(testHeight)))
		}
		// Jittered near-duplicates of the first few vertices.
		for i := 0; i < 5; i++ {
			p = append(p, geometry.Pt(p[i].X+rng.Intn(5)-2, p[i].Y+rng.Intn(5)-2))
		}
		in = append(in, p)
	}

	once, _ := Unify(in, testWidth, testHeight, testPercent)
	twice, stats := Unify(once, testWidth, testHeight, testPercent)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second Unify changed the result (-once +twice):\n%s", diff)
	}
	if stats.Passes != 1 {
		t.Errorf("a fixed point needs one pass to confirm, got %d", stats.Passes)
	}
}

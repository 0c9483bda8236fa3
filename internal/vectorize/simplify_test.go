package vectorize

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ironsheep/planvec/internal/geometry"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		name    string
		points  geometry.Polygon
		epsilon float64
		want    geometry.Polygon
	}{
		{
			name:    "empty",
			points:  nil,
			epsilon: 1,
			want:    nil,
		},
		{
			name:    "two points",
			points:  geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 10}},
			epsilon: 100,
			want:    geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 10}},
		},
		{
			name:    "collinear collapses",
			points:  geometry.Polygon{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}, {X: 15, Y: 0}},
			epsilon: 0.5,
			want:    geometry.Polygon{{X: 0, Y: 0}, {X: 15, Y: 0}},
		},
		{
			name:    "small wiggle removed",
			points:  geometry.Polygon{{X: 0, Y: 0}, {X: 5, Y: 1}, {X: 10, Y: 0}},
			epsilon: 2,
			want:    geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}},
		},
		{
			name:    "corner kept",
			points:  geometry.Polygon{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 10, Y: 10}},
			epsilon: 1,
			want:    geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
		},
		{
			name:    "rectangle outline",
			points:  geometry.Polygon{{X: 10, Y: 5}, {X: 10, Y: 34}, {X: 49, Y: 34}, {X: 49, Y: 5}},
			epsilon: 2,
			want:    geometry.Polygon{{X: 10, Y: 5}, {X: 10, Y: 34}, {X: 49, Y: 34}, {X: 49, Y: 5}},
		},
		{
			name:    "projection clamped to segment",
			points:  geometry.Polygon{{X: 0, Y: 0}, {X: 20, Y: 1}, {X: 10, Y: 0}},
			epsilon: 5,
			want:    geometry.Polygon{{X: 0, Y: 0}, {X: 20, Y: 1}, {X: 10, Y: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.points, tt.epsilon)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Simplify mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimplify_ZeroEpsilonIsLossless(t *testing.T) {
	inputs := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		{{X: 0, Y: 0}, {X: 3, Y: 7}, {X: 9, Y: 2}, {X: 12, Y: 12}, {X: 4, Y: 8}},
		{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 6, Y: 6}},
	}
	for _, in := range inputs {
		if diff := cmp.Diff(in, Simplify(in, 0)); diff != "" {
			t.Errorf("epsilon 0 changed the input (-want +got):\n%s", diff)
		}
	}
}

func TestSimplify_InfiniteEpsilonKeepsEnds(t *testing.T) {
	in := geometry.Polygon{{X: 0, Y: 0}, {X: 3, Y: 70}, {X: 90, Y: 2}, {X: 12, Y: 120}, {X: 4, Y: 8}}
	got := Simplify(in, math.Inf(1))
	want := geometry.Polygon{{X: 0, Y: 0}, {X: 4, Y: 8}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSimplify_LongNearlyCollinear(t *testing.T) {
	// A long zig-zag exercises deep splitting without recursion.
	in := make(geometry.Polygon, 2000)
	for i := range in {
		in[i] = geometry.Pt(i, (i%2)*3)
	}
	got := Simplify(in, 1)
	if len(got) != len(in) {
		t.Errorf("every zig exceeds epsilon, got %d of %d points", len(got), len(in))
	}
	if got := Simplify(in, 5); len(got) != 2 {
		t.Errorf("epsilon above the zig amplitude: got %d points, want 2", len(got))
	}
}

func TestSimplify_DoesNotModifyInput(t *testing.T) {
	in := geometry.Polygon{{X: 0, Y: 0}, {X: 5, Y: 1}, {X: 10, Y: 0}}
	Simplify(in, 2)
	if in[1] != geometry.Pt(5, 1) || len(in) != 3 {
		t.Error("input was modified")
	}
}

func TestSimplifyAll(t *testing.T) {
	list := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}},
		{{X: 1, Y: 1}},
		{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}},
	}
	got, skipped := SimplifyAll(list, 1)
	if len(skipped) != 0 {
		t.Errorf("unexpected skipped items: %v", skipped)
	}
	want := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

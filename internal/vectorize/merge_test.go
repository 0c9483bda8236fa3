package vectorize

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ironsheep/planvec/internal/geometry"
)

func TestMergeEndpoints_Orientation(t *testing.T) {
	joined := geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 12, Y: 0}, {X: 20, Y: 0}}

	tests := []struct {
		name string
		a, b geometry.Polygon
	}{
		{"end-start", geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}}, geometry.Polygon{{X: 12, Y: 0}, {X: 20, Y: 0}}},
		{"start-start", geometry.Polygon{{X: 10, Y: 0}, {X: 0, Y: 0}}, geometry.Polygon{{X: 12, Y: 0}, {X: 20, Y: 0}}},
		{"start-end", geometry.Polygon{{X: 12, Y: 0}, {X: 20, Y: 0}}, geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		{"end-end", geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}}, geometry.Polygon{{X: 20, Y: 0}, {X: 12, Y: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats := MergeEndpoints([]geometry.Polygon{tt.a, tt.b}, testWidth, testHeight, testPercent)
			if diff := cmp.Diff([]geometry.Polygon{joined}, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if stats.Merged != 1 || stats.Candidates != 1 {
				t.Errorf("stats: got %+v", stats)
			}
		})
	}
}

func TestMergeEndpoints_SameContourNotClosed(t *testing.T) {
	in := []geometry.Polygon{{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}, {X: 1, Y: 1}}}
	got, stats := MergeEndpoints(in, testWidth, testHeight, testPercent)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if stats.Candidates != 0 {
		t.Errorf("Candidates: got %d, want 0", stats.Candidates)
	}
}

func TestMergeEndpoints_ChainNeverCloses(t *testing.T) {
	// Three fragments of a loop. Once two joins make a single chain, its
	// two remaining ends belong to the same chain and stay apart.
	in := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 100, Y: 0}},
		{{X: 101, Y: 0}, {X: 101, Y: 100}},
		{{X: 100, Y: 101}, {X: 1, Y: 1}},
	}
	got, stats := MergeEndpoints(in, testWidth, testHeight, testPercent)
	want := []geometry.Polygon{
		{{X: 100, Y: 101}, {X: 1, Y: 1}, {X: 0, Y: 0}, {X: 100, Y: 0}, {X: 101, Y: 0}, {X: 101, Y: 100}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if stats.Candidates != 3 || stats.Merged != 2 {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestMergeEndpoints_ClosestPairWins(t *testing.T) {
	in := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 12, Y: 0}, {X: 40, Y: 0}},
		{{X: 11, Y: 3}, {X: 11, Y: 50}},
	}
	got, stats := MergeEndpoints(in, testWidth, testHeight, testPercent)
	want := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 12, Y: 0}, {X: 40, Y: 0}},
		{{X: 11, Y: 3}, {X: 11, Y: 50}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if stats.Candidates != 3 || stats.Merged != 1 {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestMergeEndpoints_Compaction(t *testing.T) {
	in := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 5, Y: 5}},
		{{X: 100, Y: 100}, {X: 200, Y: 200}},
	}
	got, _ := MergeEndpoints(in, testWidth, testHeight, testPercent)
	want := []geometry.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 100, Y: 100}, {X: 200, Y: 200}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMergeEndpoints_PreservesVertexCount(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var in []geometry.Polygon
	total := 0
	for c := 0; c < 30; c++ {
		n := 2 + rng.Intn(4)
		p := make(geometry.Polygon, n)
		for i := range p {
			p[i] = geometry.Pt(rng.Intn(60), rng.Intn(60))
		}
		total += n
		in = append(in, p)
	}
	before := make([]geometry.Polygon, len(in))
	for i, p := range in {
		before[i] = p.Clone()
	}

	got, stats := MergeEndpoints(in, testWidth, testHeight, testPercent)

	count := 0
	for _, p := range got {
		count += len(p)
	}
	if count != total {
		t.Errorf("vertex count: got %d, want %d", count, total)
	}
	if len(got) != len(in)-stats.Merged {
		t.Errorf("contours: got %d, want %d", len(got), len(in)-stats.Merged)
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input was modified (-before +after):\n%s", diff)
	}
}

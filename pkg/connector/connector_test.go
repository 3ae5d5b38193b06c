package connector

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/tree"
)

var testMetrics = measure.Metrics{CardWidth: 100, CardHeight: 50, ColGap: 10, RowGap: 40}

func boxesOf(t *testing.T, descs ...tree.Descriptor) measure.Result {
	t.Helper()
	tr, ok := tree.Index(descs)
	if !ok {
		t.Fatal("tree.Index() failed")
	}
	return measure.Measure(grid.Build(tr), testMetrics)
}

func TestPaths(t *testing.T) {
	res := boxesOf(t,
		tree.Descriptor{ID: "A"},
		tree.Descriptor{ID: "B", ParentID: "A"},
		tree.Descriptor{ID: "C", ParentID: "A"},
		tree.Descriptor{ID: "D", ParentID: "B"},
	)

	want := []Path{
		{Kind: Trunk, ParentID: "A", Points: []Point{{160, 50}, {160, 75}}},
		{Kind: Bus, ParentID: "A", Points: []Point{{160, 75}, {270, 75}}},
		{Kind: Branch, ParentID: "A", ChildID: "B", Points: []Point{{160, 75}, {160, 90}}},
		{Kind: Branch, ParentID: "A", ChildID: "C", Points: []Point{{270, 75}, {270, 90}}},
		{Kind: Elbow, ParentID: "B", ChildID: "D", Points: []Point{{160, 140}, {160, 165}, {160, 165}, {160, 180}}},
	}
	if diff := cmp.Diff(want, Paths(res.Boxes, DefaultOffset)); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPathsElbowAcross(t *testing.T) {
	boxes := []measure.Box{
		{ID: "p", Rect: measure.Rect{Left: 0, Top: 0, Width: 20, Height: 10}},
		{ID: "c", ParentID: "p", Rect: measure.Rect{Left: 100, Top: 60, Width: 20, Height: 10}},
	}
	got := Paths(boxes, 5)
	want := []Path{{
		Kind: Elbow, ParentID: "p", ChildID: "c",
		Points: []Point{{10, 10}, {10, 15}, {110, 15}, {110, 60}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("elbow mismatch (-want +got):\n%s", diff)
	}
}

func TestPathsBusSpansOutermostChildren(t *testing.T) {
	res := boxesOf(t,
		tree.Descriptor{ID: "r"},
		tree.Descriptor{ID: "a", ParentID: "r"},
		tree.Descriptor{ID: "b", ParentID: "r"},
		tree.Descriptor{ID: "c", ParentID: "r"},
		tree.Descriptor{ID: "d", ParentID: "r"},
		tree.Descriptor{ID: "e", ParentID: "r"},
	)
	paths := Paths(res.Boxes, DefaultOffset)
	if len(paths) != 2+5 {
		t.Fatalf("got %d paths, want 7", len(paths))
	}
	bus := paths[1]
	if bus.Kind != Bus {
		t.Fatalf("paths[1].Kind = %s, want bus", bus.Kind)
	}
	first, _ := res.Find("a")
	last, _ := res.Find("e")
	if bus.Points[0].X != first.Rect.CenterX() || bus.Points[1].X != last.Rect.CenterX() {
		t.Errorf("bus spans %v, want %v..%v", bus.Points, first.Rect.CenterX(), last.Rect.CenterX())
	}
}

func TestPathsSkipMissingParent(t *testing.T) {
	boxes := []measure.Box{
		{ID: "root", ParentID: "ghost", Rect: measure.Rect{Width: 10, Height: 10}},
	}
	if got := Paths(boxes, DefaultOffset); len(got) != 0 {
		t.Errorf("Paths() = %v, want none for unresolved parent", got)
	}
	if got := Paths(nil, DefaultOffset); len(got) != 0 {
		t.Errorf("Paths(nil) = %v, want none", got)
	}
}

func TestRendererDraw(t *testing.T) {
	res := boxesOf(t,
		tree.Descriptor{ID: "A"},
		tree.Descriptor{ID: "B", ParentID: "A"},
	)
	r := NewRenderer()
	rec := &Recorder{}

	r.Draw(rec, res.Boxes, res.Width, res.Height)
	r.Draw(rec, res.Boxes, res.Width, res.Height)

	if rec.Frames != 2 {
		t.Errorf("Frames = %d, want 2", rec.Frames)
	}
	if rec.Width != res.Width || rec.Height != res.Height {
		t.Errorf("surface size = %vx%v, want %vx%v", rec.Width, rec.Height, res.Width, res.Height)
	}
	if len(rec.Paths) != 1 {
		t.Fatalf("got %d strokes after redraw, want 1", len(rec.Paths))
	}
	if diff := cmp.Diff(DefaultStyle(), rec.Styles[0]); diff != "" {
		t.Errorf("style mismatch (-want +got):\n%s", diff)
	}

	if got := r.Draw(nil, res.Boxes, 1, 1); got != nil {
		t.Error("Draw(nil) should be a no-op")
	}
}

func TestDefaultStyle(t *testing.T) {
	want := Style{Color: "rgba(255,255,255,0.20)", Width: 2, Cap: "round"}
	if diff := cmp.Diff(want, DefaultStyle()); diff != "" {
		t.Errorf("DefaultStyle mismatch (-want +got):\n%s", diff)
	}
}

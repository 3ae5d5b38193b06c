package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/pipeline"
)

func TestPrinterStats(t *testing.T) {
	tests := []struct {
		stats  pipeline.Stats
		cached bool
		want   string
	}{
		{pipeline.Stats{Placed: 4, Levels: 3, Columns: 3}, true, "4 members · 3 levels · 3 columns · cached"},
		{pipeline.Stats{Placed: 5, Levels: 2, Columns: 4, Collisions: 1}, false, "5 members · 2 levels · 4 columns · 1 overwritten · fresh"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		newPrinter(&buf).stats(tt.stats, tt.cached)
		if got := strings.TrimSpace(ansi.Strip(buf.String())); got != tt.want {
			t.Errorf("stats() = %q, want %q", got, tt.want)
		}
	}
}

func TestPrinterLayoutWarnings(t *testing.T) {
	l := grid.Layout{
		Orphans:    []string{"x", "y"},
		Collisions: []grid.Collision{{Level: 1, Column: 0, Winner: "c", Lost: "b"}},
	}
	var buf bytes.Buffer
	newPrinter(&buf).layoutWarnings(l)

	got := ansi.Strip(buf.String())
	for _, want := range []string{"2 members with no resolvable parent", "x, y", "c replaced b at level 1, column 0"} {
		if !strings.Contains(got, want) {
			t.Errorf("warnings missing %q:\n%s", want, got)
		}
	}

	buf.Reset()
	newPrinter(&buf).layoutWarnings(grid.Layout{})
	if buf.Len() != 0 {
		t.Errorf("clean layout printed %q", buf.String())
	}
}

func TestLayoutStats(t *testing.T) {
	l := grid.Layout{
		Columns:    3,
		Rows:       make([][]grid.Cell, 2),
		Collisions: []grid.Collision{{}},
	}
	s := layoutStats(l)
	if s.Levels != 2 || s.Columns != 3 || s.Collisions != 1 {
		t.Errorf("layoutStats() = %+v", s)
	}
}

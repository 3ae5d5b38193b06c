package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/tooltip"
	"github.com/matzehuels/reftree/pkg/tree"
	"github.com/matzehuels/reftree/pkg/viewport"
)

var viewTree = []tree.Descriptor{
	{ID: "A", Label: "Ada"},
	{ID: "B", ParentID: "A"},
	{ID: "C", ParentID: "A", Active: true},
}

func staticLoad(descs []tree.Descriptor) loadFunc {
	return func(context.Context) ([]tree.Descriptor, error) { return descs, nil }
}

// newLoadedModel returns a viewer sized w×h cells with descs installed.
func newLoadedModel(t *testing.T, descs []tree.Descriptor, w, h int) *viewModel {
	t.Helper()
	m := newViewModel(context.Background(), "test", staticLoad(descs))
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	m.Update(m.Init()())
	if m.err != nil {
		t.Fatalf("load: %v", m.err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// screenPos returns the terminal cell inside box b.
func screenPos(m *viewModel, b measure.Box) (int, int) {
	o := m.ctrl.Offset()
	x := int((b.Rect.Left+o.X)/cellW) + 2
	y := int((b.Rect.Top+o.Y)/cellH) + 1 + 1 // header row
	return x, y
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: action}
}

func TestDrawSceneConnectors(t *testing.T) {
	tr, _ := tree.Index(viewTree)
	l := grid.Build(tr)
	res := measure.Measure(l, termMetrics)
	c := drawScene(l, res, &connector.Renderer{Offset: termOffset}, "", nil)

	lines := strings.Split(c.plain(), "\n")
	// Root card spans rows 1-4, the bus runs on row 7.
	if !strings.Contains(lines[2], "Ada") {
		t.Errorf("row 2 = %q, want root label", lines[2])
	}
	bus := []rune(lines[7])
	bCol := toCol(res.Boxes[1].Rect.CenterX())
	cCol := toCol(res.Boxes[2].Rect.CenterX())
	if got := bus[bCol]; got != '├' {
		t.Errorf("junction over B = %q, want '├'", got)
	}
	if got := bus[cCol]; got != '┐' {
		t.Errorf("bus end over C = %q, want '┐'", got)
	}
	for x := bCol + 1; x < cCol; x++ {
		if bus[x] != '─' {
			t.Fatalf("bus gap at column %d: %q", x, bus[x])
		}
	}
	if above := []rune(lines[6]); cCol < len(above) && above[cCol] != ' ' {
		t.Errorf("above bus end = %q, want blank", above[cCol])
	}
	if got := []rune(lines[8])[cCol]; got != '│' {
		t.Errorf("branch to C = %q, want '│'", got)
	}
}

func TestDrawSceneTooltip(t *testing.T) {
	tr, _ := tree.Index(viewTree)
	l := grid.Build(tr)
	res := measure.Measure(l, termMetrics)
	b, _ := res.Find("A")
	tip := tooltip.Place("A", b.Rect, 20*cellW, 5*cellH)

	c := drawScene(l, res, nil, "A", &tip)
	out := c.plain()
	for _, want := range []string{"id: A", "root"} {
		if !strings.Contains(out, want) {
			t.Errorf("tooltip missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	// One blank row separates the card from its tooltip.
	if top := toRow(tip.Top); !strings.Contains(lines[top], "╭") || strings.TrimSpace(lines[top-1]) != "" {
		t.Errorf("tooltip top row %d = %q, row above = %q", top, lines[top], lines[top-1])
	}
}

func TestCanvasCrop(t *testing.T) {
	c := newCanvas(3, 2)
	c.text(0, 0, "abc", attrCard)
	c.text(0, 1, "def", attrCard)

	// Shift right by one cell and down by one row.
	got := ansi.Strip(c.crop(viewport.Offset{X: cellW, Y: cellH}, 4, 2))
	want := "    \n abc"
	if got != want {
		t.Errorf("crop = %q, want %q", got, want)
	}
}

func TestCanvasSurfaceClear(t *testing.T) {
	c := newCanvas(4, 4)
	c.Stroke(connector.Path{Points: []connector.Point{{X: 0, Y: 0}, {X: 0, Y: 3 * cellH}}}, connector.Style{})
	c.Clear()
	c.resolveLines()
	if got := strings.TrimSpace(c.plain()); got != "" {
		t.Errorf("canvas after Clear = %q, want blank", got)
	}

	c.Stroke(connector.Path{Points: []connector.Point{{X: 0, Y: 0}, {X: 3 * cellW, Y: 0}}}, connector.Style{})
	c.resolveLines()
	if got := strings.Split(c.plain(), "\n")[0]; got != "────" {
		t.Errorf("horizontal stroke = %q", got)
	}
}

func TestViewModelLoad(t *testing.T) {
	m := newLoadedModel(t, viewTree, 80, 30)

	if got := m.layout.Occupied(); got != 3 {
		t.Errorf("occupied = %d, want 3", got)
	}
	if !strings.Contains(m.View(), "┐") {
		t.Error("no connectors drawn after load")
	}
	if !strings.Contains(m.status, "3 members") {
		t.Errorf("status = %q", m.status)
	}
	view := m.View()
	for _, want := range []string{"reftree", "Ada"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewModelLoadErrors(t *testing.T) {
	failing := func(context.Context) ([]tree.Descriptor, error) { return nil, errors.New("boom") }
	m := newViewModel(context.Background(), "test", failing)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	m.Update(m.Init()())
	if !strings.Contains(m.View(), "boom") {
		t.Error("view should show the load error")
	}

	m = newViewModel(context.Background(), "test", staticLoad([]tree.Descriptor{{ID: "A", ParentID: "A"}}))
	m.Update(m.Init()())
	if m.status != "no root member found" {
		t.Errorf("status = %q", m.status)
	}
}

func TestViewModelTooltipsExclusive(t *testing.T) {
	m := newLoadedModel(t, viewTree, 80, 30)

	m.Update(key("tab"))
	m.Update(key("enter"))
	if !m.tips.IsOpen("A") {
		t.Fatal("enter should open the selected card's tooltip")
	}

	m.Update(key("tab"))
	m.Update(key("enter"))
	if m.tips.IsOpen("A") || !m.tips.IsOpen("B") {
		t.Error("opening B should close A")
	}

	m.Update(key("enter"))
	if _, open := m.tips.Active(); open {
		t.Error("second enter should close B")
	}
}

func TestViewModelClick(t *testing.T) {
	m := newLoadedModel(t, viewTree, 80, 30)
	b, _ := m.measured.Find("C")
	x, y := screenPos(m, b)

	m.Update(mouse(x, y, tea.MouseActionPress))
	m.Update(mouse(x, y, tea.MouseActionRelease))
	if !m.tips.IsOpen("C") {
		t.Fatal("click should open C")
	}

	// Clicking empty canvas closes it.
	m.Update(mouse(0, 2, tea.MouseActionPress))
	m.Update(mouse(0, 2, tea.MouseActionRelease))
	if _, open := m.tips.Active(); open {
		t.Error("click on empty canvas should close the tooltip")
	}
}

func TestViewModelDragIsNotClick(t *testing.T) {
	m := newLoadedModel(t, viewTree, 80, 30)
	b, _ := m.measured.Find("C")
	x, y := screenPos(m, b)

	m.Update(mouse(x, y, tea.MouseActionPress))
	m.Update(mouse(x+3, y, tea.MouseActionMotion))
	m.Update(mouse(x+3, y, tea.MouseActionRelease))
	if _, open := m.tips.Active(); open {
		t.Error("a drag must not toggle a tooltip")
	}
	if m.ctrl.Dragging() {
		t.Error("drag should end on release")
	}
}

func TestViewModelKeyboardPan(t *testing.T) {
	// 20×10 cells is narrower and shorter than the 3-column grid.
	m := newLoadedModel(t, viewTree, 20, 10)
	before := m.ctrl.Offset()

	m.Update(key("right"))
	m.Update(key("down"))
	got := m.ctrl.Offset()
	if got.X != before.X-panStepX || got.Y != before.Y-panStepY {
		t.Errorf("offset = %+v, want (%v, %v)", got, before.X-panStepX, before.Y-panStepY)
	}
	if !m.ctrl.Bounds().Contains(got) {
		t.Errorf("offset %+v outside bounds %+v", got, m.ctrl.Bounds())
	}

	m.Update(key("c"))
	if m.ctrl.Offset().Y != 0 {
		t.Errorf("center should reset Y, got %v", m.ctrl.Offset().Y)
	}
}

func TestViewModelReload(t *testing.T) {
	descs := viewTree
	m := newViewModel(context.Background(), "test", func(context.Context) ([]tree.Descriptor, error) {
		return descs, nil
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m.Update(m.Init()())

	m.Update(key("tab"))
	m.Update(key("tab"))
	m.Update(key("enter"))
	if !m.tips.IsOpen("B") {
		t.Fatal("B should be open")
	}

	descs = []tree.Descriptor{{ID: "A"}, {ID: "C", ParentID: "A"}, {ID: "D", ParentID: "C"}}
	_, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatal("r should return a load command")
	}
	m.Update(cmd())

	if got := m.layout.Levels(); got != 3 {
		t.Errorf("levels after reload = %d, want 3", got)
	}
	if _, open := m.tips.Active(); open {
		t.Error("tooltip of a removed member should close on reload")
	}
}

func TestTooltipLines(t *testing.T) {
	got := tooltipLines(grid.Cell{
		ID:       "u7",
		ParentID: "u1",
		Label:    "Grace",
		Content:  "<p><b>Gold</b>\n tier</p>",
		Active:   true,
		Meta:     map[string]any{"since": "2024", "city": "Oslo"},
	})
	want := []string{"Grace", "id: u7", "referred by: u1", "active", "Gold tier", "city: Oslo", "since: 2024"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tooltipLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestTruncateAndCenter(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 6, "much …"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
	if got := center("ab", 6); got != "  ab" {
		t.Errorf("center = %q", got)
	}
}

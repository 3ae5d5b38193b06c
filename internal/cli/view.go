package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/events"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/tooltip"
	"github.com/matzehuels/reftree/pkg/tree"
	"github.com/matzehuels/reftree/pkg/viewport"
)

// View styles
var (
	viewTitleStyle = StyleTitle
	viewDimStyle   = StyleDim
	viewErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// Keyboard pan steps, in canvas pixels.
const (
	panStepX = 4 * cellW
	panStepY = 2 * cellH
)

// tooltipMaxCols caps the tooltip width in cells.
const tooltipMaxCols = 36

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		noCache    bool
		minColumns int
		src        sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "view [referrals.json|page.html]",
		Short: "Explore a referral tree in the terminal",
		Long: `Explore a referral tree in the terminal.

Drag with the mouse or use the arrow keys to pan. Click a card, or select it
with tab and press enter, to open its tooltip; only one tooltip is open at a
time. Press r to re-read the source and rebuild the grid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := src.apply(&opts.Source, args); err != nil {
				return err
			}
			if cmd.Flags().Changed("min-columns") {
				opts.MinColumns = minColumns
			}
			opts.SetLayoutDefaults()

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			load := func(ctx context.Context) ([]tree.Descriptor, error) {
				return runner.Load(ctx, opts)
			}
			m := newViewModel(ctx, opts.Source.Ref(), load, grid.WithMinColumns(opts.MinColumns))
			_, err = tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&minColumns, "min-columns", grid.DefaultMinColumns, "narrowest grid to produce")
	src.register(cmd)

	return cmd
}

// =============================================================================
// viewModel - interactive grid viewer
// =============================================================================

type loadFunc func(context.Context) ([]tree.Descriptor, error)

// loadedMsg carries the result of reading the source.
type loadedMsg struct {
	descs []tree.Descriptor
	err   error
}

// viewModel is the bubbletea model for the terminal viewer. The grid,
// viewport and tooltips talk to each other over the bus; the model only
// forwards input and draws the current state.
type viewModel struct {
	ctx  context.Context
	name string
	load loadFunc

	bus     *events.Bus
	rebuild *grid.Rebuilder
	ctrl    *viewport.Controller
	tips    *tooltip.Coordinator

	layout   grid.Layout
	measured measure.Result
	conn     *connector.Renderer
	selected int // index into measured.Boxes, -1 for none

	width, height int

	pressed bool // mouse button down over the canvas
	dragged bool // pointer moved since the press
	status  string
	err     error
}

func newViewModel(ctx context.Context, name string, load loadFunc, opts ...grid.Option) *viewModel {
	m := &viewModel{
		ctx:      ctx,
		name:     name,
		load:     load,
		bus:      events.NewBus(),
		conn:     &connector.Renderer{Style: connector.DefaultStyle(), Offset: termOffset},
		selected: -1,
	}
	m.rebuild = grid.NewRebuilder(m.bus, opts...)
	m.tips = tooltip.New(m.bus, m.tooltipSize)
	m.ctrl = viewport.New(viewport.Size{}, viewport.Size{},
		viewport.WithOverlay(m.tips.Bottom),
		viewport.WithBus(m.bus),
	)

	m.bus.Subscribe(func(events.Topic) { m.relayout() }, events.LayoutReady)
	m.bus.Subscribe(func(events.Topic) { m.ctrl.Refresh() }, events.TooltipChanged)
	m.bus.Subscribe(func(events.Topic) {
		m.ctrl.Resize(viewport.Size{W: float64(m.width * cellW), H: float64(m.canvasRows() * cellH)})
	}, events.Resized)
	return m
}

// relayout re-measures the installed grid and refits the viewport to it.
func (m *viewModel) relayout() {
	l, ok := m.rebuild.Current()
	if !ok {
		return
	}
	m.layout = l
	m.measured = measure.Measure(l, termMetrics)
	if m.selected >= len(m.measured.Boxes) {
		m.selected = -1
	}
	if p, open := m.tips.Active(); open {
		if _, _, ok := l.Position(p.ID); !ok {
			m.tips.CloseAll()
		}
	}
	m.ctrl.SetContent(viewport.Size{W: m.measured.Width, H: m.measured.Height})
	m.ctrl.Center()
}

// tooltipSize reports a tooltip's size in canvas pixels.
func (m *viewModel) tooltipSize(id string) (float64, float64) {
	lvl, col, ok := m.layout.Position(id)
	if !ok {
		return 0, 0
	}
	lines := tooltipLines(m.layout.Cell(lvl, col))
	cols := 0
	for _, l := range lines {
		cols = max(cols, len([]rune(l)))
	}
	cols = min(cols+4, tooltipMaxCols)
	return float64(cols * cellW), float64((len(lines) + 2) * cellH)
}

// canvasRows is the number of terminal rows available to the grid.
func (m *viewModel) canvasRows() int {
	return max(m.height-2, 0)
}

func (m *viewModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		descs, err := m.load(m.ctx)
		return loadedMsg{descs: descs, err: err}
	}
}

func (m *viewModel) Init() tea.Cmd {
	m.status = "loading " + m.name
	return m.loadCmd()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.applyLoaded(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bus.Publish(events.Resized)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *viewModel) applyLoaded(msg loadedMsg) {
	if msg.err != nil {
		m.err = msg.err
		m.status = ""
		return
	}
	m.err = nil
	if _, ok := m.rebuild.Rebuild(msg.descs); !ok {
		if len(msg.descs) == 0 {
			m.status = "source has no members"
		} else {
			m.status = "no root member found"
		}
		return
	}
	m.status = fmt.Sprintf("%d members · %d levels · %d columns", m.layout.Occupied(), m.layout.Levels(), m.layout.Columns)
}

func (m *viewModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "left", "h":
		m.ctrl.Nudge(panStepX, 0)
	case "right", "l":
		m.ctrl.Nudge(-panStepX, 0)
	case "up", "k":
		m.ctrl.Nudge(0, panStepY)
	case "down", "j":
		m.ctrl.Nudge(0, -panStepY)
	case "c":
		m.ctrl.Center()
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "enter", " ":
		if b, ok := m.selectedBox(); ok {
			m.tips.Toggle(b.ID, b.Rect)
		}
	case "esc":
		m.tips.CloseAll()
	case "r":
		m.status = "reloading " + m.name
		return m.loadCmd()
	}
	return nil
}

// handleMouse drives the drag state machine. A press and release without
// movement is a click.
func (m *viewModel) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ctrl.Nudge(0, panStepY)
		return
	case tea.MouseButtonWheelDown:
		m.ctrl.Nudge(0, -panStepY)
		return
	}
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return
	}
	x, y := float64(msg.X*cellW), float64((msg.Y-1)*cellH)
	switch msg.Action {
	case tea.MouseActionPress:
		m.pressed, m.dragged = true, false
		m.ctrl.PointerDown(x, y)
	case tea.MouseActionMotion:
		if m.pressed {
			before := m.ctrl.Offset()
			m.ctrl.PointerMove(x, y)
			m.dragged = m.dragged || m.ctrl.Offset() != before || m.ctrl.Axis() != viewport.AxisNone
		}
	case tea.MouseActionRelease:
		m.ctrl.PointerUp()
		if m.pressed && !m.dragged {
			m.click(x, y)
		}
		m.pressed = false
	}
}

// click toggles the tooltip of the card under screen position (x, y), or
// closes any open tooltip when the click lands on empty canvas.
func (m *viewModel) click(x, y float64) {
	o := m.ctrl.Offset()
	cx, cy := x-o.X, y-o.Y
	for i, b := range m.measured.Boxes {
		if b.Rect.Contains(cx, cy) {
			m.selected = i
			m.tips.Toggle(b.ID, b.Rect)
			return
		}
	}
	m.tips.CloseAll()
}

// cycle moves the selection and pans the selected card into view.
func (m *viewModel) cycle(step int) {
	n := len(m.measured.Boxes)
	if n == 0 {
		return
	}
	if m.selected < 0 {
		m.selected = 0
		if step < 0 {
			m.selected = n - 1
		}
	} else {
		m.selected = ((m.selected+step)%n + n) % n
	}
	m.reveal(m.measured.Boxes[m.selected].Rect)
}

// reveal pans the minimum distance that brings r fully into the window.
func (m *viewModel) reveal(r measure.Rect) {
	o := m.ctrl.Offset()
	vp := m.ctrl.Viewport()
	if r.Left+o.X < 0 {
		o.X = -r.Left
	} else if r.Right()+o.X > vp.W {
		o.X = vp.W - r.Right()
	}
	if r.Top+o.Y < 0 {
		o.Y = -r.Top
	} else if r.Bottom()+o.Y > vp.H {
		o.Y = vp.H - r.Bottom()
	}
	m.ctrl.SetOffset(o)
}

func (m *viewModel) selectedBox() (measure.Box, bool) {
	if m.selected < 0 || m.selected >= len(m.measured.Boxes) {
		return measure.Box{}, false
	}
	return m.measured.Boxes[m.selected], true
}

func (m *viewModel) View() string {
	var b strings.Builder

	b.WriteString(viewTitleStyle.Render(appName))
	b.WriteString(viewDimStyle.Render("  " + m.name))
	b.WriteString("\n")

	var selected string
	if box, ok := m.selectedBox(); ok {
		selected = box.ID
	}
	var tip *tooltip.Placement
	if p, ok := m.tips.Active(); ok {
		tip = &p
	}
	b.WriteString(drawScene(m.layout, m.measured, m.conn, selected, tip).crop(m.ctrl.Offset(), m.width, m.canvasRows()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(viewErrStyle.Render(iconError.glyph + " " + m.err.Error()))
	default:
		b.WriteString(viewDimStyle.Render(m.status + "  ·  drag/←↑↓→ pan  tab select  ⏎ tooltip  r reload  q quit"))
	}
	return b.String()
}

// =============================================================================
// Tooltip content
// =============================================================================

// tooltipLines returns the text shown in a card's tooltip.
func tooltipLines(c grid.Cell) []string {
	lines := []string{c.DisplayLabel(), "id: " + c.ID}
	if c.ParentID != "" {
		lines = append(lines, "referred by: "+c.ParentID)
	} else {
		lines = append(lines, "root")
	}
	if c.Active {
		lines = append(lines, "active")
	}
	if text := textOf(c.Content); text != "" {
		lines = append(lines, text)
	}
	for _, k := range slices.Sorted(maps.Keys(c.Meta)) {
		lines = append(lines, fmt.Sprintf("%s: %v", k, c.Meta[k]))
	}
	return lines
}

// textOf returns the visible text of an HTML fragment, whitespace-collapsed.
func textOf(fragment string) string {
	if fragment == "" {
		return ""
	}
	var parts []string
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			parts = append(parts, strings.Fields(string(z.Text()))...)
		}
	}
}

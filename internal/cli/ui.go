package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/pipeline"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink renders URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached  = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh   = lipgloss.NewStyle().Foreground(colorGray)
)

// statusIcon pairs a glyph with its color.
type statusIcon struct {
	glyph string
	style lipgloss.Style
}

var (
	iconSuccess = statusIcon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconError   = statusIcon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarning = statusIcon{"!", styleWarning}
	iconInfo    = statusIcon{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (i statusIcon) String() string { return i.style.Render(i.glyph) }

// =============================================================================
// printer
// =============================================================================

// printer writes the human-readable summary of a command. Logs go to the
// CLI logger instead; the printer output is what a user reads when a command
// finishes.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer { return printer{w: w} }

func (p printer) status(icon statusIcon, format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

func (p printer) success(format string, args ...any) { p.status(iconSuccess, format, args...) }
func (p printer) fail(format string, args ...any)    { p.status(iconError, format, args...) }
func (p printer) info(format string, args ...any)    { p.status(iconInfo, format, args...) }

func (p printer) warn(format string, args ...any) {
	p.status(iconWarning, "%s", styleWarning.Render(fmt.Sprintf(format, args...)))
}

// detail prints an indented, dimmed line under the previous status.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

func (p printer) blank() { fmt.Fprintln(p.w) }

// nextStep suggests the command to run after this one.
func (p printer) nextStep(description, command string) {
	fmt.Fprintln(p.w, StyleDim.Render(description+":")+" "+styleCommand.Render(command))
}

// stats prints the grid summary on one line, e.g.
// "4 members · 3 levels · 3 columns · cached".
func (p printer) stats(s pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d members", s.Placed),
		fmt.Sprintf("%d levels", s.Levels),
		fmt.Sprintf("%d columns", s.Columns),
	}
	if s.Collisions > 0 {
		parts = append(parts, fmt.Sprintf("%d overwritten", s.Collisions))
	}
	sep := StyleDim.Render(" · ")
	state := styleFresh.Render("fresh")
	if cached {
		state = styleCached.Render("cached")
	}
	fmt.Fprintln(p.w, "  "+StyleDim.Render(strings.Join(parts, " · "))+sep+state)
}

// layoutWarnings reports members left off the grid and cells that were
// overwritten by a later sibling.
func (p printer) layoutWarnings(l grid.Layout) {
	if len(l.Orphans) > 0 {
		p.warn("%d members with no resolvable parent were not placed", len(l.Orphans))
		p.detail("%s", strings.Join(l.Orphans, ", "))
	}
	for _, c := range l.Collisions {
		p.warn("%s replaced %s at level %d, column %d", c.Winner, c.Lost, c.Level, c.Column)
	}
}

// layoutStats summarizes a layout that did not come from a full pipeline run.
func layoutStats(l grid.Layout) pipeline.Stats {
	return pipeline.Stats{
		Placed:     l.Occupied(),
		Levels:     l.Levels(),
		Columns:    l.Columns,
		Collisions: len(l.Collisions),
		Orphans:    len(l.Orphans),
	}
}

package grid

import (
	"fmt"

	"github.com/matzehuels/reftree/pkg/tree"
)

// DefaultMinColumns is the narrowest grid ever produced.
const DefaultMinColumns = 3

// Cell is one slot of the grid. Empty cells have no ID.
type Cell struct {
	ID       string         `json:"id,omitempty"`
	ParentID string         `json:"parent,omitempty"`
	Label    string         `json:"label,omitempty"`
	Content  string         `json:"content,omitempty"`
	Active   bool           `json:"active,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Empty reports whether no node was placed in the cell.
func (c Cell) Empty() bool { return c.ID == "" }

// DisplayLabel returns the label if set, otherwise the ID.
func (c Cell) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}

// Placement records where a node was assigned, before collisions are resolved.
type Placement struct {
	ID     string `json:"id"`
	Level  int    `json:"level"`
	Column int    `json:"column"`
}

// Collision records a node whose cell was taken over by a later node.
type Collision struct {
	Level  int    `json:"level"`
	Column int    `json:"column"`
	Lost   string `json:"lost"`
	Winner string `json:"winner"`
}

// Layout is a finalized grid: len(Rows) levels of Columns cells each.
type Layout struct {
	Columns    int         `json:"columns"`
	Rows       [][]Cell    `json:"rows"`
	RootID     string      `json:"root"`
	Placements []Placement `json:"placements"`
	Collisions []Collision `json:"collisions,omitempty"`
	Orphans    []string    `json:"orphans,omitempty"`
}

// Template returns the CSS grid-template-columns value for the layout.
func (l Layout) Template() string {
	return fmt.Sprintf("repeat(%d, 1fr)", l.Columns)
}

// Levels returns the number of rows.
func (l Layout) Levels() int { return len(l.Rows) }

// Cell returns the cell at (level, column), or an empty cell when out of range.
func (l Layout) Cell(level, column int) Cell {
	if level < 0 || level >= len(l.Rows) || column < 0 || column >= l.Columns {
		return Cell{}
	}
	return l.Rows[level][column]
}

// Position returns the assigned level and column of id.
func (l Layout) Position(id string) (level, column int, ok bool) {
	for _, p := range l.Placements {
		if p.ID == id {
			return p.Level, p.Column, true
		}
	}
	return 0, 0, false
}

// Occupied returns the number of non-empty cells.
func (l Layout) Occupied() int {
	n := 0
	for _, row := range l.Rows {
		for _, c := range row {
			if !c.Empty() {
				n++
			}
		}
	}
	return n
}

// Option configures layout computation.
type Option func(*options)

type options struct {
	minColumns int
}

// WithMinColumns overrides [DefaultMinColumns]. Values below 1 are ignored.
func WithMinColumns(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.minColumns = n
		}
	}
}

// ColumnCount returns max(minColumns, t.MaxChildren(), 1).
func ColumnCount(t *tree.Tree, minColumns int) int {
	return max(minColumns, t.MaxChildren(), 1)
}

// Assign sets Column on every placed node of t and returns the column count.
func Assign(t *tree.Tree, opts ...Option) int {
	o := options{minColumns: DefaultMinColumns}
	for _, opt := range opts {
		opt(&o)
	}
	cols := ColumnCount(t, o.minColumns)

	t.Root.Column = cols / 2
	for lvl := 1; lvl < len(t.Levels); lvl++ {
		seen := make(map[string]bool)
		for _, n := range t.Levels[lvl] {
			parent, ok := t.Parent(n)
			if !ok || seen[parent.ID] {
				continue
			}
			seen[parent.ID] = true
			spread(parent, cols)
		}
	}
	return cols
}

// spread centers parent's children on its column, clamped to the grid.
func spread(parent *tree.Node, cols int) {
	k := len(parent.Children)
	start := parent.Column - (k-1)/2
	for i, child := range parent.Children {
		child.Column = clamp(start+i, 0, cols-1)
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Build assigns columns to t and materializes the grid.
func Build(t *tree.Tree, opts ...Option) Layout {
	cols := Assign(t, opts...)

	l := Layout{
		Columns: cols,
		Rows:    make([][]Cell, len(t.Levels)),
		RootID:  t.Root.ID,
		Orphans: append([]string(nil), t.Orphans...),
	}
	for i := range l.Rows {
		l.Rows[i] = make([]Cell, cols)
	}

	for _, level := range t.Levels {
		for _, n := range level {
			l.Placements = append(l.Placements, Placement{ID: n.ID, Level: n.Level, Column: n.Column})
			slot := &l.Rows[n.Level][n.Column]
			if !slot.Empty() {
				l.Collisions = append(l.Collisions, Collision{
					Level: n.Level, Column: n.Column,
					Lost: slot.ID, Winner: n.ID,
				})
			}
			*slot = cellFor(n)
		}
	}
	return l
}

func cellFor(n *tree.Node) Cell {
	return Cell{
		ID:       n.ID,
		ParentID: n.ParentID,
		Label:    n.Label,
		Content:  n.Content,
		Active:   n.Active,
		Meta:     n.Meta,
	}
}

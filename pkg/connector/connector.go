// Package connector computes and draws the orthogonal lines that join each
// parent card to its children.
//
// A parent with one child gets a single elbow path: down from the parent's
// bottom-center by the offset, across to the child's center, down to the
// child's top. A parent with several children gets a trunk down to the bus
// line, a horizontal bus spanning the outermost child centers, and one branch
// down to each child. Geometry is recomputed from scratch on every call.
package connector

import "github.com/matzehuels/reftree/pkg/measure"

// DefaultOffset is the vertical distance from a parent's bottom edge to the
// horizontal run of its connectors.
const DefaultOffset = 25

// Kind names the role of a path in a connector.
type Kind string

const (
	Elbow  Kind = "elbow"
	Trunk  Kind = "trunk"
	Bus    Kind = "bus"
	Branch Kind = "branch"
)

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is one stroked polyline.
type Path struct {
	Kind     Kind    `json:"kind"`
	ParentID string  `json:"parent"`
	ChildID  string  `json:"child,omitempty"` // empty for trunk and bus
	Points   []Point `json:"points"`
}

// Paths computes every connector path for boxes.
//
// Children are grouped by parent in box order, and parents are visited in the
// order their first child appears. Boxes whose parent is not among boxes
// produce nothing.
func Paths(boxes []measure.Box, offset float64) []Path {
	byID := make(map[string]measure.Box, len(boxes))
	for _, b := range boxes {
		byID[b.ID] = b
	}

	var parents []string
	children := make(map[string][]measure.Box)
	for _, b := range boxes {
		if b.ParentID == "" {
			continue
		}
		if _, ok := children[b.ParentID]; !ok {
			parents = append(parents, b.ParentID)
		}
		children[b.ParentID] = append(children[b.ParentID], b)
	}

	var paths []Path
	for _, pid := range parents {
		parent, ok := byID[pid]
		if !ok {
			continue
		}
		paths = append(paths, connect(parent, children[pid], offset)...)
	}
	return paths
}

func connect(parent measure.Box, kids []measure.Box, offset float64) []Path {
	px := parent.Rect.CenterX()
	pb := parent.Rect.Bottom()
	midY := pb + offset

	if len(kids) == 1 {
		c := kids[0]
		cx := c.Rect.CenterX()
		return []Path{{
			Kind:     Elbow,
			ParentID: parent.ID,
			ChildID:  c.ID,
			Points:   []Point{{px, pb}, {px, midY}, {cx, midY}, {cx, c.Rect.Top}},
		}}
	}

	minX, maxX := kids[0].Rect.CenterX(), kids[0].Rect.CenterX()
	for _, c := range kids[1:] {
		minX = min(minX, c.Rect.CenterX())
		maxX = max(maxX, c.Rect.CenterX())
	}

	paths := make([]Path, 0, len(kids)+2)
	paths = append(paths,
		Path{Kind: Trunk, ParentID: parent.ID, Points: []Point{{px, pb}, {px, midY}}},
		Path{Kind: Bus, ParentID: parent.ID, Points: []Point{{minX, midY}, {maxX, midY}}},
	)
	for _, c := range kids {
		cx := c.Rect.CenterX()
		paths = append(paths, Path{
			Kind:     Branch,
			ParentID: parent.ID,
			ChildID:  c.ID,
			Points:   []Point{{cx, midY}, {cx, c.Rect.Top}},
		})
	}
	return paths
}

package tree

// Descriptor is one source element of a referral tree.
type Descriptor struct {
	ID       string         `json:"id" bson:"_id"`
	ParentID string         `json:"parent,omitempty" bson:"parent,omitempty"`
	Label    string         `json:"label,omitempty" bson:"label,omitempty"`
	Content  string         `json:"content,omitempty" bson:"content,omitempty"` // Opaque card body (HTML or text)
	Active   bool           `json:"active,omitempty" bson:"active,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (d Descriptor) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

// Node is a descriptor linked into the tree.
// Level and Column are -1 until assigned.
type Node struct {
	Descriptor
	Children []*Node
	Level    int
	Column   int
}

// Tree is the result of indexing a descriptor list.
type Tree struct {
	Root    *Node
	Levels  [][]*Node
	Orphans []string // ids with no resolvable parent other than the root

	nodes map[string]*Node
	order []string
}

// Node returns the node with the given id, placed or not.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Parent returns the parent of n, if it resolves.
func (t *Tree) Parent(n *Node) (*Node, bool) {
	if n.ParentID == "" {
		return nil, false
	}
	return t.Node(n.ParentID)
}

// Len returns the number of placed nodes (those reachable from the root).
func (t *Tree) Len() int {
	total := 0
	for _, lvl := range t.Levels {
		total += len(lvl)
	}
	return total
}

// Depth returns the number of levels.
func (t *Tree) Depth() int { return len(t.Levels) }

// MaxChildren returns the largest child count of any indexed node,
// including nodes that are not reachable from the root.
func (t *Tree) MaxChildren() int {
	best := 0
	for _, id := range t.order {
		if c := len(t.nodes[id].Children); c > best {
			best = c
		}
	}
	return best
}

// Index links descriptors into a tree and assigns breadth-first levels.
//
// Descriptors sharing an id collapse into one node: the last descriptor
// supplies the data, the first occurrence fixes its position in encounter
// order. Index returns false when descs is empty or no descriptor is
// eligible to be the root.
func Index(descs []Descriptor) (*Tree, bool) {
	if len(descs) == 0 {
		return nil, false
	}

	t := &Tree{nodes: make(map[string]*Node, len(descs))}
	for _, d := range descs {
		if n, ok := t.nodes[d.ID]; ok {
			n.Descriptor = d
			continue
		}
		t.nodes[d.ID] = &Node{Descriptor: d, Level: -1, Column: -1}
		t.order = append(t.order, d.ID)
	}

	for _, id := range t.order {
		n := t.nodes[id]
		if n.ParentID == "" {
			continue
		}
		if p, ok := t.nodes[n.ParentID]; ok {
			p.Children = append(p.Children, n)
		}
	}

	for _, id := range t.order {
		n := t.nodes[id]
		if _, ok := t.Parent(n); ok {
			continue
		}
		if t.Root == nil {
			t.Root = n
		} else {
			t.Orphans = append(t.Orphans, id)
		}
	}
	if t.Root == nil {
		return nil, false
	}

	t.assignLevels()
	return t, true
}

// assignLevels expands frontiers from the root until one comes up empty.
func (t *Tree) assignLevels() {
	frontier := []*Node{t.Root}
	for depth := 0; len(frontier) > 0; depth++ {
		var next []*Node
		for _, n := range frontier {
			n.Level = depth
			next = append(next, n.Children...)
		}
		t.Levels = append(t.Levels, frontier)
		frontier = next
	}
}

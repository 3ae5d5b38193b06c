// Package tree indexes a flat list of referral descriptors into a rooted tree.
//
// A referral source is a sequence of (id, parent-id) pairs in encounter
// order. [Index] links each descriptor to its parent, selects the root and
// assigns breadth-first levels:
//
//	t, ok := tree.Index([]tree.Descriptor{
//	    {ID: "alice"},
//	    {ID: "bob", ParentID: "alice"},
//	    {ID: "carol", ParentID: "alice"},
//	})
//	if !ok {
//	    return // nothing to lay out
//	}
//	fmt.Println(len(t.Levels)) // 2
//
// # Roots and Orphans
//
// The root is the first descriptor whose parent is empty or does not resolve.
// Every other such descriptor is an orphan: it is recorded in [Tree.Orphans]
// and never placed. Multi-root forests are not supported.
//
// # Serialization
//
// [ReadJSON] and [ReadFile] decode the canonical JSON format:
//
//	{
//	  "nodes": [
//	    {"id": "alice", "label": "Alice", "active": true},
//	    {"id": "bob", "parent": "alice"}
//	  ]
//	}
package tree

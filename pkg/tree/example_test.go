package tree_test

import (
	"fmt"

	"github.com/matzehuels/reftree/pkg/tree"
)

func ExampleIndex() {
	t, ok := tree.Index([]tree.Descriptor{
		{ID: "alice"},
		{ID: "bob", ParentID: "alice"},
		{ID: "carol", ParentID: "alice"},
		{ID: "dave", ParentID: "bob"},
		{ID: "eve", ParentID: "mallory"}, // unresolvable parent, but alice came first
	})
	if !ok {
		fmt.Println("no layout possible")
		return
	}

	fmt.Println("root:", t.Root.ID)
	for depth, level := range t.Levels {
		fmt.Print(depth, ":")
		for _, n := range level {
			fmt.Print(" ", n.ID)
		}
		fmt.Println()
	}
	fmt.Println("orphans:", t.Orphans)
	// Output:
	// root: alice
	// 0: alice
	// 1: bob carol
	// 2: dave
	// orphans: [eve]
}

// Package pkg provides the core libraries for reftree referral diagrams.
//
// # Overview
//
// reftree draws a referral hierarchy as a grid of cards: the root member sits
// in the middle of the top level, everyone a member referred sits one level
// below, centered under their referrer, and orthogonal connectors join every
// parent to its children. The pkg directory is organized into three areas:
//
//  1. Layout - [tree], [grid], [measure], [connector]
//  2. Interaction - [viewport], [tooltip], [events]
//  3. Plumbing - [source], [cache], [pipeline], [render], [server]
//
// # Architecture
//
// The typical data flow:
//
//	referrals.json / page.html / MongoDB
//	         ↓
//	    [source] package (load member descriptors)
//	         ↓
//	    [tree] package (index by id, derive levels)
//	         ↓
//	    [grid] package (assign level and column to every member)
//	         ↓
//	    [measure] + [connector] packages (pixel boxes and connector paths)
//	         ↓
//	    SVG/HTML/JSON/DOT/PNG/PDF output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/reftree/pkg/grid"
//	    "github.com/matzehuels/reftree/pkg/render/sink"
//	    "github.com/matzehuels/reftree/pkg/tree"
//	)
//
//	descs, _ := tree.ReadFile("referrals.json")
//	t, ok := tree.Index(descs)
//	if !ok {
//	    // no root member
//	}
//	l := grid.Build(t, grid.WithMinColumns(3))
//	svg := sink.RenderSVG(l)
//
// The [pipeline] package wraps these steps with caching and is what the CLI
// and the preview server use.
//
// # Interaction
//
// [viewport] clamps pan offsets to the content, locks a drag to its dominant
// axis and grows the scrollable area when an overlay hangs below the grid.
// [tooltip] keeps at most one tooltip open. Both publish on an [events] bus
// so the terminal viewer and other front ends can react to layout, pan and
// tooltip changes.
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/tree
// [grid]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/grid
// [measure]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/measure
// [connector]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/connector
// [viewport]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/viewport
// [tooltip]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/tooltip
// [events]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/events
// [source]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/reftree/pkg/server
package pkg

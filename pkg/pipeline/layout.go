package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/tree"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout indexes descs and places them on the grid.
//
// The layout core never fails; it only reports that no layout exists. That
// outcome is turned into an EMPTY_TREE error for an empty descriptor list and
// NO_ROOT when every member has a resolvable parent.
func GenerateLayout(descs []tree.Descriptor, opts Options) (grid.Layout, error) {
	t, ok := tree.Index(descs)
	if !ok {
		return grid.Layout{}, noLayout(descs)
	}

	var gridOpts []grid.Option
	if opts.MinColumns > 0 {
		gridOpts = append(gridOpts, grid.WithMinColumns(opts.MinColumns))
	}
	l := grid.Build(t, gridOpts...)

	logLayoutWarnings(opts.Logger, descs, l)
	return l, nil
}

func noLayout(descs []tree.Descriptor) error {
	if len(descs) == 0 {
		return errors.New(errors.ErrCodeEmptyTree, "tree has no members")
	}
	return errors.New(errors.ErrCodeNoRoot, "no member is eligible as root: every parent reference resolves")
}

// logLayoutWarnings reports members the layout could not show. It runs for
// fresh and cached layouts alike.
func logLayoutWarnings(logger *log.Logger, descs []tree.Descriptor, l grid.Layout) {
	if logger == nil {
		return
	}
	if len(l.Orphans) > 0 {
		logger.Warn("dropped members without a resolvable parent",
			"root", l.RootID, "count", len(l.Orphans), "ids", l.Orphans)
	}
	ids := make(map[string]bool, len(descs))
	for _, d := range descs {
		ids[d.ID] = true
	}
	if unplaced := len(ids) - len(l.Placements) - len(l.Orphans); unplaced > 0 {
		logger.Debug("members not reachable from the root", "count", unplaced)
	}
	for _, c := range l.Collisions {
		logger.Warn("grid cell overwritten",
			"level", c.Level, "column", c.Column, "lost", c.Lost, "winner", c.Winner)
	}
}

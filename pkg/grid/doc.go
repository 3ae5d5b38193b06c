// Package grid places a referral tree into a rectangular column/row grid.
//
// # Algorithm
//
// The grid has one row per tree level and
//
//	columns = max(minColumns, widest fan-out, 1)
//
// columns, with minColumns defaulting to 3. The root sits in the middle
// column (columns/2). Level by level, each parent's children are laid out in
// contiguous columns centered on the parent:
//
//	start  = parentCol - (k-1)/2
//	col(i) = clamp(start+i, 0, columns-1)
//
// Because a parent's column is final before its children are visited, the
// assignment is deterministic: rebuilding from unchanged input yields the same
// grid.
//
// # Collisions
//
// Clamping at the grid edges, or two neighbouring families spreading into the
// same slot, can put two nodes in one cell. The later node (in level order)
// overwrites the earlier one. This is an accepted approximation; the lost ids
// are reported in [Layout.Collisions] so callers can log them.
//
// # Rebuilding
//
// [Rebuilder] owns the current layout. Each [Rebuilder.Rebuild] re-indexes
// the source from scratch and, on success, installs the new grid and
// publishes [events.LayoutReady]. On failure the previous grid stays.
package grid

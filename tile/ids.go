// Package tile implements the tile tree: the recursive binary structure of
// forks, windows, and stacks rooted at each workspace, the neighbour-search
// and movement algorithms that treat it as a 2-D geometric index, and the
// event queue that coalesces mutations into an ordered event stream.
//
// This is the computational core described by the specification; it owns no
// rendering, no input handling, and no persistence. A single *Tiler is the
// sole entry point for mutation (see tiler.go).
package tile

import "fmt"

// WindowID identifies a window. Identity is structural equality; uniqueness
// within a single Tiler is the caller's responsibility.
type WindowID struct {
	Outer uint32
	Inner uint32
}

// String implements fmt.Stringer for debugging and log fields.
func (id WindowID) String() string {
	return fmt.Sprintf("%d:%d", id.Outer, id.Inner)
}

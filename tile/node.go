package tile

import "github.com/pop-os/tiler/geom"

// Handle is an opaque, allocation-stable identity for a Fork or Stack. It is
// stable for the node's lifetime and may be reissued to an unrelated node
// after the original is destroyed; clients must treat a destroy event as
// invalidating the handle.
type Handle uint64

// Window is a leaf of the tile tree. Exactly one of parentFork / parentStack
// is set while attached; both are nil iff the window is detached.
type Window struct {
	ID        WindowID
	Rect      geom.Rect
	Workspace uint32
	Visible   bool

	parentFork  *Fork
	parentStack *Stack
}

// Stack holds an ordered set of windows overlapping at the same rect, with
// one "raised" (active) member visible at a time.
type Stack struct {
	handle Handle

	Area      geom.Rect
	Active    *Window
	Members   []*Window
	Workspace uint32

	parent *Fork
}

// Handle returns the stack's opaque identity.
func (s *Stack) Handle() Handle { return s.handle }

// Fork is an internal node: two children split along one axis. left is
// always present; right may be absent. left is never itself a Fork unless
// right is also present (never a chain of single-child forks).
type Fork struct {
	handle Handle

	Area               geom.Rect
	Orientation        geom.Orientation
	Split              uint32
	orientationToggled bool
	Workspace          uint32

	Left  Branch
	Right *Branch

	parent *Fork
}

// Handle returns the fork's opaque identity.
func (f *Fork) Handle() Handle { return f.handle }

// Branch is the tagged-union child slot of a Fork: exactly one of Window,
// Stack, Fork is set. A zero Branch (all nil) denotes "no branch" and must
// never appear as a live child; it is only used as a transient placeholder.
type Branch struct {
	Window *Window
	Stack  *Stack
	Fork   *Fork
}

func windowBranch(w *Window) Branch { return Branch{Window: w} }
func stackBranch(s *Stack) Branch   { return Branch{Stack: s} }
func forkBranch(f *Fork) Branch     { return Branch{Fork: f} }

// IsZero reports whether the branch carries no node at all.
func (b Branch) IsZero() bool {
	return b.Window == nil && b.Stack == nil && b.Fork == nil
}

// Equal reports whether two branches reference the same underlying node.
func (b Branch) Equal(other Branch) bool {
	return b.Window == other.Window && b.Stack == other.Stack && b.Fork == other.Fork
}

// area returns the branch's current rectangle, regardless of kind.
func (b Branch) area() geom.Rect {
	switch {
	case b.Window != nil:
		return b.Window.Rect
	case b.Stack != nil:
		return b.Stack.Area
	case b.Fork != nil:
		return b.Fork.Area
	default:
		return geom.Rect{}
	}
}

// setParent rewrites the branch's back-reference to pf, clearing whichever
// of the other two parent slots a node of a different kind would have held.
func (b Branch) setParent(pf *Fork) {
	switch {
	case b.Window != nil:
		b.Window.parentFork = pf
		b.Window.parentStack = nil
	case b.Stack != nil:
		b.Stack.parent = pf
	case b.Fork != nil:
		b.Fork.parent = pf
	}
}

// setWorkspace rewrites the branch's workspace, recursively for forks.
func (b Branch) setWorkspace(ws uint32) {
	switch {
	case b.Window != nil:
		b.Window.Workspace = ws
	case b.Stack != nil:
		b.Stack.Workspace = ws
		for _, w := range b.Stack.Members {
			w.Workspace = ws
		}
	case b.Fork != nil:
		b.Fork.Workspace = ws
		b.Fork.Left.setWorkspace(ws)
		if b.Fork.Right != nil {
			b.Fork.Right.setWorkspace(ws)
		}
	}
}

// workAreaUpdate dispatches a new rectangle to whichever kind of node the
// branch holds.
func (b Branch) workAreaUpdate(tl *Tiler, area geom.Rect) {
	switch {
	case b.Window != nil:
		b.Window.Rect = area
		tl.queue.windowPlace(b.Window.ID, Placement{Area: area, Workspace: b.Window.Workspace})
	case b.Stack != nil:
		b.Stack.workAreaUpdate(tl, area)
	case b.Fork != nil:
		b.Fork.workAreaUpdate(tl, area)
	}
}

// largestWindow walks the subtree rooted at b and returns the leaf window
// with the greatest area, ties broken by discovery order (first found wins).
func (b Branch) largestWindow() *Window {
	var best *Window
	var bestArea uint32
	visit := func(w *Window) {
		a := w.Rect.Area()
		if best == nil || a > bestArea {
			best, bestArea = w, a
		}
	}
	var walk func(Branch)
	walk = func(b Branch) {
		switch {
		case b.Window != nil:
			visit(b.Window)
		case b.Stack != nil:
			for _, w := range b.Stack.Members {
				visit(w)
			}
		case b.Fork != nil:
			walk(b.Fork.Left)
			if b.Fork.Right != nil {
				walk(*b.Fork.Right)
			}
		}
	}
	walk(b)
	return best
}

// windows appends every leaf window reachable from b to dst, in an
// unspecified but duplicate-free order (forks push both children, stacks
// contribute all members).
func (b Branch) windows(dst []*Window) []*Window {
	switch {
	case b.Window != nil:
		dst = append(dst, b.Window)
	case b.Stack != nil:
		dst = append(dst, b.Stack.Members...)
	case b.Fork != nil:
		dst = b.Fork.Left.windows(dst)
		if b.Fork.Right != nil {
			dst = b.Fork.Right.windows(dst)
		}
	}
	return dst
}

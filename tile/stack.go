package tile

import "github.com/pop-os/tiler/geom"

// newStack allocates a stack containing exactly one member, raised.
func newStack(first *Window, handle Handle) *Stack {
	s := &Stack{
		handle:    handle,
		Area:      first.Rect,
		Active:    first,
		Members:   []*Window{first},
		Workspace: first.Workspace,
	}
	first.parentFork = nil
	first.parentStack = s
	return s
}

// workAreaUpdate assigns a new rect to the stack and every member, then
// emits a StackPlace event.
func (s *Stack) workAreaUpdate(tl *Tiler, area geom.Rect) {
	s.Area = area
	for _, w := range s.Members {
		w.Rect = area
	}
	tl.queue.stackPlace(s.handle, Placement{Area: area, Workspace: s.Workspace})
}

func (s *Stack) indexOf(w *Window) int {
	for i, m := range s.Members {
		if m == w {
			return i
		}
	}
	return -1
}

// attach appends w to the stack without changing which member is active.
func (s *Stack) attach(tl *Tiler, w *Window) {
	w.parentFork = nil
	w.parentStack = s
	w.Workspace = s.Workspace
	w.Rect = s.Area
	s.Members = append(s.Members, w)
	tl.queue.stackAssign(s.handle, w.ID, true)
	tl.queue.windowPlace(w.ID, Placement{Area: s.Area, Workspace: s.Workspace})
}

// detach removes w from the stack. If w was active, the new active member
// is the next member at the same index, else the previous, else none (the
// stack is then destroyed). Reports whether the stack is now empty.
func (s *Stack) detach(tl *Tiler, w *Window) (empty bool) {
	idx := s.indexOf(w)
	if idx < 0 {
		return len(s.Members) == 0
	}

	s.Members = append(s.Members[:idx], s.Members[idx+1:]...)
	w.parentStack = nil
	tl.queue.stackAssign(s.handle, w.ID, false)

	wasActive := s.Active == w
	if len(s.Members) == 0 {
		s.Active = nil
		tl.queue.stackDestroy(s.handle)
		return true
	}

	if wasActive {
		next := idx
		if next >= len(s.Members) {
			next = idx - 1
		}
		s.Active = s.Members[next]
		tl.queue.stackRaise(s.handle, s.Active.ID)
	}
	return false
}

// selectLeft returns the member immediately before active, or nil at the
// edge.
func (s *Stack) selectLeft() *Window {
	idx := s.indexOf(s.Active)
	if idx <= 0 {
		return nil
	}
	return s.Members[idx-1]
}

// selectRight returns the member immediately after active, or nil at the
// edge.
func (s *Stack) selectRight() *Window {
	idx := s.indexOf(s.Active)
	if idx < 0 || idx >= len(s.Members)-1 {
		return nil
	}
	return s.Members[idx+1]
}

// moveLeft swaps active with its left neighbour, bounded by the edge.
func (s *Stack) moveLeft(tl *Tiler) bool {
	idx := s.indexOf(s.Active)
	if idx <= 0 {
		return false
	}
	s.Members[idx-1], s.Members[idx] = s.Members[idx], s.Members[idx-1]
	tl.queue.stackMovement(s.handle, MoveDirLeft, s.Active.ID)
	return true
}

// moveRight swaps active with its right neighbour, bounded by the edge.
func (s *Stack) moveRight(tl *Tiler) bool {
	idx := s.indexOf(s.Active)
	if idx < 0 || idx >= len(s.Members)-1 {
		return false
	}
	s.Members[idx+1], s.Members[idx] = s.Members[idx], s.Members[idx+1]
	tl.queue.stackMovement(s.handle, MoveDirRight, s.Active.ID)
	return true
}

// swapMembers exchanges the positions of two windows already present in
// the same stack.
func (s *Stack) swapMembers(a, b *Window) {
	ia, ib := s.indexOf(a), s.indexOf(b)
	if ia < 0 || ib < 0 {
		return
	}
	s.Members[ia], s.Members[ib] = s.Members[ib], s.Members[ia]
}

// replace substitutes in for out in the members list, preserving position
// and active-ness, and updates in's placement to the stack's. It does not
// touch either window's parentFork/parentStack: Swap's cross-container
// case assigns both windows' back-references itself, once each, only
// after every container's slot has been updated (see Tiler.Swap).
func (s *Stack) replace(out, in *Window) bool {
	idx := s.indexOf(out)
	if idx < 0 {
		return false
	}
	s.Members[idx] = in
	in.Workspace = s.Workspace
	in.Rect = s.Area
	if s.Active == out {
		s.Active = in
	}
	return true
}

package tile

import "github.com/pop-os/tiler/geom"

// direction is one of the four cardinal navigation directions.
type direction int

const (
	dirAbove direction = iota
	dirBelow
	dirLeft
	dirRight
)

// filterAndDistance returns the directional candidate filter and distance
// function for dir, relative to origin. Note is_left/is_right are applied
// according to the source's naming (a rect "is_left" of origin when its x
// exceeds origin's — see geom.Rect.IsLeft), so a Right search keeps
// IsLeft-passing candidates and a Left search keeps IsRight-passing ones.
func filterAndDistance(dir direction, origin geom.Rect) (filter func(geom.Rect) bool, dist func(geom.Rect) float64) {
	switch dir {
	case dirAbove:
		return func(r geom.Rect) bool { return r.IsBelow(origin) },
			func(r geom.Rect) float64 { return origin.DistanceUpward(r) }
	case dirBelow:
		return func(r geom.Rect) bool { return r.IsAbove(origin) },
			func(r geom.Rect) float64 { return origin.DistanceDownward(r) }
	case dirLeft:
		return func(r geom.Rect) bool { return r.IsRight(origin) },
			func(r geom.Rect) float64 { return origin.DistanceWestward(r) }
	default: // dirRight
		return func(r geom.Rect) bool { return r.IsLeft(origin) },
			func(r geom.Rect) float64 { return origin.DistanceEastward(r) }
	}
}

// windowsExcluding returns every attached, registered window on workspace ws
// other than active and active's own stack-mates (same-stack windows are
// invisible to geometric navigation; select_left/right handles those).
func (tl *Tiler) windowsExcluding(ws uint32, active *Window) []*Window {
	var stackMates map[*Window]bool
	if active != nil && active.parentStack != nil {
		stackMates = make(map[*Window]bool, len(active.parentStack.Members))
		for _, m := range active.parentStack.Members {
			stackMates[m] = true
		}
	}

	var out []*Window
	for _, w := range tl.windows {
		if w == active || w.Workspace != ws {
			continue
		}
		if w.parentFork == nil && w.parentStack == nil {
			continue
		}
		if stackMates != nil && stackMates[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// nearestWindow returns the closest candidate on active's workspace
// satisfying filter, measured by dist, or nil if none qualifies.
func (tl *Tiler) nearestWindow(active *Window, dir direction) *Window {
	filter, dist := filterAndDistance(dir, active.Rect)
	var best *Window
	var bestDist float64
	for _, c := range tl.windowsExcluding(active.Workspace, active) {
		if !filter(c.Rect) {
			continue
		}
		d := dist(c.Rect)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// focusWindow makes w the Tiler's active window, switching workspace first
// if needed and raising it within its stack if it's a buried member.
func (tl *Tiler) focusWindow(w *Window) {
	if w.Workspace != tl.activeWorkspace {
		tl.doWorkspaceSwitch(w.Workspace)
	}
	if w.parentStack != nil {
		tl.raise(w.parentStack, w)
	}
	tl.setActive(w)
}

// Focus makes id the active window directly, switching workspace and
// raising within its stack as needed. An unknown or never-attached id is a
// silent no-op.
func (tl *Tiler) Focus(id WindowID) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	w, ok := tl.windows[id]
	if !ok || (w.parentFork == nil && w.parentStack == nil) {
		return tl.finish(old)
	}
	tl.focusWindow(w)
	return tl.finish(old)
}

// focusInDirection performs the geometric neighbour search, falling back to
// display-level navigation when no in-workspace candidate qualifies.
func (tl *Tiler) focusInDirection(dir direction) {
	if tl.active == nil {
		return
	}
	if candidate := tl.nearestWindow(tl.active, dir); candidate != nil {
		tl.focusWindow(candidate)
		return
	}
	tl.focusDisplayFallback(dir)
}

// currentDisplay is the display hosting the active workspace, if any.
func (tl *Tiler) currentDisplay() *Display {
	ws, ok := tl.workspaces[tl.activeWorkspace]
	if !ok {
		return nil
	}
	return ws.display
}

// focusDisplayFallback finds the nearest display in dir from the current
// one and focuses that display's active workspace's focused window.
func (tl *Tiler) focusDisplayFallback(dir direction) {
	cur := tl.currentDisplay()
	if cur == nil {
		return
	}
	filter, dist := filterAndDistance(dir, cur.Area)

	var best *Display
	var bestDist float64
	for _, d := range tl.displays {
		if d == cur || !filter(d.Area) {
			continue
		}
		dd := dist(d.Area)
		if best == nil || dd < bestDist {
			best, bestDist = d, dd
		}
	}
	if best == nil || best.ActiveWorkspace == nil {
		return
	}

	target := *best.ActiveWorkspace
	tl.doWorkspaceSwitch(target)
	if ws := tl.workspaces[target]; ws != nil && ws.Focus != nil {
		tl.setActive(ws.Focus)
	}
}

// FocusAbove focuses the nearest window above the active one, or the
// nearest display above if none qualifies. focus_above never consults the
// stack.
func (tl *Tiler) FocusAbove() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	tl.focusInDirection(dirAbove)
	return tl.finish(old)
}

// FocusBelow is the downward counterpart of FocusAbove.
func (tl *Tiler) FocusBelow() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	tl.focusInDirection(dirBelow)
	return tl.finish(old)
}

// FocusLeft first asks the active window's stack (if any) for select_left;
// only at a stack edge, or when unstacked, does it fall through to the
// geometric search.
func (tl *Tiler) FocusLeft() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	if tl.active != nil && tl.active.parentStack != nil {
		if pred := tl.active.parentStack.selectLeft(); pred != nil {
			tl.raise(tl.active.parentStack, pred)
			tl.setActive(pred)
			return tl.finish(old)
		}
	}
	tl.focusInDirection(dirLeft)
	return tl.finish(old)
}

// FocusRight is the symmetric counterpart of FocusLeft, using select_right.
func (tl *Tiler) FocusRight() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	if tl.active != nil && tl.active.parentStack != nil {
		if succ := tl.active.parentStack.selectRight(); succ != nil {
			tl.raise(tl.active.parentStack, succ)
			tl.setActive(succ)
			return tl.finish(old)
		}
	}
	tl.focusInDirection(dirRight)
	return tl.finish(old)
}

// FocusDisplayAbove/Below/Left/Right jump straight to display-level
// navigation, bypassing any in-workspace search.
func (tl *Tiler) FocusDisplayAbove() []Event { return tl.focusDisplayCmd(dirAbove) }
func (tl *Tiler) FocusDisplayBelow() []Event { return tl.focusDisplayCmd(dirBelow) }
func (tl *Tiler) FocusDisplayLeft() []Event  { return tl.focusDisplayCmd(dirLeft) }
func (tl *Tiler) FocusDisplayRight() []Event { return tl.focusDisplayCmd(dirRight) }

func (tl *Tiler) focusDisplayCmd(dir direction) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	tl.focusDisplayFallback(dir)
	return tl.finish(old)
}

// ---------------------------------------------------------------------
// Move-in-direction (spec §4.5)
// ---------------------------------------------------------------------

// MoveLeft tries stack.move_left first; only at the stack edge (or when
// unstacked) does it invoke move-in-direction.
func (tl *Tiler) MoveLeft() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	if w := tl.active; w != nil && w.parentStack != nil {
		if w.parentStack.moveLeft(tl) {
			return tl.finish(old)
		}
	}
	tl.moveInDirection(dirLeft)
	return tl.finish(old)
}

// MoveRight is the symmetric counterpart of MoveLeft.
func (tl *Tiler) MoveRight() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	if w := tl.active; w != nil && w.parentStack != nil {
		if w.parentStack.moveRight(tl) {
			return tl.finish(old)
		}
	}
	tl.moveInDirection(dirRight)
	return tl.finish(old)
}

// MoveAbove and MoveBelow never consult the stack.
func (tl *Tiler) MoveAbove() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	tl.moveInDirection(dirAbove)
	return tl.finish(old)
}

func (tl *Tiler) MoveBelow() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	old := tl.active
	tl.moveInDirection(dirBelow)
	return tl.finish(old)
}

// moveInDirection implements §4.5's move-in-direction: extract from a stack
// if stacked, otherwise swap with or relocate to the nearest neighbour.
func (tl *Tiler) moveInDirection(dir direction) {
	w := tl.active
	if w == nil {
		return
	}

	if s := w.parentStack; s != nil {
		tl.extractFromStack(w, s, dir)
		return
	}

	target := tl.nearestWindow(w, dir)
	if target == nil {
		return
	}

	if target.parentFork != nil && w.parentFork == target.parentFork {
		w.parentFork.swapPositions(w, target)
		w.parentFork.refresh(tl)
		return
	}

	pf := w.parentFork
	tl.detachBranch(pf, windowBranch(w))
	w.parentFork = nil
	w.parentStack = nil
	tl.attachToWindow(target, w)
	tl.setActive(w)
}

// extractFromStack pulls w out of its stack s and places it beside the
// stack as a sibling in a fresh intermediate fork, oriented so w lands on
// the requested side of the stack. If s holds only w to begin with, there
// is nothing to sit beside: s is destroyed and w simply replaces it in
// pf's branch slot, unstacked but otherwise unmoved.
func (tl *Tiler) extractFromStack(w *Window, s *Stack, dir direction) {
	pf := s.parent

	if len(s.Members) == 1 {
		tl.queue.stackAssign(s.handle, w.ID, false)
		tl.queue.stackDestroy(s.handle)
		w.parentStack = nil
		w.parentFork = pf
		if pf != nil {
			tl.spliceIntoParentSlot(pf, stackBranch(s), windowBranch(w))
			pf.refresh(tl)
		}
		tl.setActive(w)
		return
	}

	if empty := s.detach(tl, w); empty {
		tl.logStructuralError("move: stack reported empty despite having other members")
		return
	}

	if pf == nil {
		return
	}

	handle := tl.nextHandleID()
	orientation := geom.Vertical
	stackFirst := true
	switch dir {
	case dirAbove:
		orientation, stackFirst = geom.Vertical, false
	case dirBelow:
		orientation, stackFirst = geom.Vertical, true
	case dirLeft:
		orientation, stackFirst = geom.Horizontal, false
	case dirRight:
		orientation, stackFirst = geom.Horizontal, true
	}

	var left, right Branch
	if stackFirst {
		left, right = stackBranch(s), windowBranch(w)
	} else {
		left, right = windowBranch(w), stackBranch(s)
	}

	newF := &Fork{
		handle:      handle,
		Area:        s.Area,
		Orientation: orientation,
		Workspace:   s.Workspace,
		Left:        left,
	}
	newF.Right = &right
	axis := axisLength(orientation, newF.Area)
	newF.Split = axis / 2

	if !tl.spliceIntoParentSlot(pf, stackBranch(s), forkBranch(newF)) {
		tl.logStructuralError("move: stack not found in its claimed parent fork")
		return
	}
	newF.parent = pf
	w.parentFork = newF
	w.parentStack = nil
	w.Workspace = s.Workspace
	s.parent = newF

	tl.forks[handle] = newF
	pf.refresh(tl)
	tl.setActive(w)
}

package tile

import "github.com/pop-os/tiler/geom"

func axisLength(o geom.Orientation, r geom.Rect) uint32 {
	if o == geom.Horizontal {
		return r.Width
	}
	return r.Height
}

func clampSplit(v, max uint32) uint32 {
	if v > max {
		return max
	}
	return v
}

// newFork allocates a fork hosting a single child, with orientation and
// split derived from its area. The split carries a centre-minus-one bias
// (matching the original's split_handle initialization) that is cosmetic
// until a second child is attached — a lone left branch always occupies the
// fork's full area regardless of split.
func newFork(area geom.Rect, left Branch, workspace uint32, handle Handle) *Fork {
	orientation := geom.PreferredOrientation(area)
	axis := axisLength(orientation, area)
	var split uint32
	if axis > 0 {
		split = axis/2 - 1
	}
	f := &Fork{
		handle:      handle,
		Area:        area,
		Orientation: orientation,
		Split:       split,
		Workspace:   workspace,
		Left:        left,
	}
	left.setParent(f)
	return f
}

// childRects computes the left/right rectangles implied by the fork's
// current area, orientation, and split. The right rect is only meaningful
// when f.Right is non-nil.
func (f *Fork) childRects() (left, right geom.Rect) {
	x, y, w, h := f.Area.X, f.Area.Y, f.Area.Width, f.Area.Height
	s := f.Split
	switch f.Orientation {
	case geom.Vertical:
		left = geom.New(x, y, w, s)
		right = geom.New(x, y+s, w, h-s)
	default: // Horizontal
		left = geom.New(x, y, s, h)
		right = geom.New(x+s, y, w-s, h)
	}
	return left, right
}

// workAreaUpdate assigns a new area to the fork, rescaling its split
// proportionally to the axis change, then recursively retiles both
// children before emitting a Fork(update) event.
func (f *Fork) workAreaUpdate(tl *Tiler, area geom.Rect) {
	oldAxis := axisLength(f.Orientation, f.Area)
	newAxis := axisLength(f.Orientation, area)

	if oldAxis > 0 {
		f.Split = uint32(uint64(newAxis) * uint64(f.Split) / uint64(oldAxis))
	} else {
		f.Split = newAxis / 2
	}
	f.Split = clampSplit(f.Split, newAxis)
	f.Area = area

	if f.Right == nil {
		f.Left.workAreaUpdate(tl, f.Area)
	} else {
		leftRect, rightRect := f.childRects()
		f.Left.workAreaUpdate(tl, leftRect)
		f.Right.workAreaUpdate(tl, rightRect)
	}

	f.emitUpdate(tl)
}

// refresh retiles the fork's children against its current, unchanged area.
func (f *Fork) refresh(tl *Tiler) {
	f.workAreaUpdate(tl, f.Area)
}

func (f *Fork) emitUpdate(tl *Tiler) {
	tl.queue.forkUpdate(f.handle, ForkUpdate{
		Workspace:   f.Workspace,
		Orientation: f.Orientation,
		Rect:        f.Area,
		Handle:      f.Split,
	})
}

// resize clamps split to the fork's current axis and retiles.
func (f *Fork) resize(tl *Tiler, split uint32) {
	axis := axisLength(f.Orientation, f.Area)
	f.Split = clampSplit(split, axis)
	f.refresh(tl)
}

// toggleOrientation flips the splitting axis, converts the split by ratio,
// and swaps left/right so that two consecutive toggles restore both the
// original orientation and the original left/right order exactly.
func (f *Fork) toggleOrientation(tl *Tiler) {
	oldAxis := axisLength(f.Orientation, f.Area)
	if f.Orientation == geom.Horizontal {
		f.Orientation = geom.Vertical
	} else {
		f.Orientation = geom.Horizontal
	}
	newAxis := axisLength(f.Orientation, f.Area)

	if oldAxis > 0 {
		ratio := f.Split * 100 / oldAxis
		f.Split = newAxis * ratio / 100
	} else {
		f.Split = newAxis / 2
	}
	f.Split = clampSplit(f.Split, newAxis)

	if f.Right != nil {
		f.Left, *f.Right = *f.Right, f.Left
	}
	f.orientationToggled = !f.orientationToggled

	f.refresh(tl)
}

// resetOrientation resets split to half the current axis, then re-toggles
// if the fork isn't already at the area's preferred orientation.
func (f *Fork) resetOrientation(tl *Tiler) {
	axis := axisLength(f.Orientation, f.Area)
	f.Split = axis / 2

	if preferred := geom.PreferredOrientation(f.Area); f.Orientation != preferred {
		f.toggleOrientation(tl)
		return
	}
	f.refresh(tl)
}

// replace substitutes in for out in whichever slot currently holds out,
// leaving the fork object itself (and the other slot) unchanged. It does
// not touch either window's parentFork/parentStack: Swap's cross-container
// case assigns both windows' back-references itself, once each, only
// after every container's slot has been updated (see Tiler.Swap).
func (f *Fork) replace(out, in *Window) bool {
	if f.Left.Window == out {
		f.Left = windowBranch(in)
		return true
	}
	if f.Right != nil && f.Right.Window == out {
		*f.Right = windowBranch(in)
		return true
	}
	return false
}

// swapPositions exchanges a and b, both already children of f, in a single
// pass. A pair of independent f.replace calls would alias when a and b
// share the same fork (the second call would see the first call's write),
// so both slots are captured before either is mutated.
func (f *Fork) swapPositions(a, b *Window) {
	aLeft := f.Left.Window == a
	bLeft := f.Left.Window == b
	aRight := f.Right != nil && f.Right.Window == a
	bRight := f.Right != nil && f.Right.Window == b

	if aLeft {
		f.Left = windowBranch(b)
		b.parentFork = f
	}
	if aRight {
		*f.Right = windowBranch(b)
		b.parentFork = f
	}
	if bLeft {
		f.Left = windowBranch(a)
		a.parentFork = f
	}
	if bRight {
		*f.Right = windowBranch(a)
		a.parentFork = f
	}
}

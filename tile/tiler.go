package tile

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/pop-os/tiler/geom"
)

// Tiler is the top-level façade: it owns every registry, the active-window
// and active-workspace cursors, and is the sole entry point through which
// the tile tree is mutated. Every exported method holds mu for its full
// duration — the single authority token the rest of the tree's shared,
// cyclic parent/child pointers depend on for safety.
type Tiler struct {
	mu  sync.Mutex
	log *zerolog.Logger

	windows    map[WindowID]*Window
	forks      map[Handle]*Fork
	displays   map[uint32]*Display
	workspaces map[uint32]*Workspace

	nextHandle uint64

	active          *Window
	activeWorkspace uint32

	queue *eventQueue
}

// NewTiler constructs an empty Tiler. A nil logger is replaced with a
// disabled one, matching the teacher's nil-safe logger convention.
func NewTiler(log *zerolog.Logger) *Tiler {
	if log == nil {
		disabled := zerolog.Nop()
		log = &disabled
	}
	return &Tiler{
		log:        log,
		windows:    make(map[WindowID]*Window),
		forks:      make(map[Handle]*Fork),
		displays:   make(map[uint32]*Display),
		workspaces: make(map[uint32]*Workspace),
		queue:      newEventQueue(),
	}
}

func (tl *Tiler) nextHandleID() Handle {
	tl.nextHandle++
	return Handle(tl.nextHandle)
}

// window returns the registered window for id, creating an empty, detached
// entry if none exists. Only Attach calls it; Detach, Focus and Swap look
// ids up in the registry without creating entries, and silently no-op on
// an id that is unknown or was never attached.
func (tl *Tiler) window(id WindowID) *Window {
	w, ok := tl.windows[id]
	if !ok {
		w = &Window{ID: id}
		tl.windows[id] = w
	}
	return w
}

func (tl *Tiler) ensureDisplay(id uint32, area geom.Rect) *Display {
	d, ok := tl.displays[id]
	if !ok {
		d = newDisplay(id, area)
		tl.displays[id] = d
	}
	return d
}

func (tl *Tiler) ensureWorkspace(id uint32) *Workspace {
	ws, ok := tl.workspaces[id]
	if !ok {
		ws = &Workspace{ID: id}
		tl.workspaces[id] = ws
	}
	return ws
}

func (tl *Tiler) logStructuralError(msg string) {
	tl.log.Error().Str("invariant", msg).Msg("tile: structural inconsistency")
}

// finish closes out a command: it emits a trailing Focus event iff the
// active window actually changed (never for the clearing of active to nil),
// then drains the queue.
func (tl *Tiler) finish(oldActive *Window) []Event {
	if tl.active != nil && tl.active != oldActive {
		tl.queue.setFocus(tl.active.ID)
	}
	return tl.queue.drain()
}

func (tl *Tiler) setActive(w *Window) {
	tl.active = w
	if w != nil {
		tl.activeWorkspace = w.Workspace
		if ws, ok := tl.workspaces[w.Workspace]; ok {
			ws.Focus = w
		}
	}
}

// raise makes w the active (visible) member of its stack, emitting a raise
// event and the visibility flips of the previously- and newly-raised
// members when the stack's workspace is the one currently on screen.
func (tl *Tiler) raise(s *Stack, w *Window) {
	if s.Active == w {
		return
	}
	prev := s.Active
	s.Active = w
	tl.queue.stackRaise(s.handle, w.ID)
	if s.Workspace == tl.activeWorkspace {
		if prev != nil {
			tl.queue.windowVisibility(prev.ID, false)
		}
		tl.queue.windowVisibility(w.ID, true)
	}
}

// ---------------------------------------------------------------------
// Attach / Detach (spec §4.4)
// ---------------------------------------------------------------------

// Attach registers id (if new) and places it in the tile tree: next to the
// current active window, or as the sole occupant of the active workspace if
// there is none.
func (tl *Tiler) Attach(id WindowID) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	w := tl.window(id)
	if w.parentFork != nil || w.parentStack != nil {
		return tl.finish(old)
	}
	w.Visible = true

	if tl.active != nil {
		tl.attachToWindow(tl.active, w)
	} else {
		tl.attachToWorkspace(tl.ensureWorkspace(tl.activeWorkspace), w)
	}
	tl.setActive(w)

	return tl.finish(old)
}

// attachToWindow implements §4.4.1.
func (tl *Tiler) attachToWindow(anchor, w *Window) {
	if anchor.parentStack != nil {
		anchor.parentStack.attach(tl, w)
		return
	}

	pf := anchor.parentFork
	if pf == nil {
		tl.logStructuralError("attach: anchor window has neither parent fork nor parent stack")
		return
	}

	if pf.Right == nil {
		w.parentFork = pf
		w.parentStack = nil
		w.Workspace = pf.Workspace
		rb := windowBranch(w)
		pf.Right = &rb
		pf.resetOrientation(tl)
		return
	}

	ws := anchor.Workspace
	handle := tl.nextHandleID()
	newF := newFork(anchor.Rect, windowBranch(anchor), ws, handle)
	if !tl.spliceIntoParentSlot(pf, windowBranch(anchor), forkBranch(newF)) {
		tl.logStructuralError("attach: anchor not found in its claimed parent fork")
		return
	}
	newF.parent = pf

	w.parentFork = newF
	w.parentStack = nil
	w.Workspace = ws
	rb := windowBranch(w)
	newF.Right = &rb

	tl.forks[handle] = newF

	pf.refresh(tl)
	newF.resetOrientation(tl)
}

// attachToWorkspace implements §4.4.2.
func (tl *Tiler) attachToWorkspace(ws *Workspace, w *Window) {
	w.Workspace = ws.ID

	if ws.Root != nil {
		anchor := forkBranch(ws.Root).largestWindow()
		if anchor == nil {
			tl.logStructuralError("attach: workspace root fork contains no windows")
			return
		}
		tl.attachToWindow(anchor, w)
		return
	}

	area := geom.Rect{}
	if ws.display != nil {
		area = ws.display.Area
	}

	handle := tl.nextHandleID()
	f := newFork(area, windowBranch(w), ws.ID, handle)
	ws.Root = f
	tl.forks[handle] = f
	ws.Focus = w
	w.Rect = area
	tl.queue.windowPlace(w.ID, Placement{Area: area, Workspace: ws.ID})
	f.emitUpdate(tl)
}

// spliceIntoParentSlot replaces old (found by value-equality) with repl in
// whichever of pf's two slots currently holds it.
func (tl *Tiler) spliceIntoParentSlot(pf *Fork, old, repl Branch) bool {
	if pf.Left.Equal(old) {
		pf.Left = repl
		repl.setParent(pf)
		return true
	}
	if pf.Right != nil && pf.Right.Equal(old) {
		*pf.Right = repl
		repl.setParent(pf)
		return true
	}
	return false
}

// Detach removes id from the tile tree and the window registry.
func (tl *Tiler) Detach(id WindowID) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	w, ok := tl.windows[id]
	if !ok {
		return tl.finish(old)
	}
	delete(tl.windows, id)

	switch {
	case w.parentStack != nil:
		s := w.parentStack
		w.parentStack = nil
		if empty := s.detach(tl, w); empty {
			tl.detachBranchFromParent(s.parent, stackBranch(s))
		}
	case w.parentFork != nil:
		tl.detachBranch(w.parentFork, windowBranch(w))
	default:
		// never attached: nothing structural to undo.
	}

	if tl.active == w {
		tl.active = nil
	}

	return tl.finish(old)
}

// detachBranch implements detach_branch(fork, branch_ref): the structural
// cleanup performed when branch is removed from pf.
func (tl *Tiler) detachBranch(pf *Fork, branch Branch) {
	if pf == nil {
		return
	}

	switch {
	case pf.Left.Equal(branch):
		if pf.Right != nil {
			promoted := *pf.Right
			pf.Right = nil
			pf.Left = promoted
			promoted.setParent(pf)
			if promoted.Fork != nil {
				tl.reparent(pf, promoted.Fork)
			} else {
				pf.refresh(tl)
			}
			return
		}
		tl.detachFork(pf)
	case pf.Right != nil && pf.Right.Equal(branch):
		pf.Right = nil
		if pf.Left.Fork != nil {
			tl.reparent(pf, pf.Left.Fork)
			return
		}
		pf.refresh(tl)
	default:
		tl.logStructuralError("detach: branch not found in its claimed parent fork")
	}
}

// detachBranchFromParent is detachBranch guarded against a nil parent
// fork (a stack living directly as a workspace root is never legal, but
// the guard keeps this robust against future root-kind changes).
func (tl *Tiler) detachBranchFromParent(pf *Fork, branch Branch) {
	tl.detachBranch(pf, branch)
}

// reparent implements fork compression: p has just been left with a single
// child, g, that is itself a Fork. g replaces p everywhere p was held.
func (tl *Tiler) reparent(p, g *Fork) {
	gp := p.parent
	if gp != nil {
		tl.spliceIntoParentSlot(gp, forkBranch(p), forkBranch(g))
		gp.refresh(tl)
	} else {
		ws := tl.workspaceOf(p)
		if ws != nil {
			ws.Root = g
		}
		g.parent = nil
		g.workAreaUpdate(tl, p.Area)
	}
	delete(tl.forks, p.handle)
	tl.queue.forkDestroy(p.handle)
}

// detachFork strips a chain of now-childless forks from leaf upward,
// emitting ForkDestroy for each, until it reaches one with a surviving
// sibling slot or the workspace root.
func (tl *Tiler) detachFork(f *Fork) {
	delete(tl.forks, f.handle)
	tl.queue.forkDestroy(f.handle)

	pf := f.parent
	if pf == nil {
		ws := tl.workspaceOf(f)
		if ws != nil {
			ws.Root = nil
		}
		return
	}
	tl.detachBranch(pf, forkBranch(f))
}

func (tl *Tiler) workspaceOf(f *Fork) *Workspace {
	return tl.workspaces[f.Workspace]
}

// ---------------------------------------------------------------------
// Swap, stack toggle, resize, orientation toggle
// ---------------------------------------------------------------------

// Swap exchanges the tree positions of a and b. Either id may be unknown or
// detached, in which case the operation silently no-ops; Swap(a, a) is
// always a no-op.
func (tl *Tiler) Swap(a, b WindowID) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	wa, okA := tl.windows[a]
	wb, okB := tl.windows[b]
	if !okA || !okB || wa == wb {
		return tl.finish(old)
	}
	if wa.parentFork == nil && wa.parentStack == nil {
		return tl.finish(old)
	}
	if wb.parentFork == nil && wb.parentStack == nil {
		return tl.finish(old)
	}

	pfA, sA := wa.parentFork, wa.parentStack
	pfB, sB := wb.parentFork, wb.parentStack

	switch {
	case sA != nil && sA == sB:
		sA.swapMembers(wa, wb)
	case pfA != nil && pfA == pfB:
		pfA.swapPositions(wa, wb)
	default:
		// Each container's slot is updated first, without touching either
		// window's back-reference; only once both slots hold their new
		// occupant are wa's and wb's parentFork/parentStack pairs assigned,
		// each exactly once. Interleaving slot-update with back-reference
		// clearing (as a naive pair of symmetric swap calls would) lets the
		// second call's "clear the outgoing window's parent" step clobber
		// the first call's freshly assigned parent for the other window.
		if sA != nil {
			sA.replace(wa, wb)
		} else if pfA != nil {
			pfA.replace(wa, wb)
		}
		if sB != nil {
			sB.replace(wb, wa)
		} else if pfB != nil {
			pfB.replace(wb, wa)
		}

		wb.parentStack, wb.parentFork = sA, pfA
		wa.parentStack, wa.parentFork = sB, pfB
	}

	refreshed := make(map[any]bool, 2)
	if pfA != nil && !refreshed[pfA] {
		refreshed[pfA] = true
		pfA.refresh(tl)
	}
	if pfB != nil && !refreshed[pfB] {
		refreshed[pfB] = true
		pfB.refresh(tl)
	}
	if sA != nil && !refreshed[sA] {
		refreshed[sA] = true
		sA.workAreaUpdate(tl, sA.Area)
	}
	if sB != nil && !refreshed[sB] {
		refreshed[sB] = true
		sB.workAreaUpdate(tl, sB.Area)
	}

	return tl.finish(old)
}

// ToggleStack implements §4.4.3 against the active window.
func (tl *Tiler) ToggleStack() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	target := tl.active
	if target == nil {
		return tl.finish(old)
	}

	if s := target.parentStack; s != nil {
		pf := s.parent
		if empty := s.detach(tl, target); empty && pf != nil {
			if !tl.spliceIntoParentSlot(pf, stackBranch(s), windowBranch(target)) {
				tl.logStructuralError("toggle_stack: stack not found in its claimed parent fork")
				return tl.finish(old)
			}
			pf.refresh(tl)
		}
		return tl.finish(old)
	}

	pf := target.parentFork
	if pf == nil {
		return tl.finish(old)
	}
	handle := tl.nextHandleID()
	s := newStack(target, handle)
	s.parent = pf
	tl.spliceIntoParentSlot(pf, windowBranch(target), stackBranch(s))
	tl.queue.stackAssign(handle, target.ID, true)
	tl.queue.stackPlace(handle, Placement{Area: s.Area, Workspace: s.Workspace})

	return tl.finish(old)
}

// Resize looks a fork up by its opaque handle and clamps/applies a new
// split. An unknown handle silently no-ops.
func (tl *Tiler) Resize(handle Handle, split uint32) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	f, ok := tl.forks[handle]
	if !ok {
		return tl.finish(old)
	}
	f.resize(tl, split)
	return tl.finish(old)
}

// ToggleOrientation flips the orientation of the active window's parent
// fork. No-ops if there is no active window, or the active window is a
// lone stack/window at the workspace root with no fork parent.
func (tl *Tiler) ToggleOrientation() []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	if tl.active == nil {
		return tl.finish(old)
	}
	pf := tl.active.parentFork
	if pf == nil && tl.active.parentStack != nil {
		pf = tl.active.parentStack.parent
	}
	if pf == nil {
		return tl.finish(old)
	}
	pf.toggleOrientation(tl)
	return tl.finish(old)
}

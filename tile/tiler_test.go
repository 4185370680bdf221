package tile

import (
	"testing"

	"github.com/pop-os/tiler/geom"
)

func eventsByType(events []Event, t EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func windowPlaceFor(events []Event, id WindowID) (WindowPlaceEvent, bool) {
	for _, e := range events {
		if e.Type == EventTypeWindowPlace && e.WindowPlace.Window == id {
			return *e.WindowPlace, true
		}
	}
	return WindowPlaceEvent{}, false
}

// TestSingleWindowScenario is scenario S1: a single window on a 2560x1440
// display fills the workspace, its root fork split at the near-centre bias.
func TestSingleWindowScenario(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 2560, 1440))
	tl.WorkspaceUpdate(0, 0)

	events := tl.Attach(WindowID{Outer: 0, Inner: 0})

	place, ok := windowPlaceFor(events, WindowID{Outer: 0, Inner: 0})
	if !ok {
		t.Fatalf("expected a WindowPlace event, got %+v", events)
	}
	if place.Placement.Area != geom.New(1, 1, 2560, 1440) {
		t.Fatalf("WindowPlace area = %+v", place.Placement.Area)
	}

	focus := eventsByType(events, EventTypeFocus)
	if len(focus) != 1 || *focus[0].Focus != (WindowID{Outer: 0, Inner: 0}) {
		t.Fatalf("expected exactly one Focus event for the attached window, got %+v", focus)
	}

	forkEvents := eventsByType(events, EventTypeFork)
	if len(forkEvents) != 1 {
		t.Fatalf("expected exactly one Fork event, got %d", len(forkEvents))
	}
	fe := forkEvents[0].Fork
	if fe.Update.Orientation != geom.Horizontal {
		t.Fatalf("root fork orientation = %v, want Horizontal (wider than tall)", fe.Update.Orientation)
	}
	if fe.Update.Handle != 1279 {
		t.Fatalf("root fork split = %d, want 1279", fe.Update.Handle)
	}
}

// TestSecondWindowSplitsInHalf is scenario S2.
func TestSecondWindowSplitsInHalf(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 2560, 1440))
	tl.WorkspaceUpdate(0, 0)
	tl.Attach(WindowID{Outer: 0, Inner: 0})

	events := tl.Attach(WindowID{Outer: 0, Inner: 1})

	p0, ok0 := windowPlaceFor(events, WindowID{Outer: 0, Inner: 0})
	p1, ok1 := windowPlaceFor(events, WindowID{Outer: 0, Inner: 1})
	if !ok0 || !ok1 {
		t.Fatalf("expected placements for both windows, got %+v", events)
	}
	if p0.Placement.Area != geom.New(1, 1, 1280, 1440) {
		t.Fatalf("left window area = %+v", p0.Placement.Area)
	}
	if p1.Placement.Area != geom.New(1281, 1, 1280, 1440) {
		t.Fatalf("right window area = %+v", p1.Placement.Area)
	}

	focus := eventsByType(events, EventTypeFocus)
	if len(focus) != 1 || *focus[0].Focus != (WindowID{Outer: 0, Inner: 1}) {
		t.Fatalf("expected Focus on the newly attached window, got %+v", focus)
	}
}

// TestWorkspaceSwitchHidesNonMembers is scenario S5.
func TestWorkspaceSwitchHidesNonMembers(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 1920, 1080))
	tl.WorkspaceUpdate(0, 0)
	tl.WorkspaceUpdate(1, 0)

	w00 := WindowID{Outer: 0, Inner: 0}
	w01 := WindowID{Outer: 0, Inner: 1}
	w02 := WindowID{Outer: 0, Inner: 2}

	tl.Attach(w00)
	tl.Attach(w01)

	tl.WorkspaceSwitch(1)
	tl.Attach(w02)

	events := tl.WorkspaceSwitch(1)
	if len(events) != 0 {
		t.Fatalf("switching to the already-active workspace should emit nothing, got %+v", events)
	}

	events = tl.WorkspaceSwitch(0)
	// Switching away from 1 back to 0: 0's windows become visible, 1's hide.
	vis := eventsByType(events, EventTypeWindowVisibility)
	seen := map[WindowID]bool{}
	for _, e := range vis {
		seen[e.WindowVisibility.Window] = e.WindowVisibility.Visible
	}
	if !seen[w00] || !seen[w01] {
		t.Fatalf("expected workspace-0 windows to become visible, got %+v", vis)
	}
	if v, ok := seen[w02]; !ok || v {
		t.Fatalf("expected workspace-1 window to become hidden, got %+v", vis)
	}

	fw := eventsByType(events, EventTypeFocusWorkspace)
	if len(fw) != 1 || *fw[0].FocusWorkspace != 0 {
		t.Fatalf("expected FocusWorkspace(0), got %+v", fw)
	}
}

// TestToggleOrientationRoundTrip checks the §8 round-trip invariant: two
// consecutive toggles restore both orientation and left/right order.
func TestToggleOrientationRoundTrip(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 2560, 1440))
	tl.WorkspaceUpdate(0, 0)
	tl.Attach(WindowID{Outer: 0, Inner: 0})
	tl.Attach(WindowID{Outer: 0, Inner: 1})

	ws := tl.workspaces[0]
	f := ws.Root
	origOrientation := f.Orientation
	origLeft, origRight := f.Left, *f.Right

	tl.ToggleOrientation()
	tl.setActive(f.Left.Window) // keep active pointed at a leaf regardless of which side toggling left it on
	tl.ToggleOrientation()

	if f.Orientation != origOrientation {
		t.Fatalf("orientation not restored: got %v, want %v", f.Orientation, origOrientation)
	}
	if !f.Left.Equal(origLeft) || !f.Right.Equal(origRight) {
		t.Fatalf("left/right order not restored")
	}
}

// TestDetachThenAttachRestoresSingleWindowRoot is a §8 round-trip property.
func TestDetachThenAttachRestoresSingleWindowRoot(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 1920, 1080))
	tl.WorkspaceUpdate(0, 0)
	id := WindowID{Outer: 0, Inner: 0}
	tl.Attach(id)

	tl.Detach(id)
	if ws := tl.workspaces[0]; ws.Root != nil {
		t.Fatalf("expected root fork to be cleared after detaching the only window")
	}

	tl.Attach(id)
	ws := tl.workspaces[0]
	if ws.Root == nil || ws.Root.Left.Window == nil || ws.Root.Left.Window.ID != id {
		t.Fatalf("expected a fresh single-window root fork, got %+v", ws.Root)
	}
	if ws.Root.Right != nil {
		t.Fatalf("expected no right branch on a single-window root")
	}
}

// TestSwapSameWindowIsNoOp covers Swap(a, a).
func TestSwapSameWindowIsNoOp(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 1920, 1080))
	tl.WorkspaceUpdate(0, 0)
	id := WindowID{Outer: 0, Inner: 0}
	tl.Attach(id)

	events := tl.Swap(id, id)
	if len(events) != 0 {
		t.Fatalf("Swap(a, a) should emit nothing, got %+v", events)
	}
}

// TestStackToggleAndDetach is scenario S4.
func TestStackToggleAndDetach(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 1920, 1080))
	tl.WorkspaceUpdate(0, 0)

	w1 := WindowID{Outer: 0, Inner: 1}
	w2 := WindowID{Outer: 0, Inner: 2}
	w3 := WindowID{Outer: 0, Inner: 3}
	tl.Attach(w1)
	tl.Attach(w2)
	tl.Attach(w3)

	active := tl.windows[w3]
	priorRect := active.Rect

	events := tl.ToggleStack()
	assign := eventsByType(events, EventTypeStackAssign)
	if len(assign) != 1 || assign[0].StackAssign.Window != w3 {
		t.Fatalf("expected a StackAssign for w3, got %+v", assign)
	}
	if active.Rect != priorRect {
		t.Fatalf("stacked window rect changed: got %+v, want %+v", active.Rect, priorRect)
	}

	events = tl.Detach(w3)
	destroy := eventsByType(events, EventTypeStackDestroy)
	if len(destroy) != 1 {
		t.Fatalf("expected the now-empty stack to be destroyed, got %+v", events)
	}
}

// TestDirectionalFocusAcrossDisplays is scenario S6.
func TestDirectionalFocusAcrossDisplays(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 1920, 1080))
	tl.DisplayUpdate(1, geom.New(1921, 1, 1920, 1080))
	tl.WorkspaceUpdate(0, 0)
	tl.WorkspaceUpdate(1, 1)

	w0 := WindowID{Outer: 0, Inner: 0}
	w1 := WindowID{Outer: 1, Inner: 0}
	tl.Attach(w0)
	tl.WorkspaceSwitch(1)
	tl.Attach(w1)
	tl.WorkspaceSwitch(0)

	events := tl.FocusRight()
	focus := eventsByType(events, EventTypeFocus)
	if len(focus) != 1 || *focus[0].Focus != w1 {
		t.Fatalf("expected FocusRight to fall through to display 1's window, got %+v", events)
	}
}

// TestSwapAcrossDistinctStacksPreservesBackReferences guards against a
// regression where swapping two windows that each live in their own stack
// left one of them a phantom member: its old stack's Members slice still
// held it, but its parentStack back-reference had been cleared to nil by
// the paired container's swap step.
func TestSwapAcrossDistinctStacksPreservesBackReferences(t *testing.T) {
	tl := NewTiler(nil)
	tl.DisplayUpdate(0, geom.New(1, 1, 1920, 1080))
	tl.WorkspaceUpdate(0, 0)

	a := WindowID{Outer: 0, Inner: 1}
	b := WindowID{Outer: 0, Inner: 2}
	tl.Attach(a)
	tl.Attach(b)

	tl.Focus(a)
	tl.ToggleStack()
	tl.Focus(b)
	tl.ToggleStack()

	wa, wb := tl.windows[a], tl.windows[b]
	sA, sB := wa.parentStack, wb.parentStack
	if sA == nil || sB == nil || sA == sB {
		t.Fatalf("expected a and b in two distinct stacks, got sA=%p sB=%p", sA, sB)
	}

	tl.Swap(a, b)

	if wa.parentStack != sB || wa.parentFork != nil {
		t.Fatalf("a: parentStack = %p (want %p), parentFork = %v (want nil)", wa.parentStack, sB, wa.parentFork)
	}
	if wb.parentStack != sA || wb.parentFork != nil {
		t.Fatalf("b: parentStack = %p (want %p), parentFork = %v (want nil)", wb.parentStack, sA, wb.parentFork)
	}
	if sA.indexOf(wb) < 0 {
		t.Fatalf("b not found in its new stack's Members")
	}
	if sB.indexOf(wa) < 0 {
		t.Fatalf("a not found in its new stack's Members")
	}

	// A phantom member (in Members but with a nil/foreign parentStack) would
	// make Detach treat it as already-detached and leave it stuck.
	events := tl.Detach(a)
	detach := eventsByType(events, EventTypeStackDetach)
	if len(detach) != 1 || detach[0].StackDetach.Window != a {
		t.Fatalf("expected a clean StackDetach for a, got %+v", events)
	}
}

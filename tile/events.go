package tile

import "github.com/pop-os/tiler/geom"

// EventType discriminates the JSON-encoded Event union emitted to callers,
// one object per line over the external line protocol.
type EventType string

const (
	EventTypeFocus            EventType = "focus"
	EventTypeFocusWorkspace   EventType = "focus_workspace"
	EventTypeFork             EventType = "fork"
	EventTypeForkDestroy      EventType = "fork_destroy"
	EventTypeStackAssign      EventType = "stack_assign"
	EventTypeStackDetach      EventType = "stack_detach"
	EventTypeStackDestroy     EventType = "stack_destroy"
	EventTypeStackPlace       EventType = "stack_place"
	EventTypeStackRaise       EventType = "stack_raise"
	EventTypeStackMovement    EventType = "stack_movement"
	EventTypeStackVisibility  EventType = "stack_visibility"
	EventTypeWindowPlace      EventType = "window_place"
	EventTypeWindowVisibility EventType = "window_visibility"
)

// MoveDir is the direction argument of a stack member reordering.
type MoveDir string

const (
	MoveDirLeft  MoveDir = "left"
	MoveDirRight MoveDir = "right"
)

// Placement pairs a rectangle with the workspace it belongs to.
type Placement struct {
	Area      geom.Rect `json:"area"`
	Workspace uint32    `json:"workspace"`
}

// ForkUpdate describes a fork's current geometry. Handle here is the split
// offset along the fork's axis — distinct from the fork's opaque identity,
// which keys the outer Event.
type ForkUpdate struct {
	Workspace   uint32          `json:"workspace"`
	Orientation geom.Orientation `json:"orientation"`
	Rect        geom.Rect       `json:"rect"`
	Handle      uint32          `json:"handle"`
}

// Event is one observable mutation drained from the Tiler after a command.
// Exactly one of the pointer fields matching Type is set.
type Event struct {
	Type EventType `json:"type"`

	Focus          *WindowID `json:"focus,omitempty"`
	FocusWorkspace *uint32   `json:"focus_workspace,omitempty"`

	Fork        *ForkEvent `json:"fork,omitempty"`
	ForkDestroy *Handle    `json:"fork_destroy,omitempty"`

	StackAssign      *StackWindowEvent      `json:"stack_assign,omitempty"`
	StackDetach      *StackWindowEvent      `json:"stack_detach,omitempty"`
	StackDestroy     *Handle                `json:"stack_destroy,omitempty"`
	StackPlace       *StackPlaceEvent       `json:"stack_place,omitempty"`
	StackRaise       *StackWindowEvent      `json:"stack_raise,omitempty"`
	StackMovement    *StackMovementEvent    `json:"stack_movement,omitempty"`
	StackVisibility  *StackVisibilityEvent  `json:"stack_visibility,omitempty"`

	WindowPlace      *WindowPlaceEvent      `json:"window_place,omitempty"`
	WindowVisibility *WindowVisibilityEvent `json:"window_visibility,omitempty"`
}

// ForkEvent is the payload of EventTypeFork.
type ForkEvent struct {
	Handle Handle     `json:"handle"`
	Update ForkUpdate `json:"update"`
}

// StackWindowEvent pairs a stack with one of its members, used for assign,
// detach, and raise notifications.
type StackWindowEvent struct {
	Handle Handle   `json:"handle"`
	Window WindowID `json:"window"`
}

// StackPlaceEvent is the payload of EventTypeStackPlace.
type StackPlaceEvent struct {
	Handle    Handle    `json:"handle"`
	Placement Placement `json:"placement"`
}

// StackVisibilityEvent is the payload of EventTypeStackVisibility.
type StackVisibilityEvent struct {
	Handle  Handle `json:"handle"`
	Visible bool   `json:"visible"`
}

// StackMovementEvent is the payload of EventTypeStackMovement, emitted once
// per move_left/move_right call; entries are order-sensitive and never
// coalesced.
type StackMovementEvent struct {
	Handle    Handle  `json:"handle"`
	Direction MoveDir `json:"direction"`
	Window    WindowID `json:"window"`
}

// WindowPlaceEvent is the payload of EventTypeWindowPlace.
type WindowPlaceEvent struct {
	Window    WindowID  `json:"window"`
	Placement Placement `json:"placement"`
}

// WindowVisibilityEvent is the payload of EventTypeWindowVisibility.
type WindowVisibilityEvent struct {
	Window  WindowID `json:"window"`
	Visible bool     `json:"visible"`
}

type forkDiff struct {
	destroy bool
	update  *ForkUpdate
}

type stackDiff struct {
	destroy     bool
	place       *Placement
	visibility  *bool
	raise       *WindowID
	assignOrder []WindowID
	assign      map[WindowID]bool
}

type windowDiff struct {
	place      *Placement
	visibility *bool
}

// eventQueue accumulates per-entity diffs during a single command and
// drains them into an ordered Event slice. It is not safe for concurrent
// use; the Tiler's mutex is the only synchronization it relies on.
type eventQueue struct {
	forkOrder []Handle
	forks     map[Handle]*forkDiff

	stackOrder []Handle
	stacks     map[Handle]*stackDiff

	windowOrder []WindowID
	windows     map[WindowID]*windowDiff

	free []Event

	focusWorkspace *uint32
	focus          *WindowID
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		forks:   make(map[Handle]*forkDiff),
		stacks:  make(map[Handle]*stackDiff),
		windows: make(map[WindowID]*windowDiff),
	}
}

func (q *eventQueue) forkEntry(h Handle) *forkDiff {
	d, ok := q.forks[h]
	if !ok {
		d = &forkDiff{}
		q.forks[h] = d
		q.forkOrder = append(q.forkOrder, h)
	}
	return d
}

func (q *eventQueue) stackEntry(h Handle) *stackDiff {
	d, ok := q.stacks[h]
	if !ok {
		d = &stackDiff{assign: make(map[WindowID]bool)}
		q.stacks[h] = d
		q.stackOrder = append(q.stackOrder, h)
	}
	return d
}

func (q *eventQueue) windowEntry(id WindowID) *windowDiff {
	d, ok := q.windows[id]
	if !ok {
		d = &windowDiff{}
		q.windows[id] = d
		q.windowOrder = append(q.windowOrder, id)
	}
	return d
}

func (q *eventQueue) forkUpdate(h Handle, u ForkUpdate) {
	q.forkEntry(h).update = &u
}

func (q *eventQueue) forkDestroy(h Handle) {
	q.forkEntry(h).destroy = true
}

func (q *eventQueue) stackPlace(h Handle, p Placement) {
	q.stackEntry(h).place = &p
}

func (q *eventQueue) stackVisibility(h Handle, v bool) {
	b := v
	q.stackEntry(h).visibility = &b
}

func (q *eventQueue) stackRaise(h Handle, w WindowID) {
	q.stackEntry(h).raise = &w
}

func (q *eventQueue) stackAssign(h Handle, w WindowID, attached bool) {
	d := q.stackEntry(h)
	if _, ok := d.assign[w]; !ok {
		d.assignOrder = append(d.assignOrder, w)
	}
	d.assign[w] = attached
}

func (q *eventQueue) stackDestroy(h Handle) {
	q.stackEntry(h).destroy = true
}

func (q *eventQueue) stackMovement(h Handle, dir MoveDir, w WindowID) {
	q.free = append(q.free, Event{
		Type:          EventTypeStackMovement,
		StackMovement: &StackMovementEvent{Handle: h, Direction: dir, Window: w},
	})
}

func (q *eventQueue) windowPlace(id WindowID, p Placement) {
	q.windowEntry(id).place = &p
}

func (q *eventQueue) windowVisibility(id WindowID, v bool) {
	b := v
	q.windowEntry(id).visibility = &b
}

func (q *eventQueue) setFocusWorkspace(ws uint32) {
	w := ws
	q.focusWorkspace = &w
}

func (q *eventQueue) setFocus(id WindowID) {
	w := id
	q.focus = &w
}

// drain empties every bucket into the fixed, spec-mandated order: forks,
// stacks, windows, the free list, FocusWorkspace, then Focus.
func (q *eventQueue) drain() []Event {
	var out []Event

	for _, h := range q.forkOrder {
		d := q.forks[h]
		if d.destroy {
			out = append(out, Event{Type: EventTypeForkDestroy, ForkDestroy: &h})
			continue
		}
		if d.update != nil {
			out = append(out, Event{Type: EventTypeFork, Fork: &ForkEvent{Handle: h, Update: *d.update}})
		}
	}

	for _, h := range q.stackOrder {
		d := q.stacks[h]
		if !d.destroy {
			if d.place != nil {
				out = append(out, Event{Type: EventTypeStackPlace, StackPlace: &StackPlaceEvent{Handle: h, Placement: *d.place}})
			}
			if d.visibility != nil {
				out = append(out, Event{Type: EventTypeStackVisibility, StackVisibility: &StackVisibilityEvent{Handle: h, Visible: *d.visibility}})
			}
			if d.raise != nil {
				out = append(out, Event{Type: EventTypeStackRaise, StackRaise: &StackWindowEvent{Handle: h, Window: *d.raise}})
			}
		}
		for _, w := range d.assignOrder {
			attached := d.assign[w]
			if attached {
				out = append(out, Event{Type: EventTypeStackAssign, StackAssign: &StackWindowEvent{Handle: h, Window: w}})
			} else {
				out = append(out, Event{Type: EventTypeStackDetach, StackDetach: &StackWindowEvent{Handle: h, Window: w}})
			}
		}
		if d.destroy {
			out = append(out, Event{Type: EventTypeStackDestroy, StackDestroy: &h})
		}
	}

	for _, id := range q.windowOrder {
		d := q.windows[id]
		if d.place != nil {
			out = append(out, Event{Type: EventTypeWindowPlace, WindowPlace: &WindowPlaceEvent{Window: id, Placement: *d.place}})
		}
		if d.visibility != nil {
			out = append(out, Event{Type: EventTypeWindowVisibility, WindowVisibility: &WindowVisibilityEvent{Window: id, Visible: *d.visibility}})
		}
	}

	out = append(out, q.free...)

	if q.focusWorkspace != nil {
		out = append(out, Event{Type: EventTypeFocusWorkspace, FocusWorkspace: q.focusWorkspace})
	}
	if q.focus != nil {
		out = append(out, Event{Type: EventTypeFocus, Focus: q.focus})
	}

	*q = *newEventQueue()
	return out
}

package ipc

import (
	"testing"

	"github.com/pop-os/tiler/geom"
	"github.com/pop-os/tiler/tile"
)

func newTestTiler() *tile.Tiler {
	return tile.NewTiler(nil)
}

func TestApplyAttachAndFocus(t *testing.T) {
	tl := newTestTiler()

	id := tile.WindowID{Outer: 0, Inner: 0}
	if _, err := Apply(tl, Request{Type: RequestAttach, Window: &id}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	id2 := tile.WindowID{Outer: 0, Inner: 1}
	events, err := Apply(tl, Request{Type: RequestAttach, Window: &id2})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	var sawFork bool
	for _, e := range events {
		if e.Type == tile.EventTypeFork {
			sawFork = true
		}
	}
	if !sawFork {
		t.Fatalf("expected a fork event from the second attach, got %+v", events)
	}

	events, err = Apply(tl, Request{Type: RequestFocus, Window: &id})
	if err != nil {
		t.Fatalf("focus: %v", err)
	}
	place, ok := eventsByType(events, tile.EventTypeFocus)
	if !ok || *place.Focus != id {
		t.Fatalf("expected Focus(%v), got %+v", id, events)
	}
}

func eventsByType(events []tile.Event, want tile.EventType) (tile.Event, bool) {
	for _, e := range events {
		if e.Type == want {
			return e, true
		}
	}
	return tile.Event{}, false
}

func TestApplyDirectionalCommandsRequireNoPayload(t *testing.T) {
	tl := newTestTiler()
	for _, rt := range []RequestType{
		RequestFocusAbove, RequestFocusBelow, RequestFocusLeft, RequestFocusRight,
		RequestFocusDisplayAbove, RequestFocusDisplayBelow, RequestFocusDisplayLeft, RequestFocusDisplayRight,
		RequestMoveAbove, RequestMoveBelow, RequestMoveLeft, RequestMoveRight,
		RequestToggleOrientation, RequestToggleStack,
	} {
		if _, err := Apply(tl, Request{Type: rt}); err != nil {
			t.Fatalf("%s: unexpected error %v", rt, err)
		}
	}
}

func TestApplyDisplayAndWorkspaceUpdates(t *testing.T) {
	tl := newTestTiler()

	_, err := Apply(tl, Request{
		Type: RequestDisplayUpdate,
		DisplayUpdate: &DisplayUpdatePayload{
			Display: 0,
			Rect:    geom.Rect{X: 1, Y: 1, Width: 1920, Height: 1080},
		},
	})
	if err != nil {
		t.Fatalf("display_update: %v", err)
	}

	_, err = Apply(tl, Request{
		Type:            RequestWorkspaceUpdate,
		WorkspaceUpdate: &WorkspaceUpdatePayload{Workspace: 0, Display: 0},
	})
	if err != nil {
		t.Fatalf("workspace_update: %v", err)
	}

	ws := uint32(0)
	if _, err := Apply(tl, Request{Type: RequestWorkspaceSwitch, Workspace: &ws}); err != nil {
		t.Fatalf("workspace_switch: %v", err)
	}

	display := uint32(0)
	if _, err := Apply(tl, Request{Type: RequestDisplayDetach, Display: &display}); err != nil {
		t.Fatalf("display_detach: %v", err)
	}
}

func TestApplyMissingPayloadIsAnError(t *testing.T) {
	tl := newTestTiler()

	cases := []Request{
		{Type: RequestAttach},
		{Type: RequestDetach},
		{Type: RequestFocus},
		{Type: RequestResize},
		{Type: RequestSwap},
		{Type: RequestWorkspaceSwitch},
		{Type: RequestWorkspaceUpdate},
		{Type: RequestDisplayUpdate},
		{Type: RequestDisplayDetach},
		{Type: "not_a_real_request"},
	}
	for _, req := range cases {
		if _, err := Apply(tl, req); err == nil {
			t.Errorf("%s: expected error for missing payload, got nil", req.Type)
		}
	}
}

func TestApplySwapAndResize(t *testing.T) {
	tl := newTestTiler()

	a := tile.WindowID{Outer: 0, Inner: 0}
	b := tile.WindowID{Outer: 0, Inner: 1}
	if _, err := Apply(tl, Request{Type: RequestAttach, Window: &a}); err != nil {
		t.Fatalf("attach a: %v", err)
	}
	events, err := Apply(tl, Request{Type: RequestAttach, Window: &b})
	if err != nil {
		t.Fatalf("attach b: %v", err)
	}

	var handle tile.Handle
	for _, e := range events {
		if e.Type == tile.EventTypeFork {
			handle = e.Fork.Handle
		}
	}

	if _, err := Apply(tl, Request{Type: RequestSwap, Swap: &SwapPayload{A: a, B: b}}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if _, err := Apply(tl, Request{Type: RequestResize, Resize: &ResizePayload{ForkHandle: handle, Split: 960}}); err != nil {
		t.Fatalf("resize: %v", err)
	}
}

// Package ipc implements the line-oriented JSON protocol described by the
// tile engine's external interface: one Request object per input line, zero
// or more Event objects per output line, grounded on the same
// discriminated-union-over-nilable-pointers shape the tile package itself
// uses for its own event stream.
package ipc

import (
	"github.com/pop-os/tiler/geom"
	"github.com/pop-os/tiler/tile"
)

// RequestType discriminates the Request union.
type RequestType string

const (
	RequestAttach              RequestType = "attach"
	RequestDetach              RequestType = "detach"
	RequestFocus               RequestType = "focus"
	RequestFocusAbove          RequestType = "focus_above"
	RequestFocusBelow          RequestType = "focus_below"
	RequestFocusLeft           RequestType = "focus_left"
	RequestFocusRight          RequestType = "focus_right"
	RequestFocusDisplayAbove   RequestType = "focus_display_above"
	RequestFocusDisplayBelow  RequestType = "focus_display_below"
	RequestFocusDisplayLeft    RequestType = "focus_display_left"
	RequestFocusDisplayRight   RequestType = "focus_display_right"
	RequestMoveAbove           RequestType = "move_above"
	RequestMoveBelow           RequestType = "move_below"
	RequestMoveLeft            RequestType = "move_left"
	RequestMoveRight           RequestType = "move_right"
	RequestToggleOrientation   RequestType = "toggle_orientation"
	RequestToggleStack         RequestType = "toggle_stack"
	RequestResize              RequestType = "resize"
	RequestSwap                RequestType = "swap"
	RequestWorkspaceSwitch     RequestType = "workspace_switch"
	RequestWorkspaceUpdate     RequestType = "workspace_update"
	RequestDisplayUpdate       RequestType = "display_update"
	RequestDisplayDetach       RequestType = "display_detach"
)

// DisplayUpdatePayload is the payload of a display_update request.
type DisplayUpdatePayload struct {
	Display uint32    `json:"display"`
	Rect    geom.Rect `json:"rect"`
}

// WorkspaceUpdatePayload is the payload of a workspace_update request.
type WorkspaceUpdatePayload struct {
	Workspace uint32 `json:"workspace"`
	Display   uint32 `json:"display"`
}

// ResizePayload is the payload of a resize request.
type ResizePayload struct {
	ForkHandle tile.Handle `json:"fork_handle"`
	Split      uint32      `json:"split"`
}

// SwapPayload is the payload of a swap request.
type SwapPayload struct {
	A tile.WindowID `json:"a"`
	B tile.WindowID `json:"b"`
}

// Request is one line of input: exactly one field matching Type is set,
// the rest are nil. Requests that carry no payload (ToggleOrientation,
// ToggleStack, the directional focus/move commands) only ever set Type.
type Request struct {
	Type RequestType `json:"type"`

	Window *tile.WindowID `json:"window,omitempty"`

	DisplayUpdate   *DisplayUpdatePayload   `json:"display_update,omitempty"`
	Display         *uint32                 `json:"display,omitempty"`
	WorkspaceUpdate *WorkspaceUpdatePayload `json:"workspace_update,omitempty"`
	Workspace       *uint32                 `json:"workspace,omitempty"`
	Resize          *ResizePayload          `json:"resize,omitempty"`
	Swap            *SwapPayload            `json:"swap,omitempty"`
}

package ipc

import (
	"fmt"

	"github.com/pop-os/tiler/tile"
)

// Apply executes req against t and returns the drained events. Malformed
// payloads (a request whose Type names a field that is nil) are reported as
// an error rather than silently ignored, since that indicates a protocol
// violation rather than one of the engine's own defined no-op cases.
func Apply(t *tile.Tiler, req Request) ([]tile.Event, error) {
	switch req.Type {
	case RequestAttach:
		if req.Window == nil {
			return nil, fmt.Errorf("ipc: attach requires window")
		}
		return t.Attach(*req.Window), nil
	case RequestDetach:
		if req.Window == nil {
			return nil, fmt.Errorf("ipc: detach requires window")
		}
		return t.Detach(*req.Window), nil
	case RequestFocus:
		if req.Window == nil {
			return nil, fmt.Errorf("ipc: focus requires window")
		}
		return t.Focus(*req.Window), nil
	case RequestFocusAbove:
		return t.FocusAbove(), nil
	case RequestFocusBelow:
		return t.FocusBelow(), nil
	case RequestFocusLeft:
		return t.FocusLeft(), nil
	case RequestFocusRight:
		return t.FocusRight(), nil
	case RequestFocusDisplayAbove:
		return t.FocusDisplayAbove(), nil
	case RequestFocusDisplayBelow:
		return t.FocusDisplayBelow(), nil
	case RequestFocusDisplayLeft:
		return t.FocusDisplayLeft(), nil
	case RequestFocusDisplayRight:
		return t.FocusDisplayRight(), nil
	case RequestMoveAbove:
		return t.MoveAbove(), nil
	case RequestMoveBelow:
		return t.MoveBelow(), nil
	case RequestMoveLeft:
		return t.MoveLeft(), nil
	case RequestMoveRight:
		return t.MoveRight(), nil
	case RequestToggleOrientation:
		return t.ToggleOrientation(), nil
	case RequestToggleStack:
		return t.ToggleStack(), nil
	case RequestResize:
		if req.Resize == nil {
			return nil, fmt.Errorf("ipc: resize requires a payload")
		}
		return t.Resize(req.Resize.ForkHandle, req.Resize.Split), nil
	case RequestSwap:
		if req.Swap == nil {
			return nil, fmt.Errorf("ipc: swap requires a payload")
		}
		return t.Swap(req.Swap.A, req.Swap.B), nil
	case RequestWorkspaceSwitch:
		if req.Workspace == nil {
			return nil, fmt.Errorf("ipc: workspace_switch requires workspace")
		}
		return t.WorkspaceSwitch(*req.Workspace), nil
	case RequestWorkspaceUpdate:
		if req.WorkspaceUpdate == nil {
			return nil, fmt.Errorf("ipc: workspace_update requires a payload")
		}
		return t.WorkspaceUpdate(req.WorkspaceUpdate.Workspace, req.WorkspaceUpdate.Display), nil
	case RequestDisplayUpdate:
		if req.DisplayUpdate == nil {
			return nil, fmt.Errorf("ipc: display_update requires a payload")
		}
		return t.DisplayUpdate(req.DisplayUpdate.Display, req.DisplayUpdate.Rect), nil
	case RequestDisplayDetach:
		if req.Display == nil {
			return nil, fmt.Errorf("ipc: display_detach requires display")
		}
		return t.DisplayDetach(*req.Display), nil
	default:
		return nil, fmt.Errorf("ipc: unknown request type %q", req.Type)
	}
}

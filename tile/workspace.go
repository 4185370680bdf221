package tile

import "github.com/pop-os/tiler/geom"

// Workspace is a virtual surface hosting at most one tile tree, assigned to
// exactly one display.
type Workspace struct {
	ID      uint32
	display *Display
	Root    *Fork
	Focus   *Window
}

// Display is a physical screen area parenting one or more workspaces.
type Display struct {
	ID              uint32
	Area            geom.Rect
	Workspaces      map[uint32]*Workspace
	ActiveWorkspace *uint32
}

func newDisplay(id uint32, area geom.Rect) *Display {
	return &Display{
		ID:         id,
		Area:       area,
		Workspaces: make(map[uint32]*Workspace),
	}
}

// retile pushes the display's area down into its active tile tree.
func (ws *Workspace) retile(tl *Tiler, area geom.Rect) {
	if ws.Root != nil {
		ws.Root.workAreaUpdate(tl, area)
	}
}

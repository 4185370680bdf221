package tile

import "github.com/pop-os/tiler/geom"

// doWorkspaceSwitch is the unlocked core of WorkspaceSwitch, shared by the
// public command and the neighbour-search fallbacks (focus_display_*,
// cross-workspace focus).
func (tl *Tiler) doWorkspaceSwitch(target uint32) {
	ws := tl.ensureWorkspace(target)

	for _, w := range tl.windows {
		if w.parentFork == nil && w.parentStack == nil {
			continue
		}
		switch {
		case w.Workspace != target:
			if w.Visible {
				w.Visible = false
				tl.queue.windowVisibility(w.ID, false)
			}
		case w.parentStack == nil:
			if !w.Visible {
				w.Visible = true
				tl.queue.windowVisibility(w.ID, true)
			}
		default:
			want := w.parentStack.Active == w
			if w.Visible != want {
				w.Visible = want
				tl.queue.windowVisibility(w.ID, want)
			}
		}
	}

	tl.activeWorkspace = target
	tl.queue.setFocusWorkspace(target)
	if ws.display != nil {
		id := target
		ws.display.ActiveWorkspace = &id
	}

	if ws.Focus != nil {
		tl.setActive(ws.Focus)
	} else {
		tl.active = nil
	}
}

// WorkspaceSwitch changes which workspace is on screen. Switching to the
// workspace already active emits nothing at all.
func (tl *Tiler) WorkspaceSwitch(workspace uint32) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	if workspace == tl.activeWorkspace {
		return tl.finish(old)
	}
	tl.doWorkspaceSwitch(workspace)
	return tl.finish(old)
}

// WorkspaceUpdate assigns workspace to display, creating the workspace as
// needed. An unknown display is a logged error, no-op.
func (tl *Tiler) WorkspaceUpdate(workspace, display uint32) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	d, ok := tl.displays[display]
	if !ok {
		tl.log.Error().Uint32("display", display).Uint32("workspace", workspace).
			Msg("tile: workspace_update onto nonexistent display")
		return tl.finish(old)
	}

	ws := tl.ensureWorkspace(workspace)
	prev := ws.display
	ws.display = d
	d.Workspaces[workspace] = ws

	if prev != nil && prev != d {
		delete(prev.Workspaces, workspace)
		if prev.ActiveWorkspace != nil && *prev.ActiveWorkspace == workspace {
			prev.ActiveWorkspace = nil
		}
	}
	if d.ActiveWorkspace == nil {
		id := workspace
		d.ActiveWorkspace = &id
	}
	if ws.Root != nil {
		ws.retile(tl, d.Area)
	}

	return tl.finish(old)
}

// DisplayUpdate creates or resizes a display, retiling every workspace
// currently assigned to it.
func (tl *Tiler) DisplayUpdate(display uint32, area geom.Rect) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	d := tl.ensureDisplay(display, area)
	d.Area = area
	for _, ws := range d.Workspaces {
		ws.retile(tl, area)
	}
	return tl.finish(old)
}

// DisplayDetach removes a display, migrating its workspaces onto the
// display currently hosting the active workspace (or, failing that, any
// surviving display). An unknown display is a logged error, no-op.
func (tl *Tiler) DisplayDetach(display uint32) []Event {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	old := tl.active
	d, ok := tl.displays[display]
	if !ok {
		tl.log.Error().Uint32("display", display).Msg("tile: detach of nonexistent display")
		return tl.finish(old)
	}
	delete(tl.displays, display)

	target := tl.currentDisplay()
	if target == nil || target == d {
		target = nil
		for _, other := range tl.displays {
			target = other
			break
		}
	}

	for wsID, ws := range d.Workspaces {
		ws.display = target
		if target == nil {
			continue
		}
		target.Workspaces[wsID] = ws
		ws.retile(tl, target.Area)
		if target.ActiveWorkspace == nil {
			id := wsID
			target.ActiveWorkspace = &id
		}
	}

	return tl.finish(old)
}

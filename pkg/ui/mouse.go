package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/lineweave/pkg/preview"
	"github.com/vanderheijden86/lineweave/pkg/store"
)

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	col := msg.X
	row := msg.Y - m.canvasTop

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.camera = m.camera.ZoomedAt(col, row, m.zoomStep())
		return m, nil
	case tea.MouseButtonWheelDown:
		m.camera = m.camera.ZoomedAt(col, row, 1/m.zoomStep())
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			return m.onLeftPress(col, row, msg.Shift, msg.Ctrl)
		case tea.MouseButtonRight:
			return m.onRightPress(col, row)
		}

	case tea.MouseActionMotion:
		return m.onMotion(col, row)

	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone {
			return m.onLeftRelease(col, row)
		}
	}
	return m, nil
}

func (m *Model) onLeftPress(col, row int, shift, ctrl bool) (tea.Model, tea.Cmd) {
	if m.menu.open {
		action, ok := m.menu.actionAt(col, row)
		nodeID := m.menu.nodeID
		m.menu.dismiss()
		if ok {
			return m, m.runMenuAction(action, nodeID)
		}
		return m, nil
	}

	n, ok := nodeAt(m.camera, m.activeGraph().Nodes(), col, row)
	if !ok {
		if !shift && !ctrl && len(m.selection) > 0 {
			m.selection = make(map[string]bool)
		}
		m.gesture.BeginCanvasDrag(col, row)
		return m, nil
	}

	switch {
	case shift && m.scope == scopeProjects:
		// Edges connect projects only; commit history is linear.
		m.gesture.BeginEdgeDraw(n.ID, col, row)
	case ctrl && m.scope == scopeProjects:
		if m.selection[n.ID] {
			delete(m.selection, n.ID)
		} else {
			m.selection[n.ID] = true
		}
	default:
		m.gesture.BeginNodeDrag(n.ID, col, row, n.X, n.Y)
	}
	return m, nil
}

func (m *Model) onRightPress(col, row int) (tea.Model, tea.Cmd) {
	n, ok := nodeAt(m.camera, m.activeGraph().Nodes(), col, row)
	if !ok {
		m.menu.dismiss()
		return m, nil
	}
	m.menu.show(n.ID, col, row, m.menuActionsFor(n))
	return m, nil
}

func (m *Model) onMotion(col, row int) (tea.Model, tea.Cmd) {
	if m.gesture.Active() {
		dCol, dRow := m.gesture.Move(col, row)
		switch m.gesture.State {
		case GestureDraggingNode:
			g := m.activeGraph()
			if n, ok := g.Node(m.gesture.NodeID); ok {
				dx := float64(dCol) * unitPerCol / m.camera.Zoom
				dy := float64(dRow) * unitPerRow / m.camera.Zoom
				g.SetPosition(n.ID, n.X+dx, n.Y+dy)
			}
		case GestureDraggingCanvas:
			m.camera = m.camera.Panned(dCol, dRow)
		}
		// DrawingEdge only tracks the pointer; the rubber band is drawn
		// from gesture state in View.
		return m, nil
	}
	return m, m.updateHover(col, row)
}

// updateHover tracks the node under the pointer and kicks off a preview
// load when it changes. Each change bumps the generation so in-flight
// responses for older hovers are discarded on arrival.
func (m *Model) updateHover(col, row int) tea.Cmd {
	n, ok := nodeAt(m.camera, m.activeGraph().Nodes(), col, row)
	if !ok {
		if m.hoverID != "" {
			m.clearHover()
		}
		return nil
	}
	if n.ID == m.hoverID {
		return nil
	}

	m.hoverID = n.ID
	m.hoverGen++
	m.previewTxt = ""
	m.previewSrc = ""

	if m.scope == scopeCommits {
		// Commit content is already in memory; no async fetch needed.
		if c, ok := m.commits[n.ID]; ok {
			m.previewTxt = c.Content
			m.previewSrc = preview.SourceCommit
		}
		return nil
	}
	p, ok := m.projects[n.ID]
	if !ok {
		return nil
	}
	return m.loadPreviewCmd(p, m.hoverGen)
}

func (m *Model) onLeftRelease(col, row int) (tea.Model, tea.Cmd) {
	ended, wasClick := m.gesture.Release()

	if wasClick {
		// Plain click replaces the selection with the clicked node; a
		// second click on the sole selected node toggles it back off.
		if len(m.selection) == 1 && m.selection[ended.NodeID] {
			m.selection = make(map[string]bool)
		} else {
			m.selection = map[string]bool{ended.NodeID: true}
		}
		return m, nil
	}

	switch ended.State {
	case GestureDraggingNode:
		if zone, ok := zoneAt(m.dropZones(), col, row); ok {
			// The node stays at its drag position; a failed action must
			// not teleport it anywhere.
			return m, m.runZoneAction(zone.kind, ended.NodeID)
		}
		g := m.activeGraph()
		if n, ok := g.Node(ended.NodeID); ok {
			x, y := g.ResolveCollision(n.X, n.Y, n.ID)
			g.SetPosition(n.ID, x, y)
		}
		if m.scope == scopeProjects {
			m.schedulePersist()
		}

	case GestureDrawingEdge:
		target, ok := nodeAt(m.camera, m.activeGraph().Nodes(), col, row)
		if !ok || target.ID == ended.NodeID || m.scope != scopeProjects {
			return m, nil
		}
		if err := m.graph.AddEdge(ended.NodeID, target.ID); err != nil {
			if errors.Is(err, store.ErrDuplicateEdge) {
				// Re-drawing an existing edge is a no-op, not a mistake.
				return m, nil
			}
			return m, m.setError(err)
		}
		m.stats = store.ComputeStats(m.graph.Nodes(), m.graph.Edges())
		m.schedulePersist()
	}
	return m, nil
}

// dropZones returns the zones shown while a node drag is active.
func (m *Model) dropZones() []dropZone {
	if m.scope == scopeCommits {
		return buildDropZones([]DropZoneKind{DropZoneDelete})
	}
	return buildDropZones([]DropZoneKind{DropZoneCommit, DropZoneExport, DropZoneDelete})
}

func (m *Model) runZoneAction(kind DropZoneKind, nodeID string) tea.Cmd {
	switch kind {
	case DropZoneCommit:
		return m.commitProjectCmd(nodeID)
	case DropZoneExport:
		return m.exportCmd()
	case DropZoneDelete:
		if m.scope == scopeCommits {
			return m.askConfirm(confirmDeleteCommit, nodeID, "Delete this commit?")
		}
		name := nodeID
		if p, ok := m.projects[nodeID]; ok {
			name = p.Name
		}
		return m.askConfirm(confirmDeleteProject, nodeID, "Delete project "+name+" and its commits?")
	}
	return nil
}

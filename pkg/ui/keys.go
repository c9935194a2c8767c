package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/lineweave/pkg/layout"
	"github.com/vanderheijden86/lineweave/pkg/model"
)

// engine returns a layout engine configured from the loaded config.
func (m *Model) engine() layout.Engine {
	return layout.Engine{
		SpacingX:   m.cfg.Layout.SpacingX,
		SpacingY:   m.cfg.Layout.SpacingY,
		WidthBound: m.cfg.Layout.WidthBound,
	}
}

// targetNode resolves the node a keyboard action applies to: a single
// selection wins, then the hovered node.
func (m *Model) targetNode() (string, bool) {
	if len(m.selection) == 1 {
		for id := range m.selection {
			return id, true
		}
	}
	if m.hoverID != "" {
		return m.hoverID, true
	}
	return "", false
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Menu navigation owns the keyboard while open.
	if m.menu.open {
		switch msg.String() {
		case "esc":
			m.menu.dismiss()
			return m, nil
		case "up", "k":
			m.menu.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.menu.moveCursor(1)
			return m, nil
		case "enter":
			action, ok := m.menu.selected()
			nodeID := m.menu.nodeID
			m.menu.dismiss()
			if !ok {
				return m, nil
			}
			return m, m.runMenuAction(action, nodeID)
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		if m.persister != nil {
			m.persister.Close()
		}
		if m.fsw != nil {
			m.fsw.Stop()
		}
		return m, tea.Quit

	case "esc":
		// Progressive dismissal: one layer per press.
		switch {
		case m.gesture.Active():
			ended := m.gesture.Cancel()
			if ended.State == GestureDraggingNode {
				m.activeGraph().SetPosition(ended.NodeID, ended.OriginX, ended.OriginY)
			}
		case m.searchStr != "":
			m.searchStr = ""
		case m.scope == scopeCommits:
			m.returnToProjects()
		case len(m.selection) > 0:
			m.selection = make(map[string]bool)
		}
		return m, nil

	case "enter", "o":
		if m.scope != scopeProjects {
			return m, nil
		}
		if id, ok := m.targetNode(); ok {
			return m, m.drillInto(id)
		}
		return m, nil

	case "backspace":
		m.returnToProjects()
		return m, nil

	case "n":
		if m.scope != scopeProjects {
			return m, nil
		}
		return m, m.openInput(inputCreate, "Name: ", "")

	case "r":
		if m.scope != scopeProjects {
			return m, nil
		}
		if id, ok := m.targetNode(); ok {
			m.renameID = id
			current := ""
			if p, ok := m.projects[id]; ok {
				current = p.Name
			}
			return m, m.openInput(inputRename, "Rename: ", current)
		}
		return m, nil

	case "c":
		if m.scope != scopeProjects {
			return m, nil
		}
		if id, ok := m.targetNode(); ok {
			return m, m.commitProjectCmd(id)
		}
		return m, nil

	case "m":
		return m, m.mergeSelection()

	case "e":
		return m, m.exportCmd()

	case "y":
		if id, ok := m.targetNode(); ok {
			return m, m.copyContentCmd(id)
		}
		return m, nil

	case "d", "delete":
		id, ok := m.targetNode()
		if !ok {
			return m, nil
		}
		if m.scope == scopeCommits {
			return m, m.askConfirm(confirmDeleteCommit, id, "Delete this commit?")
		}
		name := id
		if p, ok := m.projects[id]; ok {
			name = p.Name
		}
		return m, m.askConfirm(confirmDeleteProject, id, "Delete project "+name+" and its commits?")

	case "/":
		return m, m.openInput(inputSearch, "/", m.searchStr)

	case "s":
		m.showStats = !m.showStats
		return m, nil

	case "L":
		return m, m.relayout(layout.SortByName)

	case "U":
		return m, m.relayout(layout.SortByUpdatedAt)

	case "left", "h":
		m.camera = m.camera.Panned(2, 0)
	case "right", "l":
		m.camera = m.camera.Panned(-2, 0)
	case "up", "k":
		m.camera = m.camera.Panned(0, 1)
	case "down", "j":
		m.camera = m.camera.Panned(0, -1)
	case "+", "=":
		m.camera = m.camera.ZoomedAt(m.width/2, m.canvasHeight()/2, m.zoomStep())
	case "-", "_":
		m.camera = m.camera.ZoomedAt(m.width/2, m.canvasHeight()/2, 1/m.zoomStep())
	case "0":
		m.camera = NewCamera()
	}
	return m, nil
}

func (m *Model) zoomStep() float64 {
	if m.cfg.UI.ZoomStep > 1 {
		return m.cfg.UI.ZoomStep
	}
	return 1.1
}

// relayout arranges all project nodes in a near-square grid sorted by the
// given key. Commit layouts are fixed and not relayoutable.
func (m *Model) relayout(key layout.SortKey) tea.Cmd {
	if m.scope != scopeProjects {
		return nil
	}
	entries := make([]layout.RelayoutEntry, 0, len(m.projects))
	for _, n := range m.graph.Nodes() {
		p, ok := m.projects[n.ID]
		if !ok {
			continue
		}
		entries = append(entries, layout.RelayoutEntry{
			ID:        p.ID,
			Name:      p.Name,
			UpdatedAt: p.UpdatedAt.UnixNano(),
		})
	}
	positions := m.engine().Relayout(entries, key)
	for id, pos := range positions {
		m.graph.SetPosition(id, pos[0], pos[1])
	}
	// The grid starts back at the origin, so the view does too.
	m.camera = NewCamera()
	m.schedulePersist()
	return m.setStatus("relayout applied")
}

// runMenuAction dispatches a context menu selection.
func (m *Model) runMenuAction(action menuAction, nodeID string) tea.Cmd {
	switch action {
	case menuOpen:
		return m.drillInto(nodeID)
	case menuRename:
		m.renameID = nodeID
		current := ""
		if p, ok := m.projects[nodeID]; ok {
			current = p.Name
		}
		return m.openInput(inputRename, "Rename: ", current)
	case menuCommit:
		return m.commitProjectCmd(nodeID)
	case menuCopyContent:
		return m.copyContentCmd(nodeID)
	case menuPasteContent:
		return m.pasteContentCmd(nodeID)
	case menuMergeSelected:
		return m.mergeSelection()
	case menuDelete:
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

// menuActionsFor lists the menu entries valid in the current scope.
func (m *Model) menuActionsFor(n model.GraphNode) []menuAction {
	if m.scope == scopeCommits {
		return []menuAction{menuCopyContent, menuDelete}
	}
	actions := []menuAction{menuOpen, menuRename, menuCommit, menuCopyContent, menuPasteContent}
	if len(m.selection) >= 2 {
		actions = append(actions, menuMergeSelected)
	}
	return append(actions, menuDelete)
}

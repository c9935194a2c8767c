package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/preview"
)

func (m *Model) canvasHeight() int {
	h := m.height - m.canvasTop - m.canvasBottom
	if m.showStats {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) previewVisible() bool {
	return m.hoverID != "" && m.previewTxt != ""
}

// View renders header, canvas, optional side panel, and status bar.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')

	if m.confirm != confirmNone && m.confirmForm != nil {
		body := lipgloss.Place(m.width, m.canvasHeight(), lipgloss.Center, lipgloss.Center, m.confirmForm.View())
		b.WriteString(body)
	} else {
		b.WriteString(m.canvasView())
	}

	if m.showStats {
		b.WriteByte('\n')
		b.WriteString(m.statsView())
	}
	b.WriteByte('\n')
	b.WriteString(m.statusView())
	return b.String()
}

func (m *Model) headerView() string {
	crumb := "Projects"
	if m.scope == scopeCommits {
		crumb = "Projects ▸ " + m.openProject.Name
	}
	left := m.theme.Header.Render(" lineweave ") + m.theme.StatusBar.Render(crumb)
	if m.searchStr != "" {
		left += m.theme.MutedText.Render("  /" + m.searchStr)
	}
	return left
}

func (m *Model) canvasView() string {
	canvasW := m.width
	if m.previewVisible() {
		canvasW -= m.previewWidth()
		if canvasW < 20 {
			canvasW = m.width
		}
	}
	c := newCanvas(canvasW, m.canvasHeight())

	g := m.activeGraph()
	nodes := g.Nodes()

	// edges first so node boxes draw over them
	edgeStyle := m.theme.Edge
	for _, e := range g.Edges() {
		from, okF := g.Node(e.From)
		to, okT := g.Node(e.To)
		if !okF || !okT {
			continue
		}
		fc, fr, fcols, frows := nodeRect(m.camera, from)
		tc, tr, _, trows := nodeRect(m.camera, to)
		c.line(fc+fcols, fr+frows/2, tc-1, tr+trows/2, &edgeStyle)
	}

	// rubber band while drawing an edge
	if m.gesture.State == GestureDrawingEdge {
		draft := m.theme.EdgeRubber
		c.line(m.gesture.StartCol, m.gesture.StartRow, m.gesture.LastCol, m.gesture.LastRow, &draft)
	}

	for _, n := range nodes {
		m.drawNode(c, n)
	}

	// drop zones sit on top while a node drag is in flight
	if m.gesture.State == GestureDraggingNode {
		for _, z := range m.dropZones() {
			style := &m.theme.DropZone
			if z.contains(m.gesture.LastCol, m.gesture.LastRow) {
				style = &m.theme.DropZoneHot
			}
			c.box(z.col, z.row, z.cols, z.rows, z.kind.Label(), "", style)
		}
	}

	m.menu.draw(c, m.theme)

	out := c.render()
	if m.previewVisible() {
		return lipgloss.JoinHorizontal(lipgloss.Top, out, m.previewView())
	}
	return out
}

func (m *Model) drawNode(c *canvas, n model.GraphNode) {
	col, row, cols, rows := nodeRect(m.camera, n)

	label, badge := m.nodeLabel(n)

	style := &m.theme.NodeBox
	switch {
	case m.selection[n.ID]:
		style = &m.theme.NodeSelected
	case m.hoverID == n.ID:
		style = &m.theme.NodeHovered
	case n.EntityType == model.EntityCommit:
		style = &m.theme.NodeBoxCommit
	case m.hasIncoming(n.ID):
		style = &m.theme.NodeBoxMerged
	}
	if m.searchStr != "" && !m.matchesSearch(n) {
		style = &m.theme.MutedText
	}

	c.box(col, row, cols, rows, label, badge, style)
}

func (m *Model) nodeLabel(n model.GraphNode) (label, badge string) {
	if n.EntityType == model.EntityCommit {
		if commit, ok := m.commits[n.ID]; ok {
			return fmt.Sprintf("#%d", commit.CommitNumber), commit.Timestamp.Format("2006-01-02 15:04")
		}
		return n.ID, ""
	}
	if p, ok := m.projects[n.ID]; ok {
		return p.Name, p.UpdatedAt.Format("2006-01-02")
	}
	return n.ID, ""
}

func (m *Model) hasIncoming(id string) bool {
	for _, e := range m.graph.Edges() {
		if e.To == id {
			return true
		}
	}
	return false
}

// matchesSearch applies the scope-aware search filter: project names and
// content on the canvas, commit numbers and content in the history view.
func (m *Model) matchesSearch(n model.GraphNode) bool {
	q := strings.ToLower(m.searchStr)
	if m.scope == scopeCommits {
		c, ok := m.commits[n.ID]
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(c.Content), q) ||
			strings.Contains(fmt.Sprintf("#%d", c.CommitNumber), q)
	}
	p, ok := m.projects[n.ID]
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Content), q)
}

func (m *Model) previewWidth() int {
	w := m.cfg.UI.PreviewWidth
	if w <= 0 {
		w = 48
	}
	return w
}

func (m *Model) previewView() string {
	title := m.hoverID
	if m.scope == scopeCommits {
		if c, ok := m.commits[m.hoverID]; ok {
			title = fmt.Sprintf("commit #%d", c.CommitNumber)
		}
	} else if p, ok := m.projects[m.hoverID]; ok {
		title = p.Name
	}
	switch m.previewSrc {
	case preview.SourceCommit:
		title += " (latest commit)"
	case preview.SourceEmpty:
		title += " (empty)"
	}

	body := m.previewTxt
	if m.mdRenderer != nil {
		if rendered, err := m.mdRenderer.Render(body); err == nil {
			body = rendered
		}
	}

	pane := m.theme.Header.Render(title) + "\n" + body
	return m.theme.PreviewPane.
		Width(m.previewWidth() - 2).
		Height(m.canvasHeight() - 2).
		MaxHeight(m.canvasHeight()).
		Render(pane)
}

func (m *Model) statsView() string {
	cycle := ""
	if len(m.stats.TopologicalOrder) == 0 && m.stats.EdgeCount > 0 {
		cycle = m.theme.DangerText.Render("  cycle detected")
	}
	return m.theme.StatusBar.Render(fmt.Sprintf(
		" nodes %d  edges %d  density %.3f", m.stats.NodeCount, m.stats.EdgeCount, m.stats.Density,
	)) + cycle
}

func (m *Model) statusView() string {
	if m.inputFor != inputNone {
		line := m.input.View()
		if m.inputErr != "" {
			line += m.theme.DangerText.Render("  " + m.inputErr)
		}
		return line
	}
	if m.statusMsg != "" {
		return m.theme.StatusBar.Render(" " + m.statusMsg)
	}
	hints := " n new · enter open · shift+drag edge · ctrl+click select · m merge · / search · q quit"
	if m.scope == scopeCommits {
		hints = " esc back · y copy · d delete · q quit"
	}
	return m.theme.MutedText.Render(hints)
}

package ui

// menuAction identifies a context menu entry.
type menuAction int

const (
	menuOpen menuAction = iota
	menuRename
	menuCommit
	menuCopyContent
	menuPasteContent
	menuMergeSelected
	menuDelete
)

func (a menuAction) label() string {
	switch a {
	case menuOpen:
		return "Open commits"
	case menuRename:
		return "Rename"
	case menuCommit:
		return "Commit snapshot"
	case menuCopyContent:
		return "Copy content"
	case menuPasteContent:
		return "Paste content"
	case menuMergeSelected:
		return "Merge selected"
	case menuDelete:
		return "Delete"
	default:
		return "?"
	}
}

// contextMenu is the right-click menu anchored at a canvas cell. Escape or a
// click elsewhere dismisses it without acting.
type contextMenu struct {
	open    bool
	nodeID  string
	col     int
	row     int
	cursor  int
	actions []menuAction
}

func (m *contextMenu) show(nodeID string, col, row int, actions []menuAction) {
	m.open = true
	m.nodeID = nodeID
	m.col = col
	m.row = row
	m.cursor = 0
	m.actions = actions
}

func (m *contextMenu) dismiss() {
	*m = contextMenu{}
}

func (m *contextMenu) moveCursor(delta int) {
	if !m.open || len(m.actions) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.actions)) % len(m.actions)
}

func (m *contextMenu) selected() (menuAction, bool) {
	if !m.open || m.cursor < 0 || m.cursor >= len(m.actions) {
		return 0, false
	}
	return m.actions[m.cursor], true
}

// actionAt maps a canvas cell to the menu entry rendered there.
func (m *contextMenu) actionAt(col, row int) (menuAction, bool) {
	if !m.open {
		return 0, false
	}
	idx := row - m.row - 1 // first row is the border
	if idx < 0 || idx >= len(m.actions) {
		return 0, false
	}
	if col < m.col || col >= m.col+m.width() {
		return 0, false
	}
	return m.actions[idx], true
}

func (m *contextMenu) width() int {
	w := 0
	for _, a := range m.actions {
		if n := len(a.label()); n > w {
			w = n
		}
	}
	return w + 4
}

// draw paints the menu onto the canvas grid at its anchor cell.
func (m *contextMenu) draw(c *canvas, theme Theme) {
	if !m.open {
		return
	}
	w := m.width()
	h := len(m.actions) + 2
	border := theme.MutedText
	c.box(m.col, m.row, w, h, "", "", &border)
	for i, a := range m.actions {
		style := &theme.MenuItem
		if i == m.cursor {
			style = &theme.MenuSelected
		}
		c.text(m.col+2, m.row+1+i, a.label(), style)
	}
}

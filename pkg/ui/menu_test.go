package ui

import "testing"

func menuFixture() contextMenu {
	var m contextMenu
	m.show("n1", 10, 4, []menuAction{menuOpen, menuRename, menuDelete})
	return m
}

func TestContextMenuCursorWraps(t *testing.T) {
	m := menuFixture()

	m.moveCursor(-1)
	if a, ok := m.selected(); !ok || a != menuDelete {
		t.Errorf("wrap up selected %v", a)
	}
	m.moveCursor(1)
	if a, _ := m.selected(); a != menuOpen {
		t.Errorf("wrap down selected %v", a)
	}
}

func TestContextMenuActionAt(t *testing.T) {
	m := menuFixture()

	// Row m.row is the border; entries start one row below.
	if _, ok := m.actionAt(12, 4); ok {
		t.Error("border row resolved to an action")
	}
	if a, ok := m.actionAt(12, 5); !ok || a != menuOpen {
		t.Errorf("first entry = %v, %v", a, ok)
	}
	if a, ok := m.actionAt(12, 7); !ok || a != menuDelete {
		t.Errorf("third entry = %v, %v", a, ok)
	}
	if _, ok := m.actionAt(9, 5); ok {
		t.Error("cell left of the menu resolved to an action")
	}
	if _, ok := m.actionAt(10+m.width(), 5); ok {
		t.Error("cell right of the menu resolved to an action")
	}
}

func TestContextMenuDismiss(t *testing.T) {
	m := menuFixture()
	m.dismiss()

	if m.open || m.nodeID != "" {
		t.Errorf("dismiss left state: %+v", m)
	}
	if _, ok := m.selected(); ok {
		t.Error("selected on a dismissed menu")
	}
	if _, ok := m.actionAt(12, 5); ok {
		t.Error("actionAt on a dismissed menu")
	}
	m.moveCursor(1) // must not panic on empty actions
}

package ui

import "testing"

func TestGestureClickVersusDrag(t *testing.T) {
	var g Gesture

	g.BeginNodeDrag("n1", 10, 5, 120, 48)
	ended, wasClick := g.Release()
	if !wasClick {
		t.Error("press-release without motion should be a click")
	}
	if ended.NodeID != "n1" {
		t.Errorf("ended.NodeID = %q", ended.NodeID)
	}
	if g.Active() {
		t.Error("gesture still active after release")
	}

	g.BeginNodeDrag("n1", 10, 5, 120, 48)
	if dCol, dRow := g.Move(13, 7); dCol != 3 || dRow != 2 {
		t.Errorf("Move delta = (%d, %d)", dCol, dRow)
	}
	if _, wasClick := g.Release(); wasClick {
		t.Error("a moved drag reported as click")
	}
}

func TestGestureMoveDeltasAreIncremental(t *testing.T) {
	var g Gesture
	g.BeginCanvasDrag(0, 0)

	g.Move(5, 5)
	if dCol, dRow := g.Move(6, 4); dCol != 1 || dRow != -1 {
		t.Errorf("second delta = (%d, %d)", dCol, dRow)
	}
	// Zero motion keeps Moved but contributes nothing.
	if dCol, dRow := g.Move(6, 4); dCol != 0 || dRow != 0 {
		t.Errorf("stationary delta = (%d, %d)", dCol, dRow)
	}
	if !g.Moved {
		t.Error("Moved flag cleared")
	}
}

func TestGestureMoveWhileIdle(t *testing.T) {
	var g Gesture
	if dCol, dRow := g.Move(9, 9); dCol != 0 || dRow != 0 {
		t.Errorf("idle motion produced delta (%d, %d)", dCol, dRow)
	}
	if g.Moved {
		t.Error("idle motion set Moved")
	}
}

func TestGestureCancelCarriesOrigin(t *testing.T) {
	var g Gesture
	g.BeginNodeDrag("n2", 3, 3, 400, 250)
	g.Move(20, 12)

	ended := g.Cancel()
	if ended.State != GestureDraggingNode || ended.OriginX != 400 || ended.OriginY != 250 {
		t.Errorf("cancel lost origin: %+v", ended)
	}
	if g.Active() {
		t.Error("gesture active after cancel")
	}
}

func TestGestureBeginReplacesPrevious(t *testing.T) {
	var g Gesture
	g.BeginNodeDrag("n1", 1, 1, 0, 0)
	g.Move(2, 2)

	g.BeginEdgeDraw("n3", 8, 8)
	if g.State != GestureDrawingEdge || g.NodeID != "n3" || g.Moved {
		t.Errorf("stale state leaked: %+v", g)
	}

	g.BeginCanvasDrag(0, 0)
	if g.State != GestureDraggingCanvas || g.NodeID != "" {
		t.Errorf("stale node id leaked: %+v", g)
	}
}

func TestGestureStateString(t *testing.T) {
	if GestureDrawingEdge.String() != "drawing-edge" {
		t.Errorf("got %q", GestureDrawingEdge.String())
	}
	if GestureState(99).String() != "unknown" {
		t.Errorf("got %q", GestureState(99).String())
	}
}

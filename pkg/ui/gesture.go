package ui

// GestureState enumerates the pointer interaction states. Exactly one is
// active at a time; every transition goes through Gesture methods so a
// release or cancel always returns to Idle.
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDraggingNode
	GestureDraggingCanvas
	GestureDrawingEdge
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureDraggingNode:
		return "dragging-node"
	case GestureDraggingCanvas:
		return "dragging-canvas"
	case GestureDrawingEdge:
		return "drawing-edge"
	default:
		return "unknown"
	}
}

// Gesture tracks one in-flight pointer interaction. Cell coordinates are
// canvas-local. OriginX/OriginY hold the dragged node's world position at
// press time so a cancel can restore it.
type Gesture struct {
	State    GestureState
	NodeID   string
	StartCol int
	StartRow int
	LastCol  int
	LastRow  int
	OriginX  float64
	OriginY  float64
	Moved    bool
}

// BeginNodeDrag enters DraggingNode for the node under the pointer.
func (g *Gesture) BeginNodeDrag(nodeID string, col, row int, worldX, worldY float64) {
	*g = Gesture{
		State:    GestureDraggingNode,
		NodeID:   nodeID,
		StartCol: col,
		StartRow: row,
		LastCol:  col,
		LastRow:  row,
		OriginX:  worldX,
		OriginY:  worldY,
	}
}

// BeginCanvasDrag enters DraggingCanvas (panning).
func (g *Gesture) BeginCanvasDrag(col, row int) {
	*g = Gesture{
		State:    GestureDraggingCanvas,
		StartCol: col,
		StartRow: row,
		LastCol:  col,
		LastRow:  row,
	}
}

// BeginEdgeDraw enters DrawingEdge with the given source node.
func (g *Gesture) BeginEdgeDraw(nodeID string, col, row int) {
	*g = Gesture{
		State:    GestureDrawingEdge,
		NodeID:   nodeID,
		StartCol: col,
		StartRow: row,
		LastCol:  col,
		LastRow:  row,
	}
}

// Move records pointer motion and returns the cell delta since the last
// move. A press-and-release with no intervening motion stays a click.
func (g *Gesture) Move(col, row int) (dCol, dRow int) {
	if g.State == GestureIdle {
		return 0, 0
	}
	dCol = col - g.LastCol
	dRow = row - g.LastRow
	g.LastCol = col
	g.LastRow = row
	if dCol != 0 || dRow != 0 {
		g.Moved = true
	}
	return dCol, dRow
}

// Release ends the gesture and returns its final form. WasClick reports a
// press-release on a node with no motion, which selects rather than moves.
func (g *Gesture) Release() (ended Gesture, wasClick bool) {
	ended = *g
	wasClick = ended.State == GestureDraggingNode && !ended.Moved
	g.Reset()
	return ended, wasClick
}

// Cancel aborts the gesture. The caller restores the node to ended.OriginX/Y
// when the state was DraggingNode.
func (g *Gesture) Cancel() (ended Gesture) {
	ended = *g
	g.Reset()
	return ended
}

// Reset returns to Idle.
func (g *Gesture) Reset() {
	*g = Gesture{}
}

// Active reports whether a gesture is in flight.
func (g *Gesture) Active() bool {
	return g.State != GestureIdle
}

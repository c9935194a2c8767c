package ui

// World units per terminal cell at zoom 1. Cells are roughly twice as tall
// as they are wide, so vertical units are doubled to keep node boxes
// proportioned like their world-space rectangles.
const (
	unitPerCol = 12.0
	unitPerRow = 24.0
)

// Zoom clamps.
const (
	MinZoom = 0.25
	MaxZoom = 4.0
)

// Camera maps world coordinates to canvas cells. Pan offsets are in world
// units after zoom scaling, mirroring the transform
//
//	world.x = (clientX*unitPerCol - panX) / zoom
//
// so a node keeps its world position while the viewport moves around it.
type Camera struct {
	PanX, PanY float64
	Zoom       float64
}

// NewCamera returns a camera at the origin with zoom 1.
func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// WorldToClient converts a world point to a canvas cell.
func (c Camera) WorldToClient(wx, wy float64) (col, row int) {
	col = int((wx*c.Zoom + c.PanX) / unitPerCol)
	row = int((wy*c.Zoom + c.PanY) / unitPerRow)
	return col, row
}

// ClientToWorld converts a canvas cell to the world point at its top-left
// corner. This is the inverse of WorldToClient up to cell quantization.
func (c Camera) ClientToWorld(col, row int) (wx, wy float64) {
	wx = (float64(col)*unitPerCol - c.PanX) / c.Zoom
	wy = (float64(row)*unitPerRow - c.PanY) / c.Zoom
	return wx, wy
}

// Panned returns the camera shifted by the given cell deltas.
func (c Camera) Panned(dCol, dRow int) Camera {
	c.PanX += float64(dCol) * unitPerCol
	c.PanY += float64(dRow) * unitPerRow
	return c
}

// ZoomedAt scales zoom by factor while keeping the world point under the
// given cell fixed on screen.
func (c Camera) ZoomedAt(col, row int, factor float64) Camera {
	wx, wy := c.ClientToWorld(col, row)

	z := c.Zoom * factor
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	c.Zoom = z

	c.PanX = float64(col)*unitPerCol - wx*c.Zoom
	c.PanY = float64(row)*unitPerRow - wy*c.Zoom
	return c
}

// NodeCellSize returns the on-screen size of a node box in cells for the
// camera's current zoom. The box never collapses below 8x3 so the label row
// stays visible at minimum zoom.
func (c Camera) NodeCellSize(worldW, worldH float64) (cols, rows int) {
	cols = int(worldW * c.Zoom / unitPerCol)
	rows = int(worldH * c.Zoom / unitPerRow)
	if cols < 8 {
		cols = 8
	}
	if rows < 3 {
		rows = 3
	}
	return cols, rows
}

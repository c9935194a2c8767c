package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/lineweave/pkg/layout"
	"github.com/vanderheijden86/lineweave/pkg/model"
)

// canvas rasterizes the graph into a grid of styled cells. It is rebuilt on
// every View call; hit-testing reuses the same camera math so what you click
// is what was drawn.
type canvas struct {
	width  int
	height int
	cells  []rune
	styles []*lipgloss.Style
}

func newCanvas(width, height int) *canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &canvas{
		width:  width,
		height: height,
		cells:  make([]rune, width*height),
		styles: make([]*lipgloss.Style, width*height),
	}
	for i := range c.cells {
		c.cells[i] = ' '
	}
	return c
}

func (c *canvas) set(col, row int, r rune, style *lipgloss.Style) {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return
	}
	i := row*c.width + col
	c.cells[i] = r
	c.styles[i] = style
}

func (c *canvas) text(col, row int, s string, style *lipgloss.Style) {
	x := col
	for _, r := range s {
		c.set(x, row, r, style)
		x += runewidth.RuneWidth(r)
	}
}

// line draws a stepped connector between two cells: horizontal first, then
// vertical, ending in an arrowhead at the target.
func (c *canvas) line(c1, r1, c2, r2 int, style *lipgloss.Style) {
	col := c1
	step := 1
	if c2 < c1 {
		step = -1
	}
	for col != c2 {
		c.set(col, r1, '─', style)
		col += step
	}
	if r1 != r2 {
		corner := '┐'
		if (r2 > r1) == (step < 0) {
			corner = '┌'
		}
		if r2 < r1 {
			corner = '┘'
			if step < 0 {
				corner = '└'
			}
		}
		c.set(c2, r1, corner, style)
		rstep := 1
		if r2 < r1 {
			rstep = -1
		}
		for row := r1 + rstep; row != r2; row += rstep {
			c.set(c2, row, '│', style)
		}
	}
	arrow := '▶'
	if step < 0 {
		arrow = '◀'
	}
	c.set(c2, r2, arrow, style)
}

// box draws a bordered node rectangle with a label row.
func (c *canvas) box(col, row, cols, rows int, label, badge string, style *lipgloss.Style) {
	if cols < 2 || rows < 2 {
		return
	}
	right := col + cols - 1
	bottom := row + rows - 1

	c.set(col, row, '╭', style)
	c.set(right, row, '╮', style)
	c.set(col, bottom, '╰', style)
	c.set(right, bottom, '╯', style)
	for x := col + 1; x < right; x++ {
		c.set(x, row, '─', style)
		c.set(x, bottom, '─', style)
	}
	for y := row + 1; y < bottom; y++ {
		c.set(col, y, '│', style)
		c.set(right, y, '│', style)
		for x := col + 1; x < right; x++ {
			c.set(x, y, ' ', style)
		}
	}

	inner := cols - 4
	if inner > 0 {
		c.text(col+2, row+1, runewidth.Truncate(label, inner, "…"), style)
		if badge != "" && rows > 3 {
			c.text(col+2, row+2, runewidth.Truncate(badge, inner, "…"), style)
		}
	}
}

// render flattens the grid into lines.
func (c *canvas) render() string {
	var b strings.Builder
	for row := 0; row < c.height; row++ {
		var run strings.Builder
		var runStyle *lipgloss.Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle != nil {
				b.WriteString(runStyle.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < c.width; col++ {
			i := row*c.width + col
			if c.styles[i] != runStyle {
				flush()
				runStyle = c.styles[i]
			}
			run.WriteRune(c.cells[i])
		}
		flush()
		if row < c.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// nodeRect returns a node's on-screen rectangle in canvas cells.
func nodeRect(cam Camera, n model.GraphNode) (col, row, cols, rows int) {
	col, row = cam.WorldToClient(n.X, n.Y)
	cols, rows = cam.NodeCellSize(layout.NodeWidth, layout.NodeHeight)
	return col, row, cols, rows
}

// nodeAt returns the topmost node under the given canvas cell. Nodes are
// scanned in reverse draw order so overlapping nodes resolve to the one
// drawn last.
func nodeAt(cam Camera, nodes []model.GraphNode, col, row int) (model.GraphNode, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		c, r, cols, rows := nodeRect(cam, nodes[i])
		if col >= c && col < c+cols && row >= r && row < r+rows {
			return nodes[i], true
		}
	}
	return model.GraphNode{}, false
}

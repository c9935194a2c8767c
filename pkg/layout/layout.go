// Package layout places nodes on the canvas: grid-scan auto-placement for
// newly discovered entities, full grid relayout, and collision resolution
// against pinned nodes during drags. All coordinates are world space.
package layout

import (
	"math"
	"sort"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

// Node bounding box dimensions in world units. Every node renders at the
// same fixed size, so collision checks reduce to axis-aligned box overlap.
const (
	NodeWidth  = 200.0
	NodeHeight = 130.0
)

// Default grid parameters.
const (
	OriginX           = 50.0
	OriginY           = 50.0
	DefaultSpacingX   = 220.0
	DefaultSpacingY   = 150.0
	DefaultWidthBound = 1400.0

	// CollisionGap is the clearance added when pushing a dragged node off a
	// pinned one.
	CollisionGap = 12.0

	// maxAutoPlaceTries bounds the grid scan; past it the candidate is
	// placed anyway (best effort).
	maxAutoPlaceTries = 100
)

// Box is an axis-aligned bounding box in world space.
type Box struct {
	X, Y, W, H float64
}

// BoxFor returns the bounding box of a node positioned at (x, y).
func BoxFor(x, y float64) Box {
	return Box{X: x, Y: y, W: NodeWidth, H: NodeHeight}
}

// Overlaps reports whether two boxes intersect. Strict inequalities: boxes
// that merely touch along an edge do not collide.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && b.X+b.W > o.X && b.Y < o.Y+o.H && b.Y+b.H > o.Y
}

// SortKey selects the ordering for Relayout.
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByUpdatedAt SortKey = "updatedAt"
)

// Engine computes node placement. The zero value uses the package defaults;
// fields exist so tests and config can tighten the grid.
type Engine struct {
	SpacingX   float64
	SpacingY   float64
	WidthBound float64
}

func (e Engine) spacingX() float64 {
	if e.SpacingX > 0 {
		return e.SpacingX
	}
	return DefaultSpacingX
}

func (e Engine) spacingY() float64 {
	if e.SpacingY > 0 {
		return e.SpacingY
	}
	return DefaultSpacingY
}

func (e Engine) widthBound() float64 {
	if e.WidthBound > 0 {
		return e.WidthBound
	}
	return DefaultWidthBound
}

// AutoPlace finds a free grid position: scan from the origin advancing by
// SpacingX, wrapping to the next row past WidthBound. A candidate is rejected
// while its box overlaps any existing node's box. After maxAutoPlaceTries
// rejections the current candidate is returned anyway.
func (e Engine) AutoPlace(existing []model.GraphNode) (x, y float64) {
	x, y = OriginX, OriginY
	for try := 0; try < maxAutoPlaceTries; try++ {
		if !e.collides(x, y, existing) {
			return x, y
		}
		x += e.spacingX()
		if x+NodeWidth > e.widthBound() {
			x = OriginX
			y += e.spacingY()
		}
	}
	return x, y
}

func (e Engine) collides(x, y float64, existing []model.GraphNode) bool {
	candidate := BoxFor(x, y)
	for _, n := range existing {
		if candidate.Overlaps(BoxFor(n.X, n.Y)) {
			return true
		}
	}
	return false
}

// RelayoutEntry pairs a node id with the attributes Relayout can sort by.
type RelayoutEntry struct {
	ID        string
	Name      string
	UpdatedAt int64
}

// Relayout recomputes every position on a near-square grid
// (columns = ceil(sqrt(n))) ordered by key. Returns id -> position.
// The caller is expected to reset pan and zoom afterwards.
func (e Engine) Relayout(entries []RelayoutEntry, key SortKey) map[string][2]float64 {
	sorted := make([]RelayoutEntry, len(entries))
	copy(sorted, entries)

	switch key {
	case SortByUpdatedAt:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].UpdatedAt != sorted[j].UpdatedAt {
				return sorted[i].UpdatedAt > sorted[j].UpdatedAt
			}
			return sorted[i].Name < sorted[j].Name
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Name != sorted[j].Name {
				return sorted[i].Name < sorted[j].Name
			}
			return sorted[i].ID < sorted[j].ID
		})
	}

	columns := int(math.Ceil(math.Sqrt(float64(len(sorted)))))
	if columns < 1 {
		columns = 1
	}

	positions := make(map[string][2]float64, len(sorted))
	for i, entry := range sorted {
		col := i % columns
		row := i / columns
		positions[entry.ID] = [2]float64{
			OriginX + float64(col)*e.spacingX(),
			OriginY + float64(row)*e.spacingY(),
		}
	}
	return positions
}

// ResolvePinnedCollision nudges a dragged candidate position off any frozen
// node it overlaps. While overlapping, the candidate is pushed right past the
// frozen box or down past it, whichever displacement is smaller. Iterations
// are bounded by len(frozen)+4 so pathological pin clusters still terminate.
func (e Engine) ResolvePinnedCollision(x, y float64, movingID string, frozen []model.GraphNode) (float64, float64) {
	maxIter := len(frozen) + 4
	for iter := 0; iter < maxIter; iter++ {
		moved := false
		candidate := BoxFor(x, y)
		for _, f := range frozen {
			if f.ID == movingID {
				continue
			}
			fb := BoxFor(f.X, f.Y)
			if !candidate.Overlaps(fb) {
				continue
			}
			pushRight := fb.X + fb.W + CollisionGap - x
			pushDown := fb.Y + fb.H + CollisionGap - y
			if pushRight <= pushDown {
				x += pushRight
			} else {
				y += pushDown
			}
			candidate = BoxFor(x, y)
			moved = true
		}
		if !moved {
			break
		}
	}
	return x, y
}

package ui

// DropZoneKind identifies a drop target shown along the top of the canvas
// while a node drag is in flight.
type DropZoneKind int

const (
	DropZoneCommit DropZoneKind = iota
	DropZoneExport
	DropZoneDelete
)

func (k DropZoneKind) Label() string {
	switch k {
	case DropZoneCommit:
		return "Commit"
	case DropZoneExport:
		return "Export"
	case DropZoneDelete:
		return "Delete"
	default:
		return "?"
	}
}

// dropZone is a client-space rectangle. Hit tests run in client space so the
// zones stay put under pan and zoom.
type dropZone struct {
	kind DropZoneKind
	col  int
	row  int
	cols int
	rows int
}

func (z dropZone) contains(col, row int) bool {
	return col >= z.col && col < z.col+z.cols && row >= z.row && row < z.row+z.rows
}

// buildDropZones lays the zones out left to right across the top of the
// canvas. Zone width adapts to the label plus border and padding.
func buildDropZones(kinds []DropZoneKind) []dropZone {
	zones := make([]dropZone, 0, len(kinds))
	col := 2
	for _, k := range kinds {
		w := len(k.Label()) + 4
		zones = append(zones, dropZone{kind: k, col: col, row: 0, cols: w, rows: 3})
		col += w + 2
	}
	return zones
}

// zoneAt returns the zone under the cell, if any.
func zoneAt(zones []dropZone, col, row int) (dropZone, bool) {
	for _, z := range zones {
		if z.contains(col, row) {
			return z, true
		}
	}
	return dropZone{}, false
}

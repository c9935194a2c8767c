// Package merge turns an acyclic selection of projects into a single derived
// project. MergeSelected is pure: it validates, orders, and concatenates, but
// never touches the graph. Creating the merged project, placing its node, and
// adding provenance edges is the caller's orchestration step, so a failed
// create leaves the graph untouched.
package merge

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/lineweave/pkg/graph"
	"github.com/vanderheijden86/lineweave/pkg/model"
)

// ValidationError reports an invalid merge request (too few sources, missing
// project data). No mutation has occurred when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "merge validation: " + e.Reason
}

// CycleError reports that the edges induced by the selection form a cycle,
// so no dependency-respecting order exists. No mutation has occurred.
type CycleError struct {
	SelectedIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("merge: selection of %d projects contains a dependency cycle", len(e.SelectedIDs))
}

// Result is the outcome of a successful merge computation.
type Result struct {
	// OrderedSourceIDs is the dependency-respecting order the sources were
	// concatenated in.
	OrderedSourceIDs []string

	// MergedContent is each source's content in order, under a labeled
	// separator header per source.
	MergedContent string

	// ProvisionalName is "Merged <name1>-<name2>-..." in source order. The
	// user may override it before the project is created.
	ProvisionalName string
}

// sourceHeader labels each source's section in the merged content.
func sourceHeader(name string) string {
	return fmt.Sprintf("===== %s =====", name)
}

// MergeSelected validates the selection, orders it topologically over the
// induced edge subset, and concatenates source content. The iteration order
// of selectedIDs is the tie-break order, so a stable selection order gives a
// reproducible merge.
//
// projects must resolve every selected id; edges is the full edge set of the
// current scope (the induced subset is computed here).
func MergeSelected(selectedIDs []string, edges []model.Edge, projects map[string]model.Project) (*Result, error) {
	if len(selectedIDs) < 2 {
		return nil, &ValidationError{Reason: fmt.Sprintf("need at least 2 projects, have %d", len(selectedIDs))}
	}
	for _, id := range selectedIDs {
		if _, ok := projects[id]; !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown project %q", id)}
		}
	}

	induced := graph.InducedEdges(selectedIDs, edges)
	order := graph.TopologicalSort(selectedIDs, induced)
	if order == nil {
		return nil, &CycleError{SelectedIDs: append([]string(nil), selectedIDs...)}
	}

	var (
		sections []string
		names    []string
	)
	for _, id := range order {
		p := projects[id]
		names = append(names, p.Name)
		sections = append(sections, sourceHeader(p.Name)+"\n"+p.Content)
	}

	return &Result{
		OrderedSourceIDs: order,
		MergedContent:    strings.Join(sections, "\n\n"),
		ProvisionalName:  "Merged " + strings.Join(names, "-"),
	}, nil
}

// Placement computes where the merged node goes: the centroid of the source
// node positions plus a fixed offset. Collision handling happens afterwards
// via the layout engine.
func Placement(sources []model.GraphNode) (x, y float64) {
	if len(sources) == 0 {
		return 0, 0
	}
	for _, n := range sources {
		x += n.X
		y += n.Y
	}
	x /= float64(len(sources))
	y /= float64(len(sources))
	return x + PlacementOffsetX, y + PlacementOffsetY
}

// Fixed offset pushing the merged node below-right of its sources' centroid.
const (
	PlacementOffsetX = 60.0
	PlacementOffsetY = 80.0
)

// ProvenanceEdges returns one source -> merged edge per ordered source.
func ProvenanceEdges(orderedSourceIDs []string, mergedID string) []model.Edge {
	out := make([]model.Edge, 0, len(orderedSourceIDs))
	for _, id := range orderedSourceIDs {
		out = append(out, model.Edge{From: id, To: mergedID})
	}
	return out
}

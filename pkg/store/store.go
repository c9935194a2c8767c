// Package store owns the authoritative in-memory graph document of one
// repository: the node set, the edge set, and every mutation the UI performs
// on them. Mutations are synchronous; persistence is delegated to the
// debounced Persister. The store is not safe for concurrent use — the
// program loop is the only writer, matching the single-threaded interaction
// model.
package store

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/lineweave/pkg/layout"
	"github.com/vanderheijden86/lineweave/pkg/model"
)

var (
	// ErrDuplicateEdge is returned by AddEdge for an existing (from, to) pair.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrUnknownNode is returned when an operation references a node id that
	// is not in the store.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned by AddNode for an existing id.
	ErrDuplicateNode = errors.New("duplicate node")
)

// GraphStore holds the active scope's nodes and edges and keeps them
// consistent: no duplicate edges, no edges to missing nodes, stale references
// pruned at load.
type GraphStore struct {
	nodes  []model.GraphNode
	edges  []model.Edge
	byID   map[string]int // node id -> index into nodes
	layout layout.Engine
}

// New returns an empty store using the given layout engine for
// auto-placement.
func New(engine layout.Engine) *GraphStore {
	return &GraphStore{
		byID:   make(map[string]int),
		layout: engine,
	}
}

// PruneReport summarizes what LoadProjects dropped and added.
type PruneReport struct {
	PrunedNodes int
	PrunedEdges int
	PlacedNodes int
}

// LoadProjects installs a persisted graph document against the current
// project set. Nodes referencing non-existent projects are pruned, edges with
// a pruned endpoint go with them, and projects missing from the saved layout
// are auto-placed. Stale references are never silently kept.
func (s *GraphStore) LoadProjects(doc model.GraphDoc, projects []model.Project) PruneReport {
	existing := make(map[string]bool, len(projects))
	for _, p := range projects {
		existing[p.ID] = true
	}

	var report PruneReport
	s.nodes = s.nodes[:0]
	s.byID = make(map[string]int, len(projects))

	for _, n := range doc.Nodes {
		if !existing[n.ID] {
			report.PrunedNodes++
			continue
		}
		if _, dup := s.byID[n.ID]; dup {
			report.PrunedNodes++
			continue
		}
		n.EntityType = model.EntityProject
		s.byID[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, n)
	}

	s.edges = s.edges[:0]
	seen := make(map[model.Edge]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		if _, ok := s.byID[e.From]; !ok {
			report.PrunedEdges++
			continue
		}
		if _, ok := s.byID[e.To]; !ok {
			report.PrunedEdges++
			continue
		}
		if seen[e] || e.From == e.To {
			report.PrunedEdges++
			continue
		}
		seen[e] = true
		s.edges = append(s.edges, e)
	}

	// Projects first seen now get a free grid slot.
	for _, p := range projects {
		if _, ok := s.byID[p.ID]; ok {
			continue
		}
		x, y := s.layout.AutoPlace(s.nodes)
		s.byID[p.ID] = len(s.nodes)
		s.nodes = append(s.nodes, model.GraphNode{ID: p.ID, X: x, Y: y, EntityType: model.EntityProject})
		report.PlacedNodes++
	}

	return report
}

// LoadCommits replaces the active set with read-only commit nodes laid out in
// a fixed-column grid. Commits carry no lineage edges, so the edge set is
// cleared.
func (s *GraphStore) LoadCommits(commits []model.Commit) {
	const commitColumns = 4

	s.nodes = s.nodes[:0]
	s.edges = s.edges[:0]
	s.byID = make(map[string]int, len(commits))

	for i, c := range commits {
		col := i % commitColumns
		row := i / commitColumns
		s.byID[c.ID] = len(s.nodes)
		s.nodes = append(s.nodes, model.GraphNode{
			ID:         c.ID,
			X:          layout.OriginX + float64(col)*layout.DefaultSpacingX,
			Y:          layout.OriginY + float64(row)*layout.DefaultSpacingY,
			EntityType: model.EntityCommit,
		})
	}
}

// Node returns the node for id.
func (s *GraphStore) Node(id string) (model.GraphNode, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.GraphNode{}, false
	}
	return s.nodes[i], true
}

// Nodes returns the nodes in stable document order. Callers must not mutate
// the returned slice.
func (s *GraphStore) Nodes() []model.GraphNode { return s.nodes }

// Edges returns the edges in insertion order. Callers must not mutate the
// returned slice.
func (s *GraphStore) Edges() []model.Edge { return s.edges }

// NodeIDs returns node ids in stable document order, the deterministic
// tie-break order for merges.
func (s *GraphStore) NodeIDs() []string {
	ids := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.ID
	}
	return ids
}

// NodeCount returns the number of nodes.
func (s *GraphStore) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *GraphStore) EdgeCount() int { return len(s.edges) }

// AddNode inserts a new node.
func (s *GraphStore) AddNode(n model.GraphNode) error {
	if n.ID == "" {
		return model.ErrEmptyID
	}
	if _, ok := s.byID[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	s.byID[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	return nil
}

// AddPlaced inserts a node for id at the next free grid position.
func (s *GraphStore) AddPlaced(id string, entityType model.EntityType) (model.GraphNode, error) {
	x, y := s.layout.AutoPlace(s.nodes)
	n := model.GraphNode{ID: id, X: x, Y: y, EntityType: entityType}
	if err := s.AddNode(n); err != nil {
		return model.GraphNode{}, err
	}
	return n, nil
}

// ResolveCollision nudges a proposed position until it clears every node
// except movingID. Used when a drag or merge placement would land one node
// on top of another.
func (s *GraphStore) ResolveCollision(x, y float64, movingID string) (float64, float64) {
	return s.layout.ResolvePinnedCollision(x, y, movingID, s.nodes)
}

// SetPosition moves a node. Position is pure UI state, so this never fails
// beyond the unknown-id case.
func (s *GraphStore) SetPosition(id string, x, y float64) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	s.nodes[i].X = x
	s.nodes[i].Y = y
	return nil
}

// RemoveNode deletes a node and every edge touching it. Unrelated nodes and
// edges are left untouched.
func (s *GraphStore) RemoveNode(id string) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	s.reindex()

	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.From == id || e.To == id {
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	return nil
}

// AddEdge inserts a directed edge after validating endpoints exist, the pair
// is new, and it is not a self-loop. Cycle formation is allowed here: the
// acyclicity invariant applies to merge selections, not the whole canvas.
func (s *GraphStore) AddEdge(from, to string) error {
	e := model.Edge{From: from, To: to}
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := s.byID[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := s.byID[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	for _, have := range s.edges {
		if have == e {
			return fmt.Errorf("%w: %s->%s", ErrDuplicateEdge, from, to)
		}
	}
	s.edges = append(s.edges, e)
	return nil
}

// RemoveEdge deletes the exact (from, to) pair if present.
func (s *GraphStore) RemoveEdge(from, to string) bool {
	for i, e := range s.edges {
		if e.From == from && e.To == to {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return true
		}
	}
	return false
}

// RenameID rewrites a node id and both endpoints of every edge referencing
// it. Needed for external stores whose rename mints a new project id; no
// dangling references survive the transition.
func (s *GraphStore) RenameID(oldID, newID string) error {
	if newID == "" {
		return model.ErrEmptyID
	}
	if oldID == newID {
		return nil
	}
	i, ok := s.byID[oldID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, oldID)
	}
	if _, clash := s.byID[newID]; clash {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, newID)
	}
	s.nodes[i].ID = newID
	delete(s.byID, oldID)
	s.byID[newID] = i

	for j := range s.edges {
		if s.edges[j].From == oldID {
			s.edges[j].From = newID
		}
		if s.edges[j].To == oldID {
			s.edges[j].To = newID
		}
	}
	return nil
}

// Document returns a deep copy of the current graph document, suitable for
// persistence or mutation-free inspection.
func (s *GraphStore) Document() model.GraphDoc {
	return model.GraphDoc{Nodes: s.nodes, Edges: s.edges}.Clone()
}

func (s *GraphStore) reindex() {
	s.byID = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.byID[n.ID] = i
	}
}

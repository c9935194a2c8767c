// Package model defines the core data types for the lineage graph:
// repositories, projects, immutable commits, graph nodes, and provenance
// edges. Types here carry no behavior beyond validation and identity; all
// graph logic lives in pkg/graph and pkg/store.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EntityType tells which kind of entity a graph node references.
type EntityType string

const (
	EntityRepository EntityType = "repository"
	EntityProject    EntityType = "project"
	EntityCommit     EntityType = "commit"
)

// Common validation errors.
var (
	ErrEmptyID       = errors.New("id must not be empty")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrSelfReference = errors.New("edge endpoints must differ")
)

// Project is a mutable content container. Name and content change over time;
// the ID is stable for the lifetime of the project (see DESIGN.md on rename
// semantics for external stores whose rename mints a new id).
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
	Path      string    `json:"path,omitempty"`
}

// Validate checks the structural invariants of a project.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project %s: %w", p.ID, ErrEmptyName)
	}
	return nil
}

// Commit is an immutable version snapshot of a project. Commits are
// append-only and belong to exactly one project; they are loaded lazily per
// drill-down and never cached on the Project value.
type Commit struct {
	ID           string    `json:"id"`
	CommitNumber int       `json:"commit_number"`
	Timestamp    time.Time `json:"timestamp"`
	Content      string    `json:"content"`
}

// Validate checks the structural invariants of a commit.
func (c *Commit) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if c.CommitNumber < 0 {
		return fmt.Errorf("commit %s: negative commit number %d", c.ID, c.CommitNumber)
	}
	return nil
}

// GraphNode is the visual placement of one entity on the canvas. ID aliases
// a Project id in Projects scope or a Commit id in Commits scope. X/Y are in
// world space and are owned by the UI: position is independent of graph
// structure and survives entity content changes.
type GraphNode struct {
	ID         string     `json:"id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	EntityType EntityType `json:"entity_type"`
}

// Edge is a directed provenance relationship: From contributed to To.
// Edges are valid only within one scope.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate rejects empty endpoints and self-loops at the data-entry boundary.
// Cycle checking across multiple edges is pkg/graph's job.
func (e Edge) Validate() error {
	if e.From == "" || e.To == "" {
		return ErrEmptyID
	}
	if e.From == e.To {
		return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrSelfReference)
	}
	return nil
}

// GraphDoc is the persisted graph document: one per repository.
type GraphDoc struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []Edge      `json:"edges"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// authoritative document.
func (d GraphDoc) Clone() GraphDoc {
	out := GraphDoc{
		Nodes: make([]GraphNode, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	copy(out.Nodes, d.Nodes)
	copy(out.Edges, d.Edges)
	return out
}

// HasEdge reports whether the exact (from, to) pair is present.
func (d GraphDoc) HasEdge(from, to string) bool {
	for _, e := range d.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// NodeIDs returns the node ids in document order. The order is stable across
// load/save round-trips, which makes it suitable as the deterministic
// tie-break order for topological sorting.
func (d GraphDoc) NodeIDs() []string {
	ids := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		ids[i] = n.ID
	}
	return ids
}

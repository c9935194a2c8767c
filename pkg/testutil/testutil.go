// Package testutil provides shared fixtures and assertions for graph and
// layout tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

// NodeID generates a standard test node ID with the given index.
// Format: "node-{index}" for consistency across tests.
func NodeID(index int) string {
	return fmt.Sprintf("node-%d", index)
}

// Nodes builds n project nodes laid out on a simple row.
func Nodes(n int) []model.GraphNode {
	out := make([]model.GraphNode, n)
	for i := range out {
		out[i] = model.GraphNode{
			ID:         NodeID(i),
			X:          float64(50 + i*220),
			Y:          50,
			EntityType: model.EntityProject,
		}
	}
	return out
}

// Projects builds n named projects with distinct UpdatedAt timestamps.
func Projects(n int) []model.Project {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	out := make([]model.Project, n)
	for i := range out {
		out[i] = model.Project{
			ID:        NodeID(i),
			Name:      fmt.Sprintf("Project %c", 'A'+i),
			Content:   fmt.Sprintf("content %d", i),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

// Edges builds edges from id pairs: Edges("a","b", "b","c").
func Edges(pairs ...string) []model.Edge {
	if len(pairs)%2 != 0 {
		panic("testutil.Edges: odd number of ids")
	}
	out := make([]model.Edge, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, model.Edge{From: pairs[i], To: pairs[i+1]})
	}
	return out
}

// Doc assembles a graph document from nodes and edges.
func Doc(nodes []model.GraphNode, edges []model.Edge) model.GraphDoc {
	return model.GraphDoc{Nodes: nodes, Edges: edges}
}

// AssertNoOverlap fails when any two node boxes overlap, treating touching
// borders as non-overlapping.
func AssertNoOverlap(t *testing.T, nodes []model.GraphNode, w, h float64) {
	t.Helper()
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if a.X < b.X+w && b.X < a.X+w && a.Y < b.Y+h && b.Y < a.Y+h {
				t.Errorf("nodes %s and %s overlap: (%.0f,%.0f) vs (%.0f,%.0f)",
					a.ID, b.ID, a.X, a.Y, b.X, b.Y)
			}
		}
	}
}

// AssertTopologicalOrder fails unless order respects every edge whose
// endpoints are both present (From strictly before To).
func AssertTopologicalOrder(t *testing.T, order []string, edges []model.Edge) {
	t.Helper()
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, e := range edges {
		pf, okF := pos[e.From]
		pt, okT := pos[e.To]
		if !okF || !okT {
			continue
		}
		if pf >= pt {
			t.Errorf("order violates edge %s -> %s: positions %d, %d", e.From, e.To, pf, pt)
		}
	}
}

// AssertPermutation fails unless got is a permutation of want.
func AssertPermutation(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	seen := make(map[string]int, len(want))
	for _, id := range want {
		seen[id]++
	}
	for _, id := range got {
		seen[id]--
		if seen[id] < 0 {
			t.Errorf("unexpected id %s in result", id)
		}
	}
}

package store

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

// Stats summarizes the shape of the active graph for the status bar and the
// snapshot export summary block.
type Stats struct {
	NodeCount int
	EdgeCount int
	Density   float64

	OutDegree map[string]int
	InDegree  map[string]int

	// TopologicalOrder is empty when the full graph is cyclic. Canvas edges
	// may legally form cycles; only merge selections must stay acyclic.
	TopologicalOrder []string
}

// ComputeStats builds degree maps, density, and (when acyclic) a topological
// order over the whole active graph.
func ComputeStats(nodes []model.GraphNode, edges []model.Edge) Stats {
	stats := Stats{
		NodeCount: len(nodes),
		EdgeCount: len(edges),
		OutDegree: make(map[string]int, len(nodes)),
		InDegree:  make(map[string]int, len(nodes)),
	}

	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(nodes))
	nodeToID := make(map[int64]string, len(nodes))
	for _, n := range nodes {
		gn := g.NewNode()
		g.AddNode(gn)
		idToNode[n.ID] = gn.ID()
		nodeToID[gn.ID()] = n.ID
	}
	for _, e := range edges {
		u, okU := idToNode[e.From]
		v, okV := idToNode[e.To]
		if !okU || !okV || u == v {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
	}

	it := g.Nodes()
	for it.Next() {
		n := it.Node()
		id := nodeToID[n.ID()]
		stats.InDegree[id] = g.To(n.ID()).Len()
		stats.OutDegree[id] = g.From(n.ID()).Len()
	}

	if sorted, err := topo.Sort(g); err == nil {
		for _, n := range sorted {
			stats.TopologicalOrder = append(stats.TopologicalOrder, nodeToID[n.ID()])
		}
	}

	n := float64(len(nodes))
	if n > 1 {
		stats.Density = float64(len(edges)) / (n * (n - 1))
	}
	return stats
}

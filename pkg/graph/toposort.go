// Package graph holds the pure lineage-graph algorithms: cycle detection and
// deterministic topological ordering. Functions here never return errors and
// never mutate their inputs; a cycle is an expected outcome reported as
// false/nil, not an exception. Cycle detection runs in O(V+E); the sort adds
// a log factor for its deterministic tie-break heap.
package graph

import (
	"container/heap"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

// InducedEdges returns the subset of edges whose endpoints both lie in ids.
// The result preserves the input edge order.
func InducedEdges(ids []string, edges []model.Edge) []model.Edge {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	var induced []model.Edge
	for _, e := range edges {
		if in[e.From] && in[e.To] {
			induced = append(induced, e)
		}
	}
	return induced
}

// HasCycle reports whether the subgraph induced by ids contains a directed
// cycle. A self-loop counts as a cycle. Detection is iterative DFS with
// white/gray/black coloring; the first back-edge found answers true.
func HasCycle(ids []string, edges []model.Edge) bool {
	const (
		white = iota
		gray
		black
	)

	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}

	adj := make(map[string][]string, len(ids))
	for _, e := range edges {
		if !in[e.From] || !in[e.To] {
			continue
		}
		if e.From == e.To {
			return true
		}
		adj[e.From] = append(adj[e.From], e.To)
	}

	color := make(map[string]int, len(ids))

	// Iterative DFS: a frame stays on the stack until all children are
	// explored, then turns black. Seeing a gray node from its descendant is a
	// back-edge.
	type frame struct {
		id   string
		next int
	}
	for _, start := range ids {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := adj[top.id]
			if top.next < len(children) {
				child := children[top.next]
				top.next++
				switch color[child] {
				case gray:
					return true
				case white:
					color[child] = gray
					stack = append(stack, frame{id: child})
				}
				continue
			}
			color[top.id] = black
			stack = stack[:len(stack)-1]
		}
	}
	return false
}

// TopologicalSort orders ids so that for every induced edge (u, v), u appears
// before v. Returns nil when the induced subgraph contains a cycle.
//
// Ties among zero-indegree nodes are broken by the caller-supplied iteration
// order of ids, so a stable input order yields a reproducible result — merge
// content ordering depends on this.
func TopologicalSort(ids []string, edges []model.Edge) []string {
	if HasCycle(ids, edges) {
		return nil
	}

	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}

	indegree := make(map[string]int, len(ids))
	adj := make(map[string][]string, len(ids))
	for _, e := range edges {
		if _, ok := position[e.From]; !ok {
			continue
		}
		if _, ok := position[e.To]; !ok {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		indegree[e.To]++
	}

	// Kahn's algorithm with a priority queue instead of a plain FIFO: ready
	// nodes are always taken in ids order.
	ready := &readyQueue{position: position}
	for _, id := range ids {
		if indegree[id] == 0 {
			ready.ids = append(ready.ids, id)
		}
	}
	heap.Init(ready)

	order := make([]string, 0, len(ids))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		order = append(order, id)

		for _, child := range adj[id] {
			indegree[child]--
			if indegree[child] == 0 {
				heap.Push(ready, child)
			}
		}
	}

	// HasCycle already guaranteed completeness; the length check guards
	// against duplicate ids in the input.
	if len(order) != len(ids) {
		return nil
	}
	return order
}

// readyQueue is a min-heap of node ids ordered by their index in the
// caller-supplied id slice.
type readyQueue struct {
	ids      []string
	position map[string]int
}

func (q *readyQueue) Len() int           { return len(q.ids) }
func (q *readyQueue) Less(i, j int) bool { return q.position[q.ids[i]] < q.position[q.ids[j]] }
func (q *readyQueue) Swap(i, j int)      { q.ids[i], q.ids[j] = q.ids[j], q.ids[i] }
func (q *readyQueue) Push(x any)         { q.ids = append(q.ids, x.(string)) }
func (q *readyQueue) Pop() any {
	last := q.ids[len(q.ids)-1]
	q.ids = q.ids[:len(q.ids)-1]
	return last
}

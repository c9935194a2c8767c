package graph

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/testutil"
)

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges []model.Edge
		want  bool
	}{
		{
			name: "empty graph",
			ids:  nil,
			want: false,
		},
		{
			name:  "chain",
			ids:   []string{"a", "b", "c"},
			edges: testutil.Edges("a", "b", "b", "c"),
			want:  false,
		},
		{
			name:  "diamond",
			ids:   []string{"a", "b", "c", "d"},
			edges: testutil.Edges("a", "b", "a", "c", "b", "d", "c", "d"),
			want:  false,
		},
		{
			name:  "two cycle",
			ids:   []string{"a", "b"},
			edges: testutil.Edges("a", "b", "b", "a"),
			want:  true,
		},
		{
			name:  "self loop",
			ids:   []string{"a"},
			edges: testutil.Edges("a", "a"),
			want:  true,
		},
		{
			name:  "cycle deep in chain",
			ids:   []string{"a", "b", "c", "d"},
			edges: testutil.Edges("a", "b", "b", "c", "c", "d", "d", "b"),
			want:  true,
		},
		{
			name:  "edge outside id set ignored",
			ids:   []string{"a", "b"},
			edges: testutil.Edges("a", "b", "b", "x", "x", "a"),
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCycle(tt.ids, InducedEdges(tt.ids, tt.edges)); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopologicalSortDeterministic(t *testing.T) {
	ids := []string{"d", "b", "a", "c"}
	edges := testutil.Edges("a", "b", "a", "c", "b", "d", "c", "d")

	first := TopologicalSort(ids, edges)
	if first == nil {
		t.Fatal("expected an order for an acyclic graph")
	}
	// b and c are both ready after a; the tie breaks on caller id order,
	// where b precedes c.
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("TopologicalSort() = %v, want %v", first, want)
	}

	for i := 0; i < 10; i++ {
		again := TopologicalSort(ids, edges)
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d differed: %v vs %v", i, again, first)
		}
	}
}

func TestTopologicalSortCycleReturnsNil(t *testing.T) {
	ids := []string{"a", "b", "c"}
	edges := testutil.Edges("a", "b", "b", "c", "c", "a")
	if got := TopologicalSort(ids, edges); got != nil {
		t.Errorf("expected nil for cyclic graph, got %v", got)
	}
}

func TestTopologicalSortIsolatedNodes(t *testing.T) {
	ids := []string{"c", "a", "b"}
	got := TopologicalSort(ids, nil)
	// No edges: the order is exactly the caller's id order.
	if !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("TopologicalSort() = %v", got)
	}
}

// Property: for random DAGs (edges only from lower to higher index), the
// sort returns a permutation of the ids that respects every edge, no matter
// how the id list is shuffled.
func TestTopologicalSortProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		ids := make([]string, n)
		for i := range ids {
			ids[i] = testutil.NodeID(i)
		}

		var edges []model.Edge
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rapid.Bool().Draw(rt, "edge") {
					edges = append(edges, model.Edge{From: ids[i], To: ids[j]})
				}
			}
		}

		shuffled := rapid.Permutation(ids).Draw(rt, "shuffled")
		order := TopologicalSort(shuffled, edges)
		if order == nil {
			rt.Fatalf("acyclic graph reported as cyclic")
		}
		testutil.AssertPermutation(t, order, ids)
		testutil.AssertTopologicalOrder(t, order, edges)
	})
}

// Property: a graph with a directed cycle is always detected and never
// sorted.
func TestCycleAlwaysDetected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		ids := make([]string, n)
		for i := range ids {
			ids[i] = testutil.NodeID(i)
		}

		// Ring through all nodes guarantees a cycle; extra random edges
		// must not mask it.
		var edges []model.Edge
		for i := range ids {
			edges = append(edges, model.Edge{From: ids[i], To: ids[(i+1)%n]})
		}
		extra := rapid.IntRange(0, 6).Draw(rt, "extra")
		for k := 0; k < extra; k++ {
			i := rapid.IntRange(0, n-1).Draw(rt, "from")
			j := rapid.IntRange(0, n-1).Draw(rt, "to")
			edges = append(edges, model.Edge{From: ids[i], To: ids[j]})
		}

		if !HasCycle(ids, edges) {
			rt.Fatalf("cycle not detected")
		}
		if order := TopologicalSort(ids, edges); order != nil {
			rt.Fatalf("cyclic graph sorted: %v", order)
		}
	})
}

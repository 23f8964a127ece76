// Package dag maintains the finish-to-start dependency graph of a project's
// tasks. It rejects edges that would create a cycle, detects cycles in data
// that bypassed validation, and provides topological ordering and
// downstream queries.
package dag

import (
	"fmt"
	"sort"

	"github.com/papapumpkin/gantt/internal/task"
)

// Graph is an adjacency structure keyed by task ID. Edges point from a task
// to its dependencies: if A waits on B, there is an edge from A to B.
type Graph struct {
	rank map[string]int // priority rank; higher sorts first
	// adjacency maps taskID → set of dependency IDs (forward edges).
	adjacency map[string]map[string]bool
	// reverse maps taskID → set of dependent IDs (backward edges).
	reverse map[string]map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		rank:      make(map[string]int),
		adjacency: make(map[string]map[string]bool),
		reverse:   make(map[string]map[string]bool),
	}
}

// FromSet builds a graph from a task snapshot. Edges to unknown tasks are
// dropped. Edges are copied as-is without cycle validation so that legacy
// data can still be inspected with Cycles; use AddEdge for gated inserts.
func FromSet(s *task.Set) *Graph {
	g := New()
	for _, t := range s.Tasks() {
		g.addNode(t.ID, t.Priority.Rank())
	}
	for _, t := range s.Tasks() {
		for _, dep := range t.Dependencies {
			if g.Has(dep) && dep != t.ID {
				g.adjacency[t.ID][dep] = true
				g.reverse[dep][t.ID] = true
			}
		}
	}
	return g
}

// addNode inserts id unconditionally. Set IDs are unique, so FromSet uses it
// directly.
func (g *Graph) addNode(id string, rank int) {
	g.rank[id] = rank
	g.adjacency[id] = make(map[string]bool)
	g.reverse[id] = make(map[string]bool)
}

// AddEdge records that dependent waits on prerequisite after checking it
// with ValidateNoCycle. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(dependent, prerequisite string) error {
	if err := ValidateNoCycle(dependent, prerequisite, g); err != nil {
		return err
	}
	g.adjacency[dependent][prerequisite] = true
	g.reverse[prerequisite][dependent] = true
	return nil
}

// Has reports whether id is a node in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.rank[id]
	return ok
}

// DependenciesOf returns the sorted dependency IDs of id.
func (g *Graph) DependenciesOf(id string) []string {
	return sortedKeys(g.adjacency[id])
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.rank)
}

// TopologicalSort returns node IDs with dependencies before dependents.
// Among nodes freed at the same time, higher priority comes first with
// alphabetical tie-breaking. Returns ErrCyclicDependency if the graph
// contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.rank))
	var queue []string
	for id := range g.rank {
		inDegree[id] = len(g.adjacency[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	queue = g.prioritySorted(queue)

	sorted := make([]string, 0, len(g.rank))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		var freed []string
		for dependent := range g.reverse[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		queue = append(queue, g.prioritySorted(freed)...)
	}

	if len(sorted) != len(g.rank) {
		return nil, fmt.Errorf("%w: only %d of %d tasks could be ordered",
			ErrCyclicDependency, len(sorted), len(g.rank))
	}
	return sorted, nil
}

// Descendants returns every task that transitively waits on id, sorted.
// Returns nil for unknown IDs.
func (g *Graph) Descendants(id string) []string {
	if !g.Has(id) {
		return nil
	}
	visited := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range g.reverse[cur] {
			if !visited[next] && next != id {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return sortedKeys(visited)
}

// prioritySorted sorts ids in place by rank descending, then alphabetically.
func (g *Graph) prioritySorted(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool {
		ri, rj := g.rank[ids[i]], g.rank[ids[j]]
		if ri != rj {
			return ri > rj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package dag

import "fmt"

// Edges is the read side of a dependency graph keyed by task ID. Both
// *task.Set and *Graph satisfy it.
type Edges interface {
	Has(id string) bool
	DependenciesOf(id string) []string
}

// ValidateNoCycle checks whether the edge "dependent waits on prerequisite"
// may be added to g. It never mutates g.
//
// The check walks existing dependency edges depth-first from prerequisite;
// reaching dependent means the new edge would close a cycle. A visited set
// keeps the walk O(V+E) on graphs with shared ancestors.
func ValidateNoCycle(dependent, prerequisite string, g Edges) error {
	if dependent == prerequisite {
		return &GraphError{Kind: ErrSelfDependency, Dependent: dependent, Prerequisite: prerequisite}
	}
	if !g.Has(dependent) {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, dependent)
	}
	if !g.Has(prerequisite) {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, prerequisite)
	}
	if path := findPath(g, prerequisite, dependent); path != nil {
		return &GraphError{
			Kind:         ErrCyclicDependency,
			Dependent:    dependent,
			Prerequisite: prerequisite,
			Path:         path,
		}
	}
	return nil
}

// findPath returns the dependency chain src → ... → dst, or nil if dst is
// unreachable from src.
func findPath(g Edges, src, dst string) []string {
	visited := make(map[string]bool)
	var path []string
	var walk func(id string) bool
	walk = func(id string) bool {
		visited[id] = true
		path = append(path, id)
		if id == dst {
			return true
		}
		for _, dep := range g.DependenciesOf(id) {
			if !visited[dep] && walk(dep) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if walk(src) {
		return path
	}
	return nil
}

// visit states for cycle detection.
const (
	unvisited = iota
	onStack
	done
)

// HasCycle re-validates the dependency closure of id from scratch. A node
// revisited while still on the recursion stack signals a cycle; a node that
// was fully processed is skipped.
func HasCycle(id string, g Edges) bool {
	return hasCycleFrom(id, g, make(map[string]int))
}

func hasCycleFrom(id string, g Edges, state map[string]int) bool {
	switch state[id] {
	case onStack:
		return true
	case done:
		return false
	}
	state[id] = onStack
	for _, dep := range g.DependenciesOf(id) {
		if hasCycleFrom(dep, g, state) {
			return true
		}
	}
	state[id] = done
	return false
}

// Cycles returns, in the given order, every id whose dependency closure
// contains a cycle. It is meant for auditing legacy data that bypassed
// ValidateNoCycle; on a well-formed graph it returns nil.
func Cycles(ids []string, g Edges) []string {
	var bad []string
	for _, id := range ids {
		if HasCycle(id, g) {
			bad = append(bad, id)
		}
	}
	return bad
}

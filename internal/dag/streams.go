package dag

import "sort"

// Stream is a set of tasks connected through dependency edges. Tasks in
// different streams share no dependencies, so a delay in one stream never
// cascades into another.
type Stream struct {
	ID int
	// TaskIDs lists the stream's tasks in topological order.
	TaskIDs []string
}

// Streams partitions the graph into independent streams using union-find.
// Streams are ordered by size (largest first), then by first task ID.
// Returns ErrCyclicDependency if the graph contains a cycle.
func (g *Graph) Streams() ([]Stream, error) {
	if g.Len() == 0 {
		return nil, nil
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	uf := newUnionFind()
	for _, id := range order {
		uf.add(id)
	}
	for from, deps := range g.adjacency {
		for to := range deps {
			uf.union(from, to)
		}
	}

	// Walking the topological order keeps each stream's members ordered.
	byRoot := make(map[string]int)
	var streams []Stream
	for _, id := range order {
		root := uf.find(id)
		idx, ok := byRoot[root]
		if !ok {
			idx = len(streams)
			byRoot[root] = idx
			streams = append(streams, Stream{})
		}
		streams[idx].TaskIDs = append(streams[idx].TaskIDs, id)
	}

	sort.SliceStable(streams, func(i, j int) bool {
		if len(streams[i].TaskIDs) != len(streams[j].TaskIDs) {
			return len(streams[i].TaskIDs) > len(streams[j].TaskIDs)
		}
		return streams[i].TaskIDs[0] < streams[j].TaskIDs[0]
	})
	for i := range streams {
		streams[i].ID = i
	}
	return streams, nil
}

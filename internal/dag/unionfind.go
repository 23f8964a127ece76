package dag

// unionFind is a disjoint-set forest over task IDs with path compression
// and union by rank.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

func (uf *unionFind) add(id string) {
	if _, ok := uf.parent[id]; !ok {
		uf.parent[id] = id
	}
}

// find returns the representative of id's set, adding id if unseen.
func (uf *unionFind) find(id string) string {
	p, ok := uf.parent[id]
	if !ok {
		uf.parent[id] = id
		return id
	}
	if p != id {
		uf.parent[id] = uf.find(p)
	}
	return uf.parent[id]
}

func (uf *unionFind) union(a, b string) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

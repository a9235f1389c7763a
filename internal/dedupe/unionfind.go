package dedupe

// unionFind is a disjoint-set structure over record indices with path
// compression and union by rank, giving near-linear merge cost over a run.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{
		parent: parent,
		rank:   make([]int, n),
	}
}

// find returns the root of x, compressing the path as it goes.
func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union merges the sets containing a and b. Returns false if they were
// already in the same set.
func (u *unionFind) union(a, b int) bool {
	rootA, rootB := u.find(a), u.find(b)
	if rootA == rootB {
		return false
	}

	if u.rank[rootA] < u.rank[rootB] {
		rootA, rootB = rootB, rootA
	}
	u.parent[rootB] = rootA
	if u.rank[rootA] == u.rank[rootB] {
		u.rank[rootA]++
	}
	return true
}

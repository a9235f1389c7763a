package dedupe

import "testing"

func TestUnionFindMerge(t *testing.T) {
	uf := newUnionFind(6)

	// Initially every element is its own root
	for i := 0; i < 6; i++ {
		if uf.find(i) != i {
			t.Errorf("find(%d) = %d before any union", i, uf.find(i))
		}
	}

	if !uf.union(0, 1) {
		t.Error("union(0, 1) should merge distinct sets")
	}
	if uf.union(1, 0) {
		t.Error("union(1, 0) should report already merged")
	}

	uf.union(2, 3)
	uf.union(1, 2) // merges {0,1} with {2,3}

	root := uf.find(0)
	for _, i := range []int{1, 2, 3} {
		if uf.find(i) != root {
			t.Errorf("element %d not in merged set", i)
		}
	}

	if uf.find(4) == root || uf.find(5) == root {
		t.Error("unmerged elements joined the set")
	}
}

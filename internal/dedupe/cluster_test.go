package dedupe

import (
	"reflect"
	"strings"
	"testing"
)

func TestClusterDuplicatesScenario(t *testing.T) {
	texts := []string{"apple pie", "appel pie", "banana", "applle pie"}

	assignments, err := ClusterDuplicates(texts, Options{Threshold: 0.85, PrefixLength: 2})
	if err != nil {
		t.Fatalf("ClusterDuplicates: %v", err)
	}

	if len(assignments) != len(texts) {
		t.Fatalf("got %d assignments, want %d", len(assignments), len(texts))
	}

	// The three apple variants share one group
	for _, i := range []int{0, 1, 3} {
		if assignments[i].GroupID != 0 {
			t.Errorf("record %d group = %d, want 0", i, assignments[i].GroupID)
		}
	}

	// banana is a singleton
	if assignments[2].GroupID != -1 {
		t.Errorf("banana group = %d, want -1", assignments[2].GroupID)
	}
	if len(assignments[2].DuplicateRows) != 0 {
		t.Errorf("banana duplicate rows = %v, want empty", assignments[2].DuplicateRows)
	}

	// Duplicate rows are 1-based and exclude the record's own row
	wantRows := map[int][]int{
		0: {2, 4},
		1: {1, 4},
		3: {1, 2},
	}
	for idx, want := range wantRows {
		if !reflect.DeepEqual(assignments[idx].DuplicateRows, want) {
			t.Errorf("record %d duplicate rows = %v, want %v", idx, assignments[idx].DuplicateRows, want)
		}
	}
}

func TestClusterDuplicatesReciprocal(t *testing.T) {
	texts := []string{
		"12 high street alton",
		"12 hihg street alton",
		"12 high st alton",
		"99 mill lane bordon",
		"99 mill lane borden",
		"unrelated record",
	}

	assignments, err := ClusterDuplicates(texts, Options{Threshold: 0.85, PrefixLength: 2})
	if err != nil {
		t.Fatalf("ClusterDuplicates: %v", err)
	}

	for i, a := range assignments {
		for _, row := range a.DuplicateRows {
			other := assignments[row-1]
			found := false
			for _, back := range other.DuplicateRows {
				if back == i+1 {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("record %d lists row %d but not vice versa", i, row)
			}
			if other.GroupID != a.GroupID {
				t.Errorf("records %d and %d listed together but groups differ: %d vs %d",
					i, row-1, a.GroupID, other.GroupID)
			}
		}
	}
}

func TestClusterDuplicatesTransitiveChain(t *testing.T) {
	// a~b and b~c clear the threshold but a~c does not; transitive merging
	// must still place all three in one group.
	a := strings.Repeat("a", 20)
	b := strings.Repeat("a", 19) + "b"
	c := strings.Repeat("a", 18) + "bb"

	if Similarity(a, b) < 0.97 || Similarity(b, c) < 0.97 {
		t.Fatal("test premise broken: chain links must clear 0.97")
	}
	if Similarity(a, c) >= 0.97 {
		t.Fatal("test premise broken: chain endpoints must fall below 0.97")
	}

	assignments, err := ClusterDuplicates([]string{a, b, c}, Options{Threshold: 0.97, PrefixLength: 3})
	if err != nil {
		t.Fatalf("ClusterDuplicates: %v", err)
	}

	if assignments[0].GroupID != assignments[1].GroupID || assignments[1].GroupID != assignments[2].GroupID {
		t.Errorf("chain not merged into one group: %d, %d, %d",
			assignments[0].GroupID, assignments[1].GroupID, assignments[2].GroupID)
	}
	if assignments[0].GroupID != 0 {
		t.Errorf("first group id = %d, want 0", assignments[0].GroupID)
	}
}

func TestClusterDuplicatesExactThreshold(t *testing.T) {
	texts := []string{"hello world", "hello world", "hello w0rld"}

	assignments, err := ClusterDuplicates(texts, Options{Threshold: 1.0, PrefixLength: 3})
	if err != nil {
		t.Fatalf("ClusterDuplicates: %v", err)
	}

	if assignments[0].GroupID != 0 || assignments[1].GroupID != 0 {
		t.Errorf("identical records not grouped: %d, %d", assignments[0].GroupID, assignments[1].GroupID)
	}
	if assignments[2].GroupID != -1 {
		t.Errorf("similar-but-distinct record grouped at threshold 1.0: group %d", assignments[2].GroupID)
	}
}

func TestClusterDuplicatesEmptyTexts(t *testing.T) {
	// Empty texts are treated as identical and collide into the "" bucket
	assignments, err := ClusterDuplicates([]string{"", "", ""}, Options{Threshold: 1.0, PrefixLength: 5})
	if err != nil {
		t.Fatalf("ClusterDuplicates: %v", err)
	}

	for i, a := range assignments {
		if a.GroupID != 0 {
			t.Errorf("empty record %d group = %d, want 0", i, a.GroupID)
		}
	}
}

func TestClusterDuplicatesShortTextsLongPrefix(t *testing.T) {
	// Texts shorter than the prefix length use the full string as key
	texts := []string{"ab", "ab", "cd"}

	assignments, err := ClusterDuplicates(texts, Options{Threshold: 0.9, PrefixLength: 10})
	if err != nil {
		t.Fatalf("ClusterDuplicates: %v", err)
	}

	if assignments[0].GroupID != 0 || assignments[1].GroupID != 0 {
		t.Errorf("identical short records not grouped: %d, %d", assignments[0].GroupID, assignments[1].GroupID)
	}
	if assignments[2].GroupID != -1 {
		t.Errorf("distinct short record grouped: %d", assignments[2].GroupID)
	}
}

func TestClusterDuplicatesEmptyInput(t *testing.T) {
	assignments, err := ClusterDuplicates(nil, Options{Threshold: 0.9, PrefixLength: 3})
	if err != nil {
		t.Fatalf("empty input should not error, got %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("empty input produced %d assignments", len(assignments))
	}
}

func TestClusterDuplicatesInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"threshold too low", Options{Threshold: 0.4, PrefixLength: 3}},
		{"threshold too high", Options{Threshold: 1.1, PrefixLength: 3}},
		{"prefix too short", Options{Threshold: 0.9, PrefixLength: 0}},
		{"prefix too long", Options{Threshold: 0.9, PrefixLength: 11}},
		{"negative workers", Options{Threshold: 0.9, PrefixLength: 3, Workers: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ClusterDuplicates([]string{"a", "b"}, tt.opts); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestClusterDuplicatesBoundaryOptions(t *testing.T) {
	// The extreme ends of both valid ranges must work
	texts := []string{"record one", "record two"}

	for _, opts := range []Options{
		{Threshold: 0.5, PrefixLength: 1},
		{Threshold: 1.0, PrefixLength: 10},
	} {
		if _, err := ClusterDuplicates(texts, opts); err != nil {
			t.Errorf("boundary options %+v failed: %v", opts, err)
		}
	}
}

func TestClusterDuplicatesProgress(t *testing.T) {
	// 200 identical records in one bucket: 19900 comparisons
	texts := make([]string, 200)
	for i := range texts {
		texts[i] = "same record text"
	}

	var calls int
	var lastDone, lastTotal int
	_, err := ClusterDuplicates(texts, Options{
		Threshold:    0.9,
		PrefixLength: 3,
		Progress: func(done, total int) {
			calls++
			if done < lastDone {
				t.Errorf("progress went backwards: %d after %d", done, lastDone)
			}
			lastDone, lastTotal = done, total
		},
	})
	if err != nil {
		t.Fatalf("ClusterDuplicates: %v", err)
	}

	if calls == 0 {
		t.Fatal("progress callback never invoked")
	}
	if lastDone != lastTotal {
		t.Errorf("final progress = %d/%d, want done == total", lastDone, lastTotal)
	}
	if lastTotal != 19900 {
		t.Errorf("total comparisons = %d, want 19900", lastTotal)
	}
}

func TestClusterDuplicatesStop(t *testing.T) {
	texts := []string{"aa 1", "ab 2", "ba 3", "bb 4"}

	_, err := ClusterDuplicates(texts, Options{
		Threshold:    0.9,
		PrefixLength: 2,
		Stop:         func() bool { return true },
	})
	if err != ErrStopped {
		t.Errorf("stop flag: got %v, want ErrStopped", err)
	}
}

func TestClusterDuplicatesParallelMatchesSerial(t *testing.T) {
	texts := []string{
		"apple pie", "appel pie", "applle pie",
		"banana bread", "banana braed", "banana split",
		"cherry tart", "chery tart",
		"date pudding",
		"apple pudding",
		"", "",
		"fig roll", "fig rol",
	}

	serial, err := ClusterDuplicates(texts, Options{Threshold: 0.85, PrefixLength: 2})
	if err != nil {
		t.Fatalf("serial run: %v", err)
	}

	parallel, err := ClusterDuplicates(texts, Options{Threshold: 0.85, PrefixLength: 2, Workers: 4})
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Errorf("parallel assignments differ from serial:\nserial:   %v\nparallel: %v", serial, parallel)
	}
}

func TestClusterDuplicatesParallelStop(t *testing.T) {
	texts := []string{"aa 1", "ab 2", "ba 3", "bb 4"}

	_, err := ClusterDuplicates(texts, Options{
		Threshold:    0.9,
		PrefixLength: 2,
		Workers:      2,
		Stop:         func() bool { return true },
	})
	if err != ErrStopped {
		t.Errorf("parallel stop: got %v, want ErrStopped", err)
	}
}

func TestSummarize(t *testing.T) {
	assignments := []Assignment{
		{GroupID: 0, DuplicateRows: []int{2}},
		{GroupID: 0, DuplicateRows: []int{1}},
		{GroupID: -1, DuplicateRows: []int{}},
		{GroupID: 1, DuplicateRows: []int{5}},
		{GroupID: 1, DuplicateRows: []int{4}},
	}

	grouped, groups := Summarize(assignments)
	if grouped != 4 {
		t.Errorf("grouped records = %d, want 4", grouped)
	}
	if groups != 2 {
		t.Errorf("group count = %d, want 2", groups)
	}
}

func BenchmarkClusterDuplicates(b *testing.B) {
	texts := make([]string, 500)
	variants := []string{
		"42 high street alton hampshire",
		"42 hihg street alton hampshire",
		"17 mill lane petersfield",
		"17 mill lane petresfield",
		"batch record entry",
	}
	for i := range texts {
		texts[i] = variants[i%len(variants)]
	}
	opts := Options{Threshold: 0.9, PrefixLength: 3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ClusterDuplicates(texts, opts); err != nil {
			b.Fatal(err)
		}
	}
}

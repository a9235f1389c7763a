package dedupe

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fuzzydedup/internal/debug"
)

// Threshold and prefix length bounds accepted by the engine, matching the
// ranges the upload UI exposes.
const (
	MinThreshold    = 0.5
	MaxThreshold    = 1.0
	MinPrefixLength = 1
	MaxPrefixLength = 10

	// DefaultThreshold and DefaultPrefixLength mirror the tool's historical
	// defaults.
	DefaultThreshold    = 0.9
	DefaultPrefixLength = 3

	// progressInterval is how many comparisons pass between progress
	// callbacks in a serial run.
	progressInterval = 100
)

// ErrStopped is returned when the caller's stop flag fires before
// clustering completes. No partial result is produced.
var ErrStopped = errors.New("clustering stopped before completion")

// Options configures a clustering run.
type Options struct {
	// Threshold is the minimum similarity for two records to be considered
	// duplicates, in [0.5, 1.0].
	Threshold float64

	// PrefixLength is the number of leading characters used for blocking,
	// in [1, 10].
	PrefixLength int

	// Progress, if set, receives (done, total) comparison counts during the
	// run and a final (total, total) call on completion.
	Progress func(done, total int)

	// Stop, if set, is polled between buckets; returning true abandons the
	// run with ErrStopped.
	Stop func() bool

	// Workers > 1 enables parallel bucket comparison. Buckets are scored
	// independently and merged in a single-threaded reconciliation pass, so
	// results are identical to a serial run.
	Workers int

	// Debug enables verbose timing and bucket logging.
	Debug bool
}

// Validate checks the option ranges before any processing happens.
func (o Options) Validate() error {
	if o.Threshold < MinThreshold || o.Threshold > MaxThreshold {
		return fmt.Errorf("invalid threshold %.2f: must be between %.1f and %.1f",
			o.Threshold, MinThreshold, MaxThreshold)
	}
	if o.PrefixLength < MinPrefixLength || o.PrefixLength > MaxPrefixLength {
		return fmt.Errorf("invalid prefix length %d: must be between %d and %d",
			o.PrefixLength, MinPrefixLength, MaxPrefixLength)
	}
	if o.Workers < 0 {
		return fmt.Errorf("invalid worker count %d: must be >= 0", o.Workers)
	}
	return nil
}

// DefaultOptions returns options with the historical defaults and no
// callbacks.
func DefaultOptions() Options {
	return Options{
		Threshold:    DefaultThreshold,
		PrefixLength: DefaultPrefixLength,
	}
}

// Assignment is the clustering result for one record. GroupID is -1 for
// records with no matches; DuplicateRows holds the 1-based original row
// numbers of the OTHER members of the record's group, sorted ascending.
type Assignment struct {
	GroupID       int   `json:"group_id"`
	DuplicateRows []int `json:"duplicate_rows"`
}

// edge is an above-threshold candidate pair, recorded in discovery order.
type edge struct {
	i, j int
}

// Clusterer runs duplicate grouping over normalized record texts. The
// group-id counter is owned by the run, never ambient state, so a
// Clusterer is reusable and safe to construct per request.
type Clusterer struct {
	opts Options
}

// NewClusterer validates the options and returns a ready clusterer.
func NewClusterer(opts Options) (*Clusterer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Clusterer{opts: opts}, nil
}

// ClusterDuplicates is the one-shot form of Clusterer.Run.
func ClusterDuplicates(texts []string, opts Options) ([]Assignment, error) {
	c, err := NewClusterer(opts)
	if err != nil {
		return nil, err
	}
	return c.Run(texts)
}

// Run partitions the records into duplicate groups. Index i of the result
// corresponds to input record i. Zero records yields an empty result, not
// an error.
//
// Same-group membership is transitive: two records whose direct score
// falls below the threshold still share a group when a chain of
// above-threshold pairs connects them. That is a property of the merge
// step, not a defect.
func (c *Clusterer) Run(texts []string) ([]Assignment, error) {
	defer debug.Timing(c.opts.Debug, "duplicate clustering")()

	if len(texts) == 0 {
		return []Assignment{}, nil
	}

	buckets := BuildBuckets(texts, c.opts.PrefixLength)
	keys := BucketKeys(buckets)
	total := TotalComparisons(buckets)

	debug.Output(c.opts.Debug, "Bucketed %d records into %d buckets: %d comparisons (down from %d)",
		len(texts), len(buckets), total, PossibleComparisons(len(texts)))

	var edges []edge
	var err error
	if c.opts.Workers > 1 {
		edges, err = c.collectParallel(texts, buckets, keys, total)
	} else {
		edges, err = c.collectSerial(texts, buckets, keys, total)
	}
	if err != nil {
		return nil, err
	}

	if c.opts.Progress != nil {
		c.opts.Progress(total, total)
	}

	debug.Output(c.opts.Debug, "Found %d above-threshold pairs", len(edges))

	return assemble(len(texts), edges), nil
}

// collectSerial scores every unordered pair within each bucket, in stable
// bucket order, and records the above-threshold edges.
func (c *Clusterer) collectSerial(texts []string, buckets map[string][]int, keys []string, total int) ([]edge, error) {
	var edges []edge
	done := 0

	for _, key := range keys {
		if c.opts.Stop != nil && c.opts.Stop() {
			return nil, ErrStopped
		}

		indices := buckets[key]
		for x := 0; x < len(indices); x++ {
			for y := x + 1; y < len(indices); y++ {
				i, j := indices[x], indices[y]
				if Similarity(texts[i], texts[j]) >= c.opts.Threshold {
					edges = append(edges, edge{i, j})
				}

				done++
				if done%progressInterval == 0 && c.opts.Progress != nil {
					c.opts.Progress(done, total)
				}
			}
		}
	}

	return edges, nil
}

// assemble merges the discovered edges with union-find and produces the
// final per-record assignments. Group ids are dense integers starting at
// 0, in first-discovery order of each merged group's earliest edge.
func assemble(n int, edges []edge) []Assignment {
	uf := newUnionFind(n)
	matched := make([]bool, n)
	for _, e := range edges {
		uf.union(e.i, e.j)
		matched[e.i] = true
		matched[e.j] = true
	}

	// Replay edges in discovery order so a group merged from two earlier
	// groups keeps the earlier id and ids stay gap-free.
	groupOf := make(map[int]int)
	nextID := 0
	for _, e := range edges {
		root := uf.find(e.i)
		if _, ok := groupOf[root]; !ok {
			groupOf[root] = nextID
			nextID++
		}
	}

	members := make(map[int][]int)
	for i := 0; i < n; i++ {
		if matched[i] {
			root := uf.find(i)
			members[root] = append(members[root], i)
		}
	}

	result := make([]Assignment, n)
	for i := range result {
		result[i] = Assignment{GroupID: -1, DuplicateRows: []int{}}
	}

	for root, group := range members {
		id := groupOf[root]
		sort.Ints(group)
		for _, idx := range group {
			rows := make([]int, 0, len(group)-1)
			for _, other := range group {
				if other != idx {
					rows = append(rows, other+1) // 1-based original row numbers
				}
			}
			result[idx] = Assignment{GroupID: id, DuplicateRows: rows}
		}
	}

	return result
}

// Summarize reports how many records were grouped and how many distinct
// groups exist in a result.
func Summarize(assignments []Assignment) (groupedRecords, groupCount int) {
	seen := make(map[int]bool)
	for _, a := range assignments {
		if a.GroupID < 0 {
			continue
		}
		groupedRecords++
		seen[a.GroupID] = true
	}
	return groupedRecords, len(seen)
}

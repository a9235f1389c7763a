package dedupe

import (
	"sync"

	"github.com/fuzzydedup/internal/debug"
)

// bucketJob is one bucket's worth of pairwise comparisons.
type bucketJob struct {
	key     string
	indices []int
}

// bucketResult carries a worker's above-threshold edges for one bucket.
type bucketResult struct {
	key         string
	edges       []edge
	comparisons int
}

// collectParallel fans buckets out to Workers goroutines. Buckets are
// independent until the merge step, so workers only score pairs; the
// caller replays the collected edges in stable bucket order, which keeps
// group ids identical to a serial run. Progress is reported per completed
// bucket rather than per 100 comparisons.
func (c *Clusterer) collectParallel(texts []string, buckets map[string][]int, keys []string, total int) ([]edge, error) {
	jobChan := make(chan bucketJob, len(keys))
	resultChan := make(chan bucketResult, len(keys))

	var wg sync.WaitGroup
	for w := 0; w < c.opts.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				edges, comparisons := scoreBucket(texts, job.indices, c.opts.Threshold)
				resultChan <- bucketResult{key: job.key, edges: edges, comparisons: comparisons}
			}
		}(w)
	}

	stopped := false
	dispatched := 0
	for _, key := range keys {
		if c.opts.Stop != nil && c.opts.Stop() {
			stopped = true
			break
		}
		jobChan <- bucketJob{key: key, indices: buckets[key]}
		dispatched++
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Drain from this goroutine only, so the progress callback never runs
	// concurrently.
	byKey := make(map[string][]edge, dispatched)
	done := 0
	for res := range resultChan {
		byKey[res.key] = res.edges
		done += res.comparisons
		if !stopped && c.opts.Progress != nil {
			c.opts.Progress(done, total)
		}
	}

	if stopped {
		return nil, ErrStopped
	}

	debug.Output(c.opts.Debug, "Parallel scoring complete: %d buckets across %d workers", dispatched, c.opts.Workers)

	// Reconciliation pass: flatten per-bucket edges in stable bucket order.
	var edges []edge
	for _, key := range keys {
		edges = append(edges, byKey[key]...)
	}
	return edges, nil
}

// scoreBucket compares every unordered pair in one bucket and returns the
// above-threshold edges along with the comparison count.
func scoreBucket(texts []string, indices []int, threshold float64) ([]edge, int) {
	var edges []edge
	comparisons := 0

	for x := 0; x < len(indices); x++ {
		for y := x + 1; y < len(indices); y++ {
			i, j := indices[x], indices[y]
			if Similarity(texts[i], texts[j]) >= threshold {
				edges = append(edges, edge{i, j})
			}
			comparisons++
		}
	}

	return edges, comparisons
}

package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fuzzydedup/internal/dedupe"
	"github.com/fuzzydedup/internal/store"
	"github.com/fuzzydedup/internal/tabular"
)

// Status is the lifecycle state of a deduplication job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// Job is one asynchronous deduplication run over an uploaded table.
type Job struct {
	ID           string
	SourceName   string
	Threshold    float64
	PrefixLength int
	RecordCount  int

	mu          sync.Mutex
	status      Status
	done        int
	total       int
	errMessage  string
	startedAt   time.Time
	completedAt time.Time
	stop        bool

	table       *tabular.Table
	assignments []dedupe.Assignment
}

// View is a snapshot of a job safe to serialize.
type View struct {
	ID           string  `json:"job_id"`
	SourceName   string  `json:"source_name"`
	Status       Status  `json:"status"`
	Threshold    float64 `json:"threshold"`
	PrefixLength int     `json:"prefix_length"`
	RecordCount  int     `json:"record_count"`
	Done         int     `json:"comparisons_done"`
	Total        int     `json:"comparisons_total"`
	Error        string  `json:"error,omitempty"`
}

// Snapshot returns a consistent copy of the job's visible state.
func (j *Job) Snapshot() View {
	j.mu.Lock()
	defer j.mu.Unlock()
	return View{
		ID:           j.ID,
		SourceName:   j.SourceName,
		Status:       j.status,
		Threshold:    j.Threshold,
		PrefixLength: j.PrefixLength,
		RecordCount:  j.RecordCount,
		Done:         j.done,
		Total:        j.total,
		Error:        j.errMessage,
	}
}

// Result returns the table and assignments of a completed job.
func (j *Job) Result() (*tabular.Table, []dedupe.Assignment, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusCompleted {
		return nil, nil, fmt.Errorf("job %s is %s, not completed", j.ID, j.status)
	}
	return j.table, j.assignments, nil
}

func (j *Job) setProgress(done, total int) {
	j.mu.Lock()
	j.done = done
	j.total = total
	j.mu.Unlock()
}

func (j *Job) stopRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stop
}

// Manager owns the in-memory job table and runs jobs in the background.
// A completed job is optionally persisted through the store; a stopped
// job's partial state is discarded, never committed.
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	store   *store.Store
	workers int
}

// NewManager creates a manager. The store may be nil when persistence is
// not configured; workers > 1 enables parallel bucket comparison.
func NewManager(st *store.Store, workers int) *Manager {
	return &Manager{
		jobs:    make(map[string]*Job),
		store:   st,
		workers: workers,
	}
}

// Start validates the parameters, registers a job and kicks off the run.
func (m *Manager) Start(table *tabular.Table, threshold float64, prefixLength int) (*Job, error) {
	opts := dedupe.Options{
		Threshold:    threshold,
		PrefixLength: prefixLength,
		Workers:      m.workers,
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	job := &Job{
		ID:           uuid.New().String(),
		SourceName:   table.Source,
		Threshold:    threshold,
		PrefixLength: prefixLength,
		RecordCount:  len(table.Rows),
		status:       StatusRunning,
		startedAt:    time.Now(),
		table:        table,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.run(job, opts)
	return job, nil
}

// Get looks up a job by id.
func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	return job, ok
}

// Stop raises the job's stop flag. The engine polls it between buckets.
func (m *Manager) Stop(id string) bool {
	job, ok := m.Get(id)
	if !ok {
		return false
	}
	job.mu.Lock()
	job.stop = true
	job.mu.Unlock()
	return true
}

// ActiveCount returns how many jobs are still running.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, job := range m.jobs {
		job.mu.Lock()
		if job.status == StatusRunning {
			count++
		}
		job.mu.Unlock()
	}
	return count
}

func (m *Manager) run(job *Job, opts dedupe.Options) {
	opts.Progress = job.setProgress
	opts.Stop = job.stopRequested

	assignments, err := dedupe.ClusterDuplicates(job.table.RecordTexts(), opts)

	job.mu.Lock()
	job.completedAt = time.Now()
	switch {
	case err == dedupe.ErrStopped:
		job.status = StatusStopped
	case err != nil:
		job.status = StatusFailed
		job.errMessage = err.Error()
	default:
		job.status = StatusCompleted
		job.assignments = assignments
		job.done = job.total
	}
	job.mu.Unlock()

	if err == nil && m.store != nil {
		m.persist(job, assignments)
	}
}

func (m *Manager) persist(job *Job, assignments []dedupe.Assignment) {
	grouped, groups := dedupe.Summarize(assignments)

	job.mu.Lock()
	run := &store.Run{
		ID:             job.ID,
		SourceName:     job.SourceName,
		RecordCount:    job.RecordCount,
		Threshold:      job.Threshold,
		PrefixLength:   job.PrefixLength,
		GroupCount:     groups,
		GroupedRecords: grouped,
		Comparisons:    job.total,
		StartedAt:      job.startedAt,
		CompletedAt:    job.completedAt,
	}
	job.mu.Unlock()

	if err := m.store.SaveRun(run, assignments); err != nil {
		fmt.Printf("Failed to persist run %s: %v\n", job.ID, err)
	}
}

package jobs

import (
	"testing"
	"time"

	"github.com/fuzzydedup/internal/dedupe"
	"github.com/fuzzydedup/internal/tabular"
)

func testTable() *tabular.Table {
	return &tabular.Table{
		Headers: []string{"name", "city"},
		Rows: [][]string{
			{"apple pie", "london"},
			{"appel pie", "london"},
			{"banana", "leeds"},
		},
		Source: "test.csv",
	}
}

func waitForJob(t *testing.T, job *Job) View {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		view := job.Snapshot()
		if view.Status != StatusRunning {
			return view
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return View{}
}

func TestManagerRunsJobToCompletion(t *testing.T) {
	m := NewManager(nil, 1)

	job, err := m.Start(testTable(), 0.85, 2)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	view := waitForJob(t, job)
	if view.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", view.Status, view.Error)
	}
	if view.RecordCount != 3 {
		t.Errorf("expected 3 records, got %d", view.RecordCount)
	}

	_, assignments, err := job.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if len(assignments) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(assignments))
	}
	if assignments[0].GroupID != 0 || assignments[1].GroupID != 0 {
		t.Errorf("expected rows 0 and 1 grouped, got %d and %d",
			assignments[0].GroupID, assignments[1].GroupID)
	}
	if assignments[2].GroupID != -1 {
		t.Errorf("expected row 2 ungrouped, got %d", assignments[2].GroupID)
	}
}

func TestManagerRejectsInvalidParameters(t *testing.T) {
	m := NewManager(nil, 1)

	if _, err := m.Start(testTable(), 0.3, 2); err == nil {
		t.Error("expected error for threshold below range")
	}
	if _, err := m.Start(testTable(), 0.9, 11); err == nil {
		t.Error("expected error for prefix length above range")
	}
	if m.ActiveCount() != 0 {
		t.Errorf("rejected jobs should not be registered, got %d active", m.ActiveCount())
	}
}

func TestManagerResultUnavailableWhileRunning(t *testing.T) {
	job := &Job{ID: "x", status: StatusRunning}
	if _, _, err := job.Result(); err == nil {
		t.Error("expected error for result of a running job")
	}
}

func TestManagerStop(t *testing.T) {
	m := NewManager(nil, 1)

	// Enough identical records to give the stop flag a window to land.
	table := &tabular.Table{Headers: []string{"name"}, Source: "big.csv"}
	for i := 0; i < 2000; i++ {
		table.Rows = append(table.Rows, []string{"same record text"})
	}

	job, err := m.Start(table, 0.9, 3)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !m.Stop(job.ID) {
		t.Fatal("Stop reported unknown job")
	}

	view := waitForJob(t, job)
	if view.Status != StatusStopped && view.Status != StatusCompleted {
		t.Fatalf("unexpected status %s", view.Status)
	}
	if view.Status == StatusStopped {
		if _, _, err := job.Result(); err == nil {
			t.Error("stopped job should not expose a result")
		}
	}

	if m.Stop("no-such-job") {
		t.Error("Stop should report unknown ids")
	}
}

func TestManagerGet(t *testing.T) {
	m := NewManager(nil, 1)

	job, err := m.Start(testTable(), dedupe.DefaultThreshold, dedupe.DefaultPrefixLength)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	got, ok := m.Get(job.ID)
	if !ok || got.ID != job.ID {
		t.Fatalf("Get did not return the started job")
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get should miss on unknown id")
	}

	waitForJob(t, job)
}

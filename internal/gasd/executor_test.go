package gasd

import (
	"testing"
	"time"

	"github.com/qsearchlab/gas-core/pkg/config"
)

// waitForTerminal polls the store until the job reaches a terminal status.
func waitForTerminal(t *testing.T, store *JobStore, jobID string) *JobRecord {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(jobID)
		if !ok {
			t.Fatalf("job disappeared: %s", jobID)
		}
		if rec.Job.Status.Terminal() {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not terminate in time", jobID)
	return nil
}

func solverSpec() *config.Job {
	spec := testSpec()
	spec.Solver = &config.Solver{
		Patience:  12,
		MaxRounds: 200,
		Seed:      12345,
	}
	return spec
}

func TestExecutorRunsJobToCompletion(t *testing.T) {
	store := NewJobStore()
	executor := NewJobExecutor(store)

	rec, err := store.Create("job-1", solverSpec())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	started, err := executor.Start(rec.Job.ID)
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if started.Job.Status != StatusRunning {
		t.Fatalf("expected running status, got %v", started.Job.Status)
	}

	final := waitForTerminal(t, store, "job-1")
	if final.Job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %v (error: %s)", final.Job.Status, final.Job.Error)
	}
	if final.Report == nil {
		t.Fatalf("expected a report on the completed job")
	}
	// Q(x) = 2*x0*x1 - x0 - x1 has its minimum of -1 at 01 and 10.
	if final.Report.Value != -1 {
		t.Fatalf("expected optimum -1, got %v", final.Report.Value)
	}
	if len(final.History) == 0 {
		t.Fatalf("expected round history")
	}
	if final.Job.EndedAtUnixMs == 0 {
		t.Fatalf("expected ended_at_unix_ms set")
	}
}

func TestExecutorStartErrors(t *testing.T) {
	store := NewJobStore()
	executor := NewJobExecutor(store)

	if _, err := executor.Start(""); err != ErrJobIDMissing {
		t.Fatalf("expected ErrJobIDMissing, got %v", err)
	}
	if _, err := executor.Start("missing"); err == nil {
		t.Fatalf("expected error for unknown job")
	}

	if _, err := store.Create("job-1", solverSpec()); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := store.SetStatus("job-1", StatusCompleted, ""); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if _, err := executor.Start("job-1"); err == nil {
		t.Fatalf("expected error for terminal job")
	}
}

func TestExecutorStopPendingJob(t *testing.T) {
	store := NewJobStore()
	executor := NewJobExecutor(store)

	if _, err := store.Create("job-1", solverSpec()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := executor.Stop("job-1")
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if updated.Job.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %v", updated.Job.Status)
	}

	// Stopping again is a no-op on a terminal job.
	again, err := executor.Stop("job-1")
	if err != nil {
		t.Fatalf("second Stop error: %v", err)
	}
	if again.Job.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %v", again.Job.Status)
	}

	if _, err := executor.Stop("missing"); err == nil {
		t.Fatalf("expected error for unknown job")
	}
	if _, err := executor.Stop(""); err != ErrJobIDMissing {
		t.Fatalf("expected ErrJobIDMissing, got %v", err)
	}
}

func TestExecutorFailsOnBrokenSpec(t *testing.T) {
	store := NewJobStore()
	executor := NewJobExecutor(store)

	// Quadratic shape disagrees with the dimension, so model construction
	// must fail and the job must land in failed.
	spec := &config.Job{
		Problem: config.Problem{
			Dimension: 2,
			Quadratic: [][]float64{{0}},
		},
	}
	if _, err := store.Create("job-1", spec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := executor.Start("job-1"); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	final := waitForTerminal(t, store, "job-1")
	if final.Job.Status != StatusFailed {
		t.Fatalf("expected failed, got %v", final.Job.Status)
	}
	if final.Job.Error == "" {
		t.Fatalf("expected error message on failed job")
	}
}

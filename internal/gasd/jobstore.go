// Package gasd is the daemon surface: an in-memory job store, an executor
// that runs adaptive search jobs asynchronously, and the HTTP API over both.
package gasd

import (
	"fmt"
	"sync"
	"time"

	"github.com/qsearchlab/gas-core/pkg/config"
	"github.com/qsearchlab/gas-core/pkg/models"
	"github.com/qsearchlab/gas-core/pkg/utils"
)

// JobStatus is the lifecycle state of a submitted job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Job is the externally visible state of a submitted search job.
type Job struct {
	ID              string    `json:"id"`
	Status          JobStatus `json:"status"`
	CreatedAtUnixMs int64     `json:"created_at_unix_ms"`
	StartedAtUnixMs int64     `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64     `json:"ended_at_unix_ms,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// JobRecord couples a job with its spec and, once finished, its report.
type JobRecord struct {
	Job     *Job
	Spec    *config.Job
	Report  *models.Report
	History []models.RoundSnapshot
}

// JobStore is an in-memory job registry safe for concurrent use.
type JobStore struct {
	mu    sync.RWMutex
	jobs  map[string]*JobRecord
	order []string // creation order, for stable listings
}

func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*JobRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create registers a new pending job. An empty jobID gets a generated one.
func (s *JobStore) Create(jobID string, spec *config.Job) (*JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jobID == "" {
		jobID = utils.GenerateJobID()
	}
	if _, exists := s.jobs[jobID]; exists {
		return nil, fmt.Errorf("job already exists: %s", jobID)
	}

	rec := &JobRecord{
		Job: &Job{
			ID:              jobID,
			Status:          StatusPending,
			CreatedAtUnixMs: nowUnixMs(),
		},
		Spec: spec,
	}
	s.jobs[jobID] = rec
	s.order = append(s.order, jobID)
	return rec, nil
}

func (s *JobStore) Get(jobID string) (*JobRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.jobs[jobID]
	return rec, ok
}

// List returns up to limit jobs in creation order.
func (s *JobStore) List(limit int) []*JobRecord {
	return s.ListFiltered(limit, 0, "")
}

// ListFiltered returns jobs in creation order, optionally filtered by
// status, skipping offset matches and returning at most limit.
func (s *JobStore) ListFiltered(limit, offset int, status JobStatus) []*JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	out := make([]*JobRecord, 0, limit)
	skipped := 0
	for _, id := range s.order {
		rec := s.jobs[id]
		if status != "" && rec.Job.Status != status {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// SetStatus moves a job to the given status, stamping start and end times.
func (s *JobStore) SetStatus(jobID string, status JobStatus, errMsg string) (*JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	rec.Job.Status = status
	if errMsg != "" {
		rec.Job.Error = errMsg
	}

	switch status {
	case StatusRunning:
		if rec.Job.StartedAtUnixMs == 0 {
			rec.Job.StartedAtUnixMs = nowUnixMs()
		}
	case StatusCompleted, StatusFailed, StatusCancelled:
		if rec.Job.EndedAtUnixMs == 0 {
			rec.Job.EndedAtUnixMs = nowUnixMs()
		}
	}

	return rec, nil
}

// SetReport attaches the final report and round history to a job.
func (s *JobStore) SetReport(jobID string, report *models.Report, history []models.RoundSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}
	rec.Report = report
	rec.History = history
	return nil
}

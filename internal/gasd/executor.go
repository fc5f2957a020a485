package gasd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/qsearchlab/gas-core/internal/oracle"
	"github.com/qsearchlab/gas-core/internal/qubo"
	"github.com/qsearchlab/gas-core/internal/report"
	"github.com/qsearchlab/gas-core/internal/search"
	"github.com/qsearchlab/gas-core/pkg/config"
	"github.com/qsearchlab/gas-core/pkg/logger"
	"github.com/qsearchlab/gas-core/pkg/utils"
)

// JobExecutor manages asynchronous job execution and per-job cancellation.
type JobExecutor struct {
	store *JobStore

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrJobTerminal  = errors.New("job is terminal")
	ErrJobIDMissing = errors.New("job_id is required")
)

func NewJobExecutor(store *JobStore) *JobExecutor {
	return &JobExecutor{
		store:   store,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start begins executing a job asynchronously.
// Returns the updated job state (running) or an error.
func (e *JobExecutor) Start(jobID string) (*JobRecord, error) {
	if jobID == "" {
		return nil, ErrJobIDMissing
	}

	rec, ok := e.store.Get(jobID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	if rec.Job.Status == StatusRunning {
		return rec, nil
	}
	if rec.Job.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrJobTerminal, jobID)
	}

	updated, err := e.store.SetStatus(jobID, StatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	// Replace any existing cancel func (shouldn't happen for non-running, but safe).
	if old, exists := e.cancels[jobID]; exists {
		old()
	}
	e.cancels[jobID] = cancel
	e.mu.Unlock()

	go e.runSearch(ctx, jobID)
	return updated, nil
}

// Stop requests cancellation for a running job and marks it cancelled.
func (e *JobExecutor) Stop(jobID string) (*JobRecord, error) {
	if jobID == "" {
		return nil, ErrJobIDMissing
	}

	e.mu.Lock()
	cancel, ok := e.cancels[jobID]
	e.mu.Unlock()

	if ok {
		cancel()
	}

	rec, found := e.store.Get(jobID)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if rec.Job.Status.Terminal() {
		return rec, nil
	}

	updated, err := e.store.SetStatus(jobID, StatusCancelled, "")
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *JobExecutor) cleanup(jobID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[jobID]; ok {
		cancel()
		delete(e.cancels, jobID)
	}
	e.mu.Unlock()
}

// runSearch executes one adaptive search job to completion.
func (e *JobExecutor) runSearch(ctx context.Context, jobID string) {
	defer e.cleanup(jobID)

	rec, ok := e.store.Get(jobID)
	if !ok {
		logger.Error("job not found", "job_id", jobID)
		return
	}

	ctrl, minimize, err := buildController(rec.Spec)
	if err != nil {
		e.fail(jobID, fmt.Sprintf("invalid job spec: %v", err))
		return
	}

	logger.Info("starting search", "job_id", jobID,
		"dimension", rec.Spec.Problem.Dimension, "minimize", minimize)

	termination, err := ctrl.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Stop already marked the job cancelled.
			logger.Info("search cancelled", "job_id", jobID)
			return
		}
		e.fail(jobID, err.Error())
		return
	}

	model, err := buildModel(&rec.Spec.Problem)
	if err != nil {
		e.fail(jobID, err.Error())
		return
	}
	rep, err := report.Summarize(termination, model, minimize)
	if err != nil {
		e.fail(jobID, fmt.Sprintf("report generation failed: %v", err))
		return
	}

	if err := e.store.SetReport(jobID, rep, ctrl.History()); err != nil {
		logger.Error("failed to set report", "job_id", jobID, "error", err)
	}

	if rec, ok := e.store.Get(jobID); ok && rec.Job.Status == StatusRunning {
		if _, err := e.store.SetStatus(jobID, StatusCompleted, ""); err != nil {
			logger.Error("failed to set completed status", "job_id", jobID, "error", err)
		} else {
			logger.Info("job completed", "job_id", jobID,
				"best", rep.BitString, "value", rep.Value,
				"rounds", rep.Rounds, "queries", rep.Queries)
		}
	}
}

func (e *JobExecutor) fail(jobID, msg string) {
	logger.Error("job failed", "job_id", jobID, "error", msg)
	if _, err := e.store.SetStatus(jobID, StatusFailed, msg); err != nil {
		logger.Error("failed to set failed status", "job_id", jobID, "error", err)
	}
}

// buildModel converts a problem spec into an evaluable cost model.
func buildModel(p *config.Problem) (*qubo.Model, error) {
	linear := p.Linear
	if len(linear) == 0 {
		linear = make([]float64, p.Dimension)
	}
	return qubo.New(p.Quadratic, linear, p.Offset)
}

// buildController wires a controller from a job spec: model, random
// source, iteration schedule and amplitude sampler.
func buildController(spec *config.Job) (*search.Controller, bool, error) {
	model, err := buildModel(&spec.Problem)
	if err != nil {
		return nil, false, err
	}

	solver := spec.Solver
	if solver == nil {
		solver = &config.Solver{}
	}
	minimize := solver.Minimizing()

	rng := utils.NewRandSource(solver.Seed)
	schedule, err := search.NewSchedule(solver.Schedule, rng, model.Dimension())
	if err != nil {
		return nil, false, err
	}
	sampler := oracle.NewAmplitudeSampler(rng, minimize, solver.ExhaustiveLimit)

	cfg := search.DefaultConfig()
	cfg.Minimize = minimize
	if solver.Patience > 0 {
		cfg.Patience = solver.Patience
	}
	if solver.MaxRounds > 0 {
		cfg.MaxRounds = solver.MaxRounds
	}
	cfg.MaxQueries = solver.MaxQueries
	cfg.MaxValueWidth = solver.MaxValueWidth

	ctrl := search.NewController(model, sampler, schedule, rng, cfg)
	if err := ctrl.Validate(); err != nil {
		return nil, false, err
	}
	return ctrl, minimize, nil
}

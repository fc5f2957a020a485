// Package search implements the Grover adaptive search control loop: keep
// a best-so-far threshold, ask a sampler for a candidate biased toward
// better solutions, accept strict improvements, and stop on convergence or
// an exhausted budget. The quantum part of the algorithm is hidden behind
// the Sampler interface, so the loop is the same whether candidates come
// from the classical amplitude simulator or a real backend.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/qsearchlab/gas-core/internal/encoding"
	"github.com/qsearchlab/gas-core/internal/qubo"
	"github.com/qsearchlab/gas-core/pkg/logger"
	"github.com/qsearchlab/gas-core/pkg/models"
	"github.com/qsearchlab/gas-core/pkg/utils"
)

// State is the controller's position in its round lifecycle.
type State string

const (
	StateInit      State = "init"
	StateSearching State = "searching"
	StateImproved  State = "improved"
	StateConverged State = "converged"
	StateExhausted State = "exhausted"
)

// ConfigurationError reports a setup problem that must prevent the loop
// from starting; it is never raised mid-run.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Sampler produces one candidate per round, biased toward candidates on
// the better side of the threshold, after running the given number of
// amplification iterations. It reports how many oracle queries it spent.
type Sampler interface {
	SampleWithBias(m *qubo.Model, threshold float64, iterations int) (models.BitVector, int64, error)
}

// Config holds the controller's tunables.
type Config struct {
	// Minimize selects the optimization direction (default true).
	Minimize bool
	// Patience is the number of consecutive non-improving rounds before
	// declaring convergence.
	Patience int
	// MaxRounds is the hard round budget.
	MaxRounds int
	// MaxQueries is the hard oracle-query budget; 0 means unlimited.
	MaxQueries int64
	// MaxValueWidth is the two's-complement bit width reserved for
	// objective values; 0 derives the minimum sufficient width from the
	// model's value bounds. Too small a width would silently wrap, so it
	// is validated up front.
	MaxValueWidth int
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		Minimize:  true,
		Patience:  10,
		MaxRounds: 100,
	}
}

// SearchState is the mutable record owned by the controller. It is only
// touched between rounds, never concurrently.
type SearchState struct {
	State      State
	Best       models.BitVector
	BestValue  float64
	Threshold  float64
	Round      int
	Queries    int64
	Streak     int // consecutive rounds without improvement
	Iterations int // Grover iterations used in the latest round
}

// ProgressFunc receives a snapshot after every round.
type ProgressFunc func(models.RoundSnapshot)

// Controller runs the adaptive search loop over one model.
type Controller struct {
	model    *qubo.Model
	sampler  Sampler
	schedule Schedule
	rng      *utils.RandSource
	cfg      Config
	progress ProgressFunc

	mu      sync.RWMutex
	state   SearchState
	history []models.RoundSnapshot
}

// NewController creates a controller for the given model and sampler.
func NewController(model *qubo.Model, sampler Sampler, schedule Schedule, rng *utils.RandSource, cfg Config) *Controller {
	if cfg.Patience <= 0 {
		cfg.Patience = DefaultConfig().Patience
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultConfig().MaxRounds
	}
	return &Controller{
		model:    model,
		sampler:  sampler,
		schedule: schedule,
		rng:      rng,
		cfg:      cfg,
		state:    SearchState{State: StateInit},
	}
}

// WithProgress sets a per-round progress callback.
func (c *Controller) WithProgress(fn ProgressFunc) *Controller {
	c.progress = fn
	return c
}

// Validate checks the configuration against the model before any round
// runs. Width problems and oversized spaces are rejected here, not
// mid-loop.
func (c *Controller) Validate() error {
	if c.model == nil {
		return &ConfigurationError{Reason: "model is required"}
	}
	if c.sampler == nil {
		return &ConfigurationError{Reason: "sampler is required"}
	}
	if c.schedule == nil {
		return &ConfigurationError{Reason: "schedule is required"}
	}
	if c.rng == nil {
		return &ConfigurationError{Reason: "random source is required"}
	}

	// Samplers that walk the full space advertise a dimension limit;
	// exceeding it is rejected here rather than on the first round.
	if limited, ok := c.sampler.(interface{ SpaceLimit() int }); ok {
		if n := c.model.Dimension(); n > limited.SpaceLimit() {
			return &ConfigurationError{
				Reason: fmt.Sprintf("search space 2^%d exceeds the sampler limit 2^%d", n, limited.SpaceLimit()),
			}
		}
	}

	if c.cfg.MaxValueWidth > 0 && c.model.IsIntegral() {
		lo, hi := c.model.IntegerValueBounds()
		if !encoding.Fits(lo, hi, c.cfg.MaxValueWidth) {
			return &ConfigurationError{
				Reason: fmt.Sprintf("objective range [%d, %d] needs %d bits, max_value_width is %d",
					lo, hi, encoding.MinWidth(lo, hi), c.cfg.MaxValueWidth),
			}
		}
	}
	return nil
}

// Run executes the loop until convergence, budget exhaustion, or context
// cancellation. Rounds are sequential: each round's bias depends on the
// threshold accepted in the previous one. The context is checked only at
// round boundaries.
func (c *Controller) Run(ctx context.Context) (*models.TerminationRecord, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Threshold seeding: an arbitrary random candidate becomes the
	// initial best.
	start := models.BitVector(c.rng.Bits(c.model.Dimension()))
	startValue, err := c.model.Evaluate(start)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate starting candidate: %w", err)
	}

	c.mu.Lock()
	c.state = SearchState{
		State:     StateSearching,
		Best:      start,
		BestValue: startValue,
		Threshold: startValue,
		Queries:   1,
	}
	c.history = c.history[:0]
	c.mu.Unlock()

	logger.Debug("search initialized",
		"start", start.String(), "value", startValue, "minimize", c.cfg.Minimize)

	for round := 1; round <= c.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		iterations := c.schedule.Next()
		candidate, sampleQueries, err := c.sampler.SampleWithBias(c.model, c.currentThreshold(), iterations)
		if err != nil {
			return nil, fmt.Errorf("sampling round %d failed: %w", round, err)
		}
		value, err := c.model.Evaluate(candidate)
		if err != nil {
			return nil, fmt.Errorf("evaluating round %d candidate failed: %w", round, err)
		}

		improved := c.better(value, c.currentThreshold())
		c.applyRound(round, iterations, candidate, value, sampleQueries+1, improved)

		if improved {
			c.schedule.Reset()
			logger.Debug("threshold improved",
				"round", round, "candidate", candidate.String(), "value", value)
		} else {
			c.schedule.Grow()
		}

		if done := c.checkTermination(); done != nil {
			return done, nil
		}
	}

	return c.finish(StateExhausted, models.ReasonExhausted,
		fmt.Sprintf("round budget of %d reached", c.cfg.MaxRounds)), nil
}

// better applies the optimization direction to a strict comparison.
func (c *Controller) better(value, threshold float64) bool {
	if c.cfg.Minimize {
		return value < threshold
	}
	return value > threshold
}

func (c *Controller) currentThreshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Threshold
}

func (c *Controller) applyRound(round, iterations int, candidate models.BitVector, value float64, queries int64, improved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Round = round
	c.state.Iterations = iterations
	c.state.Queries += queries

	if improved {
		c.state.State = StateImproved
		c.state.Best = candidate.Clone()
		c.state.BestValue = value
		c.state.Threshold = value
		c.state.Streak = 0
	} else {
		c.state.State = StateSearching
		c.state.Streak++
	}

	snap := models.RoundSnapshot{
		Round:      round,
		Iterations: iterations,
		Sampled:    candidate.String(),
		Value:      value,
		Threshold:  c.state.Threshold,
		Improved:   improved,
		Queries:    c.state.Queries,
	}
	c.history = append(c.history, snap)

	if c.progress != nil {
		c.progress(snap)
	}
}

// checkTermination applies the stopping rules at a round boundary and
// returns a record when the loop is over.
func (c *Controller) checkTermination() *models.TerminationRecord {
	c.mu.RLock()
	streak := c.state.Streak
	queries := c.state.Queries
	c.mu.RUnlock()

	if streak >= c.cfg.Patience {
		return c.finish(StateConverged, models.ReasonConverged,
			fmt.Sprintf("no improvement for %d consecutive rounds", streak))
	}
	if c.cfg.MaxQueries > 0 && queries >= c.cfg.MaxQueries {
		return c.finish(StateExhausted, models.ReasonExhausted,
			fmt.Sprintf("query budget of %d reached", c.cfg.MaxQueries))
	}
	return nil
}

func (c *Controller) finish(state State, reason models.TerminationReason, note string) *models.TerminationRecord {
	c.mu.Lock()
	c.state.State = state
	rec := &models.TerminationRecord{
		Best:       c.state.Best.Clone(),
		BestValue:  c.state.BestValue,
		Rounds:     c.state.Round,
		Queries:    c.state.Queries,
		Converged:  reason == models.ReasonConverged,
		Reason:     reason,
		ReasonNote: note,
	}
	c.mu.Unlock()

	logger.Info("search finished",
		"reason", string(reason), "best", rec.Best.String(),
		"value", rec.BestValue, "rounds", rec.Rounds, "queries", rec.Queries)
	return rec
}

// Snapshot returns the current search state.
func (c *Controller) Snapshot() SearchState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Best = c.state.Best.Clone()
	return s
}

// History returns the per-round snapshots recorded so far.
func (c *Controller) History() []models.RoundSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.RoundSnapshot, len(c.history))
	copy(out, c.history)
	return out
}

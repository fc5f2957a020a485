package search

import (
	"fmt"
	"math"

	"github.com/qsearchlab/gas-core/pkg/utils"
)

// Schedule decides how many Grover iterations to run each round. The
// count of marked states is unknown, so the classical literature offers
// several growth heuristics; the schedule is pluggable rather than
// hard-coded.
type Schedule interface {
	// Next returns the Grover iteration count for the coming round.
	Next() int
	// Grow is called after a round that produced no improvement.
	Grow()
	// Reset is called after an accepted improvement.
	Reset()
	// Name returns the name of the schedule strategy.
	Name() string
}

// IterationCap returns the standard upper bound ⌈π/4·√(2^n)⌉ on useful
// Grover iterations for an n-bit search space.
func IterationCap(n int) int {
	limit := int(math.Ceil(math.Pi / 4 * math.Sqrt(math.Pow(2, float64(n)))))
	return utils.Max(limit, 1)
}

// ExponentialSchedule grows a bound geometrically after each unsuccessful
// round and draws the iteration count uniformly below it, the classical
// strategy for searching with an unknown number of marked states.
type ExponentialSchedule struct {
	rng    *utils.RandSource
	growth float64
	cap    int
	bound  float64
}

// NewExponentialSchedule creates the default schedule for an n-variable
// problem. growth <= 1 selects the default factor 6/5.
func NewExponentialSchedule(rng *utils.RandSource, n int, growth float64) *ExponentialSchedule {
	if growth <= 1 {
		growth = 1.2
	}
	return &ExponentialSchedule{
		rng:    rng,
		growth: growth,
		cap:    IterationCap(n),
		bound:  1,
	}
}

func (s *ExponentialSchedule) Name() string {
	return "exponential"
}

func (s *ExponentialSchedule) Next() int {
	bound := utils.Min(int(math.Ceil(s.bound)), s.cap)
	if bound <= 1 {
		return 1
	}
	return 1 + s.rng.Intn(bound)
}

func (s *ExponentialSchedule) Grow() {
	s.bound = utils.ClampFloat64(s.bound*s.growth, 1, float64(s.cap))
}

func (s *ExponentialSchedule) Reset() {
	s.bound = 1
}

// LinearSchedule adds a fixed step after each unsuccessful round.
type LinearSchedule struct {
	step    int
	cap     int
	current int
}

// NewLinearSchedule creates a linear schedule with the given step size.
// step <= 0 selects 1.
func NewLinearSchedule(n, step int) *LinearSchedule {
	if step <= 0 {
		step = 1
	}
	return &LinearSchedule{step: step, cap: IterationCap(n), current: 1}
}

func (s *LinearSchedule) Name() string {
	return "linear"
}

func (s *LinearSchedule) Next() int {
	return utils.Min(s.current, s.cap)
}

func (s *LinearSchedule) Grow() {
	s.current = utils.Min(s.current+s.step, s.cap)
}

func (s *LinearSchedule) Reset() {
	s.current = 1
}

// FixedSchedule always runs the same number of iterations; useful for
// experiments and tests.
type FixedSchedule struct {
	iterations int
}

// NewFixedSchedule creates a schedule pinned to the given count.
func NewFixedSchedule(iterations int) *FixedSchedule {
	if iterations < 1 {
		iterations = 1
	}
	return &FixedSchedule{iterations: iterations}
}

func (s *FixedSchedule) Name() string {
	return "fixed"
}

func (s *FixedSchedule) Next() int {
	return s.iterations
}

func (s *FixedSchedule) Grow() {}

func (s *FixedSchedule) Reset() {}

// NewSchedule creates a schedule from a strategy name.
func NewSchedule(name string, rng *utils.RandSource, n int) (Schedule, error) {
	switch name {
	case "", "exponential":
		return NewExponentialSchedule(rng, n, 0), nil
	case "linear":
		return NewLinearSchedule(n, 1), nil
	case "fixed":
		return NewFixedSchedule(1), nil
	default:
		return nil, fmt.Errorf("unknown schedule strategy: %s", name)
	}
}

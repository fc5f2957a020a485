// Package oracle provides the classical stand-ins for the quantum parts of
// Grover adaptive search: a threshold predicate in place of the phase-flip
// oracle, full enumeration of the candidate space for verification, and an
// amplitude-array simulation of amplitude amplification.
package oracle

import (
	"fmt"
	"iter"

	"github.com/qsearchlab/gas-core/internal/qubo"
	"github.com/qsearchlab/gas-core/pkg/models"
)

// DefaultSpaceLimit caps the problem dimension for anything that walks or
// materializes all 2^n candidates. Beyond this the simulation approach is
// rejected up front rather than failing mid-run.
const DefaultSpaceLimit = 24

// SpaceTooLargeError reports a search space too big for exhaustive
// simulation. It is a configuration problem detected before any round
// runs, never a mid-loop fault.
type SpaceTooLargeError struct {
	Dimension int
	Limit     int
}

func (e *SpaceTooLargeError) Error() string {
	return fmt.Sprintf("search space 2^%d exceeds exhaustive simulation limit 2^%d", e.Dimension, e.Limit)
}

// BelowThreshold returns the predicate marking candidates with
// Q(x) < threshold. In the quantum system this is the phase-flip oracle
// multiplying marked amplitudes by -1; classically the predicate decides
// which candidates amplification would favor.
func BelowThreshold(m *qubo.Model, threshold float64) func(models.BitVector) bool {
	return func(x models.BitVector) bool {
		v, err := m.Evaluate(x)
		if err != nil {
			return false
		}
		return v < threshold
	}
}

// AboveThreshold is the maximization counterpart of BelowThreshold.
func AboveThreshold(m *qubo.Model, threshold float64) func(models.BitVector) bool {
	return func(x models.BitVector) bool {
		v, err := m.Evaluate(x)
		if err != nil {
			return false
		}
		return v > threshold
	}
}

// Enumerate yields every length-n bit vector in index order. This is the
// classical substitute for superposition over the whole space and is only
// usable for small n; limit <= 0 selects DefaultSpaceLimit.
func Enumerate(n, limit int) (iter.Seq[models.BitVector], error) {
	if limit <= 0 {
		limit = DefaultSpaceLimit
	}
	if n <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", n)
	}
	if n > limit {
		return nil, &SpaceTooLargeError{Dimension: n, Limit: limit}
	}

	size := uint64(1) << uint(n)
	seq := func(yield func(models.BitVector) bool) {
		for idx := uint64(0); idx < size; idx++ {
			if !yield(models.BitVectorFromIndex(idx, n)) {
				return
			}
		}
	}
	return seq, nil
}

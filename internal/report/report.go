// Package report turns a termination record into a final, consistency
// checked result summary.
package report

import (
	"fmt"
	"math"

	"github.com/qsearchlab/gas-core/internal/encoding"
	"github.com/qsearchlab/gas-core/internal/qubo"
	"github.com/qsearchlab/gas-core/pkg/models"
)

// Summarize re-evaluates the record's best assignment through the cost
// model and emits a report. The re-evaluation defends against stale
// cached values: a mismatch between the recorded and recomputed
// objective is an error, not something to paper over. Summarize is pure,
// so calling it twice on the same record yields identical reports.
func Summarize(rec *models.TerminationRecord, model *qubo.Model, minimize bool) (*models.Report, error) {
	if rec == nil {
		return nil, fmt.Errorf("termination record is required")
	}
	if model == nil {
		return nil, fmt.Errorf("cost model is required")
	}

	value, err := model.Evaluate(rec.Best)
	if err != nil {
		return nil, fmt.Errorf("failed to re-evaluate best assignment: %w", err)
	}
	if math.Abs(value-rec.BestValue) > 1e-9 {
		return nil, fmt.Errorf("recorded best value %v does not match re-evaluation %v", rec.BestValue, value)
	}

	r := &models.Report{
		Assignment:   append([]uint8(nil), rec.Best...),
		BitString:    rec.Best.String(),
		Value:        value,
		Rounds:       rec.Rounds,
		Queries:      rec.Queries,
		Reason:       rec.Reason,
		ReasonNote:   rec.ReasonNote,
		Minimization: minimize,
	}

	// For integral objectives the value register rendering mirrors what a
	// measurement of the phase-encoded value qubits would read out.
	if model.IsIntegral() && value == math.Trunc(value) {
		lo, hi := model.IntegerValueBounds()
		width := encoding.MinWidth(lo, hi)
		bits, err := encoding.Encode(int64(value), width)
		if err == nil {
			r.ValueBits = bits.String()
		}
	}

	return r, nil
}

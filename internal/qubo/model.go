// Package qubo holds the quadratic pseudo-Boolean cost model
// Q(x) = xᵀAx + bᵀx + c evaluated over binary vectors. A model is
// constructed once from a problem instance and is read-only afterwards;
// the penalty conversion that produces A, b and c happens upstream.
package qubo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/qsearchlab/gas-core/pkg/models"
)

// DimensionMismatchError reports a candidate vector whose length does not
// match the model dimension.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("bit vector has length %d, model dimension is %d", e.Got, e.Want)
}

// Model is an immutable quadratic cost model over n binary variables.
// The quadratic matrix may be stored asymmetrically; evaluation uses the
// stored entries directly, so only A+Aᵀ contributes effectively and the
// same convention is applied everywhere.
type Model struct {
	n        int
	quad     *mat.Dense
	linear   *mat.VecDense
	constant float64
}

// New builds a model from a quadratic matrix, a linear vector and a
// constant offset. The matrix must be n×n and the vector length n.
func New(quadratic [][]float64, linear []float64, constant float64) (*Model, error) {
	n := len(linear)
	if n == 0 {
		return nil, fmt.Errorf("model dimension must be positive")
	}
	if len(quadratic) != n {
		return nil, fmt.Errorf("quadratic matrix has %d rows, want %d", len(quadratic), n)
	}

	quad := mat.NewDense(n, n, nil)
	for i, row := range quadratic {
		if len(row) != n {
			return nil, fmt.Errorf("quadratic matrix row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			quad.Set(i, j, v)
		}
	}

	return &Model{
		n:        n,
		quad:     quad,
		linear:   mat.NewVecDense(n, append([]float64(nil), linear...)),
		constant: constant,
	}, nil
}

// Dimension returns the number of binary variables.
func (m *Model) Dimension() int {
	return m.n
}

// Constant returns the constant offset c.
func (m *Model) Constant() float64 {
	return m.constant
}

// Quadratic returns the entry A[i][j].
func (m *Model) Quadratic(i, j int) float64 {
	return m.quad.At(i, j)
}

// Linear returns the entry b[i].
func (m *Model) Linear(i int) float64 {
	return m.linear.AtVec(i)
}

// Evaluate computes Q(x) = xᵀAx + bᵀx + c for a candidate assignment.
func (m *Model) Evaluate(x models.BitVector) (float64, error) {
	if len(x) != m.n {
		return 0, &DimensionMismatchError{Want: m.n, Got: len(x)}
	}

	xv := mat.NewVecDense(m.n, nil)
	for i, b := range x {
		if b != 0 {
			xv.SetVec(i, 1)
		}
	}

	var ax mat.VecDense
	ax.MulVec(m.quad, xv)

	return mat.Dot(xv, &ax) + mat.Dot(m.linear, xv) + m.constant, nil
}

// EvaluateIndex evaluates the candidate whose bits spell out idx.
func (m *Model) EvaluateIndex(idx uint64) float64 {
	// Direct accumulation avoids allocating a vector per candidate when
	// sweeping the whole space.
	sum := m.constant
	for i := 0; i < m.n; i++ {
		if (idx>>uint(i))&1 == 0 {
			continue
		}
		sum += m.linear.AtVec(i)
		for j := 0; j < m.n; j++ {
			if (idx>>uint(j))&1 != 0 {
				sum += m.quad.At(i, j)
			}
		}
	}
	return sum
}

// ValueBounds returns a conservative interval [lo, hi] containing every
// attainable Q(x), from entry-wise sign splitting: each negative term can
// only lower the value and each positive term can only raise it.
func (m *Model) ValueBounds() (lo, hi float64) {
	lo, hi = m.constant, m.constant
	for i := 0; i < m.n; i++ {
		if v := m.linear.AtVec(i); v < 0 {
			lo += v
		} else {
			hi += v
		}
		for j := 0; j < m.n; j++ {
			if v := m.quad.At(i, j); v < 0 {
				lo += v
			} else {
				hi += v
			}
		}
	}
	return lo, hi
}

// IntegerValueBounds returns ValueBounds widened to enclosing integers,
// for sizing a two's-complement value register.
func (m *Model) IntegerValueBounds() (lo, hi int64) {
	flo, fhi := m.ValueBounds()
	return int64(math.Floor(flo)), int64(math.Ceil(fhi))
}

// IsIntegral reports whether all coefficients are integers, in which case
// every attainable objective value is an integer as well.
func (m *Model) IsIntegral() bool {
	for i := 0; i < m.n; i++ {
		if m.linear.AtVec(i) != math.Trunc(m.linear.AtVec(i)) {
			return false
		}
		for j := 0; j < m.n; j++ {
			if m.quad.At(i, j) != math.Trunc(m.quad.At(i, j)) {
				return false
			}
		}
	}
	return m.constant == math.Trunc(m.constant)
}

package oracle

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/qsearchlab/gas-core/internal/qubo"
	"github.com/qsearchlab/gas-core/pkg/models"
)

// ExhaustiveResult is the outcome of a full sweep over the search space.
type ExhaustiveResult struct {
	Best    models.BitVector
	Value   float64
	Queries int64
}

// ExhaustiveSearch evaluates every candidate and returns the optimum. It
// exists for verification and testing on small instances, not for
// production search. Evaluations are independent, so the index range is
// split across workers and the per-worker optima are merged by a final
// reduction; each worker reads the immutable model only.
func ExhaustiveSearch(ctx context.Context, m *qubo.Model, minimize bool, workers, limit int) (*ExhaustiveResult, error) {
	n := m.Dimension()
	if limit <= 0 {
		limit = DefaultSpaceLimit
	}
	if n > limit {
		return nil, &SpaceTooLargeError{Dimension: n, Limit: limit}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	size := uint64(1) << uint(n)
	if uint64(workers) > size {
		workers = int(size)
	}

	type local struct {
		idx   uint64
		value float64
		found bool
	}
	locals := make([]local, workers)

	g, ctx := errgroup.WithContext(ctx)
	chunk := size / uint64(workers)
	for w := 0; w < workers; w++ {
		w := w
		start := uint64(w) * chunk
		end := start + chunk
		if w == workers-1 {
			end = size
		}
		g.Go(func() error {
			best := local{}
			for idx := start; idx < end; idx++ {
				if idx%4096 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				v := m.EvaluateIndex(idx)
				better := v < best.value
				if !minimize {
					better = v > best.value
				}
				if !best.found || better {
					best = local{idx: idx, value: v, found: true}
				}
			}
			locals[w] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := locals[0]
	for _, l := range locals[1:] {
		if !l.found {
			continue
		}
		better := l.value < merged.value
		if !minimize {
			better = l.value > merged.value
		}
		if !merged.found || better {
			merged = l
		}
	}

	return &ExhaustiveResult{
		Best:    models.BitVectorFromIndex(merged.idx, n),
		Value:   merged.value,
		Queries: int64(size),
	}, nil
}

package oracle

import (
	"math"

	"github.com/qsearchlab/gas-core/internal/qubo"
	"github.com/qsearchlab/gas-core/pkg/models"
	"github.com/qsearchlab/gas-core/pkg/utils"
)

// AmplitudeSampler simulates amplitude amplification classically: it keeps
// a real amplitude per basis state, applies the requested number of Grover
// iterations (phase flip on marked states followed by inversion about the
// mean), and measures once by sampling from the squared amplitudes.
//
// A quantum backend would replace this with real state preparation, oracle
// and diffusion calls; the controller only sees the Sampler contract.
type AmplitudeSampler struct {
	rng      *utils.RandSource
	minimize bool
	limit    int
}

// NewAmplitudeSampler creates a sampler drawing randomness from rng.
// When minimize is false the oracle marks candidates above the threshold
// instead of below it. limit <= 0 selects DefaultSpaceLimit.
func NewAmplitudeSampler(rng *utils.RandSource, minimize bool, limit int) *AmplitudeSampler {
	if limit <= 0 {
		limit = DefaultSpaceLimit
	}
	return &AmplitudeSampler{rng: rng, minimize: minimize, limit: limit}
}

// SpaceLimit returns the largest problem dimension this sampler accepts.
func (s *AmplitudeSampler) SpaceLimit() int {
	return s.limit
}

// SampleWithBias runs `iterations` Grover iterations against the oracle
// "Q(x) better than threshold" and returns one measured candidate plus the
// number of oracle queries spent. Determining the marked set costs one
// evaluation per basis state, which is exactly the exhaustive cost the
// quantum algorithm avoids.
func (s *AmplitudeSampler) SampleWithBias(m *qubo.Model, threshold float64, iterations int) (models.BitVector, int64, error) {
	n := m.Dimension()
	if n > s.limit {
		return nil, 0, &SpaceTooLargeError{Dimension: n, Limit: s.limit}
	}

	size := uint64(1) << uint(n)
	marked := make([]bool, size)
	for idx := uint64(0); idx < size; idx++ {
		v := m.EvaluateIndex(idx)
		if s.minimize {
			marked[idx] = v < threshold
		} else {
			marked[idx] = v > threshold
		}
	}
	queries := int64(size)

	amps := uniformAmplitudes(size)
	for it := 0; it < iterations; it++ {
		phaseFlip(amps, marked)
		invertAboutMean(amps)
	}

	idx := s.measure(amps)
	return models.BitVectorFromIndex(idx, n), queries, nil
}

func uniformAmplitudes(size uint64) []float64 {
	amps := make([]float64, size)
	initial := 1.0 / math.Sqrt(float64(size))
	for i := range amps {
		amps[i] = initial
	}
	return amps
}

func phaseFlip(amps []float64, marked []bool) {
	for i := range amps {
		if marked[i] {
			amps[i] = -amps[i]
		}
	}
}

func invertAboutMean(amps []float64) {
	mean := 0.0
	for _, a := range amps {
		mean += a
	}
	mean /= float64(len(amps))
	for i := range amps {
		amps[i] = 2*mean - amps[i]
	}
}

// measure samples a basis state index from the squared-amplitude
// distribution. The total is recomputed to absorb floating point drift
// accumulated over many iterations.
func (s *AmplitudeSampler) measure(amps []float64) uint64 {
	total := 0.0
	for _, a := range amps {
		total += a * a
	}

	u := s.rng.UniformFloat64(0, total)
	acc := 0.0
	for i, a := range amps {
		acc += a * a
		if u < acc {
			return uint64(i)
		}
	}
	return uint64(len(amps) - 1)
}

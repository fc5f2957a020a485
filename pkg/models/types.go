package models

import (
	"fmt"
	"strings"
)

// BitVector is an ordered sequence of {0,1} representing a candidate
// assignment over binary decision variables. Index 0 is the least
// significant bit. Treat a BitVector as immutable once produced; use
// Clone before mutating.
type BitVector []uint8

// NewBitVector returns an all-zero bit vector of length n.
func NewBitVector(n int) BitVector {
	return make(BitVector, n)
}

// BitVectorFromIndex builds the length-n bit vector whose bits spell out
// the unsigned integer idx (bit i of idx becomes element i).
func BitVectorFromIndex(idx uint64, n int) BitVector {
	v := make(BitVector, n)
	for i := 0; i < n; i++ {
		v[i] = uint8((idx >> uint(i)) & 1)
	}
	return v
}

// Index returns the unsigned integer whose bit i equals element i.
// Panics if the vector is longer than 64 bits.
func (v BitVector) Index() uint64 {
	if len(v) > 64 {
		panic(fmt.Sprintf("bit vector too long for index: %d bits", len(v)))
	}
	var idx uint64
	for i, b := range v {
		if b != 0 {
			idx |= 1 << uint(i)
		}
	}
	return idx
}

// Clone returns an independent copy of the vector.
func (v BitVector) Clone() BitVector {
	out := make(BitVector, len(v))
	copy(out, v)
	return out
}

// Equal reports whether two bit vectors have the same length and bits.
func (v BitVector) Equal(other BitVector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the vector most-significant bit first, e.g. "01101".
func (v BitVector) String() string {
	var sb strings.Builder
	sb.Grow(len(v))
	for i := len(v) - 1; i >= 0; i-- {
		if v[i] != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// TerminationReason explains why the search loop stopped.
type TerminationReason string

const (
	// ReasonConverged means no improving sample was found for the
	// configured patience window.
	ReasonConverged TerminationReason = "converged"
	// ReasonExhausted means a round or query budget ran out before
	// convergence was declared.
	ReasonExhausted TerminationReason = "exhausted"
)

// TerminationRecord is the final outcome of an adaptive search run.
type TerminationRecord struct {
	Best       BitVector         `json:"best"`
	BestValue  float64           `json:"best_value"`
	Rounds     int               `json:"rounds"`
	Queries    int64             `json:"queries"`
	Converged  bool              `json:"converged"`
	Reason     TerminationReason `json:"reason"`
	ReasonNote string            `json:"reason_note,omitempty"`
}

// RoundSnapshot captures the state of the loop after one amplification round.
type RoundSnapshot struct {
	Round      int     `json:"round"`
	Iterations int     `json:"iterations"` // Grover iterations used this round
	Sampled    string  `json:"sampled"`
	Value      float64 `json:"value"`
	Threshold  float64 `json:"threshold"`
	Improved   bool    `json:"improved"`
	Queries    int64   `json:"queries"` // cumulative oracle queries
}

// Report is the reporter's consistency-checked view of a TerminationRecord.
type Report struct {
	Assignment   []uint8           `json:"assignment"`
	BitString    string            `json:"bitstring"`
	Value        float64           `json:"value"`
	ValueBits    string            `json:"value_bits,omitempty"` // two's-complement encoding for integral objectives
	Rounds       int               `json:"rounds"`
	Queries      int64             `json:"queries"`
	Reason       TerminationReason `json:"reason"`
	ReasonNote   string            `json:"reason_note,omitempty"`
	Minimization bool              `json:"minimization"`
}

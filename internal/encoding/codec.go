// Package encoding implements the fixed-width two's-complement codec used
// to represent objective values as bit patterns. Bit 0 of a vector is the
// least significant bit; the top bit carries negative weight.
package encoding

import (
	"fmt"

	"github.com/qsearchlab/gas-core/pkg/models"
)

// MaxWidth is the widest supported encoding. Values are carried in int64,
// so 64 bits is the natural ceiling.
const MaxWidth = 64

// RangeError indicates a value does not fit the requested bit width.
type RangeError struct {
	Value int64
	Width int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %d does not fit in %d-bit two's complement", e.Value, e.Width)
}

// Decode interprets bits as a two's-complement signed integer. The empty
// vector decodes to 0. Panics on vectors wider than MaxWidth.
func Decode(bits models.BitVector) int64 {
	w := len(bits)
	if w == 0 {
		return 0
	}
	if w > MaxWidth {
		panic(fmt.Sprintf("bit vector too wide to decode: %d bits", w))
	}
	var unsigned uint64
	for i, b := range bits {
		if b != 0 {
			unsigned |= 1 << uint(i)
		}
	}
	if bits[w-1] == 0 {
		return int64(unsigned)
	}
	if w == MaxWidth {
		// The sign bit is already in place after the cast.
		return int64(unsigned)
	}
	return int64(unsigned) - (1 << uint(w))
}

// Encode maps a signed integer onto a width-bit two's-complement pattern.
// Returns a RangeError when the value is outside [-2^(w-1), 2^(w-1)-1].
func Encode(value int64, width int) (models.BitVector, error) {
	if width <= 0 || width > MaxWidth {
		return nil, fmt.Errorf("invalid encoding width %d (must be in [1, %d])", width, MaxWidth)
	}
	lo, hi := Range(width)
	if value < lo || value > hi {
		return nil, &RangeError{Value: value, Width: width}
	}

	// uint64(value) is value mod 2^64; keeping the low `width` bits yields
	// the two's-complement pattern for any in-range value.
	unsigned := uint64(value)
	bits := make(models.BitVector, width)
	for i := 0; i < width; i++ {
		bits[i] = uint8((unsigned >> uint(i)) & 1)
	}
	return bits, nil
}

// Range returns the representable interval [-2^(w-1), 2^(w-1)-1] for a
// width-bit encoding.
func Range(width int) (lo, hi int64) {
	if width >= MaxWidth {
		return -(1 << 62) * 2, (1<<62 - 1) + (1 << 62)
	}
	return -(1 << uint(width-1)), (1 << uint(width-1)) - 1
}

// MinWidth computes the smallest bit width whose two's-complement range
// covers [lo, hi]. The result is never below 1.
func MinWidth(lo, hi int64) int {
	for w := 1; w <= MaxWidth; w++ {
		wlo, whi := Range(w)
		if lo >= wlo && hi <= whi {
			return w
		}
	}
	return MaxWidth
}

// Fits reports whether every integer in [lo, hi] is representable in a
// width-bit encoding.
func Fits(lo, hi int64, width int) bool {
	if width <= 0 || width > MaxWidth {
		return false
	}
	wlo, whi := Range(width)
	return lo >= wlo && hi <= whi
}

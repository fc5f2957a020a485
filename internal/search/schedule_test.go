package search

import (
	"testing"

	"github.com/qsearchlab/gas-core/pkg/utils"
)

func TestIterationCap(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 2},  // ceil(pi/4 * sqrt(2)) = ceil(1.11)
		{3, 3},  // ceil(pi/4 * sqrt(8)) = ceil(2.22)
		{5, 5},  // ceil(pi/4 * sqrt(32)) = ceil(4.44)
		{10, 26}, // ceil(pi/4 * sqrt(1024)) = ceil(25.13)
	}

	for _, tt := range tests {
		if got := IterationCap(tt.n); got != tt.want {
			t.Errorf("IterationCap(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestExponentialSchedule(t *testing.T) {
	rng := utils.NewRandSource(7)
	s := NewExponentialSchedule(rng, 10, 0)
	cap := IterationCap(10)

	// Fresh schedule always proposes a single iteration.
	if got := s.Next(); got != 1 {
		t.Errorf("fresh schedule Next() = %d, want 1", got)
	}

	// Growth keeps draws inside [1, cap].
	for i := 0; i < 100; i++ {
		s.Grow()
		r := s.Next()
		if r < 1 || r > cap {
			t.Fatalf("Next() = %d outside [1, %d] after %d growths", r, cap, i+1)
		}
	}

	// After heavy growth the bound saturates at the cap.
	if s.bound != float64(cap) {
		t.Errorf("bound = %f, want saturation at %d", s.bound, cap)
	}

	s.Reset()
	if got := s.Next(); got != 1 {
		t.Errorf("after Reset Next() = %d, want 1", got)
	}
}

func TestLinearSchedule(t *testing.T) {
	s := NewLinearSchedule(10, 2)

	if got := s.Next(); got != 1 {
		t.Errorf("fresh Next() = %d, want 1", got)
	}
	s.Grow()
	if got := s.Next(); got != 3 {
		t.Errorf("after one growth Next() = %d, want 3", got)
	}
	s.Grow()
	if got := s.Next(); got != 5 {
		t.Errorf("after two growths Next() = %d, want 5", got)
	}

	cap := IterationCap(10)
	for i := 0; i < 100; i++ {
		s.Grow()
	}
	if got := s.Next(); got != cap {
		t.Errorf("saturated Next() = %d, want cap %d", got, cap)
	}

	s.Reset()
	if got := s.Next(); got != 1 {
		t.Errorf("after Reset Next() = %d, want 1", got)
	}
}

func TestFixedSchedule(t *testing.T) {
	s := NewFixedSchedule(3)
	for i := 0; i < 5; i++ {
		if got := s.Next(); got != 3 {
			t.Errorf("Next() = %d, want 3", got)
		}
		s.Grow()
	}
	s.Reset()
	if got := s.Next(); got != 3 {
		t.Errorf("after Reset Next() = %d, want 3", got)
	}

	if got := NewFixedSchedule(0).Next(); got != 1 {
		t.Errorf("zero iterations should clamp to 1, got %d", got)
	}
}

func TestNewSchedule(t *testing.T) {
	rng := utils.NewRandSource(1)

	for _, name := range []string{"", "exponential", "linear", "fixed"} {
		s, err := NewSchedule(name, rng, 5)
		if err != nil {
			t.Errorf("NewSchedule(%q) failed: %v", name, err)
		}
		if s == nil {
			t.Errorf("NewSchedule(%q) returned nil", name)
		}
	}

	if _, err := NewSchedule("quadratic", rng, 5); err == nil {
		t.Error("expected error for unknown schedule name")
	}
}

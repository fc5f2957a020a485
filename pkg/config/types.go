package config

// Config represents the daemon configuration
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format,omitempty"` // text or json
	HTTPAddr  string `yaml:"http_addr,omitempty"`
}

// Problem describes a quadratic pseudo-boolean objective
// Q(x) = x^T A x + b^T x + c over binary decision variables.
type Problem struct {
	Dimension int         `yaml:"dimension"`
	Quadratic [][]float64 `yaml:"quadratic"`
	Linear    []float64   `yaml:"linear,omitempty"`
	Offset    float64     `yaml:"offset,omitempty"`
}

// Solver tunes the adaptive search loop for a problem.
type Solver struct {
	Minimize        *bool  `yaml:"minimize,omitempty"` // nil means minimize
	Patience        int    `yaml:"patience,omitempty"`
	MaxRounds       int    `yaml:"max_rounds,omitempty"`
	MaxQueries      int64  `yaml:"max_queries,omitempty"`
	MaxValueWidth   int    `yaml:"max_value_width,omitempty"`
	Schedule        string `yaml:"schedule,omitempty"` // exponential, linear, or fixed
	Seed            int64  `yaml:"seed,omitempty"`
	ExhaustiveLimit int    `yaml:"exhaustive_limit,omitempty"`
}

// Job pairs a problem with the solver options used to run it. This is the
// payload accepted by the job submission API.
type Job struct {
	Problem Problem `yaml:"problem"`
	Solver  *Solver `yaml:"solver,omitempty"`
}

// Minimizing reports the search direction, defaulting to minimization.
func (s *Solver) Minimizing() bool {
	if s == nil || s.Minimize == nil {
		return true
	}
	return *s.Minimize
}

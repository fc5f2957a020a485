package config

import (
	"fmt"
	"os"
)

// Defaults applied by validateConfig when a field is left empty.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultHTTPAddr  = ":8080"
)

// LoadConfig loads and parses a daemon configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadJob loads and parses a job file
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file %s: %w", path, err)
	}
	job, err := ParseJobYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	return job, nil
}

// validateConfig performs validation on the daemon configuration and fills
// in defaults for fields that were left empty.
func validateConfig(cfg *Config) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat)
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}

	return nil
}

// validateJob validates a job: the problem shape plus solver options.
func validateJob(job *Job) error {
	if err := validateProblem(&job.Problem); err != nil {
		return fmt.Errorf("problem validation failed: %w", err)
	}
	if job.Solver != nil {
		if err := validateSolver(job.Solver); err != nil {
			return fmt.Errorf("solver validation failed: %w", err)
		}
	}
	return nil
}

// validateProblem checks that the coefficient matrices agree with the
// declared dimension.
func validateProblem(p *Problem) error {
	if p.Dimension <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", p.Dimension)
	}

	if len(p.Quadratic) != p.Dimension {
		return fmt.Errorf("quadratic must have %d rows, got %d", p.Dimension, len(p.Quadratic))
	}
	for i, row := range p.Quadratic {
		if len(row) != p.Dimension {
			return fmt.Errorf("quadratic row %d must have %d entries, got %d", i, p.Dimension, len(row))
		}
	}

	// Linear may be omitted entirely, but a partial vector is a mistake.
	if len(p.Linear) != 0 && len(p.Linear) != p.Dimension {
		return fmt.Errorf("linear must have %d entries, got %d", p.Dimension, len(p.Linear))
	}

	return nil
}

// validateSolver validates the solver options
func validateSolver(s *Solver) error {
	if s.Patience < 0 {
		return fmt.Errorf("patience cannot be negative, got %d", s.Patience)
	}
	if s.MaxRounds < 0 {
		return fmt.Errorf("max_rounds cannot be negative, got %d", s.MaxRounds)
	}
	if s.MaxQueries < 0 {
		return fmt.Errorf("max_queries cannot be negative, got %d", s.MaxQueries)
	}
	if s.MaxValueWidth < 0 || s.MaxValueWidth > 64 {
		return fmt.Errorf("max_value_width must be in [0, 64], got %d", s.MaxValueWidth)
	}

	validSchedules := map[string]bool{
		"":            true,
		"exponential": true,
		"linear":      true,
		"fixed":       true,
	}
	if !validSchedules[s.Schedule] {
		return fmt.Errorf("invalid schedule: %s (must be exponential, linear, or fixed)", s.Schedule)
	}

	if s.ExhaustiveLimit < 0 {
		return fmt.Errorf("exhaustive_limit cannot be negative, got %d", s.ExhaustiveLimit)
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("../../config/config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected log_format 'text', got '%s'", cfg.LogFormat)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected http_addr ':8080', got '%s'", cfg.HTTPAddr)
	}
}

func TestLoadJob(t *testing.T) {
	job, err := LoadJob("../../config/job.yaml")
	if err != nil {
		t.Fatalf("Failed to load job: %v", err)
	}

	if job.Problem.Dimension != 5 {
		t.Errorf("Expected dimension 5, got %d", job.Problem.Dimension)
	}
	if len(job.Problem.Quadratic) != 5 {
		t.Errorf("Expected 5 quadratic rows, got %d", len(job.Problem.Quadratic))
	}
	if job.Problem.Offset != 40 {
		t.Errorf("Expected offset 40, got %v", job.Problem.Offset)
	}
	if job.Solver == nil {
		t.Fatal("Solver should not be nil")
	}
	if job.Solver.Schedule != "exponential" {
		t.Errorf("Expected schedule 'exponential', got '%s'", job.Solver.Schedule)
	}
	if !job.Solver.Minimizing() {
		t.Error("Expected a minimization job")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
	if _, err := LoadJob(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing job file")
	}
}

func TestLoadJobInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	bad := []byte("problem:\n  dimension: 2\n  quadratic: [[0, 1]]\n")
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := LoadJob(path); err == nil {
		t.Fatal("expected error for malformed problem")
	}
}

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseConfigYAML parses a Config from YAML bytes and validates it.
func ParseConfigYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

// ParseJobYAML parses a Job from YAML bytes and validates it.
// This is used for APIs where the job is provided as payload (not via filesystem).
func ParseJobYAML(data []byte) (*Job, error) {
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job yaml: %w", err)
	}

	if err := validateJob(&job); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}

	return &job, nil
}

// ParseJobYAMLString parses a Job from a YAML string and validates it.
func ParseJobYAMLString(yamlText string) (*Job, error) {
	return ParseJobYAML([]byte(yamlText))
}

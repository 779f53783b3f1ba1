// Package gate describes the repository's verification gates: the ordered go
// commands that must pass before a change ships.
package gate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is an ordered list of gate steps.
type Config struct {
	Version string `yaml:"version"`
	Steps   []Step `yaml:"steps"`
}

// Step is one go invocation; Args excludes the leading "go".
type Step struct {
	Label string   `yaml:"label"`
	Args  []string `yaml:"args"`
}

// Default returns the built-in gates: vet, tests, race tests, then the
// conformance suite verbosely.
func Default() *Config {
	return &Config{
		Version: "1",
		Steps: []Step{
			{Label: "go vet", Args: []string{"vet", "./..."}},
			{Label: "unit tests", Args: []string{"test", "./...", "-count=1", "-timeout=20m"}},
			{Label: "race tests", Args: []string{"test", "./...", "-race", "-count=1", "-timeout=25m"}},
			{Label: "conformance", Args: []string{"test", "./conformance", "-count=1", "-timeout=10m", "-v"}},
		},
	}
}

// Load reads, decodes, and validates a gate configuration document.
//
//nolint:gosec // path is explicit operator input.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gate config: %w", err)
	}
	return Decode(data)
}

// Decode parses a single YAML gate configuration document. Unknown fields
// are rejected.
func Decode(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode gate config yaml: %w", err)
	}
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("decode gate config yaml: unexpected trailing document")
		}
		return nil, fmt.Errorf("decode gate config yaml: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks gate configuration semantics.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("gate config is nil")
	}
	if c.Version == "" {
		return fmt.Errorf("gate config version is required")
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("gate config must include at least one step")
	}
	seen := make(map[string]struct{}, len(c.Steps))
	for i := range c.Steps {
		s := &c.Steps[i]
		if s.Label == "" {
			return fmt.Errorf("step[%d] label is required", i)
		}
		if _, ok := seen[s.Label]; ok {
			return fmt.Errorf("duplicate step label: %s", s.Label)
		}
		seen[s.Label] = struct{}{}
		if len(s.Args) == 0 {
			return fmt.Errorf("step %s: args are required", s.Label)
		}
	}
	return nil
}

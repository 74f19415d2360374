// Package bench runs benchmark suites across providers and records the
// results.
package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompt is one prompt in a benchmark suite.
type Prompt struct {
	ID       string         `yaml:"id"`
	Text     string         `yaml:"text"`
	Expected string         `yaml:"expected"`
	Tags     []string       `yaml:"tags"`
	Metadata map[string]any `yaml:"metadata"`
}

// Suite is a benchmark suite definition loaded from YAML.
type Suite struct {
	Name           string              `yaml:"name"`
	Description    string              `yaml:"description"`
	Prompts        []Prompt            `yaml:"prompts"`
	ModelOverrides map[string]string   `yaml:"model_overrides"`
	FallbackModels map[string][]string `yaml:"fallback_models"`
	Metadata       map[string]any      `yaml:"metadata"`
}

// LoadSuite reads a suite definition from a YAML file. Missing prompt IDs
// get positional defaults; a missing suite name falls back to the file
// stem.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}
	base := filepath.Base(path)
	return ParseSuite(data, strings.TrimSuffix(base, filepath.Ext(base)))
}

// ParseSuite parses suite YAML, using fallbackName when the document
// carries no name of its own.
func ParseSuite(data []byte, fallbackName string) (*Suite, error) {
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing suite: %w", err)
	}

	if suite.Name == "" {
		suite.Name = fallbackName
	}
	for i := range suite.Prompts {
		if suite.Prompts[i].ID == "" {
			suite.Prompts[i].ID = fmt.Sprintf("prompt_%d", i)
		}
	}

	return &suite, nil
}

// Validate rejects suites a run could not do anything useful with.
func (s *Suite) Validate() error {
	if len(s.Prompts) == 0 {
		return fmt.Errorf("suite %q has no prompts", s.Name)
	}
	seen := map[string]bool{}
	for _, p := range s.Prompts {
		if p.Text == "" {
			return fmt.Errorf("prompt %q has empty text", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate prompt id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

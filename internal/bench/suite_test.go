package bench

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSuite(t *testing.T) {
	path := writeSuite(t, `
name: quick
description: smoke prompts
prompts:
  - id: greet
    text: say hello
    tags: [smoke]
  - text: name three colors
model_overrides:
  ollama: llama3.2
fallback_models:
  claude:
    - claude-haiku-4-5
`)

	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatal(err)
	}
	if suite.Name != "quick" {
		t.Errorf("name = %q", suite.Name)
	}
	if len(suite.Prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(suite.Prompts))
	}
	if suite.Prompts[1].ID != "prompt_1" {
		t.Errorf("missing id should default positionally, got %q", suite.Prompts[1].ID)
	}
	if suite.ModelOverrides["ollama"] != "llama3.2" {
		t.Errorf("overrides = %v", suite.ModelOverrides)
	}
	if len(suite.FallbackModels["claude"]) != 1 {
		t.Errorf("fallbacks = %v", suite.FallbackModels)
	}
	if err := suite.Validate(); err != nil {
		t.Errorf("valid suite rejected: %v", err)
	}
}

func TestLoadSuiteNameDefaultsToFileStem(t *testing.T) {
	path := writeSuite(t, "prompts:\n  - text: hi\n")
	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatal(err)
	}
	if suite.Name != "suite" {
		t.Errorf("name = %q, want file stem", suite.Name)
	}
}

func TestLoadSuiteMissingFile(t *testing.T) {
	if _, err := LoadSuite("/nonexistent/suite.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadSuiteBadYAML(t *testing.T) {
	path := writeSuite(t, "prompts: [unclosed\n")
	if _, err := LoadSuite(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSuiteValidate(t *testing.T) {
	tests := []struct {
		name  string
		suite Suite
		ok    bool
	}{
		{"no prompts", Suite{Name: "empty"}, false},
		{"empty text", Suite{Name: "s", Prompts: []Prompt{{ID: "a"}}}, false},
		{"duplicate ids", Suite{Name: "s", Prompts: []Prompt{{ID: "a", Text: "x"}, {ID: "a", Text: "y"}}}, false},
		{"valid", Suite{Name: "s", Prompts: []Prompt{{ID: "a", Text: "x"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.suite.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestArtifactsLifecycle(t *testing.T) {
	base := t.TempDir()
	a, err := NewArtifacts(base, "My Suite!")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(a.FilePath("meta.json")); err != nil {
		t.Errorf("meta.json missing: %v", err)
	}

	// latest points at the new run dir
	target, err := os.Readlink(filepath.Join(base, "latest"))
	if err != nil {
		t.Fatal(err)
	}
	if target != a.ID {
		t.Errorf("latest -> %q, want %q", target, a.ID)
	}

	job := JobArtifact{PromptID: "greet", Provider: "fake", Model: "fake-fast", Success: true, WallTimeMS: 12, Cost: 0.01}
	if err := a.AddJob(job, "hello there"); err != nil {
		t.Fatal(err)
	}
	if len(a.Meta.Jobs) != 1 || a.Meta.Jobs[0].OutputFile == "" {
		t.Fatalf("job record = %+v", a.Meta.Jobs)
	}
	data, err := os.ReadFile(a.FilePath(a.Meta.Jobs[0].OutputFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello there" {
		t.Errorf("output file = %q", data)
	}
	if a.Meta.TotalCost != 0.01 {
		t.Errorf("total cost = %v", a.Meta.TotalCost)
	}

	if err := a.Complete(); err != nil {
		t.Fatal(err)
	}
	if a.Meta.Status != "completed" {
		t.Errorf("status = %q", a.Meta.Status)
	}
}

func TestArtifactsLatestFollowsNewestRun(t *testing.T) {
	base := t.TempDir()
	if _, err := NewArtifacts(base, "first"); err != nil {
		t.Fatal(err)
	}
	second, err := NewArtifacts(base, "second")
	if err != nil {
		t.Fatal(err)
	}
	target, err := os.Readlink(filepath.Join(base, "latest"))
	if err != nil {
		t.Fatal(err)
	}
	if target != second.ID {
		t.Errorf("latest -> %q, want %q", target, second.ID)
	}
}

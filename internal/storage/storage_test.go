package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bench.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStorage(t)

	run, err := s.CreateRun("suites/quick.yaml", map[string]string{"timeout": "300s"})
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != "running" {
		t.Errorf("status = %q, want running", run.Status)
	}
	if run.ID == "" || run.CreatedAt == "" {
		t.Errorf("run missing identity fields: %+v", run)
	}

	if err := s.CompleteRun(run.ID, "completed"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "completed" || got.CompletedAt == "" {
		t.Errorf("completed run = %+v", got)
	}
	if !strings.Contains(got.ConfigSnapshot, "300s") {
		t.Errorf("config snapshot = %q, want the serialized config", got.ConfigSnapshot)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStorage(t)
	_, err := s.GetRun("no-such-run")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestFindRunByPrefix(t *testing.T) {
	s := openTestStorage(t)
	run, err := s.CreateRun("suites/quick.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.FindRun(run.ID[:8])
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != run.ID {
		t.Errorf("resolved %q, want %q", got.ID, run.ID)
	}

	if _, err := s.FindRun("zzzzzzzz"); err == nil {
		t.Error("expected error for an unmatched prefix")
	}

	// Every run ID shares the empty prefix, but empty means "latest".
	latest, err := s.FindRun("")
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != run.ID {
		t.Errorf("latest = %q, want %q", latest.ID, run.ID)
	}
}

func TestJobLifecycle(t *testing.T) {
	s := openTestStorage(t)
	run, err := s.CreateRun("", nil)
	if err != nil {
		t.Fatal(err)
	}

	prompt := "what is a goroutine"
	job, err := s.CreateJob(run.ID, "ollama", "llama3.2", HashPrompt(prompt), prompt[:10])
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != "pending" {
		t.Errorf("status = %q, want pending", job.Status)
	}

	if err := s.StartJob(job.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetJob(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "running" || got.StartedAt == "" {
		t.Errorf("started job = %+v", got)
	}

	if err := s.CompleteJob(job.ID, 0, ""); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetJob(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "completed" {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.ExitCode == nil || *got.ExitCode != 0 {
		t.Errorf("exit code = %v, want 0", got.ExitCode)
	}
}

func TestCompleteJobNonZeroIsFailed(t *testing.T) {
	s := openTestStorage(t)
	run, _ := s.CreateRun("", nil)
	job, _ := s.CreateJob(run.ID, "claude", "claude-sonnet-4-5", HashPrompt("p"), "p")

	if err := s.CompleteJob(job.ID, 127, "Command not found: claude"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetJob(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "failed" {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.ErrorMessage != "Command not found: claude" {
		t.Errorf("error = %q", got.ErrorMessage)
	}
}

func TestPromptPreviewAndErrorAreRedacted(t *testing.T) {
	s := openTestStorage(t)
	run, _ := s.CreateRun("", nil)

	secret := "use key sk-abcdefghijklmnopqrstuvwx please"
	job, err := s.CreateJob(run.ID, "openai", "gpt-4o", HashPrompt(secret), secret)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(job.PromptPreview, "sk-abcdefghijklmnop") {
		t.Errorf("preview leaked a key: %q", job.PromptPreview)
	}

	if err := s.CompleteJob(job.ID, 1, "auth failed for sk-abcdefghijklmnopqrstuvwx"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetJob(job.ID)
	if strings.Contains(got.ErrorMessage, "sk-abcdefghijklmnop") {
		t.Errorf("stored error leaked a key: %q", got.ErrorMessage)
	}
}

func TestJobsForRunOrderedAndScoped(t *testing.T) {
	s := openTestStorage(t)
	run1, _ := s.CreateRun("", nil)
	run2, _ := s.CreateRun("", nil)

	for _, model := range []string{"m1", "m2"} {
		if _, err := s.CreateJob(run1.ID, "fake", model, HashPrompt(model), model); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.CreateJob(run2.ID, "fake", "other", HashPrompt("other"), "other"); err != nil {
		t.Fatal(err)
	}

	jobs, err := s.JobsForRun(run1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len = %d, want 2", len(jobs))
	}
	for _, j := range jobs {
		if j.RunID != run1.ID {
			t.Errorf("job %s belongs to %s", j.ID, j.RunID)
		}
	}
}

func TestMetrics(t *testing.T) {
	s := openTestStorage(t)
	run, _ := s.CreateRun("", nil)
	job, _ := s.CreateJob(run.ID, "fake", "fake-fast", HashPrompt("p"), "p")

	if _, err := s.AddMetric(job.ID, "wall_time_ms", 123.4, "ms", false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddMetric(job.ID, "output_tokens", 42, "tokens", true); err != nil {
		t.Fatal(err)
	}

	metrics, err := s.JobMetrics(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(metrics) != 2 {
		t.Fatalf("len = %d, want 2", len(metrics))
	}
	byName := map[string]Metric{}
	for _, m := range metrics {
		byName[m.Name] = m
	}
	if byName["wall_time_ms"].Value != 123.4 || byName["wall_time_ms"].IsEstimated {
		t.Errorf("wall_time_ms = %+v", byName["wall_time_ms"])
	}
	if !byName["output_tokens"].IsEstimated {
		t.Error("output_tokens must carry the estimated flag")
	}
}

func TestCapabilitiesUpsert(t *testing.T) {
	s := openTestStorage(t)

	first, err := s.SaveCapabilities("ollama", "/usr/local/bin/ollama", "0.5.1", "authenticated",
		[]string{"llama3.2"}, map[string]any{"streaming": true})
	if err != nil {
		t.Fatal(err)
	}

	second, err := s.SaveCapabilities("ollama", "/usr/local/bin/ollama", "0.6.0", "authenticated",
		[]string{"llama3.2", "qwen2.5"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.BinaryVersion != "0.6.0" {
		t.Errorf("version = %q, want updated", second.BinaryVersion)
	}
	if len(second.Models) != 2 {
		t.Errorf("models = %v", second.Models)
	}

	all, err := s.Capabilities("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("len = %d, want 1 row after upsert", len(all))
	}
	filtered, err := s.Capabilities("nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 0 {
		t.Errorf("filter leak: %v", filtered)
	}
}

func TestHashPromptStable(t *testing.T) {
	a := HashPrompt("same text")
	b := HashPrompt("same text")
	if a != b {
		t.Error("hash must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(a))
	}
	if HashPrompt("other") == a {
		t.Error("distinct prompts must hash differently")
	}
}

package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/redact"
)

// Artifacts is the on-disk record of one benchmark run: a timestamped
// directory with meta.json, one output file per job, and a "latest"
// symlink for quick access.
type Artifacts struct {
	ID   string
	Dir  string
	Meta Meta
}

// Meta holds run metadata, persisted to meta.json.
type Meta struct {
	StartedAt time.Time     `json:"started_at"`
	SuiteName string        `json:"suite_name"`
	Status    string        `json:"status"` // "running" | "completed" | "failed"
	Jobs      []JobArtifact `json:"jobs"`
	TotalCost float64       `json:"total_cost"`
	Error     string        `json:"error,omitempty"`
}

// JobArtifact records the outcome of a single job.
type JobArtifact struct {
	PromptID     string  `json:"prompt_id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Success      bool    `json:"success"`
	WallTimeMS   int64   `json:"wall_time_ms"`
	TTFTMS       int64   `json:"ttft_ms,omitempty"`
	OutputFile   string  `json:"output_file,omitempty"`
	Cost         float64 `json:"cost"`
	FallbackUsed bool    `json:"fallback_used,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// NewArtifacts creates a run directory under baseDir and points the
// "latest" symlink at it.
func NewArtifacts(baseDir, suiteName string) (*Artifacts, error) {
	now := time.Now()
	ms := now.UnixMilli() % 1000
	id := fmt.Sprintf("%s-%03d-%s",
		now.Format("20060102-150405"),
		ms,
		sanitizeSlug(suiteName),
	)

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}

	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}

	a := &Artifacts{
		ID:  id,
		Dir: dir,
		Meta: Meta{
			StartedAt: now,
			SuiteName: suiteName,
			Status:    "running",
		},
	}

	if err := a.SaveMeta(); err != nil {
		return nil, err
	}

	if err := updateLatestLink(baseDir, id); err != nil {
		return nil, err
	}

	return a, nil
}

// SaveMeta writes meta.json to the run directory.
func (a *Artifacts) SaveMeta() error {
	data, err := json.MarshalIndent(a.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return os.WriteFile(filepath.Join(a.Dir, "meta.json"), data, 0644)
}

// AddJob appends a job record, writing its output to a per-job file when
// non-empty, and updates the running cost total. Error text originates
// from provider stderr and is scrubbed before it reaches meta.json.
func (a *Artifacts) AddJob(job JobArtifact, output string) error {
	job.Error = redact.Secrets(job.Error)
	if output != "" {
		name := fmt.Sprintf("%s-%s.txt", sanitizeSlug(job.PromptID), sanitizeSlug(job.Provider))
		if err := os.WriteFile(filepath.Join(a.Dir, name), []byte(output), 0644); err != nil {
			return fmt.Errorf("writing job output: %w", err)
		}
		job.OutputFile = name
	}
	a.Meta.Jobs = append(a.Meta.Jobs, job)
	a.Meta.TotalCost += job.Cost
	return a.SaveMeta()
}

// Complete marks the run as completed.
func (a *Artifacts) Complete() error {
	a.Meta.Status = "completed"
	return a.SaveMeta()
}

// Fail marks the run as failed with an error message.
func (a *Artifacts) Fail(msg string) error {
	a.Meta.Status = "failed"
	a.Meta.Error = redact.Secrets(msg)
	return a.SaveMeta()
}

// FilePath returns the absolute path to a file within the run directory.
func (a *Artifacts) FilePath(name string) string {
	return filepath.Join(a.Dir, name)
}

// updateLatestLink atomically updates the "latest" symlink.
func updateLatestLink(baseDir, id string) error {
	latestPath := filepath.Join(baseDir, "latest")
	tmpPath := latestPath + ".tmp"

	// Remove any stale tmp link
	os.Remove(tmpPath)

	if err := os.Symlink(id, tmpPath); err != nil {
		return fmt.Errorf("creating temp symlink: %w", err)
	}
	if err := os.Rename(tmpPath, latestPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("updating latest symlink: %w", err)
	}
	return nil
}

var nonAlphanumRe = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeSlug converts a string to a filesystem-friendly slug.
func sanitizeSlug(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = s[:40]
		s = strings.TrimRight(s, "-")
	}
	if s == "" {
		s = "run"
	}
	return s
}

// Package storage persists benchmark runs, jobs, metrics, and capability
// snapshots in a local SQLite database.
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/slittycode/model-benchmark/internal/redact"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    suite_path TEXT,
    config_snapshot TEXT,
    status TEXT NOT NULL DEFAULT 'running',
    completed_at TEXT
);

CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id),
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    prompt_hash TEXT NOT NULL,
    prompt_preview TEXT,
    prompt_stored INTEGER DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TEXT NOT NULL,
    started_at TEXT,
    completed_at TEXT,
    error_message TEXT,
    exit_code INTEGER
);

CREATE TABLE IF NOT EXISTS metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL REFERENCES jobs(id),
    metric_name TEXT NOT NULL,
    metric_value REAL NOT NULL,
    metric_unit TEXT,
    is_estimated INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS capabilities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    detected_at TEXT NOT NULL,
    provider TEXT NOT NULL,
    binary_path TEXT NOT NULL,
    binary_version TEXT,
    auth_status TEXT,
    models_json TEXT,
    features_json TEXT,
    UNIQUE(provider, binary_path)
);

CREATE INDEX IF NOT EXISTS idx_jobs_run_id ON jobs(run_id);
CREATE INDEX IF NOT EXISTS idx_metrics_job_id ON metrics(job_id);
CREATE INDEX IF NOT EXISTS idx_capabilities_provider ON capabilities(provider);
`

// Run is one benchmark run.
type Run struct {
	ID             string
	CreatedAt      string
	Status         string
	SuitePath      string
	ConfigSnapshot string
	CompletedAt    string
}

// Job is one provider/model/prompt execution within a run.
type Job struct {
	ID            string
	RunID         string
	Provider      string
	Model         string
	PromptHash    string
	Status        string
	CreatedAt     string
	PromptPreview string
	PromptStored  bool
	StartedAt     string
	CompletedAt   string
	ErrorMessage  string
	ExitCode      *int
}

// Metric is one measurement attached to a job.
type Metric struct {
	ID          int64
	JobID       string
	Name        string
	Value       float64
	Unit        string
	IsEstimated bool
}

// Capability is a detection snapshot for one provider binary.
type Capability struct {
	ID            int64
	DetectedAt    string
	Provider      string
	BinaryPath    string
	BinaryVersion string
	AuthStatus    string
	Models        []string
	Features      map[string]any
}

// HashPrompt returns the SHA-256 hex digest of prompt text, so runs can be
// correlated without storing the prompt itself.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// Storage is the SQLite-backed persistence layer.
type Storage struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Storage{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Storage) Path() string { return s.path }

// Close closes the underlying database.
func (s *Storage) Close() error { return s.db.Close() }

// CreateRun starts a new benchmark run in the 'running' state.
func (s *Storage) CreateRun(suitePath string, configSnapshot any) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: nowISO(),
		Status:    "running",
		SuitePath: suitePath,
	}
	if configSnapshot != nil {
		data, err := json.Marshal(configSnapshot)
		if err != nil {
			return Run{}, fmt.Errorf("encoding config snapshot: %w", err)
		}
		run.ConfigSnapshot = string(data)
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, created_at, suite_path, config_snapshot, status)
		 VALUES (?, ?, ?, ?, 'running')`,
		run.ID, run.CreatedAt, nullable(run.SuitePath), nullable(run.ConfigSnapshot),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// GetRun returns a run by ID, or sql.ErrNoRows.
func (s *Storage) GetRun(runID string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, status, suite_path, config_snapshot, completed_at
		 FROM runs WHERE id = ?`, runID)
	return scanRun(row)
}

// CompleteRun marks a run finished with the given terminal status.
func (s *Storage) CompleteRun(runID, status string) error {
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ? WHERE id = ?`,
		status, nowISO(), runID)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, status, suite_path, config_snapshot, completed_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun resolves a run by ID prefix, so callers can pass the short form
// shown in run listings. An empty prefix resolves to the most recent run.
func (s *Storage) FindRun(prefix string) (Run, error) {
	if prefix == "" {
		runs, err := s.ListRuns(1)
		if err != nil {
			return Run{}, err
		}
		if len(runs) == 0 {
			return Run{}, fmt.Errorf("no runs recorded")
		}
		return runs[0], nil
	}

	rows, err := s.db.Query(
		`SELECT id, created_at, status, suite_path, config_snapshot, completed_at
		 FROM runs WHERE id LIKE ? ORDER BY created_at DESC LIMIT 2`, prefix+"%")
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("no run matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run ID prefix %q is ambiguous", prefix)
	}
}

// CreateJob records a pending job. The preview is redacted before it ever
// touches the database; the full prompt is never stored here.
func (s *Storage) CreateJob(runID, provider, model, promptHash, promptPreview string) (Job, error) {
	job := Job{
		ID:            uuid.NewString(),
		RunID:         runID,
		Provider:      provider,
		Model:         model,
		PromptHash:    promptHash,
		Status:        "pending",
		CreatedAt:     nowISO(),
		PromptPreview: redact.Secrets(promptPreview),
	}
	_, err := s.db.Exec(
		`INSERT INTO jobs (id, run_id, provider, model, prompt_hash, prompt_preview, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		job.ID, job.RunID, job.Provider, job.Model, job.PromptHash,
		nullable(job.PromptPreview), job.CreatedAt,
	)
	if err != nil {
		return Job{}, fmt.Errorf("inserting job: %w", err)
	}
	return job, nil
}

// StartJob transitions a job to 'running'.
func (s *Storage) StartJob(jobID string) error {
	_, err := s.db.Exec(
		`UPDATE jobs SET status = 'running', started_at = ? WHERE id = ?`,
		nowISO(), jobID)
	return err
}

// CompleteJob finishes a job. Exit code 0 means completed, anything else
// failed. The error message is redacted before storage.
func (s *Storage) CompleteJob(jobID string, exitCode int, errorMessage string) error {
	status := "completed"
	if exitCode != 0 {
		status = "failed"
	}
	_, err := s.db.Exec(
		`UPDATE jobs SET status = ?, completed_at = ?, exit_code = ?, error_message = ? WHERE id = ?`,
		status, nowISO(), exitCode, nullable(redact.Secrets(errorMessage)), jobID)
	return err
}

// GetJob returns a job by ID, or sql.ErrNoRows.
func (s *Storage) GetJob(jobID string) (Job, error) {
	row := s.db.QueryRow(
		`SELECT id, run_id, provider, model, prompt_hash, status, created_at,
		        prompt_preview, prompt_stored, started_at, completed_at, error_message, exit_code
		 FROM jobs WHERE id = ?`, jobID)
	return scanJob(row)
}

// JobsForRun returns every job of a run in creation order.
func (s *Storage) JobsForRun(runID string) ([]Job, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, provider, model, prompt_hash, status, created_at,
		        prompt_preview, prompt_stored, started_at, completed_at, error_message, exit_code
		 FROM jobs WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// AddMetric records one measurement for a job.
func (s *Storage) AddMetric(jobID, name string, value float64, unit string, estimated bool) (Metric, error) {
	res, err := s.db.Exec(
		`INSERT INTO metrics (job_id, metric_name, metric_value, metric_unit, is_estimated)
		 VALUES (?, ?, ?, ?, ?)`,
		jobID, name, value, nullable(unit), boolToInt(estimated))
	if err != nil {
		return Metric{}, fmt.Errorf("inserting metric: %w", err)
	}
	id, _ := res.LastInsertId()
	return Metric{ID: id, JobID: jobID, Name: name, Value: value, Unit: unit, IsEstimated: estimated}, nil
}

// JobMetrics returns every metric recorded for a job.
func (s *Storage) JobMetrics(jobID string) ([]Metric, error) {
	rows, err := s.db.Query(
		`SELECT id, job_id, metric_name, metric_value, metric_unit, is_estimated
		 FROM metrics WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []Metric
	for rows.Next() {
		var m Metric
		var unit sql.NullString
		var estimated int
		if err := rows.Scan(&m.ID, &m.JobID, &m.Name, &m.Value, &unit, &estimated); err != nil {
			return nil, err
		}
		m.Unit = unit.String
		m.IsEstimated = estimated != 0
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// SaveCapabilities upserts a detection snapshot keyed by (provider, binary).
func (s *Storage) SaveCapabilities(provider, binaryPath, binaryVersion, authStatus string, models []string, features map[string]any) (Capability, error) {
	modelsJSON, err := json.Marshal(models)
	if err != nil {
		return Capability{}, err
	}
	if models == nil {
		modelsJSON = []byte("[]")
	}
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return Capability{}, err
	}
	if features == nil {
		featuresJSON = []byte("{}")
	}

	detectedAt := nowISO()
	_, err = s.db.Exec(
		`INSERT INTO capabilities
		     (detected_at, provider, binary_path, binary_version, auth_status, models_json, features_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(provider, binary_path) DO UPDATE SET
		     detected_at = excluded.detected_at,
		     binary_version = excluded.binary_version,
		     auth_status = excluded.auth_status,
		     models_json = excluded.models_json,
		     features_json = excluded.features_json`,
		detectedAt, provider, binaryPath, nullable(binaryVersion), nullable(authStatus),
		string(modelsJSON), string(featuresJSON))
	if err != nil {
		return Capability{}, fmt.Errorf("upserting capabilities: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT id, detected_at, provider, binary_path, binary_version, auth_status, models_json, features_json
		 FROM capabilities WHERE provider = ? AND binary_path = ?`, provider, binaryPath)
	return scanCapability(row)
}

// Capabilities returns stored snapshots, optionally filtered by provider.
func (s *Storage) Capabilities(provider string) ([]Capability, error) {
	query := `SELECT id, detected_at, provider, binary_path, binary_version, auth_status, models_json, features_json
	          FROM capabilities`
	var args []any
	if provider != "" {
		query += ` WHERE provider = ?`
		args = append(args, provider)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caps []Capability
	for rows.Next() {
		c, err := scanCapability(rows)
		if err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return caps, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var suitePath, snapshot, completedAt sql.NullString
	if err := sc.Scan(&run.ID, &run.CreatedAt, &run.Status, &suitePath, &snapshot, &completedAt); err != nil {
		return Run{}, err
	}
	run.SuitePath = suitePath.String
	run.ConfigSnapshot = snapshot.String
	run.CompletedAt = completedAt.String
	return run, nil
}

func scanJob(sc scanner) (Job, error) {
	var job Job
	var preview, startedAt, completedAt, errMsg sql.NullString
	var stored int
	var exitCode sql.NullInt64
	err := sc.Scan(&job.ID, &job.RunID, &job.Provider, &job.Model, &job.PromptHash,
		&job.Status, &job.CreatedAt, &preview, &stored, &startedAt, &completedAt,
		&errMsg, &exitCode)
	if err != nil {
		return Job{}, err
	}
	job.PromptPreview = preview.String
	job.PromptStored = stored != 0
	job.StartedAt = startedAt.String
	job.CompletedAt = completedAt.String
	job.ErrorMessage = errMsg.String
	if exitCode.Valid {
		code := int(exitCode.Int64)
		job.ExitCode = &code
	}
	return job, nil
}

func scanCapability(sc scanner) (Capability, error) {
	var c Capability
	var version, auth, modelsJSON, featuresJSON sql.NullString
	if err := sc.Scan(&c.ID, &c.DetectedAt, &c.Provider, &c.BinaryPath, &version, &auth, &modelsJSON, &featuresJSON); err != nil {
		return Capability{}, err
	}
	c.BinaryVersion = version.String
	c.AuthStatus = auth.String
	if modelsJSON.String != "" {
		if err := json.Unmarshal([]byte(modelsJSON.String), &c.Models); err != nil {
			return Capability{}, fmt.Errorf("decoding models: %w", err)
		}
	}
	if featuresJSON.String != "" {
		if err := json.Unmarshal([]byte(featuresJSON.String), &c.Features); err != nil {
			return Capability{}, fmt.Errorf("decoding features: %w", err)
		}
	}
	return c, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

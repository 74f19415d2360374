package bench

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/slittycode/model-benchmark/internal/adapter"
	"github.com/slittycode/model-benchmark/internal/cost"
	"github.com/slittycode/model-benchmark/internal/fallback"
	"github.com/slittycode/model-benchmark/internal/log"
	"github.com/slittycode/model-benchmark/internal/storage"
)

const promptPreviewLen = 100

// Result is the outcome of one prompt on one provider.
type Result struct {
	PromptID     string
	Provider     string
	Model        string
	Success      bool
	WallTime     time.Duration
	TTFT         time.Duration
	Output       string
	Error        string
	TokensIn     int
	TokensOut    int
	Cost         float64
	FallbackUsed bool
}

// Report is a completed benchmark run.
type Report struct {
	RunID       string
	SuiteName   string
	Results     []Result
	StartedAt   time.Time
	CompletedAt time.Time
}

// Succeeded counts successful results.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// RunSuiteOptions configures a suite run.
type RunSuiteOptions struct {
	// Providers restricts the run to the named providers. Empty means
	// every available adapter.
	Providers []string

	// Models maps provider name to the model to use, overriding the
	// suite's own overrides and the adapter's first listed model.
	Models map[string]string

	// Fallbacks maps provider name to fallback models tried when the
	// primary fails.
	Fallbacks map[string][]string

	// Base carries shared run options (timeout, streaming).
	Base adapter.RunOptions

	// Artifacts, when set, receives per-job output files and meta.json.
	Artifacts *Artifacts

	// ConfigSnapshot is persisted with the run for reproducibility.
	ConfigSnapshot any

	// OnProgress is called after each job with the running completion
	// count.
	OnProgress func(promptID, provider string, done int)
}

// Orchestrator fans a suite's prompts out across providers, persisting
// every job and its metrics.
type Orchestrator struct {
	registry *adapter.Registry
	store    *storage.Storage
}

// NewOrchestrator builds an orchestrator over the given registry and
// storage.
func NewOrchestrator(registry *adapter.Registry, store *storage.Storage) *Orchestrator {
	return &Orchestrator{registry: registry, store: store}
}

// RunSuite executes every prompt against every selected provider. A job
// failure never aborts the run; it is recorded and the run moves on.
func (o *Orchestrator) RunSuite(ctx context.Context, suite *Suite, opts RunSuiteOptions) (*Report, error) {
	run, err := o.store.CreateRun(suite.Name, opts.ConfigSnapshot)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     run.ID,
		SuiteName: suite.Name,
		StartedAt: time.Now(),
	}

	adapters := o.selectAdapters(opts.Providers)
	log.Info("starting benchmark run",
		"run_id", run.ID, "suite", suite.Name,
		"prompts", len(suite.Prompts), "providers", len(adapters))

	for _, prompt := range suite.Prompts {
		for _, a := range adapters {
			result := o.runJob(ctx, run.ID, suite, prompt, a, opts)
			report.Results = append(report.Results, result)
			if opts.OnProgress != nil {
				opts.OnProgress(prompt.ID, a.Name(), len(report.Results))
			}
		}
	}

	if err := o.store.CompleteRun(run.ID, "completed"); err != nil {
		return nil, err
	}
	report.CompletedAt = time.Now()

	if opts.Artifacts != nil {
		if err := opts.Artifacts.Complete(); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (o *Orchestrator) selectAdapters(providers []string) []adapter.Adapter {
	if len(providers) == 0 {
		return o.registry.Available()
	}
	var out []adapter.Adapter
	for _, name := range providers {
		a := o.registry.Get(name)
		if a == nil {
			log.Warn("provider not registered", "provider", name)
			continue
		}
		if !adapter.Available(a) {
			log.Warn("provider not available", "provider", name)
			continue
		}
		out = append(out, a)
	}
	return out
}

func (o *Orchestrator) runJob(ctx context.Context, runID string, suite *Suite, prompt Prompt, a adapter.Adapter, opts RunSuiteOptions) Result {
	model := o.resolveModel(a, suite, opts.Models)

	preview := truncatePreview(prompt.Text, promptPreviewLen)
	job, err := o.store.CreateJob(runID, a.Name(), model, storage.HashPrompt(prompt.Text), preview)
	if err != nil {
		return Result{PromptID: prompt.ID, Provider: a.Name(), Model: model, Error: err.Error()}
	}
	if err := o.store.StartJob(job.ID); err != nil {
		return Result{PromptID: prompt.ID, Provider: a.Name(), Model: model, Error: err.Error()}
	}

	fallbacks := o.resolveFallbacks(a.Name(), suite, opts.Fallbacks)
	outcome := fallback.Run(ctx, a, prompt.Text, model, fallbacks, opts.Base)
	res := outcome.Result

	if err := o.store.CompleteJob(job.ID, res.ExitCode, res.Error); err != nil {
		log.Error("completing job", "job_id", job.ID, "error", err.Error())
	}

	o.recordMetrics(job.ID, prompt.Text, outcome)

	result := Result{
		PromptID:     prompt.ID,
		Provider:     a.Name(),
		Model:        outcome.Model,
		Success:      res.ExitCode == 0,
		WallTime:     res.WallTime,
		TTFT:         res.TTFT,
		Output:       res.Output,
		Error:        res.Error,
		TokensIn:     res.TokensIn,
		TokensOut:    res.TokensOut,
		Cost:         jobCost(outcome.Model, prompt.Text, res),
		FallbackUsed: outcome.FallbackUsed,
	}

	if opts.Artifacts != nil {
		artifact := JobArtifact{
			PromptID:     result.PromptID,
			Provider:     result.Provider,
			Model:        result.Model,
			Success:      result.Success,
			WallTimeMS:   result.WallTime.Milliseconds(),
			TTFTMS:       result.TTFT.Milliseconds(),
			Cost:         result.Cost,
			FallbackUsed: result.FallbackUsed,
			Error:        result.Error,
		}
		if err := opts.Artifacts.AddJob(artifact, result.Output); err != nil {
			log.Error("writing job artifact", "job_id", job.ID, "error", err.Error())
		}
	}

	return result
}

func (o *Orchestrator) resolveModel(a adapter.Adapter, suite *Suite, overrides map[string]string) string {
	if m := overrides[a.Name()]; m != "" {
		return m
	}
	if m := suite.ModelOverrides[a.Name()]; m != "" {
		return m
	}
	if models := a.ListModels(); len(models) > 0 {
		return models[0]
	}
	return "default"
}

func (o *Orchestrator) resolveFallbacks(provider string, suite *Suite, extra map[string][]string) []string {
	if models := extra[provider]; len(models) > 0 {
		return models
	}
	return suite.FallbackModels[provider]
}

func (o *Orchestrator) recordMetrics(jobID, prompt string, outcome fallback.Outcome) {
	res := outcome.Result

	o.addMetric(jobID, "wall_time_ms", float64(res.WallTime.Milliseconds()), "ms", false)
	if res.TTFT > 0 {
		o.addMetric(jobID, "ttft_ms", float64(res.TTFT.Milliseconds()), "ms", false)
	}

	tokensOut := res.TokensOut
	estimated := res.TokensEstimated
	if tokensOut == 0 && res.Output != "" {
		tokensOut = cost.EstimateTokens(res.Output)
		estimated = true
	}
	if tokensOut > 0 {
		o.addMetric(jobID, "output_tokens", float64(tokensOut), "tokens", estimated)
	}

	if outcome.FallbackUsed {
		o.addMetric(jobID, "fallback_used", 1, "", false)
	}

	if c := jobCost(outcome.Model, prompt, res); c > 0 {
		o.addMetric(jobID, "cost_usd", c, "usd", res.TokensEstimated)
	}
}

func (o *Orchestrator) addMetric(jobID, name string, value float64, unit string, estimated bool) {
	if _, err := o.store.AddMetric(jobID, name, value, unit, estimated); err != nil {
		log.Error("recording metric", "job_id", jobID, "metric", name, "error", err.Error())
	}
}

// truncatePreview caps s at max bytes without splitting a multi-byte rune.
func truncatePreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func jobCost(model, prompt string, res adapter.RunResult) float64 {
	usage := cost.Usage{
		InputTokens:  res.TokensIn,
		OutputTokens: res.TokensOut,
		Estimated:    res.TokensEstimated,
	}
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		usage = cost.EstimateUsage(prompt, res.Output)
	}
	return cost.FromUsage(model, usage)
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/slittycode/model-benchmark/internal/adapter"
	"github.com/slittycode/model-benchmark/internal/assets"
	"github.com/slittycode/model-benchmark/internal/bench"
	"github.com/slittycode/model-benchmark/internal/redact"
	"github.com/slittycode/model-benchmark/internal/storage"
)

var (
	benchSuite     string
	benchProviders []string
	benchOutputDir string
	benchJSON      bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a benchmark suite across providers",
	Long: `Bench runs every prompt in a suite against the selected providers,
stores jobs and metrics in the local database, and writes per-run
artifacts (outputs plus meta.json) under the output directory.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVarP(&benchSuite, "suite", "s", "", "Path to the suite YAML (required)")
	benchCmd.Flags().StringSliceVarP(&benchProviders, "provider", "P", nil, "Providers to benchmark (default: all available)")
	benchCmd.Flags().StringVarP(&benchOutputDir, "output-dir", "o", "", "Artifacts directory (default: config general.output_dir)")
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "Emit the report as JSON")
	benchCmd.MarkFlagRequired("suite")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, registry, err := setup()
	if err != nil {
		return err
	}

	suite, err := loadSuite(benchSuite)
	if err != nil {
		return err
	}
	if err := suite.Validate(); err != nil {
		return err
	}

	outputDir := benchOutputDir
	if outputDir == "" {
		outputDir = cfg.General.OutputDir
	}

	store, err := storage.Open(filepath.Join(outputDir, "mbench.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	artifacts, err := bench.NewArtifacts(outputDir, suite.Name)
	if err != nil {
		return err
	}

	if cfg.General.StorePrompts {
		snapshot, err := yaml.Marshal(suite)
		if err != nil {
			return err
		}
		if err := os.WriteFile(artifacts.FilePath("suite.yaml"), snapshot, 0644); err != nil {
			return err
		}
	}

	orchestrator := bench.NewOrchestrator(registry, store)
	opts := bench.RunSuiteOptions{
		Providers:      benchProviders,
		Models:         defaultModels(cfg),
		Fallbacks:      fallbackModels(cfg),
		Base:           adapter.RunOptions{Timeout: cfg.Timeout()},
		Artifacts:      artifacts,
		ConfigSnapshot: cfg,
	}
	if !benchJSON {
		opts.OnProgress = func(promptID, provider string, done int) {
			fmt.Printf("  [%d] %s / %s\n", done, promptID, provider)
		}
	}

	report, err := orchestrator.RunSuite(cmd.Context(), suite, opts)
	if err != nil {
		if ferr := artifacts.Fail(err.Error()); ferr != nil {
			return fmt.Errorf("%w (also failed to record: %v)", err, ferr)
		}
		return err
	}

	if benchJSON {
		return printJSON(report)
	}

	fmt.Println()
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		status := okMark(r.Success)
		detail := r.WallTime.Round(time.Millisecond).String()
		if !r.Success {
			detail = redact.Secrets(r.Error)
		}
		rows = append(rows, []string{status, r.PromptID, r.Provider, r.Model, detail})
	}
	fmt.Print(renderTable([]string{"", "PROMPT", "PROVIDER", "MODEL", "RESULT"}, rows))
	fmt.Printf("\n%d/%d succeeded, artifacts in %s\n", report.Succeeded(), len(report.Results), artifacts.Dir)
	return nil
}

// loadSuite treats the argument as a file path first, then as the name of
// a built-in suite (quick, coding).
func loadSuite(ref string) (*bench.Suite, error) {
	if _, err := os.Stat(ref); err == nil {
		return bench.LoadSuite(ref)
	}
	data, err := assets.LoadSuite(ref)
	if err != nil {
		return nil, fmt.Errorf("suite %q: not a file and not a built-in suite", ref)
	}
	return bench.ParseSuite(data, ref)
}

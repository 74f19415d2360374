package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/slittycode/model-benchmark/internal/adapter"
	"github.com/slittycode/model-benchmark/internal/config"
	"github.com/slittycode/model-benchmark/internal/log"
	"github.com/slittycode/model-benchmark/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "mbench",
	Short: "Benchmark and route across AI CLI tools and APIs",
	Long: `mbench discovers the AI tools installed on this machine, benchmarks
prompts across them, and routes requests to the best available provider.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mbench %s\n", version.Version)
	},
}

// setup loads config, initializes logging, and builds the adapter registry.
// Every command that touches providers starts here.
func setup() (*config.Config, *adapter.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Init(cfg.Logging.Level, nil)
	log.SetRedact(cfg.Logging.RedactSecrets)

	return cfg, buildRegistry(cfg, cfg.Timeout()), nil
}

func buildRegistry(cfg *config.Config, timeout time.Duration) *adapter.Registry {
	binaries := map[string]string{}
	disabled := map[string]bool{}
	for name, p := range cfg.Providers {
		if p.Binary != "" {
			binaries[name] = p.Binary
		}
		if !p.IsEnabled() {
			disabled[name] = true
		}
	}
	return adapter.BuiltinRegistry(adapter.BuildOptions{
		Timeout:      timeout,
		TrustedPaths: cfg.Discovery.TrustedPaths,
		Binaries:     binaries,
		Disabled:     disabled,
	})
}

// defaultModels extracts per-provider default models from config.
func defaultModels(cfg *config.Config) map[string]string {
	out := map[string]string{}
	for name, p := range cfg.Providers {
		if p.DefaultModel != "" {
			out[name] = p.DefaultModel
		}
	}
	return out
}

// fallbackModels extracts per-provider fallback chains from config.
func fallbackModels(cfg *config.Config) map[string][]string {
	out := map[string][]string{}
	for name, p := range cfg.Providers {
		if len(p.FallbackModels) > 0 {
			out[name] = p.FallbackModels
		}
	}
	return out
}

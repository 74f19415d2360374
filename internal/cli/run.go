package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/slittycode/model-benchmark/internal/adapter"
	"github.com/slittycode/model-benchmark/internal/config"
	"github.com/slittycode/model-benchmark/internal/fallback"
	"github.com/slittycode/model-benchmark/internal/redact"
	"github.com/slittycode/model-benchmark/internal/router"
)

var (
	runProvider string
	runModel    string
	runStream   bool
	runJSON     bool
	runTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Run a single prompt against a provider",
	Long: `Run sends one prompt to a provider and prints the response. The prompt
comes from the argument, or from stdin when no argument is given. Without
--provider the router picks the best available one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runProvider, "provider", "P", "", "Provider to use (default: routed)")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "Model to use (default: provider default)")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "Stream output as it arrives")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Emit the result as JSON")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-run timeout override")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, registry, err := setup()
	if err != nil {
		return err
	}

	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, model, err := pickAdapter(cfg, registry, runProvider, runModel)
	if err != nil {
		return err
	}

	opts := adapter.RunOptions{
		Model:   model,
		Stream:  runStream,
		Timeout: runTimeout,
	}
	if runStream && !runJSON {
		opts.OnChunk = func(chunk string) { fmt.Println(chunk) }
	}

	outcome := fallback.Run(cmd.Context(), a, prompt, model, fallbackModels(cfg)[a.Name()], opts)
	res := outcome.Result

	if runJSON {
		return printJSON(map[string]any{
			"provider":      a.Name(),
			"model":         outcome.Model,
			"success":       res.ExitCode == 0,
			"exit_code":     res.ExitCode,
			"output":        res.Output,
			"error":         redact.Secrets(res.Error),
			"wall_time_ms":  res.WallTime.Milliseconds(),
			"ttft_ms":       res.TTFT.Milliseconds(),
			"tokens_in":     res.TokensIn,
			"tokens_out":    res.TokensOut,
			"fallback_used": outcome.FallbackUsed,
		})
	}

	if !res.Succeeded() {
		return fmt.Errorf("%s failed: %s", a.Name(), redact.Secrets(res.Error))
	}
	if !runStream {
		fmt.Println(res.Output)
	}
	fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf("%s/%s in %s", a.Name(), outcome.Model, res.WallTime.Round(time.Millisecond))))
	return nil
}

// readPrompt takes the prompt from the argument or, failing that, stdin.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("no prompt given: pass it as an argument or on stdin")
	}
	return prompt, nil
}

// pickAdapter resolves the target provider and model, routing when no
// provider was named.
func pickAdapter(cfg *config.Config, registry *adapter.Registry, provider, model string) (adapter.Adapter, string, error) {
	if provider != "" {
		a := registry.Get(provider)
		if a == nil {
			return nil, "", fmt.Errorf("unknown provider %q (known: %s)", provider, strings.Join(registry.Names(), ", "))
		}
		if !adapter.Available(a) {
			return nil, "", fmt.Errorf("provider %q is not available on this machine", provider)
		}
		if model == "" {
			model = defaultModels(cfg)[provider]
		}
		if model == "" {
			if models := a.ListModels(); len(models) > 0 {
				model = models[0]
			} else {
				model = "default"
			}
		}
		return a, model, nil
	}

	r := router.New(cfg.Routing.PreferenceOrder)
	decision := r.Route(registry.Available(), router.Constraints{
		OfflineOnly:       cfg.Routing.OfflineOnly,
		StreamingRequired: cfg.Routing.StreamingRequired,
	}, defaultModels(cfg))
	if decision == nil {
		return nil, "", fmt.Errorf("no available provider satisfies the routing constraints")
	}
	a := registry.Get(decision.Provider)
	if model == "" {
		model = decision.Model
	}
	return a, model, nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slittycode/model-benchmark/internal/router"
)

var (
	routeOffline    bool
	routeStreaming  bool
	routeTools      bool
	routeMinContext int
	routeJSON       bool
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Show which provider the router would pick",
	Long: `Route evaluates the configured preference order and the given
capability constraints against the providers available right now, and
explains the decision.`,
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().BoolVar(&routeOffline, "offline", false, "Require an offline-capable provider")
	routeCmd.Flags().BoolVar(&routeStreaming, "streaming", false, "Require streaming support")
	routeCmd.Flags().BoolVar(&routeTools, "tools", false, "Require tool-calling support")
	routeCmd.Flags().IntVar(&routeMinContext, "min-context", 0, "Minimum context window in tokens")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "Emit the decision as JSON")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, registry, err := setup()
	if err != nil {
		return err
	}

	constraints := router.Constraints{
		OfflineOnly:         routeOffline || cfg.Routing.OfflineOnly,
		StreamingRequired:   routeStreaming || cfg.Routing.StreamingRequired,
		ToolCallingRequired: routeTools,
		MinContext:          routeMinContext,
	}

	r := router.New(cfg.Routing.PreferenceOrder)
	decision := r.Route(registry.Available(), constraints, defaultModels(cfg))

	if routeJSON {
		if decision == nil {
			return printJSON(map[string]any{"matched": false})
		}
		return printJSON(map[string]any{
			"matched":      true,
			"provider":     decision.Provider,
			"model":        decision.Model,
			"reasons":      decision.Reasons,
			"alternatives": decision.Alternatives,
		})
	}

	if decision == nil {
		fmt.Println(failStyle.Render("No available provider satisfies the constraints."))
		return nil
	}

	fmt.Printf("%s %s / %s\n", okStyle.Render("→"), headerStyle.Render(decision.Provider), decision.Model)
	for _, reason := range decision.Reasons {
		fmt.Printf("  %s\n", dimStyle.Render(reason))
	}
	if len(decision.Alternatives) > 0 {
		fmt.Printf("  alternatives: %s\n", strings.Join(decision.Alternatives, ", "))
	}
	return nil
}

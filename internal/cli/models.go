package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slittycode/model-benchmark/internal/adapter"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List models offered by available providers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModels,
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Emit results as JSON")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	_, registry, err := setup()
	if err != nil {
		return err
	}

	var adapters []adapter.Adapter
	if len(args) == 1 {
		a := registry.Get(args[0])
		if a == nil {
			return fmt.Errorf("unknown provider %q", args[0])
		}
		adapters = []adapter.Adapter{a}
	} else {
		adapters = registry.Available()
	}

	byProvider := map[string][]string{}
	for _, a := range adapters {
		byProvider[a.Name()] = a.ListModels()
	}

	if modelsJSON {
		return printJSON(byProvider)
	}

	for _, a := range adapters {
		fmt.Println(headerStyle.Render(a.Name()))
		models := byProvider[a.Name()]
		if len(models) == 0 {
			fmt.Println(dimStyle.Render("  (no models reported)"))
			continue
		}
		for _, m := range models {
			fmt.Printf("  %s\n", m)
		}
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slittycode/model-benchmark/internal/discovery"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which AI tools are installed, configured, and authenticated",
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Emit results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	detector := discovery.New(cfg.Timeout(), cfg.Discovery.ExtraPaths...)
	results := detector.CheckAll(cmd.Context())

	if doctorJSON {
		return printJSON(results)
	}

	ready := 0
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Ready() {
			ready++
		}
		configCol := "-"
		if r.HasConfig {
			configCol = r.ConfigPath
		}
		rows = append(rows, []string{
			okMark(r.Ready()),
			r.Provider,
			boolCell(r.HasBinary),
			configCol,
			r.AuthStatus,
		})
	}

	fmt.Print(renderTable([]string{"", "PROVIDER", "BINARY", "CONFIG", "AUTH"}, rows))
	fmt.Println()
	if ready == 0 {
		fmt.Println(warnStyle.Render("No provider is ready. Install an AI CLI (claude, ollama) or export an API key."))
	} else {
		fmt.Printf("%d of %d providers ready.\n", ready, len(results))
	}

	// Config sanity rides along: a broken config fails earlier in setup,
	// so reaching this point means it loaded and validated.
	fmt.Printf("config: ok (output dir %s, timeout %s)\n", cfg.General.OutputDir, cfg.Timeout())
	return nil
}

func boolCell(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

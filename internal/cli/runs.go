package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/slittycode/model-benchmark/internal/storage"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent benchmark runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum runs to show")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Emit results as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	store, err := storage.Open(filepath.Join(cfg.General.OutputDir, "mbench.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(runsLimit)
	if err != nil {
		return err
	}

	if runsJSON {
		return printJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println(dimStyle.Render("No runs recorded yet. Try `mbench bench --suite <file>`."))
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		jobs, err := store.JobsForRun(r.ID)
		if err != nil {
			return err
		}
		failed := 0
		for _, j := range jobs {
			if j.Status == "failed" {
				failed++
			}
		}
		summary := fmt.Sprintf("%d jobs", len(jobs))
		if failed > 0 {
			summary = fmt.Sprintf("%d jobs, %d failed", len(jobs), failed)
		}
		rows = append(rows, []string{
			okMark(r.Status == "completed" && failed == 0),
			r.ID[:8],
			r.SuitePath,
			r.Status,
			r.CreatedAt,
			summary,
		})
	}
	fmt.Print(renderTable([]string{"", "RUN", "SUITE", "STATUS", "CREATED", "JOBS"}, rows))
	return nil
}

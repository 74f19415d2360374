package cli

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/slittycode/model-benchmark/internal/storage"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Summarize a stored benchmark run",
	Long: `Report aggregates a run's jobs and metrics into per-provider
statistics. The run ID may be a prefix, as shown by "mbench runs";
without an argument the most recent run is summarized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Emit the report as JSON")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	store, err := storage.Open(filepath.Join(cfg.General.OutputDir, "mbench.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	var prefix string
	if len(args) == 1 {
		prefix = args[0]
	}
	run, err := store.FindRun(prefix)
	if err != nil {
		return err
	}

	summary, err := buildRunSummary(store, run)
	if err != nil {
		return err
	}

	if reportJSON {
		return printJSON(summary)
	}

	fmt.Printf("Run %s  %s  %s  %s\n\n", run.ID[:8], run.SuitePath, run.Status, run.CreatedAt)

	rows := make([][]string, 0, len(summary.Providers))
	for _, p := range summary.Providers {
		rows = append(rows, []string{
			p.Provider,
			fmt.Sprintf("%d", p.TotalJobs),
			fmt.Sprintf("%d", p.Completed),
			fmt.Sprintf("%d", p.Failed),
			fmt.Sprintf("%.0f", p.AvgWallMS),
			fmt.Sprintf("%.0f", p.MinWallMS),
			fmt.Sprintf("%.0f", p.MaxWallMS),
		})
	}
	fmt.Print(renderTable([]string{"PROVIDER", "JOBS", "PASSED", "FAILED", "AVG (MS)", "MIN", "MAX"}, rows))

	fmt.Println()
	for _, j := range summary.Jobs {
		line := fmt.Sprintf("%s %s/%s", okMark(j.Status == "completed"), j.Provider, j.Model)
		if j.ErrorMessage != "" {
			line += "  " + dimStyle.Render(clip(j.ErrorMessage, 100))
		}
		fmt.Println(line)
	}
	return nil
}

// providerStats aggregates the jobs one provider ran within a run. Timing
// stats cover completed jobs only.
type providerStats struct {
	Provider  string  `json:"provider"`
	TotalJobs int     `json:"total_jobs"`
	Completed int     `json:"completed"`
	Failed    int     `json:"failed"`
	AvgWallMS float64 `json:"avg_wall_time_ms"`
	MinWallMS float64 `json:"min_wall_time_ms"`
	MaxWallMS float64 `json:"max_wall_time_ms"`
	AvgTTFTMS float64 `json:"avg_ttft_ms,omitempty"`
	CostUSD   float64 `json:"cost_usd"`
}

type runSummary struct {
	Run       storage.Run     `json:"run"`
	Providers []providerStats `json:"providers"`
	Jobs      []storage.Job   `json:"jobs"`
}

func buildRunSummary(store *storage.Storage, run storage.Run) (*runSummary, error) {
	jobs, err := store.JobsForRun(run.ID)
	if err != nil {
		return nil, err
	}

	var order []string
	byProvider := map[string]*providerStats{}
	walls := map[string][]float64{}
	ttfts := map[string][]float64{}

	for _, j := range jobs {
		st := byProvider[j.Provider]
		if st == nil {
			st = &providerStats{Provider: j.Provider}
			byProvider[j.Provider] = st
			order = append(order, j.Provider)
		}
		st.TotalJobs++
		switch j.Status {
		case "completed":
			st.Completed++
		case "failed":
			st.Failed++
		}

		metrics, err := store.JobMetrics(j.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics {
			switch m.Name {
			case "wall_time_ms":
				if j.Status == "completed" {
					walls[j.Provider] = append(walls[j.Provider], m.Value)
				}
			case "ttft_ms":
				if j.Status == "completed" {
					ttfts[j.Provider] = append(ttfts[j.Provider], m.Value)
				}
			case "cost_usd":
				st.CostUSD += m.Value
			}
		}
	}

	for _, p := range order {
		st := byProvider[p]
		if ws := walls[p]; len(ws) > 0 {
			st.MinWallMS, st.MaxWallMS = ws[0], ws[0]
			var sum float64
			for _, w := range ws {
				sum += w
				if w < st.MinWallMS {
					st.MinWallMS = w
				}
				if w > st.MaxWallMS {
					st.MaxWallMS = w
				}
			}
			st.AvgWallMS = sum / float64(len(ws))
		}
		if ts := ttfts[p]; len(ts) > 0 {
			var sum float64
			for _, v := range ts {
				sum += v
			}
			st.AvgTTFTMS = sum / float64(len(ts))
		}
	}

	summary := &runSummary{Run: run, Jobs: jobs}
	for _, p := range order {
		summary.Providers = append(summary.Providers, *byProvider[p])
	}
	return summary, nil
}

// clip caps s at max runes, marking the cut.
func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var providersJSON bool

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered providers and their detection status",
	RunE:  runProviders,
}

func init() {
	providersCmd.Flags().BoolVar(&providersJSON, "json", false, "Emit results as JSON")
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	_, registry, err := setup()
	if err != nil {
		return err
	}

	type entry struct {
		Name       string `json:"name"`
		Detected   bool   `json:"detected"`
		BinaryPath string `json:"binary_path,omitempty"`
		Version    string `json:"version,omitempty"`
		AuthStatus string `json:"auth_status,omitempty"`
		Trusted    bool   `json:"trusted"`
		Error      string `json:"error,omitempty"`
	}

	var entries []entry
	for _, a := range registry.All() {
		det := a.Detect()
		entries = append(entries, entry{
			Name:       a.Name(),
			Detected:   det.Detected,
			BinaryPath: det.BinaryPath,
			Version:    det.Version,
			AuthStatus: string(det.AuthStatus),
			Trusted:    det.Trusted,
			Error:      det.Error,
		})
	}

	if providersJSON {
		return printJSON(entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		location := e.BinaryPath
		if location == "" {
			location = "-"
		}
		trusted := "-"
		if e.Detected {
			trusted = boolCell(e.Trusted)
		}
		rows = append(rows, []string{okMark(e.Detected), e.Name, location, e.Version, e.AuthStatus, trusted})
	}
	fmt.Print(renderTable([]string{"", "PROVIDER", "BINARY", "VERSION", "AUTH", "TRUSTED"}, rows))
	return nil
}

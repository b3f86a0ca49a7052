package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Inspection dispatch - assign visual-inspection lots to inspectors",
		Long: `Inspection dispatch resolves today's shortage, cleaning and advance lots
and assigns an inspection crew to each of them.

Examples:
  dispatch run
  dispatch run --date 2026-08-24 --seat-chart chart.json
  dispatch seating ingest --chart chart.json --run <run-id>
  dispatch runs list --date 2026-08-24
  dispatch runs show <run-id>`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: config.yaml in ., ./configs, /etc/dispatch)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewSeatingCommand())
	rootCmd.AddCommand(NewRunsCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

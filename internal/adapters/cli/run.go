package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmurata/inspection-dispatch/internal/adapters/seating"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		dateFlag      string
		seatChartPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one extraction run and print the assignment table",
		RunE: func(cmd *cobra.Command, args []string) error {
			runDate, err := parseRunDate(dateFlag)
			if err != nil {
				return err
			}

			rt, close, err := buildRuntime()
			if err != nil {
				return err
			}
			defer close()

			ctx := rt.loggerContext()
			if verbose {
				rt.coordinator.SetProgress(func(phase string) {
					fmt.Printf("... %s\n", phase)
				})
			}

			result, err := rt.coordinator.RunExtraction(ctx, runDate)
			if err != nil {
				return err
			}

			printAssignmentTable(result.Rows)
			fmt.Printf("\nRun %s: %s\n", result.RunID, summarize(result.Rows))
			if len(result.NonInspection) > 0 {
				fmt.Printf("Non-inspection lots: %d\n", len(result.NonInspection))
			}
			if len(result.PinDrops) > 0 {
				fmt.Printf("Dropped pins: %v\n", result.PinDrops)
			}
			printDiagnostics(result.Diagnostics)

			if seatChartPath != "" {
				bundle, err := rt.masters.LoadBundle(ctx, runDate)
				if err != nil {
					return err
				}
				chart := seating.Publish(result.Rows, bundle.Roster, runDate.Format("2006-01-02"))
				if err := seating.WriteChart(seatChartPath, chart); err != nil {
					return err
				}
				fmt.Printf("Seat chart written to %s\n", seatChartPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Run date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&seatChartPath, "seat-chart", "", "Write the seat-chart artifact to this path")
	return cmd
}

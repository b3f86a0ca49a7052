package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmurata/inspection-dispatch/internal/adapters/seating"
)

// NewSeatingCommand creates the seating command group
func NewSeatingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seating",
		Short: "Publish and re-ingest seat-chart artifacts",
	}
	cmd.AddCommand(newSeatingPublishCommand())
	cmd.AddCommand(newSeatingIngestCommand())
	return cmd
}

func newSeatingPublishCommand() *cobra.Command {
	var (
		runID string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a stored run as a seat chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, close, err := buildRuntime()
			if err != nil {
				return err
			}
			defer close()
			ctx := rt.loggerContext()

			run, err := rt.runRepository().FindRun(ctx, runID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", runID)
			}

			bundle, err := rt.masters.LoadBundle(ctx, run.RunDate)
			if err != nil {
				return err
			}
			chart := seating.Publish(run.Rows, bundle.Roster, run.RunDate.Format("2006-01-02"))
			if err := seating.WriteChart(out, chart); err != nil {
				return err
			}
			fmt.Printf("Seat chart for run %s written to %s\n", runID, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to publish")
	cmd.Flags().StringVar(&out, "out", "seat-chart.json", "Output path")
	cmd.MarkFlagRequired("run")
	return cmd
}

func newSeatingIngestCommand() *cobra.Command {
	var (
		runID     string
		chartPath string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Apply an edited seat chart back onto a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, close, err := buildRuntime()
			if err != nil {
				return err
			}
			defer close()
			ctx := rt.loggerContext()

			run, err := rt.runRepository().FindRun(ctx, runID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", runID)
			}

			chart, err := seating.ReadChart(chartPath)
			if err != nil {
				return err
			}
			bundle, err := rt.masters.LoadBundle(ctx, run.RunDate)
			if err != nil {
				return err
			}

			seating.Ingest(chart, run.Rows, bundle.Roster)
			printAssignmentTable(run.Rows)
			fmt.Printf("\nRun %s after ingest: %s\n", runID, summarize(run.Rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to apply the chart to")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Seat-chart JSON path")
	cmd.MarkFlagRequired("run")
	cmd.MarkFlagRequired("chart")
	return cmd
}

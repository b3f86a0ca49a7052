package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command group
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored extraction runs",
	}
	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsShowCommand())
	return cmd
}

func newRunsListCommand() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseRunDate(dateFlag)
			if err != nil {
				return err
			}

			rt, close, err := buildRuntime()
			if err != nil {
				return err
			}
			defer close()

			runs, err := rt.runRepository().ListRunsByDate(rt.loggerContext(), date)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Printf("No runs stored for %s\n", date.Format("2006-01-02"))
				return nil
			}
			for _, run := range runs {
				fmt.Printf("%s  started %s  finished %s\n",
					run.RunID,
					run.StartedAt.Format("15:04:05"),
					run.FinishedAt.Format("15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Run date (YYYY-MM-DD, default today)")
	return cmd
}

func newRunsShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one stored run's assignment table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, close, err := buildRuntime()
			if err != nil {
				return err
			}
			defer close()

			run, err := rt.runRepository().FindRun(rt.loggerContext(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}

			printAssignmentTable(run.Rows)
			fmt.Printf("\nRun %s (%s): %s\n", run.RunID, run.RunDate.Format("2006-01-02"), summarize(run.Rows))
			printDiagnostics(run.Diagnostics)
			return nil
		},
	}
	return cmd
}

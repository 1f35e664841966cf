package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

func NewSummaryCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show recognized text and generate summaries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <task-id>",
		Short: "Print a finished task's text and current summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := selectFinished(cmd, deps, taskID); err != nil {
				return err
			}
			state := deps.App.Summary.Snapshot()
			formatter := deps.formatter()
			formatter.Text(fmt.Sprintf("Task %d", taskID), state.Text)
			if state.Summary != "" {
				formatter.Text("Summary", state.Summary)
			}
			return nil
		},
	})

	var algo string
	var length, detail int
	generateCmd := &cobra.Command{
		Use:   "generate <task-id>",
		Short: "Generate a summary for a finished task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := selectFinished(cmd, deps, taskID); err != nil {
				return err
			}
			summary := deps.App.Summary
			if err := summary.SetOptions(algo, length, detail); err != nil {
				return err
			}
			text, err := summary.GenerateSummary(cmd.Context())
			if err != nil {
				return err
			}
			deps.formatter().Text("Summary", text)
			return nil
		},
	}
	generateCmd.Flags().StringVarP(&algo, "algo", "a", types.AlgoTruncate, "Summary algorithm (truncate, doubao)")
	generateCmd.Flags().IntVarP(&length, "length", "l", 100, "Summary length")
	generateCmd.Flags().IntVarP(&detail, "detail", "d", 1, "Detail level")
	cmd.AddCommand(generateCmd)

	return cmd
}

func selectFinished(cmd *cobra.Command, deps *Dependencies, taskID int) error {
	summary := deps.App.Summary
	if err := summary.Mount(cmd.Context()); err != nil {
		return err
	}
	return summary.Select(cmd.Context(), taskID)
}

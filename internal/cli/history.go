package cli

import (
	"github.com/spf13/cobra"
)

func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and prune task and result history",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tasks",
		Short: "List task history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history := deps.App.History
			if err := history.RefreshTasks(cmd.Context()); err != nil {
				return err
			}
			deps.formatter().HistoryTasks(history.Snapshot().Tasks)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "results",
		Short: "List result history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history := deps.App.History
			if err := history.RefreshResults(cmd.Context()); err != nil {
				return err
			}
			deps.formatter().HistoryResults(history.Snapshot().Results)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-tasks <id>...",
		Short: "Delete tasks from history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			_, err = deps.App.History.DeleteTasks(cmd.Context(), ids)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-results <id>...",
		Short: "Delete results from history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			_, err = deps.App.History.DeleteResults(cmd.Context(), ids)
			return err
		},
	})

	var limit int
	exportsCmd := &cobra.Command{
		Use:   "exports",
		Short: "List exports saved from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := deps.App.Prefs.ListExports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			deps.formatter().ExportList(records)
			return nil
		},
	}
	exportsCmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of exports")
	cmd.AddCommand(exportsCmd)

	return cmd
}

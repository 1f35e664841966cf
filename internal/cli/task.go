package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/types"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

func NewTaskCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Submit and follow ASR tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List ASR tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := deps.App.Tasks
			if err := tasks.RefreshTasks(cmd.Context()); err != nil {
				return err
			}
			deps.formatter().TaskList(tasks.Snapshot().Tasks)
			return nil
		},
	})

	var model string
	var watch bool
	submitCmd := &cobra.Command{
		Use:   "submit <audio-id>",
		Short: "Submit an audio file for recognition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audioID, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := deps.App.Tasks.Submit(cmd.Context(), audioID, model)
			if err != nil {
				return err
			}
			deps.formatter().Info(fmt.Sprintf("Task %d %s", task.ID, task.Status))
			if watch {
				return watchTasks(cmd, deps, task.ID)
			}
			return nil
		},
	}
	submitCmd.Flags().StringVarP(&model, "model", "m", views.DefaultModelName, "Model name")
	submitCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the task until it finishes")
	cmd.AddCommand(submitCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deps.App.Tasks.Delete(cmd.Context(), id)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "watch [id]",
		Short: "Poll task progress until the tasks settle (Ctrl+C to stop)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := 0
			if len(args) == 1 {
				var err error
				if id, err = parseID(args[0]); err != nil {
					return err
				}
			}
			return watchTasks(cmd, deps, id)
		},
	})

	return cmd
}

// watchTasks mounts the task view and prints progress changes until the
// watched tasks (all of them when id is 0) are settled
func watchTasks(cmd *cobra.Command, deps *Dependencies, id int) error {
	ctx := cmd.Context()
	tasks := deps.App.Tasks
	formatter := deps.formatter()

	changes, cancel := tasks.Subscribe()
	defer cancel()

	err := tasks.Mount(ctx)
	defer tasks.Unmount()
	if err != nil {
		return err
	}

	printed := make(map[int]string)
	texts := make(map[int]bool)
	for {
		state := tasks.Snapshot()
		settled := true
		for _, t := range state.Tasks {
			if id != 0 && t.ID != id {
				continue
			}
			if line := progressLine(t); printed[t.ID] != line {
				printed[t.ID] = line
				formatter.Info(line)
			}
			if id != 0 && t.HasText && !texts[t.ID] {
				texts[t.ID] = true
				formatter.Text(fmt.Sprintf("Task %d", t.ID), t.Text)
			}
			if !taskSettled(t) {
				settled = false
			}
		}
		if id != 0 {
			if _, ok := printed[id]; !ok {
				settled = false
			}
		}
		if settled {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}
	}
}

func progressLine(t views.TaskView) string {
	if t.Indeterminate {
		return fmt.Sprintf("Task %d: %s", t.ID, t.Status)
	}
	return fmt.Sprintf("Task %d: %s %.0f%%", t.ID, t.Status, t.Percent)
}

func taskSettled(t views.TaskView) bool {
	switch t.Status {
	case types.StatusFailed:
		return true
	case types.StatusFinished:
		return t.HasText
	}
	return false
}

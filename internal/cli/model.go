package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/views"
)

func NewModelCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage models on the backend",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printModels(cmd.Context(), deps)
		},
	})

	var form views.RegisterForm
	var size int64
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new model record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("size") {
				form.Size = &size
			}
			if err := deps.App.Models.Register(cmd.Context(), form); err != nil {
				return err
			}
			deps.formatter().ModelList(deps.App.Models.Snapshot().Models)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&form.Name, "name", "", "Model name")
	registerCmd.Flags().StringVar(&form.DisplayName, "display-name", "", "Display name")
	registerCmd.Flags().StringVar(&form.Type, "type", "asr", "Model type")
	registerCmd.Flags().StringVar(&form.LocalPath, "local-path", "", "Path of the model on the backend host")
	registerCmd.Flags().StringVar(&form.RemoteURL, "remote-url", "", "Download URL")
	registerCmd.Flags().StringVar(&form.Version, "version", "", "Model version")
	registerCmd.Flags().StringVar(&form.Config, "config", "", "Model config, JSON or free-form text")
	registerCmd.Flags().Int64Var(&size, "size", 0, "Model size in bytes")
	cmd.AddCommand(registerCmd)

	cmd.AddCommand(modelActionCmd(deps, "switch", "Make a model the active one", (*views.ModelManager).Switch))
	cmd.AddCommand(modelActionCmd(deps, "load", "Load a model into memory", (*views.ModelManager).Load))
	cmd.AddCommand(modelActionCmd(deps, "unload", "Unload a model", (*views.ModelManager).Unload))

	var deleteFile bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a model record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deps.App.Models.Delete(cmd.Context(), id, deleteFile)
		},
	}
	deleteCmd.Flags().BoolVar(&deleteFile, "delete-file", false, "Also delete the model file on the backend")
	cmd.AddCommand(deleteCmd)

	cmd.AddCommand(newModelConfigCmd(deps))

	return cmd
}

func modelActionCmd(deps *Dependencies, use, short string, action func(*views.ModelManager, context.Context, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := action(deps.App.Models, cmd.Context(), id); err != nil {
				return err
			}
			deps.formatter().ModelList(deps.App.Models.Snapshot().Models)
			return nil
		},
	}
}

func newModelConfigCmd(deps *Dependencies) *cobra.Command {
	var text string
	var file string

	cmd := &cobra.Command{
		Use:   "config <id>",
		Short: "Print a model's config, or replace it with --set or --file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			models := deps.App.Models
			if err := models.Refresh(cmd.Context()); err != nil {
				return err
			}
			current, err := models.BeginConfigEdit(id)
			if err != nil {
				return err
			}

			switch {
			case text != "" && file != "":
				models.CancelConfigEdit()
				return errors.New("use either --set or --file")
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					models.CancelConfigEdit()
					return err
				}
				text = string(data)
			case text == "":
				models.CancelConfigEdit()
				deps.formatter().Text("Config", current)
				return nil
			}
			return models.SaveConfig(cmd.Context(), id, text)
		},
	}

	cmd.Flags().StringVar(&text, "set", "", "New config as JSON")
	cmd.Flags().StringVar(&file, "file", "", "Read the new config from a JSON file")

	return cmd
}

func printModels(ctx context.Context, deps *Dependencies) error {
	models := deps.App.Models
	if err := models.Refresh(ctx); err != nil {
		return err
	}
	deps.formatter().ModelList(models.Snapshot().Models)
	return nil
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/storage"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

func NewExportCmd(deps *Dependencies) *cobra.Command {
	var format string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <task-id>",
		Short: "Export a task's result as txt, json or srt",
		Long:  "Download the backend rendering of a task result. The file is written to the configured output directory and any enabled mirrors; --out writes an extra copy.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}

			artifact, err := deps.App.History.Export(cmd.Context(), taskID, format)
			if err != nil {
				return err
			}

			formatter := deps.formatter()
			for _, loc := range artifact.Locations {
				formatter.Saved(loc)
			}
			if outDir != "" {
				path, err := storage.SaveTo(outDir, artifact)
				if err != nil {
					return err
				}
				formatter.Saved(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", types.FormatTXT, "Export format (txt, json, srt)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Also write the file to this directory")

	return cmd
}

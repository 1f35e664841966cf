package cli

import (
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/api"
)

func NewAudioCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Manage uploaded audio files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List audio files on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			audio := deps.App.Audio
			if err := audio.Refresh(cmd.Context()); err != nil {
				return err
			}
			deps.formatter().AudioList(audio.Snapshot().Files)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more audio files in a single request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]api.UploadFile, 0, len(args))
			for _, path := range args {
				files = append(files, api.FileFromPath(path))
			}

			audio := deps.App.Audio
			maxSize := int64(deps.Config.Limits.MaxFileSizeMB) * 1024 * 1024
			if _, err := audio.UploadFiles(cmd.Context(), files, maxSize); err != nil {
				return err
			}
			deps.formatter().AudioList(audio.Snapshot().Files)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deps.App.Audio.Delete(cmd.Context(), id)
		},
	})

	return cmd
}

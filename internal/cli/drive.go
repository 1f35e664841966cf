package cli

import (
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/storage"
)

func NewDriveCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Google Drive export mirror",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "auth",
		Short: "Authorize Drive access and save the token file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gd := deps.Config.GoogleDrive
			if err := storage.AuthorizeDrive(cmd.Context(), gd.CredentialsFile, gd.TokenFile, deps.In, deps.Out); err != nil {
				return err
			}
			deps.formatter().Success("Drive token saved to " + gd.TokenFile)
			return nil
		},
	})

	return cmd
}

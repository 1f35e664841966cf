package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/app"
	"github.com/codebuildervaibhav/asr-console/internal/config"
	"github.com/codebuildervaibhav/asr-console/internal/output"
	"github.com/codebuildervaibhav/asr-console/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
	Out    io.Writer
	In     io.Reader
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "asrctl",
		Short:         "Operate the ASR pipeline from the terminal",
		Long:          "Upload audio, submit and watch transcription tasks, generate summaries, export results and manage models on an ASR backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full("asrctl") + "\n")

	rootCmd.AddCommand(NewAudioCmd(deps))
	rootCmd.AddCommand(NewTaskCmd(deps))
	rootCmd.AddCommand(NewSummaryCmd(deps))
	rootCmd.AddCommand(NewExportCmd(deps))
	rootCmd.AddCommand(NewHistoryCmd(deps))
	rootCmd.AddCommand(NewModelCmd(deps))
	rootCmd.AddCommand(NewLLMCmd(deps))
	rootCmd.AddCommand(NewDriveCmd(deps))

	return rootCmd
}

func (d *Dependencies) formatter() *output.Formatter {
	return output.NewFormatter(d.Out)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

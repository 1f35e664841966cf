package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

func NewLLMCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Configure the LLM used by the doubao summary algorithm",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved settings (key masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.App.Prefs.LoadLLMConfig(cmd.Context())
			if err != nil {
				return err
			}
			printLLM(deps, cfg)
			return nil
		},
	})

	var cfg types.LLMConfig
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Save LLM settings; omitted flags keep their saved value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary := deps.App.Summary
			if err := summary.LoadLLMConfig(cmd.Context()); err != nil {
				return err
			}
			next := summary.Snapshot().LLM
			if cmd.Flags().Changed("key") {
				next.APIKey = cfg.APIKey
			}
			if cmd.Flags().Changed("model") {
				next.Model = cfg.Model
			}
			if cmd.Flags().Changed("base") {
				next.APIBase = cfg.APIBase
			}
			if err := summary.SaveLLMConfig(cmd.Context(), next); err != nil {
				return err
			}
			printLLM(deps, summary.Snapshot().LLM)
			return nil
		},
	}
	setCmd.Flags().StringVar(&cfg.APIKey, "key", "", "API key")
	setCmd.Flags().StringVar(&cfg.Model, "model", "", "Model or endpoint id")
	setCmd.Flags().StringVar(&cfg.APIBase, "base", "", "OpenAI-compatible API base URL")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Check the saved credentials with a one-token request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary := deps.App.Summary
			if err := summary.LoadLLMConfig(cmd.Context()); err != nil {
				return err
			}
			return summary.VerifyLLMConfig(cmd.Context())
		},
	})

	return cmd
}

func printLLM(deps *Dependencies, cfg types.LLMConfig) {
	deps.formatter().Info(fmt.Sprintf("key=%s model=%s base=%s", types.MaskKey(cfg.APIKey), cfg.Model, cfg.APIBase))
}

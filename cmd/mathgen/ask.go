package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mathgen-backend/internal/bootstrap"
	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/prompts"
	"mathgen-backend/internal/shared/telemetry"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Send a prompt template with optional attachments to a provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		providerFlag, _ := cmd.Flags().GetString("provider")
		promptFlag, _ := cmd.Flags().GetString("prompt")
		varPairs, _ := cmd.Flags().GetStringSlice("var")
		files, _ := cmd.Flags().GetStringSlice("attach")

		name, err := llm.ParseName(providerFlag)
		if err != nil {
			return err
		}
		vars, err := prompts.ParseVars(varPairs)
		if err != nil {
			return err
		}
		prompt, err := prompts.Substitute(promptFlag, vars)
		if err != nil {
			return err
		}
		if _, err := llm.ClassifyAll(name, files); err != nil {
			return err
		}

		provider, err := bootstrap.NewProviders(loadConfig(cmd)).Get(cmd.Context(), name)
		if err != nil {
			return err
		}
		resp, err := provider.Execute(cmd.Context(), prompt, files)
		telemetry.Info("cli.ask", map[string]any{
			"provider":    string(name),
			"variables":   vars,
			"attachments": files,
			"ok":          err == nil,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Response:")
		fmt.Fprintln(out, resp)
		return nil
	},
}

func init() {
	askCmd.Flags().String("provider", "", "LLM provider to use (claude or gemini)")
	askCmd.Flags().String("prompt", "", "Prompt template with $name placeholders")
	askCmd.Flags().StringSlice("var", nil, "Template variable as key=value (repeatable)")
	askCmd.Flags().StringSlice("attach", nil, "Image, PDF or text file to attach (repeatable)")
	_ = askCmd.MarkFlagRequired("provider")
	_ = askCmd.MarkFlagRequired("prompt")
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mathgen-backend/internal/shared/config"
)

var rootCmd = &cobra.Command{
	Use:           "mathgen",
	Short:         "Generate LaTeX math problem sets from a template",
	Long:          "mathgen drives the problem generation pipeline from the terminal: generate problem sets, compile LaTeX, or send a one-off prompt to a provider.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("tectonic", "", "Path to the tectonic binary (overrides TECTONIC_PATH)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(askCmd)
}

// loadConfig reads env config and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("tectonic"); p != "" {
		cfg.TectonicPath = p
	}
	return cfg
}

// consoleProgress prints pipeline progress lines to the command output.
type consoleProgress struct {
	w io.Writer
}

func (c consoleProgress) Send(_ string, message string) {
	fmt.Fprintln(c.w, message)
}

func (c consoleProgress) SendError(_ string, message string) {
	fmt.Fprintln(c.w, message)
}

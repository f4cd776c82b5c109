package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mathgen-backend/internal/render"
)

var compileCmd = &cobra.Command{
	Use:   "compile <input.tex>",
	Short: "Compile a LaTeX file to PDF with tectonic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, _ := cmd.Flags().GetString("output-dir")
		if outputDir == "" {
			outputDir = filepath.Dir(args[0])
		}

		renderer, err := render.New(loadConfig(cmd).TectonicPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Compiling %s with Tectonic...\n", args[0])
		pdf, err := renderer.Render(cmd.Context(), args[0], outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "PDF generated successfully: %s\n", pdf)
		return nil
	},
}

func init() {
	compileCmd.Flags().StringP("output-dir", "o", "", "Output directory for the PDF (default: input directory)")
}

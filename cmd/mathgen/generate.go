package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mathgen-backend/internal/bootstrap"
	"mathgen-backend/internal/generation"
	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/prompts"
	"mathgen-backend/internal/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate <template.tex>",
	Short: "Generate problems and solutions PDFs similar to a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providerFlag, _ := cmd.Flags().GetString("provider")
		difficultyFlag, _ := cmd.Flags().GetString("difficulty")
		numProblems, _ := cmd.Flags().GetInt("num-problems")
		outputDir, _ := cmd.Flags().GetString("output-dir")

		provider, err := llm.ParseName(providerFlag)
		if err != nil {
			return err
		}
		difficulty, err := prompts.ParseDifficulty(difficultyFlag)
		if err != nil {
			return err
		}
		template, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		if outputDir == "" {
			outputDir = filepath.Dir(args[0])
		}

		cfg := loadConfig(cmd)
		renderer, err := render.New(cfg.TectonicPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Generating problems and solutions using %s...\n", provider)
		pipeline := &generation.Pipeline{
			Providers: bootstrap.NewProviders(cfg),
			Renderer:  renderer,
			Progress:  consoleProgress{w: out},
			WorkRoot:  outputDir,
		}
		res, err := pipeline.Run(cmd.Context(), generation.Request{
			UserID:      "cli",
			Template:    string(template),
			Provider:    provider,
			Difficulty:  difficulty,
			NumProblems: numProblems,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Generated problems saved to: %s\n", res.ProblemsPDF)
		fmt.Fprintf(out, "Generated solutions saved to: %s\n", res.SolutionsPDF)
		fmt.Fprintf(out, "LaTeX sources saved to: %s and %s\n", res.ProblemsTex, res.SolutionsTex)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("provider", string(llm.NameClaude), "LLM provider to use (claude or gemini)")
	generateCmd.Flags().String("difficulty", string(prompts.DifficultySame), "Difficulty: same, challenge or harder")
	generateCmd.Flags().IntP("num-problems", "n", 5, "Number of problems to generate (1-20)")
	generateCmd.Flags().StringP("output-dir", "o", "", "Directory that receives the generated_* output folder (default: template directory)")
}

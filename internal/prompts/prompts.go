package prompts

import (
	_ "embed"
	"strconv"
	"strings"
)

// ChallengeMarker precedes every problem the model marks as challenging.
const ChallengeMarker = `\textbf{[Challenge]}`

// SolutionLabel opens every generated solution.
const SolutionLabel = "Solution:"

var (
	//go:embed templates/problems.txt
	problemTemplate string
	//go:embed templates/solutions.txt
	solutionTemplate string
	//go:embed templates/transcribe.txt
	transcribeTemplate string
)

// ProblemPrompt builds the problem-generation instruction. Callers validate inputs first.
func ProblemPrompt(problemCount int, d Difficulty, templateText string) string {
	return strings.NewReplacer(
		"{{COUNT}}", strconv.Itoa(problemCount),
		"{{CHALLENGE_COUNT}}", strconv.Itoa(ChallengeCount(problemCount, d)),
		"{{MARKER}}", ChallengeMarker,
		"{{TEMPLATE}}", strings.TrimSpace(templateText),
	).Replace(problemTemplate)
}

// SolutionPrompt builds the solution-generation instruction for generated problems.
func SolutionPrompt(problems string) string {
	return strings.NewReplacer("{{PROBLEMS}}", strings.TrimSpace(problems)).Replace(solutionTemplate)
}

// TranscribePrompt asks a provider to turn an attached worksheet into a LaTeX template.
func TranscribePrompt() string {
	return transcribeTemplate
}

// EnsureEnumerate wraps problems in an enumerate environment when the model omitted it.
func EnsureEnumerate(problems string) string {
	trimmed := strings.TrimSpace(problems)
	if strings.Contains(trimmed, `\begin{enumerate}`) {
		return trimmed
	}
	return "\\begin{enumerate}\n" + trimmed + "\n\\end{enumerate}"
}

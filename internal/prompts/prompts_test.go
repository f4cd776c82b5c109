package prompts

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeCountLaw(t *testing.T) {
	fractions := map[Difficulty]float64{
		DifficultySame:      0,
		DifficultyChallenge: 0.2,
		DifficultyHarder:    0.8,
	}
	for _, d := range Difficulties() {
		for n := 1; n <= 20; n++ {
			// epsilon keeps 5*0.2 at 1 rather than 0.999...
			want := int(float64(n)*fractions[d] + 1e-9)
			assert.Equal(t, want, ChallengeCount(n, d), "difficulty=%s n=%d", d, n)
		}
	}
}

func TestChallengeCountExamples(t *testing.T) {
	assert.Equal(t, 1, ChallengeCount(5, DifficultyChallenge))
	assert.Equal(t, 4, ChallengeCount(5, DifficultyHarder))
	assert.Equal(t, 0, ChallengeCount(4, DifficultyChallenge))
	assert.Equal(t, 16, ChallengeCount(20, DifficultyHarder))
	assert.Equal(t, 0, ChallengeCount(20, DifficultySame))
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Harder ")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHarder, d)

	_, err = ParseDifficulty("extreme")
	assert.Error(t, err)
}

func TestProblemPromptRequestsCountsAndConventions(t *testing.T) {
	template := `\item $\displaystyle \lim_{x \to 0} \frac{\sin x}{x}$`
	prompt := ProblemPrompt(5, DifficultyChallenge, template)

	assert.Contains(t, prompt, "Generate 5 LaTeX math problems")
	assert.Contains(t, prompt, "Exactly 1 of the 5 problems")
	assert.Contains(t, prompt, ChallengeMarker)
	assert.Contains(t, prompt, `\begin{enumerate}`)
	assert.Contains(t, prompt, `\displaystyle`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), template))
	assert.NotContains(t, prompt, "{{")
}

func TestProblemPromptIsDeterministic(t *testing.T) {
	for n := 1; n <= 20; n++ {
		a := ProblemPrompt(n, DifficultyHarder, "x")
		b := ProblemPrompt(n, DifficultyHarder, "x")
		require.Equal(t, a, b)
		assert.Contains(t, a, "Exactly "+strconv.Itoa(ChallengeCount(n, DifficultyHarder))+" of the")
	}
}

func TestSolutionPrompt(t *testing.T) {
	problems := "\\begin{enumerate}\n\\item $x$\n\\end{enumerate}"
	prompt := SolutionPrompt(problems)

	assert.Contains(t, prompt, `"Solution:"`)
	assert.Contains(t, prompt, "align*")
	assert.Contains(t, prompt, `\boxed{}`)
	assert.Contains(t, prompt, "[Challenge]")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), problems))
}

func TestEnsureEnumerate(t *testing.T) {
	wrapped := EnsureEnumerate(`\item $1$`)
	assert.Equal(t, "\\begin{enumerate}\n\\item $1$\n\\end{enumerate}", wrapped)

	already := "\\begin{enumerate}\\item $1$\\end{enumerate}"
	assert.Equal(t, already, EnsureEnumerate("  "+already+"\n"))
}

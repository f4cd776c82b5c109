package llm

import (
	"context"
	"strings"
	"sync"
)

// MockProblems is the canned problem list returned by Mock: five limits, one marked as a challenge.
const MockProblems = `\begin{enumerate}
\item $\displaystyle \lim_{x \to \infty} 3x^2 - 2x + 1$
\item $\displaystyle \lim_{x \to -\infty} \frac{x^3 + 2}{x^2 - 1}$
\item $\displaystyle \lim_{x \to 0} \frac{e^x - 1}{x}$
\item $\displaystyle \lim_{x \to 2} \frac{x^2 - 4}{x - 2}$
\item \textbf{[Challenge]} $\displaystyle \lim_{x \to \infty} \frac{\sin(x)}{x}$
\end{enumerate}`

// MockSolutions answers MockProblems with one "Solution:" block per problem.
const MockSolutions = `Solution:
$\displaystyle \lim_{x \to \infty} 3x^2 - 2x + 1$
\begin{align*}
&= \lim_{x \to \infty} x^2\left(3 - \frac{2}{x} + \frac{1}{x^2}\right) = \boxed{\infty}
\end{align*}

Solution:
$\displaystyle \lim_{x \to -\infty} \frac{x^3 + 2}{x^2 - 1}$
\begin{align*}
&= \lim_{x \to -\infty} x \cdot \frac{1 + 2/x^3}{1 - 1/x^2} = \boxed{-\infty}
\end{align*}

Solution:
$\displaystyle \lim_{x \to 0} \frac{e^x - 1}{x}$
\begin{align*}
&= \left.\frac{d}{dx} e^x\right|_{x=0} = \boxed{1}
\end{align*}

Solution:
$\displaystyle \lim_{x \to 2} \frac{x^2 - 4}{x - 2}$
\begin{align*}
&= \lim_{x \to 2} (x + 2) = \boxed{4}
\end{align*}

Solution:
$\displaystyle \lim_{x \to \infty} \frac{\sin(x)}{x}$
\begin{align*}
-\frac{1}{x} &\le \frac{\sin x}{x} \le \frac{1}{x} \\
&\Rightarrow \boxed{0} \quad \text{(by the Squeeze Theorem)}
\end{align*}`

// MockCall records one Execute invocation.
type MockCall struct {
	Prompt      string
	Attachments []string
}

// Mock is a deterministic Provider. Solution prompts get Solutions, anything else gets Problems.
type Mock struct {
	ID        Name
	Problems  string
	Solutions string
	Template  string
	// Err, when set, is returned (wrapped) from every call.
	Err error

	mu    sync.Mutex
	calls []MockCall
}

// NewMock returns a Mock answering with MockProblems and MockSolutions.
func NewMock(name Name) *Mock {
	return &Mock{ID: name, Problems: MockProblems, Solutions: MockSolutions}
}

func (m *Mock) Name() Name { return m.ID }

func (m *Mock) Execute(ctx context.Context, prompt string, attachments []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Prompt: prompt, Attachments: append([]string(nil), attachments...)})
	m.mu.Unlock()

	if m.Err != nil {
		return "", Wrap(m.ID, m.Err)
	}
	switch {
	case strings.Contains(prompt, "Generate detailed solutions"):
		return m.Solutions, nil
	case strings.HasPrefix(prompt, "Transcribe") && m.Template != "":
		return m.Template, nil
	default:
		return m.Problems, nil
	}
}

// Calls returns a copy of the recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

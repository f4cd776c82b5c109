package generation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/progress"
	"mathgen-backend/internal/prompts"
	"mathgen-backend/internal/render"
)

const sampleTemplate = `\begin{enumerate}
\item $\displaystyle \lim_{x \to \infty} x^2 - 3x + 4$
\end{enumerate}`

type fakeRenderer struct {
	mu    sync.Mutex
	calls []string
	fail  string
}

func (f *fakeRenderer) Render(_ context.Context, documentPath, outputDir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	base := filepath.Base(documentPath)
	f.calls = append(f.calls, base)
	if base == f.fail {
		return "", &render.RenderError{Document: documentPath, Diagnostics: "! Undefined control sequence."}
	}
	out := filepath.Join(outputDir, strings.TrimSuffix(base, ".tex")+".pdf")
	return out, os.WriteFile(out, []byte("%PDF-1.4 fake"), 0o644)
}

type recorder struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recorder) Send(_ string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, progress.Event{Type: progress.TypeProgress, Message: msg})
}

func (r *recorder) SendError(_ string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, progress.Event{Type: progress.TypeError, Message: msg})
}

func newPipeline(t *testing.T, provider llm.Provider, renderer DocumentRenderer, pub progress.Publisher) *Pipeline {
	t.Helper()
	reg := llm.NewRegistry()
	if provider != nil {
		reg.Set(provider)
	}
	return &Pipeline{
		Providers: reg,
		Renderer:  renderer,
		Progress:  pub,
		WorkRoot:  t.TempDir(),
		Now:       func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) },
	}
}

func validRequest() Request {
	return Request{
		UserID:      "user-1",
		Template:    sampleTemplate,
		Provider:    llm.NameClaude,
		Difficulty:  prompts.DifficultyChallenge,
		NumProblems: 5,
	}
}

func TestRunProducesBothArtifacts(t *testing.T) {
	mock := llm.NewMock(llm.NameClaude)
	rec := &recorder{}
	renderer := &fakeRenderer{}
	p := newPipeline(t, mock, renderer, rec)

	res, err := p.Run(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(res.OutputDir), "generated_20240301_123000_"))
	for _, path := range []string{res.ProblemsPDF, res.SolutionsPDF, res.ProblemsTex, res.SolutionsTex} {
		assert.FileExists(t, path)
		assert.Equal(t, res.OutputDir, filepath.Dir(path))
	}
	assert.Equal(t, []string{"problems.tex", "solutions.tex"}, renderer.calls)

	assert.Equal(t, 1, strings.Count(res.ProblemsLatex, `\section*{Problems}`))
	assert.Contains(t, res.ProblemsLatex, llm.MockProblems)
	assert.Equal(t, 5, strings.Count(res.SolutionsLatex, "Solution:"))
	assert.Contains(t, res.SolutionsLatex, `\def\limit#1`)

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Prompt, "Exactly 1 of the 5 problems")
	assert.Contains(t, calls[1].Prompt, llm.MockProblems)

	var msgs []string
	for _, ev := range rec.events {
		assert.Equal(t, progress.TypeProgress, ev.Type)
		msgs = append(msgs, ev.Message)
	}
	assert.Equal(t, []string{
		MsgGeneratingProblems,
		MsgCompilingProblems,
		MsgGeneratingSolutions,
		MsgCompilingSolutions,
		MsgComplete,
	}, msgs)
}

func TestRunIsIdempotentForFixedProvider(t *testing.T) {
	p := newPipeline(t, llm.NewMock(llm.NameClaude), &fakeRenderer{}, nil)

	first, err := p.Run(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := p.Run(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ProblemsLatex, second.ProblemsLatex)
	assert.Equal(t, first.SolutionsLatex, second.SolutionsLatex)
	assert.NotEqual(t, first.OutputDir, second.OutputDir)
}

func TestRunWrapsMissingEnumerate(t *testing.T) {
	mock := llm.NewMock(llm.NameGemini)
	mock.Problems = "```latex\n\\item $x$\n```"
	req := validRequest()
	req.Provider = llm.NameGemini
	p := newPipeline(t, mock, &fakeRenderer{}, nil)

	res, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, res.ProblemsLatex, "\\begin{enumerate}\n\\item $x$\n\\end{enumerate}")
}

func TestRunRejectsInvalidRequestBeforeAnyStage(t *testing.T) {
	mock := llm.NewMock(llm.NameClaude)
	rec := &recorder{}
	p := newPipeline(t, mock, &fakeRenderer{}, rec)

	cases := map[string]func(*Request){
		"zero problems":  func(r *Request) { r.NumProblems = 0 },
		"too many":       func(r *Request) { r.NumProblems = 21 },
		"bad provider":   func(r *Request) { r.Provider = "openai" },
		"bad difficulty": func(r *Request) { r.Difficulty = "extreme" },
		"blank template": func(r *Request) { r.Template = "  \n" },
		"missing user":   func(r *Request) { r.UserID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := p.Run(context.Background(), req)
			assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
		})
	}
	assert.Empty(t, mock.Calls())
	assert.Empty(t, rec.events)
	entries, err := os.ReadDir(p.WorkRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunProviderFailureAbortsAndCleansUp(t *testing.T) {
	mock := llm.NewMock(llm.NameClaude)
	mock.Err = errors.New("quota exceeded")
	rec := &recorder{}
	renderer := &fakeRenderer{}
	p := newPipeline(t, mock, renderer, rec)

	_, err := p.Run(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrProvider))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageProblems, se.Stage)
	assert.Empty(t, renderer.calls)

	entries, err := os.ReadDir(p.WorkRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, progress.TypeError, last.Type)
	assert.True(t, strings.HasPrefix(last.Message, "Error: "))
	assert.Contains(t, last.Message, "quota exceeded")
}

func TestRunRenderFailureStopsBeforeSolutions(t *testing.T) {
	mock := llm.NewMock(llm.NameClaude)
	rec := &recorder{}
	p := newPipeline(t, mock, &fakeRenderer{fail: "problems.tex"}, rec)

	_, err := p.Run(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, render.ErrRenderFailed))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageRenderProblems, se.Stage)
	assert.Len(t, mock.Calls(), 1, "solutions must not be requested after a failed render")

	entries, err := os.ReadDir(p.WorkRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, progress.TypeError, rec.events[len(rec.events)-1].Type)
}

func TestRunSolutionRenderFailureRemovesProblemsPDF(t *testing.T) {
	p := newPipeline(t, llm.NewMock(llm.NameClaude), &fakeRenderer{fail: "solutions.tex"}, nil)

	_, err := p.Run(context.Background(), validRequest())
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageRenderSolutions, se.Stage)

	entries, err := os.ReadDir(p.WorkRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunUnconfiguredProvider(t *testing.T) {
	p := newPipeline(t, nil, &fakeRenderer{}, nil)

	_, err := p.Run(context.Background(), validRequest())
	assert.True(t, errors.Is(err, llm.ErrNotConfigured))
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageProvider, se.Stage)
}

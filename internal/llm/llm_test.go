package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	n, err := ParseName(" Claude ")
	require.NoError(t, err)
	assert.Equal(t, NameClaude, n)

	_, err = ParseName("openai")
	assert.Error(t, err)
}

func TestProviderErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("upstream 500")
	err := Wrap(NameGemini, cause)

	assert.True(t, errors.Is(err, ErrProvider))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "gemini API error: upstream 500")

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, NameGemini, pe.Provider)

	assert.Same(t, err, Wrap(NameClaude, err), "already wrapped errors are kept")
	assert.Equal(t, context.Canceled, Wrap(NameClaude, context.Canceled))
	assert.Nil(t, Wrap(NameClaude, nil))
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		return p
	}

	pdf := write("worksheet.pdf", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"))
	png := write("scan.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"))
	tex := write("template.tex", []byte("\\begin{enumerate}\n\\item $x$\n\\end{enumerate}\n"))
	bin := write("blob.zip", []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00"))

	att, err := Classify(pdf)
	require.NoError(t, err)
	assert.Equal(t, KindDocument, att.Kind)
	assert.Equal(t, "application/pdf", att.MediaType)

	att, err = Classify(png)
	require.NoError(t, err)
	assert.Equal(t, KindImage, att.Kind)
	assert.Equal(t, "image/png", att.MediaType)

	att, err = Classify(tex)
	require.NoError(t, err)
	assert.Equal(t, KindText, att.Kind)
	assert.Equal(t, "template.tex", att.Name())

	_, err = Classify(bin)
	assert.Error(t, err)

	_, err = ClassifyAll(NameClaude, []string{filepath.Join(dir, "missing.pdf")})
	assert.True(t, errors.Is(err, ErrProvider))
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```latex\n\\item x\n```":  "\\item x",
		"```\n\\item x\n```\n":     "\\item x",
		"  \\item x  ":             "\\item x",
		"```\\item x```":           "\\item x",
		"\\begin{enumerate}\n```": "\\begin{enumerate}",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(context.Background(), NameClaude)
	assert.True(t, errors.Is(err, ErrNotConfigured))

	builds := 0
	r.Register(NameGemini, func(context.Context) (Provider, error) {
		builds++
		return NewMock(NameGemini), nil
	})
	for i := 0; i < 3; i++ {
		p, err := r.Get(context.Background(), NameGemini)
		require.NoError(t, err)
		assert.Equal(t, NameGemini, p.Name())
	}
	assert.Equal(t, 1, builds)

	r.Set(NewMock(NameClaude))
	assert.Equal(t, []Name{NameClaude, NameGemini}, r.Configured())
}

func TestMockAnswersByPromptKind(t *testing.T) {
	m := NewMock(NameClaude)
	problems, err := m.Execute(context.Background(), "Generate 5 LaTeX math problems", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(problems, `\item`))

	solutions, err := m.Execute(context.Background(), "Generate detailed solutions for these math problems.", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(solutions, "Solution:"))
	assert.Len(t, m.Calls(), 2)

	m.Err = errors.New("quota exceeded")
	_, err = m.Execute(context.Background(), "x", nil)
	assert.True(t, errors.Is(err, ErrProvider))
}

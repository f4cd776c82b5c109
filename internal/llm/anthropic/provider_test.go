package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathgen-backend/internal/llm"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(Config{APIKey: "test-key", Model: "claude-sonnet"},
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	require.NoError(t, err)
	return p
}

func messageResponse(text string) map[string]any {
	return map[string]any{
		"id":   "msg_test",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       "claude-sonnet-4-20250514",
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":  50,
			"output_tokens": 30,
		},
	}
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.True(t, errors.Is(err, llm.ErrNotConfigured))
}

func TestExecuteReturnsFirstTextBlock(t *testing.T) {
	var body map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`\begin{enumerate}\item $x$\end{enumerate}`))
	})

	out, err := p.Execute(context.Background(), "Generate 1 LaTeX math problems", nil)
	require.NoError(t, err)
	assert.Equal(t, `\begin{enumerate}\item $x$\end{enumerate}`, out)
	assert.Equal(t, "claude-sonnet-4-20250514", body["model"])
	assert.Equal(t, llm.NameClaude, p.Name())
}

func TestExecuteSendsAttachmentBlocks(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "worksheet.pdf")
	texPath := filepath.Join(dir, "template.tex")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"), 0o600))
	require.NoError(t, os.WriteFile(texPath, []byte("\\item $x$\n"), 0o600))

	var body struct {
		Messages []struct {
			Content []struct {
				Type   string `json:"type"`
				Source struct {
					Type      string `json:"type"`
					MediaType string `json:"media_type"`
				} `json:"source"`
			} `json:"content"`
		} `json:"messages"`
	}
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse("ok"))
	})

	_, err := p.Execute(context.Background(), "Transcribe", []string{pdfPath, texPath})
	require.NoError(t, err)
	require.Len(t, body.Messages, 1)
	blocks := body.Messages[0].Content
	require.Len(t, blocks, 3)
	assert.Equal(t, "text", blocks[0].Type)
	assert.Equal(t, "document", blocks[1].Type)
	assert.Equal(t, "base64", blocks[1].Source.Type)
	assert.Equal(t, "application/pdf", blocks[1].Source.MediaType)
	assert.Equal(t, "document", blocks[2].Type)
	assert.Equal(t, "text", blocks[2].Source.Type)
}

func TestExecuteMissingAttachmentIsProviderError(t *testing.T) {
	called := false
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := p.Execute(context.Background(), "x", []string{filepath.Join(t.TempDir(), "nope.png")})
	assert.True(t, errors.Is(err, llm.ErrProvider))
	assert.False(t, called)
}

func TestExecuteAPIErrorIsProviderError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	})

	_, err := p.Execute(context.Background(), "x", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrProvider))
	assert.Contains(t, err.Error(), "claude API error")
	assert.Contains(t, err.Error(), "401")
}

func TestExecuteEmptyContentIsProviderError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		resp := messageResponse("")
		resp["content"] = []map[string]any{}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := p.Execute(context.Background(), "x", nil)
	assert.True(t, errors.Is(err, llm.ErrProvider))
}

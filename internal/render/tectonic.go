// Package render compiles LaTeX documents to PDF with the tectonic engine.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mathgen-backend/internal/shared/telemetry"
)

var (
	ErrCompilerNotFound = errors.New("tectonic executable not found")
	ErrNotFound         = errors.New("latex document not found")
	ErrRenderFailed     = errors.New("latex render failed")
)

// RenderError carries the compiler diagnostics of a failed render.
type RenderError struct {
	Document    string
	Diagnostics string
	Err         error
}

func (e *RenderError) Error() string {
	return "Tectonic compilation failed:\n" + e.Diagnostics
}

func (e *RenderError) Unwrap() error { return ErrRenderFailed }

// Renderer invokes the tectonic binary once per document.
type Renderer struct {
	binary string
}

// New resolves binary on PATH (or as a path) and fails when it cannot be executed.
func New(binary string) (*Renderer, error) {
	if strings.TrimSpace(binary) == "" {
		binary = "tectonic"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCompilerNotFound, binary)
	}
	return &Renderer{binary: resolved}, nil
}

// Binary returns the resolved compiler path.
func (t *Renderer) Binary() string { return t.binary }

// Render compiles documentPath and places <stem>.pdf in outputDir.
// The compiler runs in a private scratch directory so concurrent renders never share aux files.
func (t *Renderer) Render(ctx context.Context, documentPath, outputDir string) (string, error) {
	if _, err := os.Stat(documentPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, documentPath)
		}
		return "", err
	}
	if outputDir == "" {
		outputDir = filepath.Dir(documentPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	scratch, err := os.MkdirTemp(outputDir, ".render-")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	base := filepath.Base(documentPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if err := copyFile(documentPath, filepath.Join(scratch, base)); err != nil {
		return "", fmt.Errorf("stage document: %w", err)
	}

	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, base)
	cmd.Dir = scratch
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		diagnostics := strings.TrimSpace(stderr.String())
		if diagnostics == "" {
			diagnostics = strings.TrimSpace(stdout.String())
		}
		telemetry.Warn("render.failed", map[string]any{
			"document":    base,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err,
		})
		return "", &RenderError{Document: documentPath, Diagnostics: diagnostics, Err: err}
	}

	produced := filepath.Join(scratch, stem+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return "", &RenderError{Document: documentPath, Diagnostics: "no PDF produced", Err: err}
	}
	target := filepath.Join(outputDir, stem+".pdf")
	if err := os.Rename(produced, target); err != nil {
		return "", fmt.Errorf("move pdf: %w", err)
	}

	telemetry.Info("render.complete", map[string]any{
		"document":    base,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return target, nil
}

// RenderSource renders source as <name>.pdf in outputDir. The staged .tex file is always removed.
func (t *Renderer) RenderSource(ctx context.Context, name, source, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	staging, err := os.MkdirTemp(outputDir, ".source-")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	texPath := filepath.Join(staging, name+".tex")
	if err := os.WriteFile(texPath, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name+".tex", err)
	}
	return t.Render(ctx, texPath, outputDir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Package generation runs the problem and solution pipeline for one request.
package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mathgen-backend/internal/latex"
	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/progress"
	"mathgen-backend/internal/prompts"
	"mathgen-backend/internal/shared/metrics"
	"mathgen-backend/internal/shared/telemetry"
)

// Stage names a pipeline step for errors, logs and metrics.
type Stage string

const (
	StageProvider        Stage = "provider"
	StageWorkspace       Stage = "workspace"
	StageProblems        Stage = "generate_problems"
	StageRenderProblems  Stage = "render_problems"
	StageSolutions       Stage = "generate_solutions"
	StageRenderSolutions Stage = "render_solutions"
)

// Progress messages emitted before each stage.
const (
	MsgGeneratingProblems  = "Generating problems..."
	MsgCompilingProblems   = "Compiling problems PDF..."
	MsgGeneratingSolutions = "Generating solutions..."
	MsgCompilingSolutions  = "Compiling solutions PDF..."
	MsgComplete            = "Generation complete!"
)

// WorkDirPrefix starts the name of every per-run output directory.
const WorkDirPrefix = "generated_"

// StageError reports which stage aborted a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// ProviderSource resolves a backend by name.
type ProviderSource interface {
	Get(ctx context.Context, name llm.Name) (llm.Provider, error)
}

// DocumentRenderer compiles a .tex file into outputDir and returns the PDF path.
type DocumentRenderer interface {
	Render(ctx context.Context, documentPath, outputDir string) (string, error)
}

// Result describes a successful run. All paths live under OutputDir.
type Result struct {
	OutputDir      string
	ProblemsPDF    string
	SolutionsPDF   string
	ProblemsTex    string
	SolutionsTex   string
	ProblemsLatex  string
	SolutionsLatex string
	CreatedAt      time.Time
}

// Pipeline wires the provider, renderer and progress hub.
type Pipeline struct {
	Providers ProviderSource
	Renderer  DocumentRenderer
	Progress  progress.Publisher
	WorkRoot  string
	Now       func() time.Time
}

// Run validates req and executes both halves of the pipeline.
// On failure the output directory is removed and an error event is published.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}
	created := p.now()
	metrics.GenerationsStarted.WithLabelValues(string(req.Provider), string(req.Difficulty)).Inc()

	run := &run{pipeline: p, req: req}
	res, err := run.execute(ctx, created)
	if err != nil {
		var se *StageError
		stage := Stage("unknown")
		if errors.As(err, &se) {
			stage = se.Stage
		}
		if run.outDir != "" {
			_ = os.RemoveAll(run.outDir)
		}
		metrics.GenerationsFailed.WithLabelValues(string(req.Provider), string(stage)).Inc()
		telemetry.Error("generation.failed", map[string]any{
			"user_id":  req.UserID,
			"provider": string(req.Provider),
			"stage":    string(stage),
			"error":    err,
		})
		p.publishError(req.UserID, err)
		return Result{}, err
	}

	metrics.GenerationsCompleted.WithLabelValues(string(req.Provider)).Inc()
	p.publish(req.UserID, MsgComplete)
	return res, nil
}

type run struct {
	pipeline *Pipeline
	req      Request
	outDir   string
}

func (r *run) execute(ctx context.Context, created time.Time) (Result, error) {
	p := r.pipeline
	req := r.req

	provider, err := p.Providers.Get(ctx, req.Provider)
	if err != nil {
		return Result{}, &StageError{Stage: StageProvider, Err: err}
	}

	if err := r.stage(StageWorkspace, func() error {
		dir, err := p.makeOutputDir(created)
		if err != nil {
			return err
		}
		r.outDir = dir
		return os.WriteFile(filepath.Join(dir, "template.tex"), []byte(req.Template), 0o644)
	}); err != nil {
		return Result{}, err
	}

	res := Result{OutputDir: r.outDir, CreatedAt: created}

	var problems string
	p.publish(req.UserID, MsgGeneratingProblems)
	if err := r.stage(StageProblems, func() error {
		prompt := prompts.ProblemPrompt(req.NumProblems, req.Difficulty, req.Template)
		out, err := provider.Execute(ctx, prompt, nil)
		if err != nil {
			return err
		}
		problems = prompts.EnsureEnumerate(llm.StripFences(out))
		res.ProblemsLatex = latex.Assemble(problems, latex.TitleProblems)
		res.ProblemsTex, err = r.writeSource("problems.tex", res.ProblemsLatex)
		return err
	}); err != nil {
		return Result{}, err
	}

	p.publish(req.UserID, MsgCompilingProblems)
	if err := r.stage(StageRenderProblems, func() error {
		pdf, err := p.Renderer.Render(ctx, res.ProblemsTex, r.outDir)
		res.ProblemsPDF = pdf
		return err
	}); err != nil {
		return Result{}, err
	}

	p.publish(req.UserID, MsgGeneratingSolutions)
	if err := r.stage(StageSolutions, func() error {
		out, err := provider.Execute(ctx, prompts.SolutionPrompt(problems), nil)
		if err != nil {
			return err
		}
		res.SolutionsLatex = latex.Assemble(latex.WithSolutionMacros(llm.StripFences(out)), latex.TitleSolutions)
		res.SolutionsTex, err = r.writeSource("solutions.tex", res.SolutionsLatex)
		return err
	}); err != nil {
		return Result{}, err
	}

	p.publish(req.UserID, MsgCompilingSolutions)
	if err := r.stage(StageRenderSolutions, func() error {
		pdf, err := p.Renderer.Render(ctx, res.SolutionsTex, r.outDir)
		res.SolutionsPDF = pdf
		return err
	}); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (r *run) stage(name Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(string(name)).Observe(elapsed.Seconds())
	fields := map[string]any{
		"user_id":     r.req.UserID,
		"provider":    string(r.req.Provider),
		"stage":       string(name),
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Warn("generation.stage", fields)
		return &StageError{Stage: name, Err: err}
	}
	telemetry.Info("generation.stage", fields)
	return nil
}

func (r *run) writeSource(name, source string) (string, error) {
	path := filepath.Join(r.outDir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func (p *Pipeline) makeOutputDir(created time.Time) (string, error) {
	root := p.WorkRoot
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create work root: %w", err)
	}
	name := WorkDirPrefix + created.Format("20060102_150405") + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Pipeline) publish(userID, msg string) {
	if p.Progress != nil {
		p.Progress.Send(userID, msg)
	}
}

func (p *Pipeline) publishError(userID string, err error) {
	if p.Progress != nil {
		p.Progress.SendError(userID, "Error: "+err.Error())
	}
}

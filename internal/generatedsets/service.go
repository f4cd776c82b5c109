package generatedsets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"mathgen-backend/internal/generation"
	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/problemsets"
	"mathgen-backend/internal/progress"
	"mathgen-backend/internal/prompts"
	"mathgen-backend/internal/shared/storage/object"
	"mathgen-backend/internal/shared/telemetry"
)

// ProblemSetReader loads the parent problem set of a generation.
type ProblemSetReader interface {
	Get(ctx context.Context, userID, id string) (problemsets.ProblemSet, error)
}

// Runner executes one generation.
type Runner interface {
	Run(ctx context.Context, req generation.Request) (generation.Result, error)
}

// Service contains business logic for generated sets.
type Service struct {
	Repo        Repo
	ProblemSets ProblemSetReader
	Pipeline    Runner
	Store       object.ObjectStore
	Progress    progress.Publisher
	// KeepWorkDir leaves the pipeline output directory in place after publishing.
	KeepWorkDir bool
}

// GenerateInput carries the caller-chosen generation options.
type GenerateInput struct {
	Provider    llm.Name
	Difficulty  prompts.Difficulty
	NumProblems int
}

// Generate runs the pipeline against the problem set's template and stores the result.
// A record is written only after both PDFs were published.
func (s *Service) Generate(ctx context.Context, userID, problemSetID string, in GenerateInput) (GeneratedSet, error) {
	if s.Repo == nil || s.ProblemSets == nil || s.Pipeline == nil || s.Store == nil {
		return GeneratedSet{}, errors.New("missing dependencies")
	}

	ps, err := s.ProblemSets.Get(ctx, userID, problemSetID)
	if err != nil {
		return GeneratedSet{}, err
	}

	res, err := s.Pipeline.Run(ctx, generation.Request{
		UserID:      userID,
		Template:    ps.LatexTemplate,
		Provider:    in.Provider,
		Difficulty:  in.Difficulty,
		NumProblems: in.NumProblems,
	})
	if err != nil {
		return GeneratedSet{}, err
	}
	if !s.KeepWorkDir {
		defer os.RemoveAll(res.OutputDir)
	}

	set := GeneratedSet{
		ID:             uuid.NewString(),
		ProblemSetID:   ps.ID,
		UserID:         userID,
		Provider:       string(in.Provider),
		Difficulty:     string(in.Difficulty),
		NumProblems:    in.NumProblems,
		ProblemsLatex:  res.ProblemsLatex,
		SolutionsLatex: res.SolutionsLatex,
		CreatedAt:      res.CreatedAt,
	}

	var published []string
	fail := func(err error) (GeneratedSet, error) {
		for _, key := range published {
			if delErr := s.Store.Delete(context.WithoutCancel(ctx), key); delErr != nil && !errors.Is(delErr, object.ErrNotFound) {
				telemetry.Warn("generatedset.cleanup_failed", map[string]any{"key": key, "error": delErr})
			}
		}
		if s.Progress != nil {
			s.Progress.SendError(userID, "Error: "+err.Error())
		}
		telemetry.Error("generatedset.store_failed", map[string]any{
			"user_id":          userID,
			"problem_set_id":   ps.ID,
			"generated_set_id": set.ID,
			"error":            err,
		})
		return GeneratedSet{}, err
	}

	for _, t := range []ArtifactType{TypeProblems, TypeSolutions} {
		src := res.ProblemsPDF
		if t == TypeSolutions {
			src = res.SolutionsPDF
		}
		key := artifactKey(set.ID, t)
		if err := s.publish(ctx, key, src); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrPublish, err))
		}
		published = append(published, key)
	}
	set.ProblemsPDFKey = published[0]
	set.SolutionsPDFKey = published[1]

	if err := s.Repo.Create(ctx, set); err != nil {
		return fail(err)
	}
	telemetry.Info("generatedset.created", map[string]any{
		"user_id":          userID,
		"problem_set_id":   ps.ID,
		"generated_set_id": set.ID,
		"provider":         set.Provider,
		"difficulty":       set.Difficulty,
		"num_problems":     set.NumProblems,
	})
	return set, nil
}

// CheckProblemSet reports problemsets.ErrNotFound when the user owns no such problem set.
func (s *Service) CheckProblemSet(ctx context.Context, userID, problemSetID string) error {
	_, err := s.ProblemSets.Get(ctx, userID, problemSetID)
	return err
}

// List returns the generated sets of one of the user's problem sets, newest first.
func (s *Service) List(ctx context.Context, userID, problemSetID string) ([]GeneratedSet, error) {
	if err := s.CheckProblemSet(ctx, userID, problemSetID); err != nil {
		return nil, err
	}
	return s.Repo.ListByProblemSet(ctx, userID, problemSetID)
}

// Open streams the requested PDF and returns a download file name for it.
func (s *Service) Open(ctx context.Context, userID, id string, t ArtifactType) (io.ReadCloser, string, error) {
	set, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.Store.Open(ctx, set.pdfKey(t))
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return rc, string(t) + ".pdf", nil
}

// Source returns the assembled LaTeX document of the requested half.
func (s *Service) Source(ctx context.Context, userID, id string, t ArtifactType) (string, string, error) {
	set, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return "", "", err
	}
	return set.source(t), string(t) + ".tex", nil
}

func (s *Service) publish(ctx context.Context, key, path string) error {
	if path == "" {
		return errors.New("missing rendered file")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := s.Store.SaveWithKey(ctx, key, "application/pdf", f); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

package problemsets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mathgen-backend/internal/extract"
	"mathgen-backend/internal/latex"
	"mathgen-backend/internal/shared/storage/object"
	"mathgen-backend/internal/shared/telemetry"
)

const maxNameLen = 200

// Transcriber turns a local worksheet PDF into a LaTeX template.
type Transcriber interface {
	Transcribe(ctx context.Context, pdfPath string) (string, error)
}

// Service contains business logic for problem sets.
type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	Counts GeneratedCounter
	// Transcriber is optional; without it uploads fall back to plain text extraction.
	Transcriber Transcriber
	// UploadDir holds spooled uploads while they are transcribed.
	UploadDir string
	Now       func() time.Time
}

// Summary pairs a problem set with its generated-set count.
type Summary struct {
	ProblemSet
	GeneratedSetsCount int
}

// CreateFromTemplate stores a problem set from LaTeX text.
func (s *Service) CreateFromTemplate(ctx context.Context, userID, name, template string) (ProblemSet, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(template) == "" {
		return ProblemSet{}, fmt.Errorf("%w: name and template are required", ErrInvalidInput)
	}
	return s.create(ctx, ProblemSet{UserID: userID, Name: name, LatexTemplate: template})
}

// CreateFromPDF stores the uploaded worksheet and derives the template from it.
// An empty name defaults to the file name without its .pdf extension.
func (s *Service) CreateFromPDF(ctx context.Context, userID, fileName, name string, r io.Reader) (ProblemSet, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return ProblemSet{}, fmt.Errorf("%w: no file selected", ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return ProblemSet{}, ErrNotPDF
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	spooled, err := s.spool(r)
	if err != nil {
		return ProblemSet{}, err
	}
	defer os.Remove(spooled)

	key, err := s.storeOriginal(ctx, userID, fileName, spooled)
	if err != nil {
		return ProblemSet{}, err
	}

	template, err := s.deriveTemplate(ctx, key, spooled)
	if err != nil {
		s.discard(ctx, key)
		return ProblemSet{}, err
	}

	ps, err := s.create(ctx, ProblemSet{UserID: userID, Name: name, LatexTemplate: template, OriginalPDFKey: key})
	if err != nil {
		s.discard(ctx, key)
		return ProblemSet{}, err
	}
	return ps, nil
}

// Get returns one of the user's problem sets.
func (s *Service) Get(ctx context.Context, userID, id string) (ProblemSet, error) {
	if strings.TrimSpace(id) == "" {
		return ProblemSet{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

// List returns the user's problem sets newest first with their generated-set counts.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	sets, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(sets))
	for _, ps := range sets {
		out = append(out, Summary{ProblemSet: ps, GeneratedSetsCount: counts[ps.ID]})
	}
	return out, nil
}

// Count returns the generated-set count of a single problem set.
func (s *Service) Count(ctx context.Context, userID, id string) (int, error) {
	counts, err := s.counts(ctx, userID)
	if err != nil {
		return 0, err
	}
	return counts[id], nil
}

func (s *Service) counts(ctx context.Context, userID string) (map[string]int, error) {
	if s.Counts == nil {
		return map[string]int{}, nil
	}
	return s.Counts.CountByUser(ctx, userID)
}

func (s *Service) create(ctx context.Context, ps ProblemSet) (ProblemSet, error) {
	if len(ps.Name) > maxNameLen {
		return ProblemSet{}, fmt.Errorf("%w: name longer than %d characters", ErrInvalidInput, maxNameLen)
	}
	ps.ID = uuid.NewString()
	ps.CreatedAt = s.now()
	if err := s.Repo.Create(ctx, ps); err != nil {
		return ProblemSet{}, err
	}
	telemetry.Info("problemset.created", map[string]any{
		"user_id":        ps.UserID,
		"problem_set_id": ps.ID,
		"from_pdf":       ps.OriginalPDFKey != "",
	})
	return ps, nil
}

func (s *Service) spool(r io.Reader) (string, error) {
	dir := s.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("spool upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (s *Service) storeOriginal(ctx context.Context, userID, fileName, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key, _, mimeType, err := s.Store.Save(ctx, userID, fileName, f)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	if mimeType != "application/pdf" {
		s.discard(ctx, key)
		return "", ErrNotPDF
	}
	return key, nil
}

// deriveTemplate prefers provider transcription and falls back to extracted text.
func (s *Service) deriveTemplate(ctx context.Context, key, path string) (string, error) {
	if s.Transcriber != nil {
		template, err := s.Transcriber.Transcribe(ctx, path)
		if err == nil && strings.TrimSpace(template) != "" {
			return template, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		telemetry.Warn("problemset.transcribe_failed", map[string]any{"key": key, "error": err})
	}

	text, err := extract.ExtractText(ctx, s.Store, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrUnreadable
	}
	return latex.FallbackTemplate(text), nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("problemset.discard_failed", map[string]any{"key": key, "error": err})
	}
	_ = s.Store.Delete(ctx, key+".extracted.txt")
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

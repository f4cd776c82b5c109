package problemsets

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("problem set not found")
	ErrDuplicate    = errors.New("problem set name already used")
	ErrInvalidInput = errors.New("invalid problem set input")
	ErrNotPDF       = errors.New("only PDF files are allowed")
	ErrUnreadable   = errors.New("could not read a template from the PDF")
)

// Repo persists problem sets. Lookups are always scoped to the owner.
type Repo interface {
	Create(ctx context.Context, ps ProblemSet) error
	Get(ctx context.Context, userID, id string) (ProblemSet, error)
	ListByUser(ctx context.Context, userID string) ([]ProblemSet, error)
}

// GeneratedCounter reports how many generated sets exist per problem set of a user.
type GeneratedCounter interface {
	CountByUser(ctx context.Context, userID string) (map[string]int, error)
}

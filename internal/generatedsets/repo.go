package generatedsets

import "context"

// Repo defines persistence operations for generated sets.
type Repo interface {
	Create(ctx context.Context, set GeneratedSet) error
	GetByID(ctx context.Context, userID, id string) (GeneratedSet, error)
	ListByProblemSet(ctx context.Context, userID, problemSetID string) ([]GeneratedSet, error)
	CountByUser(ctx context.Context, userID string) (map[string]int, error)
}

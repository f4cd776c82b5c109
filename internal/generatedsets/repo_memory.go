package generatedsets

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores generated sets in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]GeneratedSet
	byUser map[string][]GeneratedSet
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]GeneratedSet),
		byUser: make(map[string][]GeneratedSet),
	}
}

// Create stores the generated set.
func (r *MemoryRepo) Create(ctx context.Context, set GeneratedSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[set.ID] = set
	r.byUser[set.UserID] = append(r.byUser[set.UserID], set)
	return nil
}

// GetByID returns a generated set owned by userID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (GeneratedSet, error) {
	if err := ctx.Err(); err != nil {
		return GeneratedSet{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.byID[id]
	if !ok || set.UserID != userID {
		return GeneratedSet{}, ErrNotFound
	}
	return set, nil
}

// ListByProblemSet returns the problem set's generated sets, newest first.
func (r *MemoryRepo) ListByProblemSet(ctx context.Context, userID, problemSetID string) ([]GeneratedSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]GeneratedSet, 0)
	for _, set := range r.byUser[userID] {
		if set.ProblemSetID == problemSetID {
			out = append(out, set)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CountByUser returns generated-set counts keyed by problem set ID.
func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, set := range r.byUser[userID] {
		counts[set.ProblemSetID]++
	}
	return counts, nil
}

var _ Repo = (*MemoryRepo)(nil)

package problemsets

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	sets map[string]ProblemSet
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sets: make(map[string]ProblemSet)}
}

func (r *MemoryRepo) Create(ctx context.Context, ps ProblemSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sets {
		if existing.UserID == ps.UserID && existing.Name == ps.Name {
			return ErrDuplicate
		}
	}
	r.sets[ps.ID] = ps
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (ProblemSet, error) {
	if err := ctx.Err(); err != nil {
		return ProblemSet{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps, ok := r.sets[id]
	if !ok || ps.UserID != userID {
		return ProblemSet{}, ErrNotFound
	}
	return ps, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]ProblemSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ProblemSet
	for _, ps := range r.sets {
		if ps.UserID == userID {
			out = append(out, ps)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

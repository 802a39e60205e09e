package templates

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory template gallery useful for tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Template
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]Template)}
}

func (r *MemoryRepo) Insert(ctx context.Context, t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[t.ID] = t
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[t.ID]; !ok {
		return ErrNotFound
	}
	r.rows[t.ID] = t
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Template, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	return t, ok, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Template, 0, len(r.rows))
	for _, t := range r.rows {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

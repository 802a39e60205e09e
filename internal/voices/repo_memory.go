package voices

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory voice repository useful for tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Voice
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]Voice)}
}

func (r *MemoryRepo) Insert(ctx context.Context, v Voice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[v.ID] = v
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, v Voice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[v.ID]; !ok {
		return ErrNotFound
	}
	r.rows[v.ID] = v
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Voice, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	return v, ok, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Voice, 0, len(r.rows))
	for _, v := range r.rows {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

package settings

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory settings repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Setting
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]Setting)}
}

func (r *MemoryRepo) Get(ctx context.Context, key string) (Setting, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[key]
	return s, ok, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, s Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.Key] = s
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Setting, 0, len(r.rows))
	for _, s := range r.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *MemoryRepo) ListPublic(ctx context.Context) ([]Setting, error) {
	all, _ := r.List(ctx)
	out := all[:0]
	for _, s := range all {
		if s.IsPublic {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, key)
	return nil
}

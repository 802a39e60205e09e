package agents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory agent repository useful for tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Agent
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]Agent)}
}

func (r *MemoryRepo) Insert(ctx context.Context, a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[a.ID] = a
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return ErrNotFound
	}
	r.rows[a.ID] = a
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Agent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	return a, ok, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Agent
	for _, a := range r.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

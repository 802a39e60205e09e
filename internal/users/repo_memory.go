package users

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory user repository useful for tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]User)}
}

func (r *MemoryRepo) Insert(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[u.ID] = u
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.ID]; !ok {
		return ErrNotFound
	}
	r.rows[u.ID] = u
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	return u, ok, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.rows))
	for _, u := range r.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

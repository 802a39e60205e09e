package recordings

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory append-only recording repository useful for tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows []CallRecording
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, rec CallRecording) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rec)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (CallRecording, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.rows {
		if rec.UserID == userID && rec.ID == id {
			return rec, true, nil
		}
	}
	return CallRecording{}, false, nil
}

func (r *MemoryRepo) List(ctx context.Context, q ListQuery) ([]CallRecording, error) {
	all, err := r.ListAllByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	// Skip up to and including the cursor row.
	if q.Cursor != "" {
		for i, rec := range all {
			if rec.ID == q.Cursor {
				all = all[i+1:]
				break
			}
		}
	}

	var out []CallRecording
	for _, rec := range all {
		if q.Sentiment != "" && rec.Sentiment != q.Sentiment {
			continue
		}
		if q.Search != "" &&
			!strings.Contains(rec.PhoneNumber, q.Search) &&
			!strings.Contains(strings.ToLower(rec.Transcript), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListAllByUser(ctx context.Context, userID string) ([]CallRecording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []CallRecording
	for _, rec := range r.rows {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// All returns every stored recording; test helper.
func (r *MemoryRepo) All() []CallRecording {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecording, len(r.rows))
	copy(out, r.rows)
	return out
}

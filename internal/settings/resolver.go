package settings

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PublicSource supplies the public settings snapshot the resolver caches.
// *Service satisfies it.
type PublicSource interface {
	Public(ctx context.Context) (map[string]string, error)
}

// Resolver hands out public configuration values to the call bridge.
//
// It keeps a lazily refreshed snapshot: values change rarely and a stale
// value for one session is harmless, so there is no revalidation beyond the
// TTL and no eager refresh. Resolve never fails; absence of a key is a
// degraded-but-functional path answered by the caller's fallback.
type Resolver struct {
	src PublicSource
	ttl time.Duration
	log *slog.Logger

	clock func() time.Time

	mu        sync.Mutex
	snapshot  map[string]string
	fetchedAt time.Time
}

const defaultResolverTTL = 5 * time.Minute

func NewResolver(src PublicSource, ttl time.Duration, log *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = defaultResolverTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{src: src, ttl: ttl, log: log, clock: time.Now}
}

// Resolve returns the public setting for key, or fallback when the key is
// absent or the snapshot could not be fetched.
func (r *Resolver) Resolve(ctx context.Context, key, fallback string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	if r.snapshot == nil || now.Sub(r.fetchedAt) > r.ttl {
		snap, err := r.src.Public(ctx)
		if err != nil {
			// Serve the stale snapshot if there is one.
			r.log.Warn("public settings refresh failed", "err", err)
		} else {
			r.snapshot = snap
			r.fetchedAt = now
		}
	}

	if v, ok := r.snapshot[key]; ok && v != "" {
		return v
	}
	return fallback
}

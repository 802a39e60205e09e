package settings

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	snap  map[string]string
	err   error
	calls int
}

func (f *fakeSource) Public(ctx context.Context) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func TestResolve_ReturnsValueFromSnapshot(t *testing.T) {
	src := &fakeSource{snap: map[string]string{"vapi.publicKey": "pk_1"}}
	r := NewResolver(src, time.Minute, nil)

	if got := r.Resolve(context.Background(), "vapi.publicKey", "fallback"); got != "pk_1" {
		t.Fatalf("expected pk_1, got %q", got)
	}
}

func TestResolve_FallbackOnMissingKey(t *testing.T) {
	src := &fakeSource{snap: map[string]string{}}
	r := NewResolver(src, time.Minute, nil)

	if got := r.Resolve(context.Background(), "absent", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestResolve_FallbackOnFetchFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}
	r := NewResolver(src, time.Minute, nil)

	if got := r.Resolve(context.Background(), "vapi.publicKey", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestResolve_CachesWithinTTL(t *testing.T) {
	src := &fakeSource{snap: map[string]string{"k": "v"}}
	r := NewResolver(src, time.Minute, nil)

	now := time.Unix(1700000000, 0)
	r.clock = func() time.Time { return now }

	_ = r.Resolve(context.Background(), "k", "")
	_ = r.Resolve(context.Background(), "k", "")
	if src.calls != 1 {
		t.Fatalf("expected single fetch within ttl, got %d", src.calls)
	}

	now = now.Add(2 * time.Minute)
	_ = r.Resolve(context.Background(), "k", "")
	if src.calls != 2 {
		t.Fatalf("expected refetch after ttl, got %d", src.calls)
	}
}

func TestResolve_ServesStaleOnRefreshFailure(t *testing.T) {
	src := &fakeSource{snap: map[string]string{"k": "v"}}
	r := NewResolver(src, time.Minute, nil)

	now := time.Unix(1700000000, 0)
	r.clock = func() time.Time { return now }

	if got := r.Resolve(context.Background(), "k", ""); got != "v" {
		t.Fatalf("expected v, got %q", got)
	}

	src.err = errors.New("db down")
	now = now.Add(2 * time.Minute)
	if got := r.Resolve(context.Background(), "k", "fallback"); got != "v" {
		t.Fatalf("expected stale v, got %q", got)
	}
}

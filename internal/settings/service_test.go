package settings

import (
	"context"
	"errors"
	"testing"
)

const testKey = "unit-test-encryption-key-32-chars!!"

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc, err := NewService(repo, testKey, nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc, repo
}

func TestSetGetRoundtrip(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := svc.Set(ctx, "vapi.publicKey", "pk_123", "voice", true, "admin-1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Stored value must not be plaintext.
	row, ok, _ := repo.Get(ctx, "vapi.publicKey")
	if !ok {
		t.Fatalf("expected row")
	}
	if row.Value == "pk_123" {
		t.Fatalf("value stored in plaintext")
	}

	got, err := svc.Get(ctx, "vapi.publicKey")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "pk_123" {
		t.Fatalf("expected pk_123, got %q", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublicNeverIncludesPrivateKeys(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Set(ctx, "vapi.publicKey", "pk_123", "voice", true, "admin-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := svc.Set(ctx, "vapi.privateKey", "sk_456", "voice", false, "admin-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := svc.Set(ctx, "openai.apiKey", "sk_789", "ai", false, "admin-1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	pub, err := svc.Public(ctx)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if len(pub) != 1 {
		t.Fatalf("expected exactly 1 public setting, got %d", len(pub))
	}
	if pub["vapi.publicKey"] != "pk_123" {
		t.Fatalf("expected public key in map")
	}
	if _, leaked := pub["vapi.privateKey"]; leaked {
		t.Fatalf("private setting leaked")
	}
}

func TestAllGroupsByCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_ = svc.Set(ctx, "vapi.publicKey", "pk", "voice", true, "a")
	_ = svc.Set(ctx, "openai.apiKey", "sk", "ai", false, "a")

	all, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if all["voice"]["vapi.publicKey"].Value != "pk" {
		t.Fatalf("expected voice group")
	}
	if all["ai"]["openai.apiKey"].IsPublic {
		t.Fatalf("expected private flag preserved")
	}
}

func TestUndecryptableRowTreatedAsAbsent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// Simulate a row written with a rotated key.
	_ = repo.Upsert(ctx, Setting{Key: "stale", Value: "deadbeef:deadbeef", Category: "misc", IsPublic: true})

	if _, err := svc.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	pub, err := svc.Public(ctx)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if _, ok := pub["stale"]; ok {
		t.Fatalf("undecryptable row should be skipped")
	}
}

func TestCryptoRejectsMalformedCiphertext(t *testing.T) {
	box, err := newCipherBox(testKey)
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	for _, bad := range []string{"", "nocolon", "zz:zz", "abcd:abcd"} {
		if _, err := box.decrypt(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

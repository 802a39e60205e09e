package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()

	if got.MaxOpenConns != 20 {
		t.Fatalf("MaxOpenConns = %d, want 20", got.MaxOpenConns)
	}
	if got.MaxIdleConns != 10 {
		t.Fatalf("MaxIdleConns = %d, want 10", got.MaxIdleConns)
	}
	if got.ConnMaxLifetime != time.Hour {
		t.Fatalf("ConnMaxLifetime = %s, want 1h", got.ConnMaxLifetime)
	}
	if got.PingTimeout != 5*time.Second {
		t.Fatalf("PingTimeout = %s, want 5s", got.PingTimeout)
	}
}

func TestPostgresPoolDefaultsKeepExplicitValues(t *testing.T) {
	got := PostgresPoolConfig{MaxOpenConns: 3, PingTimeout: time.Second}.withDefaults()

	if got.MaxOpenConns != 3 {
		t.Fatalf("MaxOpenConns = %d, want explicit 3", got.MaxOpenConns)
	}
	if got.PingTimeout != time.Second {
		t.Fatalf("PingTimeout = %s, want explicit 1s", got.PingTimeout)
	}
}

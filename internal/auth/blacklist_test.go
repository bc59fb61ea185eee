package auth

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBlacklistRevocation(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()

	revoked, err := b.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh token reported as revoked")
	}

	if err := b.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	revoked, err = b.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("revoked token not reported")
	}
}

func TestMemoryBlacklistEntryExpires(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()

	if err := b.Revoke(ctx, "jti-1", 10*time.Millisecond); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	revoked, err := b.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("entry should have expired with the token")
	}
}

func TestMemoryBlacklistIgnoresNonPositiveTTL(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()

	if err := b.Revoke(ctx, "jti-1", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	revoked, err := b.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("already-expired token needs no blacklist entry")
	}
}

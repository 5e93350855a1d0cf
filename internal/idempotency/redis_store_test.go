package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), 24*time.Hour)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestLookupUnknownKeyReturnsNil(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	record, err := store.Lookup(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record for unknown key, got %+v", record)
	}
}

func TestReserveClaimsKeyOnce(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()

	claimed, err := store.Reserve(ctx, "key-1", "BL-100")
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected first Reserve to claim the key")
	}

	claimed, err = store.Reserve(ctx, "key-1", "BL-100")
	if err != nil {
		t.Fatalf("second Reserve failed: %v", err)
	}
	if claimed {
		t.Fatal("expected second Reserve to lose the claim")
	}

	record, err := store.Lookup(ctx, "key-1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if record == nil || record.Status != StatusPending {
		t.Fatalf("expected pending record, got %+v", record)
	}
	if record.BaselineID != "BL-100" {
		t.Fatalf("expected baseline BL-100, got %q", record.BaselineID)
	}
}

func TestCommitPreservesTTL(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()

	if _, err := store.Reserve(ctx, "key-2", "BL-200"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	err := store.Commit(ctx, "key-2", "BL-200", Result{
		ProjectID:  "P-aa11bb22",
		HandoffID:  "handoff_1",
		BaselineID: "BL-200",
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	record, err := store.Lookup(ctx, "key-2")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if record == nil || record.Status != StatusCommitted {
		t.Fatalf("expected committed record, got %+v", record)
	}
	if record.Result == nil || record.Result.ProjectID != "P-aa11bb22" {
		t.Fatalf("expected stored result, got %+v", record.Result)
	}

	ttl := s.TTL("idem:key-2")
	if ttl <= 0 || ttl > 24*time.Hour {
		t.Fatalf("expected TTL preserved after commit, got %v", ttl)
	}
}

func TestRecordExpires(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	store, err := NewRedisStore("redis://"+s.Addr(), time.Second)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.Reserve(ctx, "key-3", "BL-300"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	s.FastForward(2 * time.Second)

	record, err := store.Lookup(ctx, "key-3")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected expired key to be gone, got %+v", record)
	}

	// The key can be claimed again after expiry.
	claimed, err := store.Reserve(ctx, "key-3", "BL-300")
	if err != nil {
		t.Fatalf("Reserve after expiry failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected expired key to be claimable")
	}
}

func TestReleaseFreesPendingReservation(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()

	if _, err := store.Reserve(ctx, "key-4", "BL-400"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := store.Release(ctx, "key-4"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	claimed, err := store.Reserve(ctx, "key-4", "BL-400")
	if err != nil {
		t.Fatalf("Reserve after release failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected released key to be claimable")
	}
}

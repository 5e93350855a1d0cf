package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"finz/api/internal/store"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	sessions, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return sessions, s
}

func testUser(id, email, role string) store.User {
	return store.User{ID: id, DisplayName: "Test User", Email: email, Role: role}
}

func TestSaveAndLookupRefreshSession(t *testing.T) {
	sessions, s := setupTestRedis(t)
	defer sessions.Close()
	defer s.Close()

	ctx := context.Background()
	expiresAt := time.Now().Add(24 * time.Hour)

	err := sessions.SaveRefreshSession(ctx, "hash-1", testUser("user_1", "alice@example.com", "pmo"), expiresAt)
	if err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}

	user, err := sessions.LookupRefreshSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LookupRefreshSession failed: %v", err)
	}
	if user.ID != "user_1" {
		t.Errorf("expected user_1, got %s", user.ID)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected email preserved, got %s", user.Email)
	}
	if user.Role != "pmo" {
		t.Errorf("expected role pmo, got %s", user.Role)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	sessions, s := setupTestRedis(t)
	defer sessions.Close()
	defer s.Close()

	ctx := context.Background()
	expiresAt := time.Now().Add(1 * time.Millisecond)

	err := sessions.SaveRefreshSession(ctx, "hash-expired", testUser("user_2", "bob@example.com", "viewer"), expiresAt)
	if err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}

	s.FastForward(2 * time.Millisecond)

	_, err = sessions.LookupRefreshSession(ctx, "hash-expired")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for expired token, got %v", err)
	}
}

func TestLookupNonExistentSession(t *testing.T) {
	sessions, s := setupTestRedis(t)
	defer sessions.Close()
	defer s.Close()

	_, err := sessions.LookupRefreshSession(context.Background(), "no-such-token")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRevokeRefreshSession(t *testing.T) {
	sessions, s := setupTestRedis(t)
	defer sessions.Close()
	defer s.Close()

	ctx := context.Background()
	expiresAt := time.Now().Add(24 * time.Hour)

	err := sessions.SaveRefreshSession(ctx, "hash-revoke", testUser("user_3", "carol@example.com", "finance"), expiresAt)
	if err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}

	if err := sessions.RevokeRefreshSession(ctx, "hash-revoke"); err != nil {
		t.Fatalf("RevokeRefreshSession failed: %v", err)
	}

	_, err = sessions.LookupRefreshSession(ctx, "hash-revoke")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for revoked token, got %v", err)
	}

	// Revoking again is a no-op.
	if err := sessions.RevokeRefreshSession(ctx, "hash-revoke"); err != nil {
		t.Errorf("RevokeRefreshSession for missing token failed: %v", err)
	}
}

func TestSessionIsolation(t *testing.T) {
	sessions, s := setupTestRedis(t)
	defer sessions.Close()
	defer s.Close()

	ctx := context.Background()
	expiresAt := time.Now().Add(24 * time.Hour)

	if err := sessions.SaveRefreshSession(ctx, "hash-a", testUser("user_a", "a@example.com", "viewer"), expiresAt); err != nil {
		t.Fatalf("save session a: %v", err)
	}
	if err := sessions.SaveRefreshSession(ctx, "hash-b", testUser("user_b", "b@example.com", "viewer"), expiresAt); err != nil {
		t.Fatalf("save session b: %v", err)
	}

	if err := sessions.RevokeRefreshSession(ctx, "hash-a"); err != nil {
		t.Fatalf("revoke session a: %v", err)
	}

	if _, err := sessions.LookupRefreshSession(ctx, "hash-a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected session a gone, got %v", err)
	}
	user, err := sessions.LookupRefreshSession(ctx, "hash-b")
	if err != nil {
		t.Fatalf("lookup session b: %v", err)
	}
	if user.ID != "user_b" {
		t.Errorf("expected user_b, got %s", user.ID)
	}
}

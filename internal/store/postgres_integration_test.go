package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// getTestDatabaseURL returns the database URL for integration tests.
// It checks FINZ_TEST_DATABASE_URL first, then falls back to the
// standard Postgres environment variables.
func getTestDatabaseURL(t *testing.T) string {
	t.Helper()

	if url := getenv("FINZ_TEST_DATABASE_URL", ""); url != "" {
		return url
	}

	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	user := getenv("POSTGRES_USER", "finz")
	pass := getenv("POSTGRES_PASSWORD", "finz")
	dbname := getenv("POSTGRES_DB", "finz_test")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + dbname + "?sslmode=disable"
}

func getenv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func openTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := Open(ctx, getTestDatabaseURL(t))
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// Re-applying must be a no-op once recorded in schema_migrations.
	if err := ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	return NewPostgresStore(db)
}

func TestCommitHandoffCreatesAndGuards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	project := Project{
		ID:         "P-aa11bb22",
		BaselineID: "BL-100",
		Name:       "Refinery expansion",
		ClientName: "Acme",
		Currency:   "USD",
		ModTotal:   125000,
		CreatedBy:  "alice@example.com",
		CreatedAt:  now,
	}
	handoff := Handoff{
		ID:         "handoff_1",
		ProjectID:  project.ID,
		BaselineID: "BL-100",
		Payload:    json.RawMessage(`{"baseline_id":"BL-100","mod_total":125000}`),
		Actor:      "alice@example.com",
		CreatedAt:  now,
	}
	if err := s.CommitHandoff(ctx, project, handoff); err != nil {
		t.Fatalf("commit handoff: %v", err)
	}

	got, err := s.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.BaselineID != "BL-100" {
		t.Fatalf("expected baseline BL-100, got %q", got.BaselineID)
	}
	if got.CreatedBy != "alice@example.com" {
		t.Fatalf("expected creator preserved, got %q", got.CreatedBy)
	}

	// Replaying the same baseline onto the same project is allowed.
	handoff.ID = "handoff_2"
	if err := s.CommitHandoff(ctx, project, handoff); err != nil {
		t.Fatalf("commit same-baseline handoff: %v", err)
	}

	// A different baseline on an owned project must be refused.
	project.BaselineID = "BL-200"
	handoff.ID = "handoff_3"
	handoff.BaselineID = "BL-200"
	err = s.CommitHandoff(ctx, project, handoff)
	var owned *BaselineOwnedError
	if !errors.As(err, &owned) {
		t.Fatalf("expected BaselineOwnedError, got %v", err)
	}
	if owned.ExistingBaselineID != "BL-100" || owned.AttemptedBaselineID != "BL-200" {
		t.Fatalf("unexpected collision detail: %+v", owned)
	}
}

func TestFindProjectByBaseline(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	project := Project{ID: "P-cc33dd44", BaselineID: "BL-300", Name: "Plant retrofit", CreatedAt: now}
	handoff := Handoff{ID: "handoff_1", ProjectID: project.ID, BaselineID: "BL-300", Payload: json.RawMessage(`{}`), CreatedAt: now}
	if err := s.CommitHandoff(ctx, project, handoff); err != nil {
		t.Fatalf("commit handoff: %v", err)
	}

	got, err := s.FindProjectByBaseline(ctx, "BL-300")
	if err != nil {
		t.Fatalf("find by baseline: %v", err)
	}
	if got.ID != project.ID {
		t.Fatalf("expected %s, got %s", project.ID, got.ID)
	}

	if _, err := s.FindProjectByBaseline(ctx, "BL-missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for unknown baseline, got %v", err)
	}
}

func TestAuditLogIsAppendOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := AuditEntry{
		Action:    "handoff.committed",
		ProjectID: "P-ee55ff66",
		After:     json.RawMessage(`{"baseline_id":"BL-400"}`),
		Actor:     "alice@example.com",
	}
	if err := s.InsertAuditEntry(ctx, entry); err != nil {
		t.Fatalf("insert audit entry: %v", err)
	}

	_, err := s.DB().ExecContext(ctx, `UPDATE audit_log SET actor='mallory' WHERE project_id='P-ee55ff66'`)
	if err == nil {
		t.Fatal("expected UPDATE on audit_log to be blocked")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.SQLState() != "55000" {
		t.Fatalf("expected SQLSTATE 55000, got %v", err)
	}

	_, err = s.DB().ExecContext(ctx, `DELETE FROM audit_log WHERE project_id='P-ee55ff66'`)
	if err == nil {
		t.Fatal("expected DELETE on audit_log to be blocked")
	}

	entries, err := s.ListAuditEntries(ctx, "P-ee55ff66", 10)
	if err != nil {
		t.Fatalf("list audit entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Actor != "alice@example.com" {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}
}

func TestAcceptBaselineRequiresMatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	project := Project{ID: "P-77889900", BaselineID: "BL-500", Name: "Data center fitout", CreatedAt: now}
	handoff := Handoff{ID: "handoff_1", ProjectID: project.ID, BaselineID: "BL-500", Payload: json.RawMessage(`{}`), CreatedAt: now}
	if err := s.CommitHandoff(ctx, project, handoff); err != nil {
		t.Fatalf("commit handoff: %v", err)
	}

	if err := s.AcceptBaseline(ctx, project.ID, "BL-999", "bob@example.com", now); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows on baseline mismatch, got %v", err)
	}
	if err := s.AcceptBaseline(ctx, project.ID, "BL-500", "bob@example.com", now); err != nil {
		t.Fatalf("accept baseline: %v", err)
	}

	got, err := s.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.AcceptedBy != "bob@example.com" || got.AcceptedAt == nil {
		t.Fatalf("acceptance not recorded: %+v", got)
	}
}

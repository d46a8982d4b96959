package prank

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// newTestStore connects to PRANKCALL_TEST_DATABASE_URL, migrates a fresh
// pool, and truncates prank_sessions between tests. Tests using it are
// skipped when the variable is unset, since there is no embedded
// Postgres to spin up the way the sqlite-backed store tests in the rest
// of the pack do.
func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	dsn := os.Getenv("PRANKCALL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PRANKCALL_TEST_DATABASE_URL not set, skipping Postgres-backed test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE prank_sessions`); err != nil {
		t.Fatalf("truncating prank_sessions: %v", err)
	}
	return store, ctx
}

package prank

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the durable persistence layer for PrankSession rows. It is the
// only component that talks SQL; the check constraint named
// ck_prank_sessions_bridged_requires_call_ids backs I1 as the last line of
// defense, behind the Service's own precondition check.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an already-connected pool. Callers own the pool's
// lifecycle (Close).
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies every embedded migration that has not yet run, tracked
// in a schema_migrations table, in filename order.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("prank: creating schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("prank: reading migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version := strings.TrimSuffix(entry.Name(), ".sql")

		var count int
		if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM schema_migrations WHERE version = $1`, version).Scan(&count); err != nil {
			return fmt.Errorf("prank: checking migration %s: %w", version, err)
		}
		if count > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("prank: reading migration %s: %w", version, err)
		}
		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("prank: applying migration %s: %w", version, err)
		}
		if _, err := s.pool.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("prank: recording migration %s: %w", version, err)
		}
		log.Info().Str("migration", version).Msg("applied prank_sessions migration")
	}
	return nil
}

// Insert writes a freshly created session in state CREATED.
func (s *Store) Insert(ctx context.Context, sess *Session) error {
	const q = `
		INSERT INTO prank_sessions (id, sender_number, recipient_number, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, q, sess.ID, sess.SenderNumber, sess.RecipientNumber, sess.State, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("prank: inserting session: %w", err)
	}
	return nil
}

// Get loads a session by id, returning ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	const q = `
		SELECT id, sender_number, recipient_number, sender_leg_id, recipient_leg_id, state, created_at, updated_at
		FROM prank_sessions WHERE id = $1
	`
	var sess Session
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&sess.ID, &sess.SenderNumber, &sess.RecipientNumber,
		&sess.SenderLegID, &sess.RecipientLegID, &sess.State,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("prank: loading session %s: %w", id, err)
	}
	return &sess, nil
}

// UpdateState persists a new state for the given session and refreshes
// updated_at. Callers (Service) validate the transition graph and I1
// precondition before calling this; the check constraint is a second,
// database-enforced line of defense and surfaces as a generic error here
// if it ever fires, since that indicates a caller bug rather than a
// recoverable condition.
func (s *Store) UpdateState(ctx context.Context, id uuid.UUID, newState State) (time.Time, error) {
	const q = `UPDATE prank_sessions SET state = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`
	var updatedAt time.Time
	if err := s.pool.QueryRow(ctx, q, newState, id).Scan(&updatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("prank: updating session %s state: %w", id, err)
	}
	return updatedAt, nil
}

// SetLegID writes exactly one leg-handle column. I2 (never overwrite a
// set handle) is upheld by the caller (Service/Orchestrator) only ever
// calling this on a leg's first LEG_ANSWERED; the WHERE clause is a belt
// to that suspenders, refusing to clobber an already-set column.
func (s *Store) SetLegID(ctx context.Context, id uuid.UUID, leg Leg, handle string) (time.Time, error) {
	var q string
	switch leg {
	case LegSender:
		q = `UPDATE prank_sessions SET sender_leg_id = $1, updated_at = now() WHERE id = $2 AND sender_leg_id IS NULL RETURNING updated_at`
	case LegRecipient:
		q = `UPDATE prank_sessions SET recipient_leg_id = $1, updated_at = now() WHERE id = $2 AND recipient_leg_id IS NULL RETURNING updated_at`
	default:
		return time.Time{}, &LegError{Leg: string(leg)}
	}
	var updatedAt time.Time
	if err := s.pool.QueryRow(ctx, q, handle, id).Scan(&updatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, fmt.Errorf("prank: session %s not found or %s leg already set: %w", id, leg, ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("prank: setting %s leg id for session %s: %w", leg, id, err)
	}
	return updatedAt, nil
}

// ListFilter narrows an operational ListSessions query.
type ListFilter struct {
	State *State
	Since *time.Time
	Limit int
}

// List returns sessions matching filter, newest first, backed by the
// ix_prank_sessions_state and ix_prank_sessions_created_at indices.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Session, error) {
	q := `
		SELECT id, sender_number, recipient_number, sender_leg_id, recipient_leg_id, state, created_at, updated_at
		FROM prank_sessions WHERE 1=1
	`
	args := []any{}
	if filter.State != nil {
		args = append(args, *filter.State)
		q += fmt.Sprintf(" AND state = $%d", len(args))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		q += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	q += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("prank: listing sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.ID, &sess.SenderNumber, &sess.RecipientNumber,
			&sess.SenderLegID, &sess.RecipientLegID, &sess.State,
			&sess.CreatedAt, &sess.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("prank: scanning session row: %w", err)
		}
		out = append(out, &sess)
	}
	return out, rows.Err()
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	session_id TEXT PRIMARY KEY,
	pending    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps session state in the chat_sessions table.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore creates a store on top of an existing pool.
func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, ttl: ttl}
}

// Migrate creates the sessions table if it does not exist yet
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create chat_sessions table: %w", err)
	}
	return nil
}

// Load returns the state for a session
func (s *PostgresStore) Load(ctx context.Context, sessionID string) (State, error) {
	var (
		pending   string
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT pending, updated_at FROM chat_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&pending, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Idle(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	if s.ttl > 0 && time.Since(updatedAt) > s.ttl {
		return Idle(), nil
	}

	p, err := ParsePending(pending)
	if err != nil {
		return State{}, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return State{Pending: p, UpdatedAt: updatedAt}, nil
}

// Save upserts the state for a session
func (s *PostgresStore) Save(ctx context.Context, sessionID string, state State) error {
	pending := state.Pending
	if pending == "" {
		pending = PendingNone
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (session_id, pending, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (session_id) DO UPDATE SET pending = EXCLUDED.pending, updated_at = EXCLUDED.updated_at`,
		sessionID, string(pending),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

// Clear forgets a session
func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	return nil
}

// Package sqlite persists journeys in a SQL table through database/sql.
//
// The store expects a *sql.DB using a SQLite driver; Open uses the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"

	_ "modernc.org/sqlite"
)

// Store implements ports.JourneyStore on a SQL table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.JourneyStore = (*Store)(nil)

// Open opens dsn with the modernc.org/sqlite driver and prepares the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New initialises the schema in db and returns a Store using it.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS journeys (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			token TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (session_id, name)
		);`,
	)
	return err
}

// Save upserts the token of a journey.
func (s *Store) Save(ctx context.Context, sessionID, journey, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journeys (session_id, name, token, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, name) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		sessionID, journey, token, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save journey: %w", err)
	}
	return nil
}

// Load retrieves the token of a journey.
func (s *Store) Load(ctx context.Context, sessionID, journey string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM journeys WHERE session_id = ? AND name = ?`,
		sessionID, journey,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrJourneyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load journey: %w", err)
	}
	return token, nil
}

// Delete removes a journey.
func (s *Store) Delete(ctx context.Context, sessionID, journey string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM journeys WHERE session_id = ? AND name = ?`,
		sessionID, journey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	return nil
}

// List returns the journeys stored for a session, sorted.
func (s *Store) List(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM journeys WHERE session_id = ? ORDER BY name`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Prune deletes journeys not written for longer than maxAge and returns
// how many were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM journeys WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune journeys: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

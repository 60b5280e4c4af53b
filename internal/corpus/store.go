// Package corpus maintains the local passage corpus: a SQLite-backed store
// of reading texts, seeded once at startup by scraping configured
// vocabulary pages. After seeding the corpus is read-only.
package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tatlingua/speechbot/core/logger"
)

// ErrNotFound indicates the requested passage id does not exist.
var ErrNotFound = errors.New("corpus: passage not found")

// Store provides access to the passage corpus persisted in a SQLite file.
type Store struct {
	db   *sqlx.DB
	path string

	// total caches the passage count; written once by Reload during
	// bootstrap, read-only afterwards.
	total int
}

// Open opens (creating if needed) the corpus database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	start := time.Now()
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		logger.CORPUS.Error("corpus open failed",
			slog.String("event", "corpus.open"),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("corpus open: %w", err)
	}
	// A single writer keeps seeding simple; reads after bootstrap are rare.
	db.SetMaxOpenConns(1)

	logger.CORPUS.Info("corpus opened",
		slog.String("event", "corpus.open"),
		slog.String("path", path),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM texts`); err != nil {
		return 0, fmt.Errorf("corpus count: %w", err)
	}
	return n, nil
}

// Reload refreshes the cached passage count from the database.
func (s *Store) Reload(ctx context.Context) error {
	n, err := s.Count(ctx)
	if err != nil {
		return err
	}
	s.total = n
	return nil
}

// Total returns the cached passage count loaded during bootstrap.
func (s *Store) Total() int {
	return s.total
}

// Text returns the body of the passage with the given id.
func (s *Store) Text(ctx context.Context, id int) (string, error) {
	var body string
	err := s.db.GetContext(ctx, &body, `SELECT body FROM texts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("corpus text %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("corpus text %d: %w", id, err)
	}
	return body, nil
}

// InsertAll stores passages under sequential ids starting at 1, in one
// transaction. It is only called on an empty corpus during seeding.
func (s *Store) InsertAll(ctx context.Context, passages []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("corpus insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, body := range passages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO texts (id, body) VALUES (?, ?)`, i+1, body); err != nil {
			return fmt.Errorf("corpus insert %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("corpus insert: %w", err)
	}
	return nil
}

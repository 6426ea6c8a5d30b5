// Package sqlite provides an embedded store for local runs and tests. It keeps
// the same (client, rule, day) uniqueness guarantee as the Postgres store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"example.com/insights/internal/domain"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Store implements domain.DataStore, domain.ClientLister and domain.NotificationStore.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := path
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == MemoryDSN {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertIfAbsent inserts n unless (client, rule, day) already holds a notification.
func (s *Store) InsertIfAbsent(ctx context.Context, n domain.Notification, day time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, client_id, rule_id, dedup_day, type, priority, title, message, read_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (client_id, rule_id, dedup_day) DO NOTHING`,
		n.ID, n.ClientID, n.RuleID, domain.DayKey(day), n.Type, n.Priority, n.Title, n.Message, string(n.ReadStatus), n.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Insert stores n without a dedup key.
func (s *Store) Insert(ctx context.Context, n domain.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, client_id, rule_id, dedup_day, type, priority, title, message, read_status, created_at)
		 VALUES (?, ?, NULL, NULL, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.ClientID, n.Type, n.Priority, n.Title, n.Message, string(n.ReadStatus), n.CreatedAt.UTC().UnixNano(),
	)
	return err
}

// ListByClient returns notifications newest first.
func (s *Store) ListByClient(ctx context.Context, clientID string, cursor *domain.Cursor, limit int) ([]domain.Notification, *domain.Cursor, error) {
	args := []any{clientID}
	query := `SELECT id, client_id, COALESCE(rule_id, ''), type, priority, title, message, read_status, created_at
		FROM notifications WHERE client_id = ?`
	if cursor != nil {
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		ts := cursor.CreatedAt.UTC().UnixNano()
		args = append(args, ts, ts, cursor.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		var status string
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.ClientID, &n.RuleID, &n.Type, &n.Priority, &n.Title, &n.Message, &status, &createdAt); err != nil {
			return nil, nil, err
		}
		n.ReadStatus = domain.ReadStatus(status)
		n.CreatedAt = time.Unix(0, createdAt).UTC()
		results = append(results, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return results, next, nil
}

// Count returns the number of notifications stored for a client.
func (s *Store) Count(ctx context.Context, clientID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE client_id = ?`, clientID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

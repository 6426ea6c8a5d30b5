package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/events"
)

const insertNotification = `INSERT INTO notifications (id, client_id, rule_id, dedup_day, type, priority, title, message, read_status, created_at)
        VALUES ($1,$2,$3,$4::date,$5,$6,$7,$8,$9,$10)`

// InsertIfAbsent stores n together with its outbox event unless the client
// already has a notification for the rule on day.
func (s *Store) InsertIfAbsent(ctx context.Context, n domain.Notification, day time.Time) (inserted bool, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !inserted {
			tx.Rollback(ctx)
		}
	}()

	var id string
	err = tx.QueryRow(ctx, insertNotification+` ON CONFLICT ON CONSTRAINT notifications_client_rule_day DO NOTHING RETURNING id`,
		n.ID, n.ClientID, n.RuleID, domain.DayKey(day), n.Type, n.Priority, n.Title, n.Message, string(n.ReadStatus), n.CreatedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err = insertOutbox(ctx, tx, n); err != nil {
		return false, err
	}
	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Insert stores an ad hoc notification and its outbox event.
func (s *Store) Insert(ctx context.Context, n domain.Notification) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, insertNotification,
		n.ID, n.ClientID, nil, nil, n.Type, n.Priority, n.Title, n.Message, string(n.ReadStatus), n.CreatedAt,
	); err != nil {
		return err
	}
	if err = insertOutbox(ctx, tx, n); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertOutbox(ctx context.Context, tx pgx.Tx, n domain.Notification) error {
	body, err := json.Marshal(events.NewNotificationCreated(n))
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		"notification",
		n.ID,
		events.NotificationCreatedType,
		events.NotificationTopic,
		n.ClientID,
		body,
		fmt.Sprintf("%s:%s", n.ID, events.NotificationCreatedType),
	)
	return err
}

// ListByClient returns notifications newest first.
func (s *Store) ListByClient(ctx context.Context, clientID string, cursor *domain.Cursor, limit int) ([]domain.Notification, *domain.Cursor, error) {
	args := []any{clientID, limit}
	query := `SELECT id::text, client_id, COALESCE(rule_id, ''), type, priority, title, message, read_status, created_at
        FROM notifications WHERE client_id=$1`

	if cursor != nil {
		query += ` AND (created_at, id) < ($3, $4::uuid)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		var status string
		if err := rows.Scan(&n.ID, &n.ClientID, &n.RuleID, &n.Type, &n.Priority, &n.Title, &n.Message, &status, &n.CreatedAt); err != nil {
			return nil, nil, err
		}
		n.ReadStatus = domain.ReadStatus(status)
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

//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/insights/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("insights"),
		postgrescontainer.WithUsername("insights"),
		postgrescontainer.WithPassword("insights"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool), "migrations must be re-runnable")
	return NewStore(pool), pool
}

func TestInsertIfAbsentSuppressesSameRuleSameDay(t *testing.T) {
	ctx := context.Background()
	store, pool := newTestStore(t)

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	n := domain.Notification{
		ID:         uuid.NewString(),
		ClientID:   "client-1",
		RuleID:     "workout-streak-7",
		Type:       domain.TypeStreak,
		Priority:   domain.PriorityHigh,
		Title:      "Week Warrior",
		Message:    "7 days straight",
		CreatedAt:  day.Add(9 * time.Hour),
		ReadStatus: domain.ReadStatusUnread,
	}

	inserted, err := store.InsertIfAbsent(ctx, n, day)
	require.NoError(t, err)
	require.True(t, inserted)

	dup := n
	dup.ID = uuid.NewString()
	inserted, err = store.InsertIfAbsent(ctx, dup, day)
	require.NoError(t, err)
	require.False(t, inserted)

	next := n
	next.ID = uuid.NewString()
	inserted, err = store.InsertIfAbsent(ctx, next, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.True(t, inserted)

	var outboxRows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE topic='notification_events'`).Scan(&outboxRows))
	require.Equal(t, 2, outboxRows, "suppressed inserts must not publish")

	list, cursor, err := store.ListByClient(ctx, "client-1", nil, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, next.ID, list[0].ID)
	require.NotNil(t, cursor)

	list, _, err = store.ListByClient(ctx, "client-1", cursor, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, n.ID, list[0].ID)
}

func TestAdHocInsertsNeverConflict(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Insert(ctx, domain.Notification{
			ID:         uuid.NewString(),
			ClientID:   "client-2",
			Type:       domain.TypeAdHoc,
			Priority:   domain.PriorityMedium,
			Title:      "Message from your coach",
			Message:    "See you Monday",
			CreatedAt:  time.Now().UTC(),
			ReadStatus: domain.ReadStatusUnread,
		}))
	}

	list, _, err := store.ListByClient(ctx, "client-2", nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Empty(t, list[0].RuleID)
}

func TestWindowedReads(t *testing.T) {
	ctx := context.Background()
	store, pool := newTestStore(t)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	to := time.Date(2024, 5, 8, 0, 0, 0, 0, loc)

	_, err = pool.Exec(ctx, `INSERT INTO workout_logs (client_id, logged_at, is_pr) VALUES
        ('c', $1, false), ('c', $2, true), ('c', $3, false), ('other', $2, false)`,
		from.Add(-time.Minute), from.Add(time.Hour), to)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO weight_logs (client_id, day, value) VALUES
        ('c', '2024-04-30', 80), ('c', '2024-05-01', 79.5), ('c', '2024-05-07', 79), ('c', '2024-05-08', 78.5)`)
	require.NoError(t, err)

	workouts, err := store.WorkoutLogs(ctx, "c", from, to)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	require.True(t, workouts[0].IsPR)

	weights, err := store.WeightLogs(ctx, "c", from, to)
	require.NoError(t, err)
	require.Len(t, weights, 2)
	require.Equal(t, 79.5, weights[0].Value)
	require.Equal(t, "2024-05-01", domain.DayKey(weights[0].Date))

	clients, err := store.ActiveClients(ctx, from)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "other"}, clients)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

package domain

import (
	"context"
	"time"
)

// DataStore answers read-only, time-windowed queries over a client's logs.
// Windows are half-open: from <= t < to.
type DataStore interface {
	WorkoutLogs(ctx context.Context, clientID string, from, to time.Time) ([]WorkoutLog, error)
	MealTracking(ctx context.Context, clientID string, from, to time.Time) ([]MealTrackingEntry, error)
	MealLogs(ctx context.Context, clientID string, from, to time.Time) ([]MealLog, error)
	HydrationLogs(ctx context.Context, clientID string, from, to time.Time) ([]HydrationLog, error)
	WeightLogs(ctx context.Context, clientID string, from, to time.Time) ([]WeightLog, error)
	RecentCheckIns(ctx context.Context, clientID string, limit int) ([]CheckIn, error)
}

// ClientLister enumerates clients with recent activity for batch sweeps.
type ClientLister interface {
	ActiveClients(ctx context.Context, since time.Time) ([]string, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	// InsertIfAbsent atomically inserts n unless a notification already exists for
	// (n.ClientID, n.RuleID, day). It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, n Notification, day time.Time) (bool, error)
	// Insert stores a notification outside the dedup space.
	Insert(ctx context.Context, n Notification) error
	// ListByClient returns notifications newest first.
	ListByClient(ctx context.Context, clientID string, cursor *Cursor, limit int) ([]Notification, *Cursor, error)
}

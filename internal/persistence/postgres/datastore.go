package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/insights/internal/domain"
)

// Date columns are compared against the civil dates of the window bounds,
// which arrive as local-midnight instants.
func dayBounds(from, to time.Time) (string, string) {
	return from.Format(time.DateOnly), to.Format(time.DateOnly)
}

// WorkoutLogs returns workouts logged in [from, to), oldest first.
func (s *Store) WorkoutLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.WorkoutLog, error) {
	const query = `SELECT logged_at, is_pr FROM workout_logs
        WHERE client_id=$1 AND logged_at >= $2 AND logged_at < $3
        ORDER BY logged_at`

	rows, err := s.pool.Query(ctx, query, clientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.WorkoutLog
	for rows.Next() {
		l := domain.WorkoutLog{ClientID: clientID}
		if err := rows.Scan(&l.Timestamp, &l.IsPR); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// MealTracking returns daily nutrition totals for the days in [from, to).
func (s *Store) MealTracking(ctx context.Context, clientID string, from, to time.Time) ([]domain.MealTrackingEntry, error) {
	const query = `SELECT day, calories, calorie_goal, protein, protein_goal, carbs, carbs_goal, fat, fat_goal
        FROM meal_tracking
        WHERE client_id=$1 AND day >= $2::date AND day < $3::date
        ORDER BY day`

	lo, hi := dayBounds(from, to)
	rows, err := s.pool.Query(ctx, query, clientID, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.MealTrackingEntry
	for rows.Next() {
		e := domain.MealTrackingEntry{ClientID: clientID}
		if err := rows.Scan(&e.Date, &e.Calories, &e.CalorieGoal, &e.Protein, &e.ProteinGoal, &e.Carbs, &e.CarbsGoal, &e.Fat, &e.FatGoal); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MealLogs returns individual meals logged in [from, to).
func (s *Store) MealLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.MealLog, error) {
	const query = `SELECT logged_at, meal_type FROM meal_logs
        WHERE client_id=$1 AND logged_at >= $2 AND logged_at < $3
        ORDER BY logged_at`

	rows, err := s.pool.Query(ctx, query, clientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.MealLog
	for rows.Next() {
		l := domain.MealLog{ClientID: clientID}
		if err := rows.Scan(&l.LoggedAt, &l.MealType); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// HydrationLogs returns water intake entries for the days in [from, to).
func (s *Store) HydrationLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.HydrationLog, error) {
	const query = `SELECT day, amount_ml FROM hydration_logs
        WHERE client_id=$1 AND day >= $2::date AND day < $3::date
        ORDER BY day`

	lo, hi := dayBounds(from, to)
	rows, err := s.pool.Query(ctx, query, clientID, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.HydrationLog
	for rows.Next() {
		l := domain.HydrationLog{ClientID: clientID}
		if err := rows.Scan(&l.Date, &l.AmountML); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// WeightLogs returns weigh-ins for the days in [from, to).
func (s *Store) WeightLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.WeightLog, error) {
	const query = `SELECT day, value FROM weight_logs
        WHERE client_id=$1 AND day >= $2::date AND day < $3::date
        ORDER BY day`

	lo, hi := dayBounds(from, to)
	rows, err := s.pool.Query(ctx, query, clientID, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.WeightLog
	for rows.Next() {
		l := domain.WeightLog{ClientID: clientID}
		if err := rows.Scan(&l.Date, &l.Value); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RecentCheckIns returns up to limit check-ins, newest first.
func (s *Store) RecentCheckIns(ctx context.Context, clientID string, limit int) ([]domain.CheckIn, error) {
	const query = `SELECT created_at FROM check_ins WHERE client_id=$1 ORDER BY created_at DESC LIMIT $2`

	rows, err := s.pool.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkIns []domain.CheckIn
	for rows.Next() {
		c := domain.CheckIn{ClientID: clientID}
		if err := rows.Scan(&c.CreatedAt); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

// ActiveClients lists clients with any log at or after since.
func (s *Store) ActiveClients(ctx context.Context, since time.Time) ([]string, error) {
	const query = `SELECT client_id FROM workout_logs WHERE logged_at >= $1
        UNION SELECT client_id FROM meal_logs WHERE logged_at >= $1
        UNION SELECT client_id FROM check_ins WHERE created_at >= $1
        UNION SELECT client_id FROM meal_tracking WHERE day >= $2::date
        UNION SELECT client_id FROM hydration_logs WHERE day >= $2::date
        UNION SELECT client_id FROM weight_logs WHERE day >= $2::date
        ORDER BY client_id`

	rows, err := s.pool.Query(ctx, query, since, since.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

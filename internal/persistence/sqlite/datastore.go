package sqlite

import (
	"context"
	"database/sql"
	"time"

	"example.com/insights/internal/domain"
)

// dayBounds converts a window of local-midnight instants into the YYYY-MM-DD
// keys stored in date columns.
func dayBounds(from, to time.Time) (string, string) {
	return from.Format(time.DateOnly), to.Format(time.DateOnly)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// WorkoutLogs returns workouts logged in [from, to), oldest first.
func (s *Store) WorkoutLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.WorkoutLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT logged_at, is_pr FROM workout_logs
		 WHERE client_id = ? AND logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at`,
		clientID, from.UTC().UnixNano(), to.UTC().UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.WorkoutLog
	for rows.Next() {
		var ts int64
		var pr bool
		if err := rows.Scan(&ts, &pr); err != nil {
			return nil, err
		}
		logs = append(logs, domain.WorkoutLog{ClientID: clientID, Timestamp: time.Unix(0, ts).UTC(), IsPR: pr})
	}
	return logs, rows.Err()
}

// MealTracking returns daily nutrition totals for the days in [from, to).
func (s *Store) MealTracking(ctx context.Context, clientID string, from, to time.Time) ([]domain.MealTrackingEntry, error) {
	lo, hi := dayBounds(from, to)
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, calories, calorie_goal, protein, protein_goal, carbs, carbs_goal, fat, fat_goal
		 FROM meal_tracking
		 WHERE client_id = ? AND day >= ? AND day < ?
		 ORDER BY day`,
		clientID, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.MealTrackingEntry
	for rows.Next() {
		var day string
		e := domain.MealTrackingEntry{ClientID: clientID}
		if err := rows.Scan(&day, &e.Calories, &e.CalorieGoal, &e.Protein, &e.ProteinGoal, &e.Carbs, &e.CarbsGoal, &e.Fat, &e.FatGoal); err != nil {
			return nil, err
		}
		if e.Date, err = parseDay(day); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MealLogs returns individual meals logged in [from, to).
func (s *Store) MealLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.MealLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT logged_at, meal_type FROM meal_logs
		 WHERE client_id = ? AND logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at`,
		clientID, from.UTC().UnixNano(), to.UTC().UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.MealLog
	for rows.Next() {
		var ts int64
		l := domain.MealLog{ClientID: clientID}
		if err := rows.Scan(&ts, &l.MealType); err != nil {
			return nil, err
		}
		l.LoggedAt = time.Unix(0, ts).UTC()
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// HydrationLogs returns water intake entries for the days in [from, to).
func (s *Store) HydrationLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.HydrationLog, error) {
	lo, hi := dayBounds(from, to)
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, amount_ml FROM hydration_logs
		 WHERE client_id = ? AND day >= ? AND day < ?
		 ORDER BY day`,
		clientID, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.HydrationLog
	for rows.Next() {
		var day string
		l := domain.HydrationLog{ClientID: clientID}
		if err := rows.Scan(&day, &l.AmountML); err != nil {
			return nil, err
		}
		if l.Date, err = parseDay(day); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// WeightLogs returns weigh-ins for the days in [from, to).
func (s *Store) WeightLogs(ctx context.Context, clientID string, from, to time.Time) ([]domain.WeightLog, error) {
	lo, hi := dayBounds(from, to)
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, value FROM weight_logs
		 WHERE client_id = ? AND day >= ? AND day < ?
		 ORDER BY day`,
		clientID, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.WeightLog
	for rows.Next() {
		var day string
		l := domain.WeightLog{ClientID: clientID}
		if err := rows.Scan(&day, &l.Value); err != nil {
			return nil, err
		}
		if l.Date, err = parseDay(day); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RecentCheckIns returns up to limit check-ins, newest first.
func (s *Store) RecentCheckIns(ctx context.Context, clientID string, limit int) ([]domain.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at FROM check_ins WHERE client_id = ? ORDER BY created_at DESC LIMIT ?`,
		clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkIns []domain.CheckIn
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, domain.CheckIn{ClientID: clientID, CreatedAt: time.Unix(0, ts).UTC()})
	}
	return checkIns, rows.Err()
}

// ActiveClients lists clients with any log at or after since.
func (s *Store) ActiveClients(ctx context.Context, since time.Time) ([]string, error) {
	ts := since.UTC().UnixNano()
	day := since.Format(time.DateOnly)
	rows, err := s.db.QueryContext(ctx,
		`SELECT client_id FROM workout_logs WHERE logged_at >= ?
		 UNION SELECT client_id FROM meal_logs WHERE logged_at >= ?
		 UNION SELECT client_id FROM check_ins WHERE created_at >= ?
		 UNION SELECT client_id FROM meal_tracking WHERE day >= ?
		 UNION SELECT client_id FROM hydration_logs WHERE day >= ?
		 UNION SELECT client_id FROM weight_logs WHERE day >= ?
		 ORDER BY client_id`,
		ts, ts, ts, day, day, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

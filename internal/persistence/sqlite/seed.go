package sqlite

import (
	"context"
	"time"

	"example.com/insights/internal/domain"
)

// Dataset is a client history as loaded by insightctl seed.
type Dataset struct {
	Workouts     []domain.WorkoutLog        `json:"workouts"`
	MealTracking []domain.MealTrackingEntry `json:"meal_tracking"`
	Meals        []domain.MealLog           `json:"meals"`
	Hydration    []domain.HydrationLog      `json:"hydration"`
	Weights      []domain.WeightLog         `json:"weights"`
	CheckIns     []domain.CheckIn           `json:"check_ins"`
}

// Load writes every record of d in a single transaction.
func (s *Store) Load(ctx context.Context, d Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, w := range d.Workouts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workout_logs (client_id, logged_at, is_pr) VALUES (?, ?, ?)`,
			w.ClientID, w.Timestamp.UTC().UnixNano(), w.IsPR); err != nil {
			return err
		}
	}
	for _, m := range d.MealTracking {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meal_tracking (client_id, day, calories, calorie_goal, protein, protein_goal, carbs, carbs_goal, fat, fat_goal)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (client_id, day) DO UPDATE SET
			   calories = excluded.calories, calorie_goal = excluded.calorie_goal,
			   protein = excluded.protein, protein_goal = excluded.protein_goal,
			   carbs = excluded.carbs, carbs_goal = excluded.carbs_goal,
			   fat = excluded.fat, fat_goal = excluded.fat_goal`,
			m.ClientID, dayKey(m.Date), m.Calories, m.CalorieGoal, m.Protein, m.ProteinGoal, m.Carbs, m.CarbsGoal, m.Fat, m.FatGoal); err != nil {
			return err
		}
	}
	for _, m := range d.Meals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meal_logs (client_id, logged_at, meal_type) VALUES (?, ?, ?)`,
			m.ClientID, m.LoggedAt.UTC().UnixNano(), m.MealType); err != nil {
			return err
		}
	}
	for _, h := range d.Hydration {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hydration_logs (client_id, day, amount_ml) VALUES (?, ?, ?)`,
			h.ClientID, dayKey(h.Date), h.AmountML); err != nil {
			return err
		}
	}
	for _, w := range d.Weights {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO weight_logs (client_id, day, value) VALUES (?, ?, ?)`,
			w.ClientID, dayKey(w.Date), w.Value); err != nil {
			return err
		}
	}
	for _, c := range d.CheckIns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO check_ins (client_id, created_at) VALUES (?, ?)`,
			c.ClientID, c.CreatedAt.UTC().UnixNano()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// dayKey keeps the date as written, independent of the value's zone.
func dayKey(t time.Time) string {
	return domain.DayKey(domain.CivilDay(t, nil))
}

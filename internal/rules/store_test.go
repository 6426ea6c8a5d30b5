package rules

import (
	"context"
	"time"

	"example.com/insights/internal/domain"
)

var testNow = time.Date(2024, time.June, 7, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func at(month time.Month, d, hour int) time.Time {
	return time.Date(2024, month, d, hour, 0, 0, 0, time.UTC)
}

// stubStore filters in-memory logs the way the SQL stores do.
type stubStore struct {
	workouts  []domain.WorkoutLog
	tracking  []domain.MealTrackingEntry
	meals     []domain.MealLog
	hydration []domain.HydrationLog
	weights   []domain.WeightLog
	checkIns  []domain.CheckIn

	failWorkouts bool
	failTracking bool
	failMeals    bool
}

var errStoreDown = &domain.DataAccessError{Query: "stub", Err: context.DeadlineExceeded}

func inInstants(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func inDays(d, from, to time.Time) bool {
	key := domain.DayKey(d)
	return key >= from.Format(time.DateOnly) && key < to.Format(time.DateOnly)
}

func (s *stubStore) WorkoutLogs(_ context.Context, _ string, from, to time.Time) ([]domain.WorkoutLog, error) {
	if s.failWorkouts {
		return nil, errStoreDown
	}
	var out []domain.WorkoutLog
	for _, w := range s.workouts {
		if inInstants(w.Timestamp, from, to) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *stubStore) MealTracking(_ context.Context, _ string, from, to time.Time) ([]domain.MealTrackingEntry, error) {
	if s.failTracking {
		return nil, errStoreDown
	}
	var out []domain.MealTrackingEntry
	for _, e := range s.tracking {
		if inDays(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubStore) MealLogs(_ context.Context, _ string, from, to time.Time) ([]domain.MealLog, error) {
	if s.failMeals {
		return nil, errStoreDown
	}
	var out []domain.MealLog
	for _, m := range s.meals {
		if inInstants(m.LoggedAt, from, to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubStore) HydrationLogs(_ context.Context, _ string, from, to time.Time) ([]domain.HydrationLog, error) {
	var out []domain.HydrationLog
	for _, h := range s.hydration {
		if inDays(h.Date, from, to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *stubStore) WeightLogs(_ context.Context, _ string, from, to time.Time) ([]domain.WeightLog, error) {
	var out []domain.WeightLog
	for _, w := range s.weights {
		if inDays(w.Date, from, to) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *stubStore) RecentCheckIns(_ context.Context, _ string, limit int) ([]domain.CheckIn, error) {
	if len(s.checkIns) > limit {
		return s.checkIns[:limit], nil
	}
	return s.checkIns, nil
}

func ruleIDs(insights []domain.Insight) []string {
	ids := make([]string, 0, len(insights))
	for _, in := range insights {
		ids = append(ids, in.Rule.ID)
	}
	return ids
}

func find(insights []domain.Insight, ruleID string) (domain.Insight, bool) {
	for _, in := range insights {
		if in.Rule.ID == ruleID {
			return in, true
		}
	}
	return domain.Insight{}, false
}

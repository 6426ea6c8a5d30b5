package rules

import (
	"context"

	"example.com/insights/internal/domain"
)

const (
	volumeWindowDays = 7
	minWeeklyVolume  = 3
)

// WorkoutRules holds batch workout analysis. Personal records are reported by
// the trigger path as they happen, so this processor only tracks volume.
type WorkoutRules struct {
	base
}

// NewWorkoutRules constructs the workout processor.
func NewWorkoutRules(store domain.DataStore, opts ...Option) *WorkoutRules {
	return &WorkoutRules{base: newBase(store, opts)}
}

// Name identifies the processor in logs and metrics.
func (r *WorkoutRules) Name() string { return "workout" }

// Analyze runs all workout checks concurrently.
func (r *WorkoutRules) Analyze(ctx context.Context, clientID string) ([]domain.Insight, error) {
	return r.runChecks(ctx, r.Name(), clientID, []check{
		{name: "weekly_volume", run: r.checkWeeklyVolume},
	})
}

func (r *WorkoutRules) checkWeeklyVolume(ctx context.Context, clientID string) ([]domain.Insight, error) {
	from, to := r.windowEnding(volumeWindowDays, volumeWindowDays)
	prior, err := r.store.WorkoutLogs(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("workout_logs", clientID, err)
	}
	from, to = r.window(volumeWindowDays)
	current, err := r.store.WorkoutLogs(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("workout_logs", clientID, err)
	}
	if len(current) >= minWeeklyVolume && len(current) > len(prior) {
		return one(WorkoutVolumeUp, map[string]any{"count": len(current), "previous": len(prior)}), nil
	}
	return nil, nil
}

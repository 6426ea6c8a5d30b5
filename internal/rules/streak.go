package rules

import (
	"context"
	"sort"
	"time"

	"example.com/insights/internal/domain"
)

const (
	workoutStreakWindowDays  = 90
	proteinStreakWindowDays  = 30
	hydrationWindowDays      = 30
	weightLogWindowDays      = 28
	checkInSampleSize        = 10
	hydrationTargetML        = 2000
	minProteinStreak         = 5
	minHydrationStreak       = 3
	minCheckInWeeks          = 4
	minWeightLogsPerWeek     = 3
	minConsistentWeightWeeks = 2
	comebackMinGapDays       = 3
	comebackMaxGapDays       = 5
)

var workoutMilestones = map[int]domain.Rule{
	3:  WorkoutStreak3,
	7:  WorkoutStreak7,
	14: WorkoutStreak14,
	30: WorkoutStreak30,
}

// CalculateStreak returns the number of consecutive calendar days ending at the
// most recent date. Dates may be unordered and repeat; the walk stops at the
// first gap of more than one day. Callers check recency separately.
func CalculateStreak(dates []time.Time) int {
	days := distinctDaysDesc(dates)
	if len(days) == 0 {
		return 0
	}
	streak := 1
	for i := 1; i < len(days); i++ {
		if domain.DaysBetween(days[i], days[i-1]) > 1 {
			break
		}
		streak++
	}
	return streak
}

// ISOWeek returns the ISO-8601 year and week of t; week 1 is the week holding
// the year's first Thursday.
func ISOWeek(t time.Time) (year, week int) {
	return t.ISOWeek()
}

func distinctDaysDesc(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := domain.CivilDay(d, nil)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// StreakRules detects consecutive-day and weekly consistency patterns.
type StreakRules struct {
	base
}

// NewStreakRules constructs the streak processor.
func NewStreakRules(store domain.DataStore, opts ...Option) *StreakRules {
	return &StreakRules{base: newBase(store, opts)}
}

// Name identifies the processor in logs and metrics.
func (r *StreakRules) Name() string { return "streak" }

// Analyze runs all streak checks concurrently.
func (r *StreakRules) Analyze(ctx context.Context, clientID string) ([]domain.Insight, error) {
	return r.runChecks(ctx, r.Name(), clientID, []check{
		{name: "workout_streak", run: r.checkWorkoutStreak},
		{name: "broken_streak", run: r.checkBrokenStreak},
		{name: "protein_streak", run: r.checkProteinStreak},
		{name: "hydration_streak", run: r.checkHydrationStreak},
		{name: "checkin_consistency", run: r.checkCheckInConsistency},
		{name: "weight_log_consistency", run: r.checkWeightLogConsistency},
	})
}

func (r *StreakRules) workoutDays(ctx context.Context, clientID string) ([]time.Time, error) {
	from, to := r.window(workoutStreakWindowDays)
	logs, err := r.store.WorkoutLogs(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("workout_logs", clientID, err)
	}
	days := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		days = append(days, r.stamp(l.Timestamp))
	}
	return days, nil
}

func (r *StreakRules) checkWorkoutStreak(ctx context.Context, clientID string) ([]domain.Insight, error) {
	days, err := r.workoutDays(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !r.alive(days) {
		return nil, nil
	}

	streak := CalculateStreak(days)
	if rule, ok := workoutMilestones[streak]; ok {
		return one(rule, map[string]any{"days": streak}), nil
	}
	if streak >= 3 && streak%10 == 0 {
		return one(WorkoutStreakMilestone, map[string]any{"days": streak}), nil
	}
	return nil, nil
}

func (r *StreakRules) checkBrokenStreak(ctx context.Context, clientID string) ([]domain.Insight, error) {
	days, err := r.workoutDays(ctx, clientID)
	if err != nil {
		return nil, err
	}
	last, ok := latest(days)
	if !ok {
		return nil, nil
	}
	gap := domain.DaysBetween(last, r.today())
	if gap >= comebackMinGapDays && gap <= comebackMaxGapDays {
		return one(ComebackNudge, map[string]any{"days": gap}), nil
	}
	return nil, nil
}

func (r *StreakRules) checkProteinStreak(ctx context.Context, clientID string) ([]domain.Insight, error) {
	from, to := r.window(proteinStreakWindowDays)
	entries, err := r.store.MealTracking(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("meal_tracking", clientID, err)
	}
	var hits []time.Time
	for _, e := range entries {
		if e.ProteinGoalHit() {
			hits = append(hits, domain.CivilDay(e.Date, nil))
		}
	}
	if !r.alive(hits) {
		return nil, nil
	}
	if streak := CalculateStreak(hits); streak >= minProteinStreak {
		return one(ProteinStreak, map[string]any{"days": streak}), nil
	}
	return nil, nil
}

func (r *StreakRules) checkHydrationStreak(ctx context.Context, clientID string) ([]domain.Insight, error) {
	from, to := r.window(hydrationWindowDays)
	logs, err := r.store.HydrationLogs(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("hydration_logs", clientID, err)
	}
	totals := make(map[time.Time]float64)
	for _, l := range logs {
		totals[domain.CivilDay(l.Date, nil)] += l.AmountML
	}
	var met []time.Time
	for day, total := range totals {
		if total >= hydrationTargetML {
			met = append(met, day)
		}
	}
	if !r.alive(met) {
		return nil, nil
	}
	if streak := CalculateStreak(met); streak >= minHydrationStreak {
		return one(HydrationStreak, map[string]any{"days": streak, "target_ml": hydrationTargetML}), nil
	}
	return nil, nil
}

func (r *StreakRules) checkCheckInConsistency(ctx context.Context, clientID string) ([]domain.Insight, error) {
	checkIns, err := r.store.RecentCheckIns(ctx, clientID, checkInSampleSize)
	if err != nil {
		return nil, dataErr("check_ins", clientID, err)
	}
	if len(checkIns) < minCheckInWeeks {
		return nil, nil
	}
	if weeks := distinctISOWeeks(checkIns, r.loc); weeks >= minCheckInWeeks {
		return one(CheckInConsistency, map[string]any{"weeks": weeks}), nil
	}
	return nil, nil
}

type isoWeek struct{ year, week int }

func distinctISOWeeks(checkIns []domain.CheckIn, loc *time.Location) int {
	weeks := make(map[isoWeek]struct{}, len(checkIns))
	for _, c := range checkIns {
		y, w := ISOWeek(c.CreatedAt.In(loc))
		weeks[isoWeek{y, w}] = struct{}{}
	}
	return len(weeks)
}

func (r *StreakRules) checkWeightLogConsistency(ctx context.Context, clientID string) ([]domain.Insight, error) {
	from, to := r.window(weightLogWindowDays)
	logs, err := r.store.WeightLogs(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("weight_logs", clientID, err)
	}
	if len(logs) < minWeightLogsPerWeek*minConsistentWeightWeeks {
		return nil, nil
	}
	perWeek := make(map[isoWeek]int)
	for _, l := range logs {
		y, w := ISOWeek(domain.CivilDay(l.Date, nil))
		perWeek[isoWeek{y, w}]++
	}
	consistent := 0
	for _, n := range perWeek {
		if n >= minWeightLogsPerWeek {
			consistent++
		}
	}
	if consistent >= minConsistentWeightWeeks {
		return one(WeightLogConsistency, map[string]any{"weeks": consistent}), nil
	}
	return nil, nil
}

// alive reports whether the most recent day is today or yesterday.
func (r *StreakRules) alive(days []time.Time) bool {
	last, ok := latest(days)
	if !ok {
		return false
	}
	return domain.DaysBetween(last, r.today()) <= 1
}

func latest(days []time.Time) (time.Time, bool) {
	if len(days) == 0 {
		return time.Time{}, false
	}
	last := days[0]
	for _, d := range days[1:] {
		if d.After(last) {
			last = d
		}
	}
	return last, true
}

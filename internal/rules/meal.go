package rules

import (
	"context"
	"math"
	"strings"
	"time"

	"example.com/insights/internal/domain"
)

const (
	macroWindowDays      = 7
	timingWindowDays     = 3
	calorieWindowDays    = 7
	mealPrepWindowDays   = 28
	cheatWindowDays      = 14
	trendWindowDays      = 7
	minMacroRecords      = 3
	minTimingLogs        = 3
	minCalorieRecords    = 5
	minCheatRecords      = 3
	minTrendRecords      = 3
	minPrepSundayLogs    = 3
	minGoodMealsPerDay   = 4
	maxGoodMealsPerDay   = 6
	minSkippedBreakfasts = 2
	lowProteinRatio      = 0.80
	macroTolerance       = 0.10
	calorieStdDevRatio   = 0.10
	undereatingRatio     = 0.75
	cheatDayRatio        = 1.2
	balancedCheatDays    = 2
	maxCheatDays         = 4
	levelUpHitRate       = 0.80
	prepLogsPerWeek      = 3
)

// MealRules evaluates nutrition compliance, timing and trend patterns.
type MealRules struct {
	base
}

// NewMealRules constructs the meal processor.
func NewMealRules(store domain.DataStore, opts ...Option) *MealRules {
	return &MealRules{base: newBase(store, opts)}
}

// Name identifies the processor in logs and metrics.
func (r *MealRules) Name() string { return "meal" }

// Analyze runs all meal checks concurrently.
func (r *MealRules) Analyze(ctx context.Context, clientID string) ([]domain.Insight, error) {
	return r.runChecks(ctx, r.Name(), clientID, []check{
		{name: "macro_balance", run: r.checkMacroBalance},
		{name: "meal_timing", run: r.checkMealTiming},
		{name: "calorie_consistency", run: r.checkCalorieConsistency},
		{name: "meal_prep", run: r.checkMealPrep},
		{name: "cheat_meals", run: r.checkCheatMeals},
		{name: "improvement_trend", run: r.checkImprovementTrend},
	})
}

func (r *MealRules) tracking(ctx context.Context, clientID string, days, offset int) ([]domain.MealTrackingEntry, error) {
	from, to := r.windowEnding(days, offset)
	entries, err := r.store.MealTracking(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("meal_tracking", clientID, err)
	}
	return entries, nil
}

func (r *MealRules) checkMacroBalance(ctx context.Context, clientID string) ([]domain.Insight, error) {
	entries, err := r.tracking(ctx, clientID, macroWindowDays, 0)
	if err != nil {
		return nil, err
	}
	if len(entries) < minMacroRecords {
		return nil, nil
	}

	var protein, proteinGoal, carbs, carbsGoal, fat, fatGoal float64
	for _, e := range entries {
		protein += e.Protein
		proteinGoal += e.ProteinGoal
		carbs += e.Carbs
		carbsGoal += e.CarbsGoal
		fat += e.Fat
		fatGoal += e.FatGoal
	}
	if proteinGoal <= 0 {
		return nil, nil
	}

	// Averages share the same denominator, so ratios of sums equal ratios of averages.
	if protein < lowProteinRatio*proteinGoal {
		percentage := int(math.Round(protein / proteinGoal * 100))
		return one(LowProteinAlert, map[string]any{"percentage": percentage}), nil
	}
	if within(protein, proteinGoal, macroTolerance) && within(carbs, carbsGoal, macroTolerance) && within(fat, fatGoal, macroTolerance) {
		return one(PerfectMacros, map[string]any{}), nil
	}
	return nil, nil
}

func within(actual, goal, tolerance float64) bool {
	if goal <= 0 {
		return false
	}
	return math.Abs(actual-goal) <= tolerance*goal
}

func (r *MealRules) checkMealTiming(ctx context.Context, clientID string) ([]domain.Insight, error) {
	from, to := r.window(timingWindowDays)
	logs, err := r.store.MealLogs(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("meal_logs", clientID, err)
	}
	if len(logs) < minTimingLogs {
		return nil, nil
	}

	meals := make(map[time.Time]int)
	breakfasts := make(map[time.Time]int)
	for _, l := range logs {
		day := r.stamp(l.LoggedAt)
		meals[day]++
		if strings.EqualFold(l.MealType, domain.MealBreakfast) {
			breakfasts[day]++
		}
	}

	var insights []domain.Insight
	good := 0
	skipped := 0
	for day, n := range meals {
		if n >= minGoodMealsPerDay && n <= maxGoodMealsPerDay {
			good++
		}
		if breakfasts[day] == 0 {
			skipped++
		}
	}
	if good == len(meals) {
		insights = append(insights, domain.Insight{Rule: MealTimingConsistency, Data: map[string]any{"days": good}})
	}
	if skipped >= minSkippedBreakfasts {
		insights = append(insights, domain.Insight{Rule: SkipBreakfast, Data: map[string]any{"days": skipped}})
	}
	return insights, nil
}

func (r *MealRules) checkCalorieConsistency(ctx context.Context, clientID string) ([]domain.Insight, error) {
	entries, err := r.tracking(ctx, clientID, calorieWindowDays, 0)
	if err != nil {
		return nil, err
	}
	if len(entries) < minCalorieRecords {
		return nil, nil
	}

	calories := make([]float64, len(entries))
	var goalSum float64
	for i, e := range entries {
		calories[i] = e.Calories
		goalSum += e.CalorieGoal
	}
	goal := goalSum / float64(len(entries))
	if goal <= 0 {
		return nil, nil
	}
	avg, stdDev := meanStdDev(calories)

	if stdDev < calorieStdDevRatio*goal {
		return one(CalorieConsistencyChampion, map[string]any{"days": len(entries)}), nil
	}
	if avg < undereatingRatio*goal {
		percentage := int(math.Round(avg / goal * 100))
		return one(UndereatingWarning, map[string]any{"percentage": percentage}), nil
	}
	return nil, nil
}

// meanStdDev returns the mean and population standard deviation.
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func (r *MealRules) checkMealPrep(ctx context.Context, clientID string) ([]domain.Insight, error) {
	from, to := r.window(mealPrepWindowDays)
	logs, err := r.store.MealLogs(ctx, clientID, from, to)
	if err != nil {
		return nil, dataErr("meal_logs", clientID, err)
	}
	sundays := 0
	for _, l := range logs {
		if l.LoggedAt.In(r.loc).Weekday() == time.Sunday {
			sundays++
		}
	}
	if sundays >= minPrepSundayLogs {
		return one(MealPrepMaster, map[string]any{"weeks": sundays / prepLogsPerWeek}), nil
	}
	return nil, nil
}

func (r *MealRules) checkCheatMeals(ctx context.Context, clientID string) ([]domain.Insight, error) {
	entries, err := r.tracking(ctx, clientID, cheatWindowDays, 0)
	if err != nil {
		return nil, err
	}
	if len(entries) < minCheatRecords {
		return nil, nil
	}
	over := 0
	for _, e := range entries {
		if e.CalorieGoal > 0 && e.Calories > cheatDayRatio*e.CalorieGoal {
			over++
		}
	}
	switch {
	case over == balancedCheatDays:
		return one(CheatMealBalance, map[string]any{}), nil
	case over > maxCheatDays:
		return one(CheatMealRefocus, map[string]any{"count": over}), nil
	}
	return nil, nil
}

func (r *MealRules) checkImprovementTrend(ctx context.Context, clientID string) ([]domain.Insight, error) {
	prior, err := r.tracking(ctx, clientID, trendWindowDays, trendWindowDays)
	if err != nil {
		return nil, err
	}
	current, err := r.tracking(ctx, clientID, trendWindowDays, 0)
	if err != nil {
		return nil, err
	}
	if len(prior) < minTrendRecords || len(current) < minTrendRecords {
		return nil, nil
	}

	priorRate := hitRate(prior)
	currentRate := hitRate(current)
	if currentRate > priorRate && currentRate >= levelUpHitRate {
		improvement := int(math.Round((currentRate - priorRate) * 100))
		return one(ProteinLevelUp, map[string]any{"improvement": improvement}), nil
	}
	return nil, nil
}

func hitRate(entries []domain.MealTrackingEntry) float64 {
	hits := 0
	for _, e := range entries {
		if e.ProteinGoalHit() {
			hits++
		}
	}
	return float64(hits) / float64(len(entries))
}

package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/insights/internal/domain"
)

func analyzeMeals(t *testing.T, store *stubStore) []domain.Insight {
	t.Helper()
	insights, err := NewMealRules(store, WithClock(fixedClock)).Analyze(context.Background(), "c-1")
	require.NoError(t, err)
	return insights
}

func trackedDays(entries ...domain.MealTrackingEntry) []domain.MealTrackingEntry {
	for i := range entries {
		entries[i].ClientID = "c-1"
		entries[i].Date = day(time.June, 7-i)
	}
	return entries
}

func TestLowProteinAlert(t *testing.T) {
	entry := domain.MealTrackingEntry{Protein: 75, ProteinGoal: 100, Carbs: 200, CarbsGoal: 200, Fat: 60, FatGoal: 60}
	insights := analyzeMeals(t, &stubStore{tracking: trackedDays(entry, entry, entry)})

	require.Equal(t, []string{LowProteinAlert.ID}, ruleIDs(insights))
	require.Equal(t, 75, insights[0].Data["percentage"])
}

func TestPerfectMacros(t *testing.T) {
	insights := analyzeMeals(t, &stubStore{tracking: trackedDays(
		domain.MealTrackingEntry{Protein: 95, ProteinGoal: 100, Carbs: 210, CarbsGoal: 200, Fat: 58, FatGoal: 60},
		domain.MealTrackingEntry{Protein: 102, ProteinGoal: 100, Carbs: 190, CarbsGoal: 200, Fat: 61, FatGoal: 60},
		domain.MealTrackingEntry{Protein: 100, ProteinGoal: 100, Carbs: 205, CarbsGoal: 200, Fat: 63, FatGoal: 60},
	)})

	_, ok := find(insights, PerfectMacros.ID)
	require.True(t, ok)
	_, ok = find(insights, LowProteinAlert.ID)
	require.False(t, ok)
}

func TestCalorieConsistency(t *testing.T) {
	steady := make([]domain.MealTrackingEntry, 0, 5)
	for _, c := range []float64{2000, 2010, 1990, 2000, 2005} {
		steady = append(steady, domain.MealTrackingEntry{Calories: c, CalorieGoal: 2000})
	}
	insight, ok := find(analyzeMeals(t, &stubStore{tracking: trackedDays(steady...)}), CalorieConsistencyChampion.ID)
	require.True(t, ok)
	require.Equal(t, 5, insight.Data["days"])

	flat := make([]domain.MealTrackingEntry, 0, 7)
	for i := 0; i < 7; i++ {
		flat = append(flat, domain.MealTrackingEntry{Calories: 2000, CalorieGoal: 2000})
	}
	_, ok = find(analyzeMeals(t, &stubStore{tracking: trackedDays(flat...)}), CalorieConsistencyChampion.ID)
	require.True(t, ok)

	swinging := make([]domain.MealTrackingEntry, 0, 7)
	for _, c := range []float64{1000, 1800, 1000, 1800, 1000, 1800, 1400} {
		swinging = append(swinging, domain.MealTrackingEntry{Calories: c, CalorieGoal: 2000})
	}
	insights := analyzeMeals(t, &stubStore{tracking: trackedDays(swinging...)})
	require.Equal(t, []string{UndereatingWarning.ID}, ruleIDs(insights))
	require.Equal(t, 70, insights[0].Data["percentage"])
}

func TestMealTiming(t *testing.T) {
	var regular []domain.MealLog
	for d := 5; d <= 7; d++ {
		for i, meal := range []string{domain.MealBreakfast, domain.MealLunch, domain.MealSnack, domain.MealDinner} {
			regular = append(regular, domain.MealLog{ClientID: "c-1", LoggedAt: at(time.June, d, 7+3*i), MealType: meal})
		}
	}
	insight, ok := find(analyzeMeals(t, &stubStore{meals: regular}), MealTimingConsistency.ID)
	require.True(t, ok)
	require.Equal(t, 3, insight.Data["days"])

	noBreakfast := []domain.MealLog{
		{ClientID: "c-1", LoggedAt: at(time.June, 6, 12), MealType: domain.MealLunch},
		{ClientID: "c-1", LoggedAt: at(time.June, 6, 19), MealType: domain.MealDinner},
		{ClientID: "c-1", LoggedAt: at(time.June, 7, 12), MealType: domain.MealLunch},
		{ClientID: "c-1", LoggedAt: at(time.June, 7, 19), MealType: domain.MealDinner},
	}
	insights := analyzeMeals(t, &stubStore{meals: noBreakfast})
	require.Equal(t, []string{SkipBreakfast.ID}, ruleIDs(insights))
	require.Equal(t, 2, insights[0].Data["days"])
}

func TestMealPrepCountsSundayLogs(t *testing.T) {
	// June 2, May 26 and May 19 2024 are Sundays.
	var logs []domain.MealLog
	for _, d := range []time.Time{at(time.June, 2, 10), at(time.May, 26, 10), at(time.May, 19, 10)} {
		logs = append(logs, domain.MealLog{ClientID: "c-1", LoggedAt: d, MealType: domain.MealLunch})
	}
	insight, ok := find(analyzeMeals(t, &stubStore{meals: logs}), MealPrepMaster.ID)
	require.True(t, ok)
	require.Equal(t, 1, insight.Data["weeks"])
}

func TestCheatMeals(t *testing.T) {
	normal := domain.MealTrackingEntry{Calories: 2000, CalorieGoal: 2000}
	over := domain.MealTrackingEntry{Calories: 2600, CalorieGoal: 2000}

	balanced := analyzeMeals(t, &stubStore{tracking: trackedDays(normal, over, normal, over)})
	_, ok := find(balanced, CheatMealBalance.ID)
	require.True(t, ok)

	frequent := analyzeMeals(t, &stubStore{tracking: trackedDays(over, over, over, over, over, normal)})
	insight, ok := find(frequent, CheatMealRefocus.ID)
	require.True(t, ok)
	require.Equal(t, 5, insight.Data["count"])
}

func TestProteinLevelUp(t *testing.T) {
	hit := domain.MealTrackingEntry{Protein: 150, ProteinGoal: 140}
	miss := domain.MealTrackingEntry{Protein: 100, ProteinGoal: 140}

	entries := trackedDays(hit, hit, hit, hit, hit)
	prior := trackedDays(
		domain.MealTrackingEntry{}, domain.MealTrackingEntry{}, domain.MealTrackingEntry{}, domain.MealTrackingEntry{},
		domain.MealTrackingEntry{}, domain.MealTrackingEntry{}, domain.MealTrackingEntry{},
		hit, miss, miss, miss,
	)[7:]
	entries = append(entries, prior...)

	insight, ok := find(analyzeMeals(t, &stubStore{tracking: entries}), ProteinLevelUp.ID)
	require.True(t, ok)
	require.Equal(t, 75, insight.Data["improvement"])
}

func TestMealChecksFailIndependently(t *testing.T) {
	entry := domain.MealTrackingEntry{Protein: 75, ProteinGoal: 100}
	store := &stubStore{tracking: trackedDays(entry, entry, entry), failMeals: true}

	insights := analyzeMeals(t, store)
	require.Equal(t, []string{LowProteinAlert.ID}, ruleIDs(insights))

	store.failTracking = true
	_, err := NewMealRules(store, WithClock(fixedClock)).Analyze(context.Background(), "c-1")
	require.Error(t, err)
}

package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/insights/internal/domain"
)

func TestCalculateStreak(t *testing.T) {
	cases := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{name: "empty", want: 0},
		{name: "single", dates: []time.Time{day(time.June, 7)}, want: 1},
		{
			name:  "unordered with repeats",
			dates: []time.Time{day(time.June, 5), at(time.June, 7, 9), day(time.June, 6), at(time.June, 7, 18)},
			want:  3,
		},
		{
			name:  "today and three days ago",
			dates: []time.Time{day(time.June, 7), day(time.June, 4)},
			want:  1,
		},
		{
			name:  "stops at first gap",
			dates: []time.Time{day(time.June, 1), day(time.June, 2), day(time.June, 5), day(time.June, 6)},
			want:  2,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CalculateStreak(tc.dates))
		})
	}
}

func TestISOWeekYearBoundary(t *testing.T) {
	year, week := ISOWeek(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, 2022, year)
	require.Equal(t, 52, week)
}

func workoutsOn(days ...int) []domain.WorkoutLog {
	logs := make([]domain.WorkoutLog, 0, len(days))
	for _, d := range days {
		month := time.June
		if d > 7 {
			month = time.May
		}
		logs = append(logs, domain.WorkoutLog{ClientID: "c-1", Timestamp: at(month, d, 8)})
	}
	return logs
}

func analyzeStreaks(t *testing.T, store *stubStore, opts ...Option) []domain.Insight {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	insights, err := NewStreakRules(store, opts...).Analyze(context.Background(), "c-1")
	require.NoError(t, err)
	return insights
}

func TestWorkoutStreakMilestones(t *testing.T) {
	week := analyzeStreaks(t, &stubStore{workouts: workoutsOn(1, 2, 3, 4, 5, 6, 7)})
	insight, ok := find(week, WorkoutStreak7.ID)
	require.True(t, ok)
	require.Equal(t, 7, insight.Data["days"])

	eight := analyzeStreaks(t, &stubStore{workouts: workoutsOn(31, 1, 2, 3, 4, 5, 6, 7)})
	require.Empty(t, eight)

	endingYesterday := analyzeStreaks(t, &stubStore{workouts: workoutsOn(4, 5, 6)})
	require.Equal(t, []string{WorkoutStreak3.ID}, ruleIDs(endingYesterday))
}

func TestWorkoutStreakThirtyDays(t *testing.T) {
	var logs []domain.WorkoutLog
	for i := 0; i < 30; i++ {
		logs = append(logs, domain.WorkoutLog{ClientID: "c-1", Timestamp: testNow.AddDate(0, 0, -i)})
	}
	insights := analyzeStreaks(t, &stubStore{workouts: logs})
	require.Equal(t, []string{WorkoutStreak30.ID}, ruleIDs(insights))
}

func TestStaleStreakIsNotReported(t *testing.T) {
	insights := analyzeStreaks(t, &stubStore{workouts: workoutsOn(3, 4, 5)})
	require.Empty(t, insights)
}

func TestComebackNudge(t *testing.T) {
	insights := analyzeStreaks(t, &stubStore{workouts: workoutsOn(3, 4)})
	insight, ok := find(insights, ComebackNudge.ID)
	require.True(t, ok)
	require.Equal(t, 3, insight.Data["days"])

	tooLong := analyzeStreaks(t, &stubStore{workouts: workoutsOn(1)})
	require.Empty(t, tooLong)
}

func TestStreakDaysFollowConfiguredZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00Z on June 7 is still June 6 in New York.
	store := &stubStore{workouts: []domain.WorkoutLog{
		{ClientID: "c-1", Timestamp: at(time.June, 5, 15)},
		{ClientID: "c-1", Timestamp: at(time.June, 6, 15)},
		{ClientID: "c-1", Timestamp: at(time.June, 7, 2)},
	}}

	require.Equal(t, []string{WorkoutStreak3.ID}, ruleIDs(analyzeStreaks(t, store)))
	require.Empty(t, analyzeStreaks(t, store, WithLocation(ny)))
}

func TestProteinAndHydrationStreaks(t *testing.T) {
	store := &stubStore{}
	for d := 1; d <= 7; d++ {
		store.tracking = append(store.tracking, domain.MealTrackingEntry{
			ClientID: "c-1", Date: day(time.June, d), Protein: 150, ProteinGoal: 140,
		})
	}
	for d := 5; d <= 7; d++ {
		store.hydration = append(store.hydration,
			domain.HydrationLog{ClientID: "c-1", Date: day(time.June, d), AmountML: 1200},
			domain.HydrationLog{ClientID: "c-1", Date: day(time.June, d), AmountML: 800},
		)
	}

	insights := analyzeStreaks(t, store)
	protein, ok := find(insights, ProteinStreak.ID)
	require.True(t, ok)
	require.Equal(t, 7, protein.Data["days"])

	hydration, ok := find(insights, HydrationStreak.ID)
	require.True(t, ok)
	require.Equal(t, 3, hydration.Data["days"])
}

func TestCheckInConsistencyCountsDistinctWeeks(t *testing.T) {
	spread := &stubStore{checkIns: []domain.CheckIn{
		{ClientID: "c-1", CreatedAt: at(time.June, 6, 9)},
		{ClientID: "c-1", CreatedAt: at(time.May, 30, 9)},
		{ClientID: "c-1", CreatedAt: at(time.May, 23, 9)},
		{ClientID: "c-1", CreatedAt: at(time.May, 16, 9)},
	}}
	insight, ok := find(analyzeStreaks(t, spread), CheckInConsistency.ID)
	require.True(t, ok)
	require.Equal(t, 4, insight.Data["weeks"])

	bunched := &stubStore{checkIns: []domain.CheckIn{
		{ClientID: "c-1", CreatedAt: at(time.June, 6, 9)},
		{ClientID: "c-1", CreatedAt: at(time.June, 5, 9)},
		{ClientID: "c-1", CreatedAt: at(time.May, 30, 9)},
		{ClientID: "c-1", CreatedAt: at(time.May, 29, 9)},
	}}
	require.Empty(t, analyzeStreaks(t, bunched))
}

func TestCheckInWeeksAcrossYearBoundary(t *testing.T) {
	dates := []time.Time{
		time.Date(2023, time.January, 9, 9, 0, 0, 0, time.UTC),
		time.Date(2023, time.January, 2, 9, 0, 0, 0, time.UTC),
		// Sunday, still ISO week 52 of 2022.
		time.Date(2023, time.January, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2022, time.December, 26, 9, 0, 0, 0, time.UTC),
		time.Date(2022, time.December, 19, 9, 0, 0, 0, time.UTC),
	}
	checkIns := func(ds []time.Time) []domain.CheckIn {
		out := make([]domain.CheckIn, 0, len(ds))
		for _, d := range ds {
			out = append(out, domain.CheckIn{ClientID: "c-1", CreatedAt: d})
		}
		return out
	}

	insight, ok := find(analyzeStreaks(t, &stubStore{checkIns: checkIns(dates)}), CheckInConsistency.ID)
	require.True(t, ok)
	require.Equal(t, 4, insight.Data["weeks"])

	_, ok = find(analyzeStreaks(t, &stubStore{checkIns: checkIns(dates[:4])}), CheckInConsistency.ID)
	require.False(t, ok)
}

func TestWeightLogConsistency(t *testing.T) {
	store := &stubStore{}
	for _, d := range []time.Time{
		day(time.May, 27), day(time.May, 29), day(time.May, 31),
		day(time.June, 3), day(time.June, 5), day(time.June, 7),
	} {
		store.weights = append(store.weights, domain.WeightLog{ClientID: "c-1", Date: d, Value: 80})
	}
	insight, ok := find(analyzeStreaks(t, store), WeightLogConsistency.ID)
	require.True(t, ok)
	require.Equal(t, 2, insight.Data["weeks"])
}

func TestStreakRulesReportTotalFailure(t *testing.T) {
	store := &failingStore{}
	_, err := NewStreakRules(store, WithClock(fixedClock)).Analyze(context.Background(), "c-1")
	require.Error(t, err)

	var dataErr *domain.DataAccessError
	require.ErrorAs(t, err, &dataErr)
}

type failingStore struct{}

func (failingStore) WorkoutLogs(context.Context, string, time.Time, time.Time) ([]domain.WorkoutLog, error) {
	return nil, context.DeadlineExceeded
}

func (failingStore) MealTracking(context.Context, string, time.Time, time.Time) ([]domain.MealTrackingEntry, error) {
	return nil, context.DeadlineExceeded
}

func (failingStore) MealLogs(context.Context, string, time.Time, time.Time) ([]domain.MealLog, error) {
	return nil, context.DeadlineExceeded
}

func (failingStore) HydrationLogs(context.Context, string, time.Time, time.Time) ([]domain.HydrationLog, error) {
	return nil, context.DeadlineExceeded
}

func (failingStore) WeightLogs(context.Context, string, time.Time, time.Time) ([]domain.WeightLog, error) {
	return nil, context.DeadlineExceeded
}

func (failingStore) RecentCheckIns(context.Context, string, int) ([]domain.CheckIn, error) {
	return nil, context.DeadlineExceeded
}

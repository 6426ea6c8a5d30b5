package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/rules"
)

func newTriggerEngine(t *testing.T) *NotificationEngine {
	t.Helper()
	now := time.Date(2024, time.June, 7, 12, 0, 0, 0, time.UTC)
	e, err := New(newNotifier(t, now), []RuleProcessor{&stubProcessor{name: "noop"}}, WithTriggerTimeout(time.Second))
	require.NoError(t, err)
	return e
}

func TestWorkoutCompletedRequiresPR(t *testing.T) {
	e := newTriggerEngine(t)
	ctx := context.Background()

	n, err := e.CheckTriggerPoints(ctx, "c-1", domain.EventWorkoutCompleted, domain.EventData{"is_pr": false})
	require.NoError(t, err)
	require.Nil(t, n)

	n, err = e.CheckTriggerPoints(ctx, "c-1", domain.EventWorkoutCompleted, domain.EventData{"is_pr": true, "exercise": "deadlift"})
	require.NoError(t, err)
	require.NotNil(t, n)
	require.Equal(t, rules.PersonalRecord.ID, n.RuleID)
	require.Equal(t, "You just set a new PR on deadlift. Outstanding work!", n.Message)
}

func TestMealLoggedFiresOncePerDay(t *testing.T) {
	e := newTriggerEngine(t)
	ctx := context.Background()

	n, err := e.CheckTriggerPoints(ctx, "c-1", domain.EventMealLogged, domain.EventData{"protein": 90.0, "protein_goal": 140.0})
	require.NoError(t, err)
	require.Nil(t, n)

	n, err = e.CheckTriggerPoints(ctx, "c-1", domain.EventMealLogged, domain.EventData{"protein": 142.5, "protein_goal": "140"})
	require.NoError(t, err)
	require.NotNil(t, n)
	require.Equal(t, "142.5g of protein today. Goal of 140g reached!", n.Message)

	n, err = e.CheckTriggerPoints(ctx, "c-1", domain.EventMealLogged, domain.EventData{"protein": 160.0, "protein_goal": 140.0})
	require.NoError(t, err)
	require.Nil(t, n)
}

func TestWeightLoggedMilestones(t *testing.T) {
	cases := []struct {
		current any
		fires   bool
	}{
		{current: 80.0, fires: true},
		{current: 81.0, fires: false},
		{current: 82.5, fires: false},
		{current: 0.0, fires: false},
		{current: -5.0, fires: false},
		{current: "not a number", fires: false},
	}
	for _, tc := range cases {
		e := newTriggerEngine(t)
		n, err := e.CheckTriggerPoints(context.Background(), "c-1", domain.EventWeightLogged, domain.EventData{"current": tc.current})
		require.NoError(t, err)
		require.Equal(t, tc.fires, n != nil, "current=%v", tc.current)
		if tc.fires {
			require.Equal(t, "You reached 80 kg. Every milestone counts!", n.Message)
		}
	}
}

func TestGoalAchievedAlwaysFires(t *testing.T) {
	e := newTriggerEngine(t)
	n, err := e.CheckTriggerPoints(context.Background(), "c-1", domain.EventGoalAchieved, domain.EventData{})
	require.NoError(t, err)
	require.NotNil(t, n)
	require.Equal(t, "You achieved your goal. Time to celebrate and set the next one!", n.Message)
}

func TestUnknownEventType(t *testing.T) {
	e := newTriggerEngine(t)
	n, err := e.CheckTriggerPoints(context.Background(), "c-1", domain.EventType("sleep_logged"), nil)
	require.ErrorIs(t, err, domain.ErrUnknownEvent)
	require.Nil(t, n)
}

func TestTriggerPropagatesNotifierErrors(t *testing.T) {
	notifier := &recordingNotifier{fail: map[string]bool{rules.GoalAchieved.ID: true}}
	e, err := New(notifier, []RuleProcessor{&stubProcessor{name: "noop"}})
	require.NoError(t, err)

	n, err := e.CheckTriggerPoints(context.Background(), "c-1", domain.EventGoalAchieved, domain.EventData{"goal": "5k"})
	require.Error(t, err)
	require.False(t, errors.Is(err, domain.ErrUnknownEvent))
	require.Nil(t, n)
}

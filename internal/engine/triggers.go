package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/observability"
	"example.com/insights/internal/rules"
)

type triggerHandler func(ctx context.Context, clientID string, data domain.EventData) (*domain.Notification, error)

// CheckTriggerPoints evaluates one lifecycle event synchronously. It returns
// (nil, nil) when the event's condition does not hold or the notification was
// a duplicate. Notifier errors are returned to the caller and never retried.
func (e *NotificationEngine) CheckTriggerPoints(ctx context.Context, clientID string, eventType domain.EventType, data domain.EventData) (*domain.Notification, error) {
	start := time.Now()
	handler, ok := e.handlers[eventType]
	if !ok {
		observability.ObserveTrigger(string(eventType), "unknown", time.Since(start))
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, eventType)
	}

	if e.triggerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.triggerTimeout)
		defer cancel()
	}

	n, err := handler(ctx, clientID, data)
	outcome := observability.OutcomeCreated
	switch {
	case err != nil:
		outcome = observability.OutcomeFailed
		e.logger.Warn().Err(err).
			Str("client_id", clientID).
			Str("event_type", string(eventType)).
			Msg("trigger notification failed")
	case n == nil:
		outcome = observability.OutcomeSkipped
	}
	observability.ObserveTrigger(string(eventType), outcome, time.Since(start))
	return n, err
}

func (e *NotificationEngine) handleWorkoutCompleted(ctx context.Context, clientID string, data domain.EventData) (*domain.Notification, error) {
	if !boolField(data, "is_pr") {
		return nil, nil
	}
	exercise := stringField(data, "exercise", "your lift")
	return e.notifier.CreateSmartNotification(ctx, clientID, rules.PersonalRecord, map[string]any{"exercise": exercise})
}

// handleMealLogged relies on the store's (client, rule, day) constraint for
// its once-per-day guarantee.
func (e *NotificationEngine) handleMealLogged(ctx context.Context, clientID string, data domain.EventData) (*domain.Notification, error) {
	protein, okProtein := numberField(data, "protein")
	goal, okGoal := numberField(data, "protein_goal")
	if !okProtein || !okGoal || goal <= 0 || protein < goal {
		return nil, nil
	}
	return e.notifier.CreateSmartNotification(ctx, clientID, rules.ProteinGoalHit, map[string]any{
		"protein":      formatNumber(protein),
		"protein_goal": formatNumber(goal),
	})
}

func (e *NotificationEngine) handleWeightLogged(ctx context.Context, clientID string, data domain.EventData) (*domain.Notification, error) {
	current, ok := numberField(data, "current")
	if !ok || current <= 0 || math.Mod(current, 5) != 0 {
		return nil, nil
	}
	return e.notifier.CreateSmartNotification(ctx, clientID, rules.WeightMilestone, map[string]any{
		"milestone": formatNumber(current),
		"unit":      stringField(data, "unit", "kg"),
	})
}

func (e *NotificationEngine) handleGoalAchieved(ctx context.Context, clientID string, data domain.EventData) (*domain.Notification, error) {
	goal := stringField(data, "goal", "your goal")
	return e.notifier.CreateSmartNotification(ctx, clientID, rules.GoalAchieved, map[string]any{"goal": goal})
}

func boolField(data domain.EventData, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

func numberField(data domain.EventData, key string) (float64, bool) {
	switch v := data[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func stringField(data domain.EventData, key, fallback string) string {
	if v, ok := data[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

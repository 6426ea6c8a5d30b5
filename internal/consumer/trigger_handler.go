package consumer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"example.com/insights/internal/domain"
)

// Trigger is the event-path entry point of the notification engine.
type Trigger interface {
	CheckTriggerPoints(ctx context.Context, clientID string, eventType domain.EventType, data domain.EventData) (*domain.Notification, error)
}

// TriggerHandler evaluates each consumed event on the trigger path. Failures
// are logged and dropped so a flaky notification store never stalls the
// partition; only shutdown leaves a message uncommitted.
type TriggerHandler struct {
	trigger Trigger
	logger  zerolog.Logger
}

// NewTriggerHandler constructs a TriggerHandler.
func NewTriggerHandler(trigger Trigger, logger zerolog.Logger) *TriggerHandler {
	return &TriggerHandler{trigger: trigger, logger: logger}
}

// Handle runs CheckTriggerPoints for msg.
func (h *TriggerHandler) Handle(ctx context.Context, msg Message) error {
	event := msg.Event
	n, err := h.trigger.CheckTriggerPoints(ctx, event.ClientID, event.EventType, event.Data)
	switch {
	case err == nil:
		if n != nil {
			h.logger.Info().
				Str("client_id", event.ClientID).
				Str("rule_id", n.RuleID).
				Str("notification_id", n.ID).
				Msg("trigger notification created")
		}
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, domain.ErrUnknownEvent):
		recordDropped(event.EventType, "unknown_event")
		h.logger.Debug().Str("event_type", string(event.EventType)).Msg("ignoring unknown event type")
		return nil
	default:
		recordDropped(event.EventType, "trigger_failed")
		h.logger.Warn().Err(err).
			Str("client_id", event.ClientID).
			Str("event_type", string(event.EventType)).
			Msg("dropping event after trigger failure")
		return nil
	}
}

package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/events"
)

func TestProcessorCommitsOnSuccess(t *testing.T) {
	msg := kafka.Message{
		Topic:  "client_events",
		Offset: 10,
		Time:   time.Now().UTC(),
		Value:  []byte(`{"client_id":"c-1","event_type":"workout_completed","data":{"is_pr":true,"exercise":"deadlift"}}`),
	}
	reader := &stubReader{messages: []kafka.Message{msg}, after: contextCanceled}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler, WithLogger(zerolog.New(zerolog.NewTestWriter(t)))).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, "c-1", handler.last.Event.ClientID)
	require.Equal(t, domain.EventWorkoutCompleted, handler.last.Event.EventType)
	require.Equal(t, "deadlift", handler.last.Event.Data["exercise"])
}

func TestProcessorHeaderAndKeyFallbacks(t *testing.T) {
	msg := kafka.Message{
		Topic:   "client_events",
		Key:     []byte("c-7"),
		Value:   []byte(`{"data":{"goal":"first 5k"}}`),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte("goal_achieved")}},
	}
	reader := &stubReader{messages: []kafka.Message{msg}, after: contextCanceled}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "c-7", handler.last.Event.ClientID)
	require.Equal(t, domain.EventGoalAchieved, handler.last.Event.EventType)
}

func TestProcessorCommitsMalformedMessages(t *testing.T) {
	reader := &stubReader{
		messages: []kafka.Message{
			{Topic: "client_events", Value: []byte(`not json`)},
			{Topic: "client_events", Value: []byte(`{"client_id":"c-1"}`)},
		},
		after: contextCanceled,
	}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, handler.calls)
	require.Equal(t, 2, reader.commitCalls)
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{
		messages: []kafka.Message{{Topic: "client_events", Value: []byte(`{"client_id":"c-1","event_type":"meal_logged"}`)}},
		after:    contextCanceled,
	}
	handler := &stubHandler{err: errors.New("boom")}

	err := NewProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, handler.calls)
	require.Zero(t, reader.commitCalls)
}

func TestTriggerHandlerDropsFailures(t *testing.T) {
	msg := Message{Event: eventFor("c-1", domain.EventMealLogged)}

	for name, err := range map[string]error{
		"notifier failure": errors.New("store down"),
		"unknown event":    domain.ErrUnknownEvent,
	} {
		name, err := name, err
		t.Run(name, func(t *testing.T) {
			trigger := &stubTrigger{err: err}
			h := NewTriggerHandler(trigger, zerolog.Nop())
			require.NoError(t, h.Handle(context.Background(), msg))
			require.Equal(t, 1, trigger.calls)
		})
	}
}

func TestTriggerHandlerStopsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewTriggerHandler(&stubTrigger{err: context.Canceled}, zerolog.Nop())
	err := h.Handle(ctx, Message{Event: eventFor("c-1", domain.EventGoalAchieved)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTriggerHandlerPassesEventThrough(t *testing.T) {
	trigger := &stubTrigger{result: &domain.Notification{ID: "n-1", RuleID: "goal-achieved"}}
	h := NewTriggerHandler(trigger, zerolog.Nop())

	event := eventFor("c-9", domain.EventGoalAchieved)
	event.Data = domain.EventData{"goal": "bench 100kg"}
	require.NoError(t, h.Handle(context.Background(), Message{Event: event}))
	require.Equal(t, "c-9", trigger.clientID)
	require.Equal(t, domain.EventGoalAchieved, trigger.eventType)
	require.Equal(t, "bench 100kg", trigger.data["goal"])
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
	after       func() error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		if r.after != nil {
			return kafka.Message{}, r.after()
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

func contextCanceled() error { return context.Canceled }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}

type stubTrigger struct {
	calls     int
	result    *domain.Notification
	err       error
	clientID  string
	eventType domain.EventType
	data      domain.EventData
}

func (s *stubTrigger) CheckTriggerPoints(_ context.Context, clientID string, eventType domain.EventType, data domain.EventData) (*domain.Notification, error) {
	s.calls++
	s.clientID, s.eventType, s.data = clientID, eventType, data
	return s.result, s.err
}

func eventFor(clientID string, eventType domain.EventType) events.ClientEvent {
	return events.ClientEvent{ClientID: clientID, EventType: eventType}
}

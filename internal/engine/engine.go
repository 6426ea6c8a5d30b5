// Package engine orchestrates rule processors and the event-trigger path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/observability"
)

// RuleProcessor analyzes one client's history and returns candidate insights.
type RuleProcessor interface {
	Name() string
	Analyze(ctx context.Context, clientID string) ([]domain.Insight, error)
}

// Notifier renders and stores insights. A nil notification with a nil error
// means the insight was suppressed as a duplicate.
type Notifier interface {
	CreateSmartNotification(ctx context.Context, clientID string, rule domain.Rule, data map[string]any) (*domain.Notification, error)
}

// Option configures optional behaviour for the NotificationEngine.
type Option func(*NotificationEngine)

// WithLogger overrides the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *NotificationEngine) {
		e.logger = logger
	}
}

// WithTriggerTimeout bounds each CheckTriggerPoints call. Zero leaves the caller's deadline alone.
func WithTriggerTimeout(timeout time.Duration) Option {
	return func(e *NotificationEngine) {
		e.triggerTimeout = timeout
	}
}

// NotificationEngine runs batch analysis and event triggers for clients.
type NotificationEngine struct {
	notifier       Notifier
	processors     []RuleProcessor
	logger         zerolog.Logger
	triggerTimeout time.Duration
	handlers       map[domain.EventType]triggerHandler
}

// New registers the processors explicitly; nil processors are rejected.
func New(notifier Notifier, processors []RuleProcessor, opts ...Option) (*NotificationEngine, error) {
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if len(processors) == 0 {
		return nil, domain.ErrNoProcessors
	}
	for i, p := range processors {
		if p == nil {
			return nil, fmt.Errorf("processor %d is nil", i)
		}
	}

	e := &NotificationEngine{
		notifier:   notifier,
		processors: append([]RuleProcessor(nil), processors...),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[domain.EventType]triggerHandler{
		domain.EventWorkoutCompleted: e.handleWorkoutCompleted,
		domain.EventMealLogged:       e.handleMealLogged,
		domain.EventWeightLogged:     e.handleWeightLogged,
		domain.EventGoalAchieved:     e.handleGoalAchieved,
	}
	return e, nil
}

// Processors lists the registered processor names.
func (e *NotificationEngine) Processors() []string {
	names := make([]string, len(e.processors))
	for i, p := range e.processors {
		names[i] = p.Name()
	}
	return names
}

// ProcessClientData runs every processor concurrently and forwards each insight
// to the notifier. It returns the notifications actually created; duplicates
// and failed inserts are left out. A processor failure contributes no insights
// and never affects its siblings. The error is non-nil only when ctx ends.
func (e *NotificationEngine) ProcessClientData(ctx context.Context, clientID string) ([]domain.Notification, error) {
	insights := e.collectInsights(ctx, clientID)

	created := make([]domain.Notification, 0, len(insights))
	for _, insight := range insights {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		n, err := e.notifier.CreateSmartNotification(ctx, clientID, insight.Rule, insight.Data)
		if err != nil {
			e.logger.Error().Err(err).
				Str("client_id", clientID).
				Str("rule_id", insight.Rule.ID).
				Msg("failed to create notification")
			continue
		}
		if n == nil {
			continue
		}
		created = append(created, *n)
	}

	return created, ctx.Err()
}

func (e *NotificationEngine) collectInsights(ctx context.Context, clientID string) []domain.Insight {
	results := make([][]domain.Insight, len(e.processors))

	var wg sync.WaitGroup
	for i, p := range e.processors {
		wg.Add(1)
		go func(i int, p RuleProcessor) {
			defer wg.Done()
			results[i] = e.analyze(ctx, p, clientID)
		}(i, p)
	}
	wg.Wait()

	var insights []domain.Insight
	for _, r := range results {
		insights = append(insights, r...)
	}
	return insights
}

func (e *NotificationEngine) analyze(ctx context.Context, p RuleProcessor, clientID string) (insights []domain.Insight) {
	defer func() {
		if r := recover(); r != nil {
			observability.RecordProcessorFailure(p.Name())
			e.logger.Error().
				Str("processor", p.Name()).
				Str("client_id", clientID).
				Interface("panic", r).
				Msg("rule processor panicked")
			insights = nil
		}
	}()

	found, err := p.Analyze(ctx, clientID)
	if err != nil {
		observability.RecordProcessorFailure(p.Name())
		e.logger.Error().Err(err).
			Str("processor", p.Name()).
			Str("client_id", clientID).
			Msg("rule processor failed")
		return nil
	}
	for _, insight := range found {
		observability.RecordInsight(p.Name(), insight.Rule.ID)
	}
	return found
}

// Package notify renders rule insights into notifications and persists them
// under the per-(client, rule, day) dedup constraint.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/observability"
)

// ErrEmptyMessage is returned by SendNotification for blank messages.
var ErrEmptyMessage = errors.New("notification message is empty")

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLogger overrides the logger used to report render and store problems.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the time zone that defines the dedup calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.loc = loc
	}
}

// Service is the notification collaborator used by the engine.
type Service struct {
	store  domain.NotificationStore
	logger zerolog.Logger
	now    func() time.Time
	loc    *time.Location

	mu    sync.RWMutex
	rules map[string]domain.Rule
}

// NewService constructs a Service backed by store.
func NewService(store domain.NotificationStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: zerolog.Nop(),
		now:    time.Now,
		loc:    time.UTC,
		rules:  make(map[string]domain.Rule),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates and records rules. It stops at the first rule whose
// template references a key the rule does not declare.
func (s *Service) Register(rules ...domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rule := range rules {
		if strings.TrimSpace(rule.ID) == "" {
			return errors.New("rule id is required")
		}
		if err := Validate(rule); err != nil {
			return err
		}
		s.rules[rule.ID] = rule
	}
	return nil
}

// MustRegister is Register for startup wiring; it panics on an invalid rule.
func (s *Service) MustRegister(rules ...domain.Rule) {
	if err := s.Register(rules...); err != nil {
		panic(err)
	}
}

// Rule returns a registered rule.
func (s *Service) Rule(id string) (domain.Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[id]
	return rule, ok
}

// CreateSmartNotification renders the rule against data and stores the result
// unless the client already has a notification for this rule today. A
// suppressed duplicate returns (nil, nil).
func (s *Service) CreateSmartNotification(ctx context.Context, clientID string, rule domain.Rule, data map[string]any) (*domain.Notification, error) {
	if _, ok := s.Rule(rule.ID); !ok {
		s.logger.Warn().Str("rule_id", rule.ID).Msg("rendering unregistered rule")
	}

	message, missing := Render(rule.MessageTemplate, data)
	title, missingTitle := Render(rule.Title, data)
	missing = append(missing, missingTitle...)
	if len(missing) > 0 {
		observability.RecordTemplateMismatch(rule.ID)
		s.logger.Warn().
			Str("rule_id", rule.ID).
			Str("client_id", clientID).
			Strs("missing", missing).
			Msg("template placeholders left unresolved")
	}

	now := s.now()
	n := domain.Notification{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		RuleID:     rule.ID,
		Type:       rule.Type,
		Priority:   rule.Priority,
		Title:      title,
		Message:    message,
		CreatedAt:  now.UTC(),
		ReadStatus: domain.ReadStatusUnread,
	}

	inserted, err := s.store.InsertIfAbsent(ctx, n, domain.CivilDay(now, s.loc))
	if err != nil {
		observability.RecordNotification(rule.ID, observability.OutcomeFailed)
		return nil, fmt.Errorf("store notification for rule %s: %w", rule.ID, err)
	}
	if !inserted {
		observability.RecordNotification(rule.ID, observability.OutcomeSuppressed)
		s.logger.Debug().Str("rule_id", rule.ID).Str("client_id", clientID).Msg("duplicate notification suppressed")
		return nil, nil
	}

	observability.RecordNotification(rule.ID, observability.OutcomeCreated)
	return &n, nil
}

// SendNotification stores an ad hoc message that is not derived from a rule.
func (s *Service) SendNotification(ctx context.Context, clientID, notificationType, message string) (*domain.Notification, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if notificationType == "" {
		notificationType = domain.TypeAdHoc
	}
	n := domain.Notification{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		Type:       notificationType,
		Priority:   domain.PriorityMedium,
		Title:      "Message from your coach",
		Message:    message,
		CreatedAt:  s.now().UTC(),
		ReadStatus: domain.ReadStatusUnread,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("store ad hoc notification: %w", err)
	}
	return &n, nil
}

// List returns a page of a client's notifications.
func (s *Service) List(ctx context.Context, clientID string, cursor *domain.Cursor, limit int) ([]domain.Notification, *domain.Cursor, error) {
	return s.store.ListByClient(ctx, clientID, cursor, limit)
}

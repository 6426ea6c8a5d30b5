// Package rules implements the windowed rule processors that turn a client's
// logs into insights.
package rules

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

// Option configures the processors in this package.
type Option func(*base)

// WithLogger overrides the logger used to report failed checks.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// WithClock overrides the time source that anchors every window.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

// WithLocation sets the time zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(b *base) {
		if loc != nil {
			b.loc = loc
		}
	}
}

type base struct {
	store  domain.DataStore
	logger zerolog.Logger
	now    func() time.Time
	loc    *time.Location
}

func newBase(store domain.DataStore, opts []Option) base {
	b := base{
		store:  store,
		logger: zerolog.Nop(),
		now:    time.Now,
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// today is the current civil day.
func (b base) today() time.Time {
	return domain.CivilDay(b.now(), b.loc)
}

// window returns the half-open range covering the last n calendar days,
// today included, as instants in the configured zone.
func (b base) window(days int) (time.Time, time.Time) {
	return b.windowEnding(days, 0)
}

// windowEnding is window shifted back by offset days.
func (b base) windowEnding(days, offset int) (time.Time, time.Time) {
	today := b.today()
	first := today.AddDate(0, 0, -(days - 1 + offset))
	end := today.AddDate(0, 0, 1-offset)
	return b.instant(first), b.instant(end)
}

// instant maps a civil day back to local midnight.
func (b base) instant(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.loc)
}

// stamp is the civil day of a timestamp in the configured zone.
func (b base) stamp(t time.Time) time.Time {
	return domain.CivilDay(t, b.loc)
}

// check is one independent sub-analysis of a processor.
type check struct {
	name string
	run  func(ctx context.Context, clientID string) ([]domain.Insight, error)
}

// runChecks runs every check concurrently and concatenates the insights of the
// ones that succeeded. A failing or panicking check is logged and contributes
// nothing. The returned error is non-nil only when every check failed.
func (b base) runChecks(ctx context.Context, processor, clientID string, checks []check) ([]domain.Insight, error) {
	results := make([][]domain.Insight, len(checks))
	errs := make([]error, len(checks))

	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c check) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("check %s panicked: %v", c.name, r)
				}
			}()
			results[i], errs[i] = c.run(ctx, clientID)
		}(i, c)
	}
	wg.Wait()

	var insights []domain.Insight
	var failed []error
	for i, c := range checks {
		if errs[i] != nil {
			observability.RecordCheckFailure(processor, c.name)
			b.logger.Error().Err(errs[i]).
				Str("processor", processor).
				Str("check", c.name).
				Str("client_id", clientID).
				Msg("rule check failed")
			failed = append(failed, errs[i])
			continue
		}
		insights = append(insights, results[i]...)
	}

	if len(checks) > 0 && len(failed) == len(checks) {
		return nil, fmt.Errorf("%s: all checks failed: %w", processor, errors.Join(failed...))
	}
	return insights, nil
}

func one(rule domain.Rule, data map[string]any) []domain.Insight {
	return []domain.Insight{{Rule: rule, Data: data}}
}

func dataErr(query, clientID string, err error) error {
	return &domain.DataAccessError{Query: query, ClientID: clientID, Err: err}
}

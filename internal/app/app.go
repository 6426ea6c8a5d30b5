// Package app assembles the notification service, rule processors and engine
// shared by every binary.
package app

import (
	"time"

	"github.com/rs/zerolog"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/engine"
	"example.com/insights/internal/notify"
	"example.com/insights/internal/rules"
)

// Settings are the knobs the binaries pass through from configuration.
type Settings struct {
	Location       *time.Location
	TriggerTimeout time.Duration
	Logger         zerolog.Logger
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Components is the wired object graph.
type Components struct {
	Notifier *notify.Service
	Engine   *engine.NotificationEngine
}

// Build registers the rule catalog and constructs the engine with the streak,
// meal and workout processors over data.
func Build(data domain.DataStore, notifications domain.NotificationStore, s Settings) (*Components, error) {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	notifier := notify.NewService(notifications,
		notify.WithLogger(s.Logger.With().Str("component", "notify").Logger()),
		notify.WithClock(now),
		notify.WithLocation(loc),
	)
	if err := notifier.Register(rules.Catalog()...); err != nil {
		return nil, err
	}

	ruleOpts := []rules.Option{
		rules.WithLogger(s.Logger.With().Str("component", "rules").Logger()),
		rules.WithClock(now),
		rules.WithLocation(loc),
	}
	eng, err := engine.New(notifier, []engine.RuleProcessor{
		rules.NewStreakRules(data, ruleOpts...),
		rules.NewMealRules(data, ruleOpts...),
		rules.NewWorkoutRules(data, ruleOpts...),
	},
		engine.WithLogger(s.Logger.With().Str("component", "engine").Logger()),
		engine.WithTriggerTimeout(s.TriggerTimeout),
	)
	if err != nil {
		return nil, err
	}
	return &Components{Notifier: notifier, Engine: eng}, nil
}

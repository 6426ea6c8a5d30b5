// Package scheduler runs the periodic batch analysis over active clients.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/observability"
)

// Analyzer runs batch analysis for one client.
type Analyzer interface {
	ProcessClientData(ctx context.Context, clientID string) ([]domain.Notification, error)
}

// Result summarises one sweep.
type Result struct {
	Clients   int
	Succeeded int
	Failed    int
	Created   int
}

// Option configures optional behaviour for the Sweeper.
type Option func(*Sweeper)

// WithLogger overrides the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// WithConcurrency bounds how many clients are analysed at once.
func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLookback sets how far back a client must have logged anything to be swept.
func WithLookback(d time.Duration) Option {
	return func(s *Sweeper) {
		s.lookback = d
	}
}

// WithLocation sets the zone cron schedules are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Sweeper) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// Sweeper fans ProcessClientData out over every active client.
type Sweeper struct {
	clients     domain.ClientLister
	analyzer    Analyzer
	logger      zerolog.Logger
	concurrency int
	lookback    time.Duration
	loc         *time.Location
	now         func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewSweeper constructs a Sweeper.
func NewSweeper(clients domain.ClientLister, analyzer Analyzer, opts ...Option) *Sweeper {
	s := &Sweeper{
		clients:     clients,
		analyzer:    analyzer,
		logger:      zerolog.Nop(),
		concurrency: 8,
		lookback:    30 * 24 * time.Hour,
		loc:         time.UTC,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce analyses every client active within the lookback. A client whose
// analysis fails is logged and counted; the others are unaffected. The error
// is non-nil only when the client list cannot be read.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	start := s.now()
	clientIDs, err := s.clients.ActiveClients(ctx, start.Add(-s.lookback))
	if err != nil {
		return Result{}, fmt.Errorf("list active clients: %w", err)
	}

	var succeeded, failed, created atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, clientID := range clientIDs {
		clientID := clientID
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			n, err := s.analyze(ctx, clientID)
			if err != nil {
				failed.Add(1)
				s.logger.Error().Err(err).Str("client_id", clientID).Msg("client analysis failed")
				return nil
			}
			succeeded.Add(1)
			created.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()

	result := Result{
		Clients:   len(clientIDs),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Created:   int(created.Load()),
	}
	finished := s.now()
	observability.ObserveSweep(finished.Sub(start), result.Succeeded, result.Failed, finished)
	s.logger.Info().
		Int("clients", result.Clients).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int("created", result.Created).
		Dur("elapsed", finished.Sub(start)).
		Msg("sweep finished")
	return result, ctx.Err()
}

func (s *Sweeper) analyze(ctx context.Context, clientID string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	created, err := s.analyzer.ProcessClientData(ctx, clientID)
	return len(created), err
}

// Start schedules RunOnce on the cron spec. Overlapping runs are skipped.
func (s *Sweeper) Start(ctx context.Context, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}

	logger := cronLogger{s.logger}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error().Err(err).Msg("scheduled sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info().Str("schedule", spec).Str("timezone", s.loc.String()).Msg("sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

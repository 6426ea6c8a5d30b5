package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"example.com/insights/internal/app"
	"example.com/insights/internal/config"
	"example.com/insights/internal/logging"
	"example.com/insights/internal/persistence/postgres"
	"example.com/insights/internal/scheduler"
	httptransport "example.com/insights/internal/transport/http"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("insights-scheduler", "info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New("insights-scheduler", cfg.LogLevel)
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	components, err := app.Build(store, store, app.Settings{Location: loc, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build engine")
	}

	sweeper := scheduler.NewSweeper(store, components.Engine,
		scheduler.WithLogger(logger.With().Str("component", "sweeper").Logger()),
		scheduler.WithConcurrency(cfg.SweepConcurrency),
		scheduler.WithLookback(cfg.SweepLookback),
		scheduler.WithLocation(loc),
	)

	if *once {
		if _, err := sweeper.RunOnce(ctx); err != nil {
			logger.Fatal().Err(err).Msg("sweep failed")
		}
		return
	}

	if err := sweeper.Start(ctx, cfg.SweepSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule sweep")
	}
	if err := httptransport.Run(ctx, httptransport.NewMetricsServer(cfg.MetricsAddress), logger, 10*time.Second); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
	sweeper.Stop()
}

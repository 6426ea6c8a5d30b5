package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/insights/internal/api"
	"example.com/insights/internal/app"
	"example.com/insights/internal/auth"
	"example.com/insights/internal/config"
	"example.com/insights/internal/logging"
	"example.com/insights/internal/outbox"
	"example.com/insights/internal/persistence/postgres"
	httptransport "example.com/insights/internal/transport/http"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("insights-api", "info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New("insights-api", cfg.LogLevel)
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}
	store := postgres.NewStore(pool)

	components, err := app.Build(store, store, app.Settings{
		Location:       loc,
		TriggerTimeout: cfg.TriggerTimeout,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build engine")
	}

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()
	dispatcher := outbox.NewDispatcher(pool, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize,
		outbox.WithLogger(logger.With().Str("component", "outbox").Logger()),
		outbox.WithClaimDuration(cfg.OutboxClaimDuration),
	)
	go dispatcher.Start(ctx)

	router := mux.NewRouter()
	api.NewHandler(components.Engine, components.Notifier, logger).RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	verifier := auth.NewVerifier(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, auth.WithLeeway(30*time.Second))
	handler := httptransport.RequestLogger(logger)(auth.Middleware(verifier, "/healthz", "/metrics")(router))

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), handler)
	logger.Info().
		Strs("processors", components.Engine.Processors()).
		Str("timezone", loc.String()).
		Msg("insights api starting")
	if err := httptransport.Run(ctx, server, logger, 15*time.Second); err != nil {
		logger.Error().Err(err).Msg("server error")
		stop()
		dispatcher.Wait()
		os.Exit(1)
	}

	dispatcher.Wait()
}

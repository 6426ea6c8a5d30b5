package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"example.com/insights/internal/app"
	"example.com/insights/internal/config"
	"example.com/insights/internal/consumer"
	"example.com/insights/internal/logging"
	"example.com/insights/internal/persistence/postgres"
	httptransport "example.com/insights/internal/transport/http"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("insights-consumer", "info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New("insights-consumer", cfg.LogLevel)
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	components, err := app.Build(store, store, app.Settings{
		Location:       loc,
		TriggerTimeout: cfg.TriggerTimeout,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build engine")
	}
	handler := consumer.NewTriggerHandler(components.Engine, logger.With().Str("component", "trigger").Logger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httptransport.Run(ctx, httptransport.NewMetricsServer(cfg.MetricsAddress), logger, 10*time.Second); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	for _, topic := range cfg.ConsumerTopics {
		topic := topic
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroup,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})
		proc := consumer.NewProcessor(reader, handler,
			consumer.WithLogger(logger.With().Str("topic", topic).Logger()))

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()

			logger.Info().Str("topic", topic).Str("group", cfg.ConsumerGroup).Msg("consumer started")
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Str("topic", topic).Msg("consumer stopped with error")
			}
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("consumer shutdown requested")
	wg.Wait()
}

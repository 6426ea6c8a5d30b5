// Package outbox delivers notification events recorded alongside each stored
// notification to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Option configures optional behaviour for the Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithClaimDuration sets how long a claimed batch is hidden from other
// dispatchers before it becomes eligible again.
func WithClaimDuration(claim time.Duration) Option {
	return func(d *Dispatcher) {
		d.claimDuration = claim
	}
}

// Dispatcher drains the outbox table and delivers events to Kafka.
type Dispatcher struct {
	pool             *pgxpool.Pool
	producer         messageWriter
	logger           zerolog.Logger
	pollInterval     time.Duration
	batchSize        int
	claimDuration    time.Duration
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(pool *pgxpool.Pool, producer messageWriter, pollInterval time.Duration, batchSize int, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pool:             pool,
		producer:         producer,
		logger:           zerolog.Nop(),
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		claimDuration:    time.Minute,
		shutdownComplete: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error().Err(err).Msg("outbox dispatcher error")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	start := time.Now()

	messages, err := d.fetchAndClaim(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	if err := deliver(ctx, d.producer, messages); err != nil {
		d.logger.Warn().Err(err).Int("batch", len(messages)).Msg("outbox delivery failure")
		failedCounter.Add(float64(len(messages)))
		return d.release(ctx, messages, err.Error())
	}

	deliveredCounter.Add(float64(len(messages)))
	return d.markPublished(ctx, messages)
}

func (d *Dispatcher) fetchAndClaim(ctx context.Context) (messages []Message, err error) {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil || len(messages) == 0 {
			tx.Rollback(ctx)
		}
	}()

	const query = `SELECT event_id, aggregate_type, aggregate_id, event_type, topic, partition_key, payload
        FROM outbox
        WHERE published_at IS NULL
          AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2))
        ORDER BY event_id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, d.batchSize, d.claimDuration.Seconds())
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, d.batchSize)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Topic, &msg.PartitionKey, &msg.Payload); err != nil {
			rows.Close()
			return nil, err
		}
		messages = append(messages, msg)
		ids = append(ids, msg.EventID)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err = tx.Exec(ctx, `UPDATE outbox SET claimed_at = NOW(), attempts = attempts + 1 WHERE event_id = ANY($1)`, ids); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

// deliver groups messages by topic and writes each group in one call.
func deliver(ctx context.Context, producer messageWriter, messages []Message) error {
	batches := make(map[string][]kafka.Message)
	order := make([]string, 0)
	for _, msg := range messages {
		if _, ok := batches[msg.Topic]; !ok {
			order = append(order, msg.Topic)
		}
		batches[msg.Topic] = append(batches[msg.Topic], kafka.Message{
			Key:     []byte(msg.PartitionKey),
			Value:   []byte(msg.Payload),
			Time:    time.Now().UTC(),
			Headers: []kafka.Header{{Key: "event_type", Value: []byte(msg.EventType)}},
		})
	}

	for _, topic := range order {
		if err := producer.WriteMessages(ctx, topic, batches[topic]...); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) markPublished(ctx context.Context, messages []Message) error {
	_, err := d.pool.Exec(ctx, `UPDATE outbox SET published_at = NOW(), last_error = NULL WHERE event_id = ANY($1)`, eventIDs(messages))
	return err
}

// release makes a failed batch eligible again on the next tick.
func (d *Dispatcher) release(ctx context.Context, messages []Message, reason string) error {
	_, err := d.pool.Exec(ctx, `UPDATE outbox SET claimed_at = NULL, last_error = $2 WHERE event_id = ANY($1)`, eventIDs(messages), reason)
	return err
}

func eventIDs(messages []Message) []int64 {
	ids := make([]int64, len(messages))
	for i, msg := range messages {
		ids[i] = msg.EventID
	}
	return ids
}

// Message represents a row fetched from outbox.
type Message struct {
	EventID       int64
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	PartitionKey  string
	Payload       json.RawMessage
}

package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerOption tunes the underlying kafka writer.
type ProducerOption func(*kafka.Writer)

// WithBatchTimeout bounds how long the writer waits to fill a batch.
func WithBatchTimeout(d time.Duration) ProducerOption {
	return func(w *kafka.Writer) {
		w.BatchTimeout = d
	}
}

// WithWriteTimeout bounds a single produce request.
func WithWriteTimeout(d time.Duration) ProducerOption {
	return func(w *kafka.Writer) {
		w.WriteTimeout = d
	}
}

// KafkaProducer publishes outbox messages through one shared writer. The topic
// is stamped on each message, and keys are hashed so a client's notifications
// stay ordered on one partition.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer for brokers.
func NewKafkaProducer(brokers []string, opts ...ProducerOption) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return &KafkaProducer{writer: w}
}

// WriteMessages publishes msgs to topic and blocks until the brokers ack.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writer.WriteMessages(ctx, withTopic(topic, msgs)...)
}

// Close flushes pending batches and releases connections.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func withTopic(topic string, msgs []kafka.Message) []kafka.Message {
	out := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		m.Topic = topic
		out[i] = m
	}
	return out
}

// Package consumer feeds application lifecycle events from Kafka into the
// trigger path.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/events"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded messages from Kafka.
type Handler interface {
	Handle(context.Context, Message) error
}

// Message is the decoded representation of a client event record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Event     events.ClientEvent
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor pulls messages from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader  Reader
	handler Handler
	logger  zerolog.Logger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts a blocking loop that processes Kafka messages until the context
// is cancelled. A message is committed once handled; handler errors leave it
// uncommitted for redelivery.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.Warn().Err(err).Msg("fetch error")
			continue
		}

		decoded, decodeErr := decodeMessage(msg)
		if decodeErr != nil {
			p.logger.Warn().Err(decodeErr).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("decode error")
			recordDecodeError(msg.Topic)
			// Commit malformed messages to avoid poison-pill loops.
			if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
				p.logger.Warn().Err(commitErr).Msg("commit error after decode failure")
			}
			continue
		}

		if handleErr := p.handler.Handle(ctx, decoded); handleErr != nil {
			p.logger.Error().Err(handleErr).
				Str("event_type", string(decoded.Event.EventType)).
				Str("client_id", decoded.Event.ClientID).
				Msg("handler error")
			recordHandlerError(decoded)
			continue
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Warn().Err(commitErr).Msg("commit error")
		} else {
			recordProcessed(decoded)
		}
	}
}

// decodeMessage parses the JSON body. An event_type header overrides the
// body's field so producers can route without re-encoding payloads.
func decodeMessage(msg kafka.Message) (Message, error) {
	var event events.ClientEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return Message{}, fmt.Errorf("invalid payload: %w", err)
	}
	if header, ok := headerValue(msg, "event_type"); ok && len(header) > 0 {
		event.EventType = domain.EventType(header)
	}
	if strings.TrimSpace(event.ClientID) == "" {
		if key := strings.TrimSpace(string(msg.Key)); key != "" {
			event.ClientID = key
		} else {
			return Message{}, errors.New("missing client_id")
		}
	}
	if event.EventType == "" {
		return Message{}, errors.New("missing event_type")
	}

	return Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Event:     event,
	}, nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}

// Package events publishes quote events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

// EventQuoted is the type of events emitted for every valid quote.
const EventQuoted = "postage.quoted"

// HeaderEventType carries the event type on every message.
const HeaderEventType = "event_type"

const serviceName = "kafka"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// QuotedEvent is the payload of a postage.quoted message.
type QuotedEvent struct {
	Type       string               `json:"type"`
	OccurredAt time.Time            `json:"occurred_at"`
	Quote      *domain.PostageQuote `json:"quote"`
}

// KafkaPublisher implements ports.QuotePublisher.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return newPublisher(w, cfg.Topic, logger)
}

func newPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger.With(slog.String("component", "quote_publisher"), slog.String("topic", topic)),
		now:    time.Now,
	}
}

// PublishQuoted implements ports.QuotePublisher. Messages are keyed by cart
// ID so the quotes of one cart stay ordered within a partition.
func (p *KafkaPublisher) PublishQuoted(ctx context.Context, quote *domain.PostageQuote) error {
	payload, err := json.Marshal(QuotedEvent{Type: EventQuoted, OccurredAt: p.now().UTC(), Quote: quote})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", EventQuoted, err)
	}

	msg := kafka.Message{
		Key:     []byte(quote.CartID),
		Value:   payload,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(EventQuoted)}},
	}

	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", domain.NewUnavailableError(serviceName, "writing message"), err)
	}

	p.logger.DebugContext(ctx, "quote event published", slog.String("quote_id", quote.ID))

	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// headerCarrier adapts Kafka headers to the OTel propagator.
type headerCarrier struct {
	msg *kafka.Message
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}

	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range c.msg.Headers {
		if h.Key == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}

	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, h.Key)
	}

	return keys
}

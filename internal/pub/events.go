package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledger-service/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaEventPublisher writes ledger events to a topic, keyed by entity id.
// Writes are asynchronous; delivery errors are logged from the completion
// callback.
type KafkaEventPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaEventPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Compression:  kafka.Snappy,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	writer.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			eventsPublished.WithLabelValues("failed").Add(float64(len(messages)))
			logger.Error("failed to deliver ledger events",
				zap.String("topic", topic),
				zap.Int("count", len(messages)),
				zap.Error(err))
			return
		}
		eventsPublished.WithLabelValues("ok").Add(float64(len(messages)))
	}

	logger.Info("kafka event publisher initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic))

	return &KafkaEventPublisher{writer: writer, logger: logger}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *domain.LedgerEvent) error {
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write ledger event: %w", err)
	}
	return nil
}

// Close flushes pending writes.
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvent(event *domain.LedgerEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode ledger event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}, nil
}

// NoopEventPublisher is used when no brokers are configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, *domain.LedgerEvent) error { return nil }
func (NoopEventPublisher) Close() error                                    { return nil }

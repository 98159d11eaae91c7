package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
)

// Message is one record to publish. Key picks the partition; Value is
// serialised as JSON.
type Message struct {
	Key   string
	Value any
}

// Producer publishes JSON-encoded messages to a single topic.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			MaxAttempts:  1,
			RequiredAcks: kafka.RequireAll,
		},
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// PublishBatch writes msgs in one call. Either all are accepted or an error
// is returned; retrying is left to the caller. A value that cannot be
// marshaled fails with ErrInvalidInput before anything is written.
func (p *Producer) PublishBatch(ctx context.Context, msgs []Message) error {
	records := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		value, err := json.Marshal(m.Value)
		if err != nil {
			return fmt.Errorf("marshaling message %q: %w: %w", m.Key, apperrors.ErrInvalidInput, err)
		}
		records = append(records, kafka.Message{Key: []byte(m.Key), Value: value})
	}
	if err := p.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("writing %d messages to kafka: %w", len(records), err)
	}
	p.logger.Debug("batch published", "count", len(records))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

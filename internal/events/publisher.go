// Package events publishes status change events recorded in the history ledger
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/cardops/card-issuance-api/internal/config"
	"github.com/cardops/card-issuance-api/internal/models"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes status change events to a Kafka topic keyed by entity id,
// so events of one entity stay ordered within a partition
type KafkaPublisher struct {
	writer MessageWriter
	logger *logrus.Logger
}

// NewKafkaWriter builds the writer used in production
func NewKafkaWriter(cfg config.EventsConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.WriteTimeout,
	}
}

// NewKafkaPublisher creates a publisher over writer
func NewKafkaPublisher(writer MessageWriter, logger *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish writes all events in one batch
func (p *KafkaPublisher) Publish(ctx context.Context, events []models.StatusChangedEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal status event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.EntityID),
			Value: data,
			Time:  event.ChangedAt,
			Headers: []kafka.Header{
				{Key: "entity_type", Value: []byte(event.EntityType)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write status events: %w", err)
	}

	p.logger.WithField("count", len(msgs)).Debug("Status events published")
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(context.Context, []models.StatusChangedEvent) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }

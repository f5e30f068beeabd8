// Package events publishes the audit trail to Kafka. The marketplace
// is the system of record; the trail is best effort and a missing or
// unreachable broker never fails a publish.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"marketpush/internal/logger"

	"github.com/segmentio/kafka-go"
)

const Topic = "product-events"

const (
	TypeProductPublished     = "product.published"
	TypeProductPublishFailed = "product.publish_failed"
)

type Event struct {
	Type         string    `json:"type"`
	Marketplace  string    `json:"marketplace"`
	ProductID    string    `json:"product_id"`
	Title        string    `json:"title"`
	ImageCount   int       `json:"image_count"`
	FailedImages int       `json:"failed_images"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// NewProducer returns a no-op producer when brokers is empty.
func NewProducer(brokers string, logger *logger.Logger) *Producer {
	if strings.TrimSpace(brokers) == "" {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
		return &Producer{logger: logger}
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    Topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Producer{writer: writer, logger: logger}
}

// Emit sends one event. Failures are logged and swallowed.
func (p *Producer) Emit(event Event) {
	if p.writer == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProductID),
		Value: value,
	}); err != nil {
		p.logger.Error("Failed to publish event: %v", err)
		return
	}

	p.logger.Debug("Published event %s for %s", event.Type, event.ProductID)
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

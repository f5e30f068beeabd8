// Package worker consumes publish events from Kafka and persists them
// as publish records for the history endpoint.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"marketpush/internal/config"
	"marketpush/internal/database"
	"marketpush/internal/events"
	"marketpush/internal/logger"
	"marketpush/internal/models"

	"github.com/segmentio/kafka-go"
)

type Worker struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	reader *kafka.Reader
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "marketpush-worker",
		Topic:          events.Topic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config: cfg,
		logger: logger,
		db:     db,
		reader: reader,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for publish events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var event events.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if err := w.record(event); err != nil {
			w.logger.Error("Failed to record event: %v", err)
			continue
		}

		w.logger.Debug("Event recorded successfully")
	}
}

func (w *Worker) record(event events.Event) error {
	record := models.PublishRecord{
		EventType:    event.Type,
		Marketplace:  event.Marketplace,
		RemoteID:     event.ProductID,
		Title:        event.Title,
		ImageCount:   event.ImageCount,
		FailedImages: event.FailedImages,
		PublishedAt:  event.Timestamp,
	}
	if event.Error != "" {
		record.Error = &event.Error
	}

	return w.db.DB.Create(&record).Error
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}

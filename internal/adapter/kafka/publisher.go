// Package kafka publishes completed aggregate results to an alert topic.
// Publishing is feature-flagged; the file store remains the source of truth.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rainalert/radar-monitor/internal/config"
	"github.com/rainalert/radar-monitor/internal/domain"
)

// Publisher produces aggregate results to the alert topic.
// It implements orchestrator.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured alert topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the result and writes it to the alert topic.
func (p *Publisher) Publish(ctx context.Context, result domain.AggregateResult) error {
	msg, err := buildMessage(result)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write alert message: %w", err)
	}
	p.logger.Info("aggregate result published",
		"topic", p.writer.Topic,
		"highest_alert", result.HighestAlertLevel(),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// buildMessage marshals an AggregateResult into a Kafka message. The key is
// fixed so a compacted topic retains only the latest result, mirroring the
// single-slot file store.
func buildMessage(result domain.AggregateResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize aggregate result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte("latest"),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_level", Value: []byte(result.HighestAlertLevel())},
			{Key: "captured_at", Value: []byte(result.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

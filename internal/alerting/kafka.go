package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/RESPONDR/respondr/internal/models"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher produces crowd anomaly events to a Kafka topic so downstream
// alerting and dashboards consume surges without polling the API.
// It implements crowd.AlertPublisher.
type KafkaPublisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a producer for the configured alert topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

// PublishAnomaly serializes and publishes one anomaly event. Messages are
// keyed by location so per-location ordering survives partitioning.
func (p *KafkaPublisher) PublishAnomaly(ctx context.Context, event models.CrowdAnomalyEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize anomaly event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.LocationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "anomaly_type", Value: []byte(event.Type)},
			{Key: "detected_at", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish anomaly event: %w", err)
	}

	p.logger.Debug("published anomaly event",
		"location_id", event.LocationID, "type", event.Type)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Package kafka publishes artifact-published notifications so downstream
// cache invalidation can react to freshly prepared datasets. The notifier is
// optional; CLI runs without brokers configured never construct one.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
)

// Notifier produces one message per final artifact.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a producer for the artifact topic.
func NewNotifier(brokers []string, topic string, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// Publish serializes and sends one artifact event, keyed by dataset so
// consumers see per-dataset ordering.
func (n *Notifier) Publish(ctx context.Context, event domain.ArtifactEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize artifact event: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(event.Dataset),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mock", Value: []byte(strconv.FormatBool(event.Mock))},
			{Key: "produced_at", Value: []byte(event.ProducedAt.Format(time.RFC3339))},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish artifact event: %w", err)
	}
	n.logger.Info("published artifact event", "dataset", event.Dataset, "path", event.Path)
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

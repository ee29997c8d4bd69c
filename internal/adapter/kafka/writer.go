package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/config"
	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces assessment results to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple results to the sink Kafka
// topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, results []domain.Result) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Result into a Kafka message keyed by
// location, so every assessment for a slope lands on the same partition.
func serializeToMessage(res domain.Result) (kafkago.Message, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.LocationKey(res.Assessment.Location)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(res.Assessment.RiskLevel)},
			{Key: "strategy", Value: []byte(res.Assessment.Strategy)},
			{Key: "alert", Value: []byte(strconv.FormatBool(res.Alert != nil))},
			{Key: "processed_at", Value: []byte(res.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/config"
	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToSubmission(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"soil_moisture":{"value":45}}`),
		Topic:     "environmental-readings",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: domain.KindHeader, Value: []byte("sensors")},
		},
	}

	sub := mapMessageToSubmission(msg)

	assert.Equal(t, []byte("key-1"), sub.Key)
	assert.JSONEq(t, `{"soil_moisture":{"value":45}}`, string(sub.Value))
	assert.Equal(t, "environmental-readings", sub.Topic)
	assert.Equal(t, 2, sub.Partition)
	assert.Equal(t, int64(42), sub.Offset)
	assert.Equal(t, now, sub.Timestamp)
	assert.Equal(t, domain.KindSensors, sub.Kind())
	assert.Nil(t, sub.Commit)
}

func TestMapMessageWithoutHeadersIsEnvironmental(t *testing.T) {
	sub := mapMessageToSubmission(kafkago.Message{Value: []byte(`{}`)})
	assert.Empty(t, sub.Headers)
	assert.Equal(t, domain.KindEnvironmental, sub.Kind())
}

func TestReaderMapMessageSetsCommit(t *testing.T) {
	r := NewReader(&config.Config{
		KafkaBrokers:     []string{"localhost:9092"},
		KafkaGroupID:     "test",
		KafkaSourceTopic: "environmental-readings",
	}, nil)
	t.Cleanup(func() { _ = r.Close() })

	sub := r.mapMessage(kafkago.Message{Topic: "environmental-readings", Offset: 7})
	assert.NotNil(t, sub.Commit)
	assert.Equal(t, int64(7), sub.Offset)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 4, 26, 12, 0, 0, 0, time.UTC)
	res := domain.Result{
		Assessment: domain.RiskAssessment{
			ID:        "assessment_1745668800000",
			Strategy:  domain.StrategyFourFactor,
			Location:  domain.Location{Latitude: -23.55, Longitude: -46.63},
			RiskScore: 80,
			RiskLevel: domain.LevelCritical,
		},
		Alert:       &domain.Alert{Type: domain.AlertCritical},
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(res)
	require.NoError(t, err)

	assert.Equal(t, []byte("-23.55_-46.63"), msg.Key)
	assert.Contains(t, string(msg.Value), `"risk_level":"critical"`)

	var decoded domain.Result
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, res.Assessment.ID, decoded.Assessment.ID)
	require.NotNil(t, decoded.Alert)

	require.Len(t, msg.Headers, 4)
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{
		"risk_level":   "critical",
		"strategy":     "four_factor",
		"alert":        "true",
		"processed_at": now.Format(time.RFC3339),
	}, headers)
}

func TestSerializeToMessageWithoutAlert(t *testing.T) {
	msg, err := serializeToMessage(domain.Result{Assessment: domain.RiskAssessment{RiskLevel: domain.LevelLow}})
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), `"alert"`)
	assert.Equal(t, "alert", msg.Headers[2].Key)
	assert.Equal(t, []byte("false"), msg.Headers[2].Value)
}

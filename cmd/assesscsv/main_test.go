package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/csvsource"
	"github.com/couchcryptid/landslide-risk-engine/internal/assess"
	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/couchcryptid/landslide-risk-engine/internal/observability"
	"github.com/couchcryptid/landslide-risk-engine/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *assess.Engine {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 4, 26, 21, 0, 0, 0, time.UTC))
	logger := slog.New(slog.DiscardHandler)
	st := store.New(store.NewMemoryBlobStore(), store.WithClock(clock), store.WithLogger(logger))
	require.NoError(t, st.Open(context.Background()))
	return assess.New(st, logger, observability.NewMetricsForTesting(), clock)
}

func TestAssessAllMockData(t *testing.T) {
	inputs, err := csvsource.ReadFile(filepath.Join("..", "..", "data", "mock", "environmental_readings.csv"))
	require.NoError(t, err)

	results, rejected, err := assessAll(context.Background(), newEngine(t), inputs)
	require.NoError(t, err)
	assert.Zero(t, rejected)
	require.Len(t, results, len(inputs))

	var buf bytes.Buffer
	printStats(&buf, results)
	assert.Contains(t, buf.String(), "Total: 8")
	assert.Contains(t, buf.String(), "critical=2 high=1 medium=1 low=4")
	assert.Contains(t, buf.String(), "Alerts: 3")
}

func TestAssessAllSkipsInvalidRows(t *testing.T) {
	inputs := []domain.EnvironmentalInput{
		{SoilMoisture: "wet", Location: domain.Location{Latitude: 1, Longitude: 1}},
		{
			SoilMoisture: "40", SlopeInclination: "15", Rainfall: "5", RiverLevel: "0.5",
			Temperature: "24", Humidity: "72", WindSpeed: "2",
			Location: domain.Location{Latitude: 1, Longitude: 1},
		},
	}

	results, rejected, err := assessAll(context.Background(), newEngine(t), inputs)
	require.NoError(t, err)
	assert.Equal(t, 1, rejected)
	require.Len(t, results, 1)
	assert.Equal(t, 27, results[0].Assessment.RiskScore)
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.json")
	require.NoError(t, writeJSON(path, []domain.Result{{Assessment: domain.RiskAssessment{ID: "assessment_1"}}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []domain.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "assessment_1", decoded[0].Assessment.ID)
}

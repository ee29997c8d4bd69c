package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/csvsource"
	"github.com/couchcryptid/landslide-risk-engine/internal/assess"
	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/couchcryptid/landslide-risk-engine/internal/pipeline"
	"github.com/couchcryptid/landslide-risk-engine/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expectedRow struct {
	score     int
	level     domain.RiskLevel
	forecast  domain.RiskLevel // all three horizons agree for these rows
	unbounded bool
	alert     bool
}

func TestPipeline_WithMockCSVData(t *testing.T) {
	inputs, err := csvsource.ReadFile(filepath.Join("..", "..", "data", "mock", "environmental_readings.csv"))
	require.NoError(t, err)

	want := []expectedRow{
		{score: 27, level: domain.LevelLow, forecast: domain.LevelLow},
		{score: 41, level: domain.LevelMedium, forecast: domain.LevelMedium},
		{score: 57, level: domain.LevelHigh, forecast: domain.LevelCritical, alert: true},
		{score: 70, level: domain.LevelCritical, forecast: domain.LevelCritical, unbounded: true, alert: true},
		{score: 14, level: domain.LevelLow, forecast: domain.LevelLow},
		{score: 15, level: domain.LevelLow, forecast: domain.LevelLow},
		{score: 18, level: domain.LevelLow, forecast: domain.LevelLow},
		{score: 81, level: domain.LevelCritical, forecast: domain.LevelCritical, alert: true},
	}
	require.Len(t, inputs, len(want))

	subs := make([]domain.Submission, len(inputs))
	for i, in := range inputs {
		payload, err := json.Marshal(in)
		require.NoError(t, err)
		subs[i] = domain.Submission{
			Key:    []byte(fmt.Sprintf("reading-%d", i)),
			Value:  payload,
			Topic:  "environmental-readings",
			Offset: int64(i),
		}
	}

	clock := clockwork.NewFakeClockAt(time.Date(2025, 4, 26, 21, 0, 0, 0, time.UTC))
	s := store.New(store.NewMemoryBlobStore(), store.WithClock(clock), store.WithLogger(discardLogger()))
	require.NoError(t, s.Open(context.Background()))
	metrics := newTestMetrics()
	engine := assess.New(s, discardLogger(), metrics, clock)

	ldr := &mockLoader{}
	// One submission per batch keeps the history order identical to the file.
	p := pipeline.New(&mockExtractor{subs: subs}, pipeline.NewTransformer(engine, discardLogger(), metrics), ldr, discardLogger(), metrics, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	require.Len(t, ldr.loaded, len(want))
	for i, w := range want {
		res := ldr.loaded[i]
		name := fmt.Sprintf("row %d (%s)", i+1, inputs[i].Location.Name)

		assert.Equal(t, w.score, res.Assessment.RiskScore, name)
		assert.Equal(t, w.level, res.Assessment.RiskLevel, name)
		assert.Equal(t, domain.Forecast{
			Next24h: w.forecast, Next48h: w.forecast, Next72h: w.forecast, Unbounded: w.unbounded,
		}, res.Assessment.Predictions, name)
		assert.Equal(t, w.alert, res.Alert != nil, name)
		assert.Equal(t, inputs[i].Location, res.Assessment.Location, name)
	}

	assert.Equal(t, []float64{27, 41, 57, 70}, s.HistoryFor(inputs[0].Location))
	assert.Equal(t, []float64{14, 15, 18}, s.HistoryFor(inputs[4].Location))
	assert.Len(t, s.Readings(), len(want))

	counts := domain.CountByLevel(s.All())
	assert.Equal(t, map[domain.RiskLevel]int{
		domain.LevelLow:      4,
		domain.LevelMedium:   1,
		domain.LevelHigh:     1,
		domain.LevelCritical: 2,
	}, counts)
}

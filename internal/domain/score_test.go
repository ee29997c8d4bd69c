package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoFactorScore(t *testing.T) {
	tests := []struct {
		name     string
		factors  TwoFactor
		expected int
	}{
		{"zero inputs", TwoFactor{0, 0}, 0},
		{"saturated", TwoFactor{100, 45}, 100},
		{"halfway", TwoFactor{50, 22.5}, 50},
		{"above range clamps", TwoFactor{250, 90}, 100},
		{"negative inputs clamp", TwoFactor{-40, -10}, 0},
		{"moisture only", TwoFactor{100, 0}, 60},
		{"inclination only", TwoFactor{0, 45}, 40},
		{"rounds down", TwoFactor{45, 15}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := tt.factors.Score()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestFourFactorScore(t *testing.T) {
	tests := []struct {
		name     string
		factors  FourFactor
		expected int
	}{
		{"zero inputs", FourFactor{0, 0, 0, 0}, 0},
		{"saturation points", FourFactor{100, 45, 50, 3}, 100},
		{"beyond saturation caps each term", FourFactor{150, 90, 200, 10}, 100},
		{"moisture only", FourFactor{100, 0, 0, 0}, 30},
		{"rainfall only", FourFactor{0, 0, 50, 0}, 20},
		{"river only", FourFactor{0, 0, 0, 1.5}, 10},
		{"negatives bounded at zero", FourFactor{-100, -45, -50, -3}, 0},
		{"rounds to nearest", FourFactor{85, 35, 35, 2.5}, 80},
		{"half rounds away from zero", FourFactor{5, 0, 0, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := tt.factors.Score()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestScoreRejectsNonFinite(t *testing.T) {
	t.Run("two factor NaN", func(t *testing.T) {
		_, err := TwoFactor{SoilMoisture: math.NaN(), SlopeInclination: 10}.Score()

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "soil_moisture", verr.Fields[0].Field)
	})

	t.Run("four factor infinities", func(t *testing.T) {
		_, err := FourFactor{SoilMoisture: 10, SlopeInclination: 10, Rainfall: math.Inf(1), RiverLevel: math.Inf(-1)}.Score()

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []FieldError{
			{Field: "rainfall", Reason: "must be a finite number"},
			{Field: "river_level", Reason: "must be a finite number"},
		}, verr.Fields)
	})
}

func TestScoreMonotonic(t *testing.T) {
	prev := -1
	for m := 0.0; m <= 120; m += 5 {
		score, err := TwoFactor{SoilMoisture: m, SlopeInclination: 20}.Score()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, prev, "moisture %v", m)
		prev = score
	}

	prev = -1
	for i := 0.0; i <= 45; i += 2.5 {
		score, err := TwoFactor{SoilMoisture: 50, SlopeInclination: i}.Score()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, prev, "inclination %v", i)
		prev = score
	}
	assert.Equal(t, 70, prev)

	prev = -1
	for r := 0.0; r <= 80; r += 4 {
		score, err := FourFactor{SoilMoisture: 40, SlopeInclination: 20, Rainfall: r, RiverLevel: 1}.Score()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, prev, "rainfall %v", r)
		prev = score
	}
}

func TestStrategyPairing(t *testing.T) {
	// 75 is high under the two-factor thresholds and critical under the
	// four-factor thresholds.
	assert.Equal(t, LevelHigh, StrategyTwoFactor.Classify(75))
	assert.Equal(t, LevelCritical, StrategyFourFactor.Classify(75))

	history := []float64{10, 50, 20, 30, 40, 60}
	assert.InDelta(t, 50.0, StrategyTwoFactor.Trend(history), 1e-9)
	assert.InDelta(t, 2.5, StrategyFourFactor.Trend(history), 1e-9)

	assert.False(t, StrategyTwoFactor.Forecast(95, 40).Unbounded)
	assert.True(t, StrategyFourFactor.Forecast(95, 40).Unbounded)
}

func TestEndToEndScenarios(t *testing.T) {
	t.Run("four factor critical", func(t *testing.T) {
		f := FourFactor{SoilMoisture: 85, SlopeInclination: 35, Rainfall: 35, RiverLevel: 2.5}
		score, err := f.Score()
		require.NoError(t, err)

		assert.Equal(t, 80, score)
		assert.Equal(t, LevelCritical, f.Strategy().Classify(float64(score)))
	})

	t.Run("two factor medium", func(t *testing.T) {
		f := TwoFactor{SoilMoisture: 45, SlopeInclination: 15}
		score, err := f.Score()
		require.NoError(t, err)

		assert.Equal(t, 40, score)
		assert.Equal(t, LevelMedium, f.Strategy().Classify(float64(score)))
	})
}

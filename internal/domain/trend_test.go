package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowedTrend(t *testing.T) {
	tests := []struct {
		name     string
		history  []float64
		expected float64
	}{
		{"nil", nil, 0},
		{"single entry", []float64{42}, 0},
		{"two entries", []float64{40, 50}, 10},
		{"rising by one", []float64{1, 2, 3, 4, 5}, 1},
		{"flat", []float64{30, 30, 30, 30}, 0},
		{"falling", []float64{80, 70, 60}, -10},
		{"only the last five count", []float64{0, 100, 10, 20, 30, 40, 50}, 10},
		{"mean of differences", []float64{10, 20, 15, 25}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WindowedTrend(tt.history), 1e-9)
		})
	}
}

func TestSpanTrend(t *testing.T) {
	tests := []struct {
		name     string
		history  []float64
		expected float64
	}{
		{"nil", nil, 0},
		{"single entry", []float64{42}, 0},
		{"rising", []float64{1, 2, 3, 4, 5}, 4},
		{"ignores the middle", []float64{20, 90, 0, 25}, 5},
		{"falling", []float64{60, 40}, -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SpanTrend(tt.history), 1e-9)
		})
	}
}

package domain

import (
	"strconv"
	"time"
)

// Location is a raw WGS-84 coordinate with a display name. No geocoding is
// performed; locations are compared by their coordinates only.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Name      string  `json:"name"`
}

// Reading is a single sensor measurement. Value is a pointer so a reading
// without a value is rejected instead of scored as zero.
type Reading struct {
	Value      *float64  `json:"value" validate:"required"`
	Unit       string    `json:"unit"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewReading returns a reading of value observed at observedAt.
func NewReading(value float64, unit string, observedAt time.Time) *Reading {
	return &Reading{Value: &value, Unit: unit, ObservedAt: observedAt}
}

func (r *Reading) value() float64 {
	if r == nil || r.Value == nil {
		return 0
	}
	return *r.Value
}

// LocationKey derives the history key for a location: "<lat>_<lon>" using the
// shortest representation that round-trips each coordinate. Two locations
// share a history only when both coordinates format identically.
func LocationKey(loc Location) string {
	return formatCoord(loc.Latitude) + "_" + formatCoord(loc.Longitude)
}

func formatCoord(v float64) string {
	// Adding zero folds -0 into 0.
	return strconv.FormatFloat(v+0, 'f', -1, 64)
}

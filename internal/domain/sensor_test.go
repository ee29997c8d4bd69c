package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSensorStatuses(t *testing.T) {
	tests := []struct {
		moisture, inclination float64
		expected              SensorStatuses
	}{
		{20, 5, SensorStatuses{SensorActive, SensorActive}},
		{60, 19.9, SensorStatuses{SensorActive, SensorActive}},
		{61, 20, SensorStatuses{SensorWarning, SensorWarning}},
		{80, 30, SensorStatuses{SensorCritical, SensorCritical}},
		{95, 44, SensorStatuses{SensorCritical, SensorCritical}},
	}

	for _, tt := range tests {
		in := SensorInput{
			SoilMoisture: NewReading(tt.moisture, "%", time.Time{}),
			Inclination:  NewReading(tt.inclination, "deg", time.Time{}),
		}
		assert.Equal(t, tt.expected, in.Statuses(), "moisture %v inclination %v", tt.moisture, tt.inclination)
	}
}

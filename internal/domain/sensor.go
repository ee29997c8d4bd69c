package domain

// SensorStatus is the alarm state of a single reading.
type SensorStatus string

const (
	SensorActive   SensorStatus = "active"
	SensorWarning  SensorStatus = "warning"
	SensorCritical SensorStatus = "critical"
)

// SoilMoistureThresholds are the field-calibrated moisture bands (%).
var SoilMoistureThresholds = struct {
	Dry, Normal, Saturated float64
}{Dry: 30, Normal: 60, Saturated: 80}

// InclinometerThresholds are the slope-movement bands (degrees).
var InclinometerThresholds = struct {
	Stable, Warning, Critical float64
}{Stable: 10, Warning: 20, Critical: 30}

// SoilMoistureStatus is critical once the soil is saturated and a warning
// above normal moisture.
func SoilMoistureStatus(percent float64) SensorStatus {
	switch {
	case percent >= SoilMoistureThresholds.Saturated:
		return SensorCritical
	case percent > SoilMoistureThresholds.Normal:
		return SensorWarning
	default:
		return SensorActive
	}
}

// InclinationStatus is critical at or above the critical inclination and a
// warning at or above the warning inclination.
func InclinationStatus(degrees float64) SensorStatus {
	switch {
	case degrees >= InclinometerThresholds.Critical:
		return SensorCritical
	case degrees >= InclinometerThresholds.Warning:
		return SensorWarning
	default:
		return SensorActive
	}
}

// SensorStatuses reports the status of each reading in a sensor submission.
type SensorStatuses struct {
	SoilMoisture SensorStatus `json:"soil_moisture"`
	Inclination  SensorStatus `json:"inclination"`
}

// Statuses classifies both readings of in.
func (in SensorInput) Statuses() SensorStatuses {
	return SensorStatuses{
		SoilMoisture: SoilMoistureStatus(in.SoilMoisture.value()),
		Inclination:  InclinationStatus(in.Inclination.value()),
	}
}

package domain

import "time"

// TimestampLayout is the ISO-8601 layout used for persisted timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// RiskAssessment is the persisted result of one assessment. Records are
// immutable once stored.
type RiskAssessment struct {
	ID           string    `json:"id"`
	Strategy     Strategy  `json:"strategy"`
	Location     Location  `json:"location"`
	SoilMoisture float64   `json:"soil_moisture"`
	Inclination  float64   `json:"inclination"`
	Rainfall     *float64  `json:"rainfall,omitempty"`
	RiverLevel   *float64  `json:"river_level,omitempty"`
	RiskScore    int       `json:"risk_score"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Timestamp    string    `json:"timestamp"`
	Predictions  Forecast  `json:"predictions"`
}

// NewAssessment builds an unsaved assessment from scored factors. ID and
// Timestamp are left empty for the store to assign.
func NewAssessment(loc Location, f Factors, score int, forecast Forecast) RiskAssessment {
	a := RiskAssessment{
		Strategy:     f.Strategy(),
		Location:     loc,
		SoilMoisture: f.Moisture(),
		Inclination:  f.Inclination(),
		RiskScore:    score,
		RiskLevel:    f.Strategy().Classify(float64(score)),
		Predictions:  forecast,
	}
	if ff, ok := f.(FourFactor); ok {
		rainfall, river := ff.Rainfall, ff.RiverLevel
		a.Rainfall = &rainfall
		a.RiverLevel = &river
	}
	return a
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// CountByLevel tallies assessments per risk level. Every level is present in
// the result, zero when unused.
func CountByLevel(assessments []RiskAssessment) map[RiskLevel]int {
	counts := map[RiskLevel]int{
		LevelLow:      0,
		LevelMedium:   0,
		LevelHigh:     0,
		LevelCritical: 0,
	}
	for _, a := range assessments {
		counts[a.RiskLevel]++
	}
	return counts
}

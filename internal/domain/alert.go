package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// AlertType distinguishes critical alerts from warnings.
type AlertType string

const (
	AlertWarning  AlertType = "warning"
	AlertCritical AlertType = "critical"
)

// Alert is raised for assessments classified high or critical.
type Alert struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessment_id"`
	Type         AlertType `json:"type"`
	Message      string    `json:"message"`
	Location     Location  `json:"location"`
	Timestamp    string    `json:"timestamp"`
}

// NewAlert returns an alert for a, or nil when the level is medium or low.
func NewAlert(a RiskAssessment) *Alert {
	if !a.RiskLevel.Alerting() {
		return nil
	}

	alertType, label := AlertWarning, "HIGH"
	if a.RiskLevel == LevelCritical {
		alertType, label = AlertCritical, "CRITICAL"
	}

	return &Alert{
		ID:           uuid.NewString(),
		AssessmentID: a.ID,
		Type:         alertType,
		Message: fmt.Sprintf("%s landslide risk detected at %s. Soil moisture: %s%%, Inclination: %s°",
			label, a.Location.Name, formatReading(a.SoilMoisture), formatReading(a.Inclination)),
		Location:  a.Location,
		Timestamp: FormatTimestamp(clock.Now()),
	}
}

func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

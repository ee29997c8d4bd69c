package domain

// RiskLevel is the ordinal classification of a risk score.
type RiskLevel string

const (
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
)

// Rank orders levels from 0 (low) to 3 (critical). Unknown levels rank -1.
func (l RiskLevel) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelCritical:
		return 3
	default:
		return -1
	}
}

// Alerting reports whether the level warrants an alert.
func (l RiskLevel) Alerting() bool {
	return l == LevelHigh || l == LevelCritical
}

// ClassifyPolicyA maps a score to a level using the thresholds paired with the
// two-factor scorer. Bands are closed on their lower bound:
//
//	>=80 critical | >=60 high | >=40 medium | else low
func ClassifyPolicyA(score float64) RiskLevel {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ClassifyPolicyB maps a score to a level using the thresholds paired with the
// four-factor scorer. Bands are open on their upper bound:
//
//	<30 low | <50 medium | <70 high | else critical
func ClassifyPolicyB(score float64) RiskLevel {
	switch {
	case score < 30:
		return LevelLow
	case score < 50:
		return LevelMedium
	case score < 70:
		return LevelHigh
	default:
		return LevelCritical
	}
}

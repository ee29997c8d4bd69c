package domain

// Forecast holds the projected risk level at each horizon.
type Forecast struct {
	Next24h RiskLevel `json:"next24h"`
	Next48h RiskLevel `json:"next48h"`
	Next72h RiskLevel `json:"next72h"`

	// Unbounded is set when a projected score fell outside [0,100] and was
	// classified as-is. Levels at the extremes are then saturated rather
	// than modeled.
	Unbounded bool `json:"unbounded,omitempty"`
}

// Horizon multipliers applied to the trend.
var (
	unboundedMultipliers = [3]float64{1, 2, 3}
	clampedMultipliers   = [3]float64{0.5, 1.0, 1.5}
)

// ProjectUnbounded projects score + trend*{1,2,3} and classifies each with
// Policy B. Projections are not clamped.
func ProjectUnbounded(score int, trend float64) Forecast {
	var projected [3]float64
	var f Forecast
	for i, m := range unboundedMultipliers {
		projected[i] = float64(score) + trend*m
		if projected[i] < 0 || projected[i] > 100 {
			f.Unbounded = true
		}
	}
	f.Next24h = ClassifyPolicyB(projected[0])
	f.Next48h = ClassifyPolicyB(projected[1])
	f.Next72h = ClassifyPolicyB(projected[2])
	return f
}

// ProjectClamped projects clamp(score + trend*{0.5,1,1.5}, 0, 100) and
// classifies each with Policy A.
func ProjectClamped(score int, trend float64) Forecast {
	var projected [3]float64
	for i, m := range clampedMultipliers {
		projected[i] = clamp(float64(score)+trend*m, 0, 100)
	}
	return Forecast{
		Next24h: ClassifyPolicyA(projected[0]),
		Next48h: ClassifyPolicyA(projected[1]),
		Next72h: ClassifyPolicyA(projected[2]),
	}
}

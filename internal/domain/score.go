package domain

import (
	"math"
)

// Strategy names one of the two scoring pipelines. Each strategy owns its
// classification policy, trend estimator, and forecast projection; results
// from one strategy are never classified with the other's thresholds.
type Strategy string

const (
	StrategyTwoFactor  Strategy = "two_factor"
	StrategyFourFactor Strategy = "four_factor"
)

// Classify applies the strategy's threshold policy.
func (s Strategy) Classify(score float64) RiskLevel {
	if s == StrategyTwoFactor {
		return ClassifyPolicyA(score)
	}
	return ClassifyPolicyB(score)
}

// Trend estimates per-step score velocity from a location's history.
func (s Strategy) Trend(history []float64) float64 {
	if s == StrategyTwoFactor {
		return SpanTrend(history)
	}
	return WindowedTrend(history)
}

// Forecast projects the current score over the 24h/48h/72h horizons.
func (s Strategy) Forecast(score int, trend float64) Forecast {
	if s == StrategyTwoFactor {
		return ProjectClamped(score, trend)
	}
	return ProjectUnbounded(score, trend)
}

// Factors is the set of normalized inputs for one scoring strategy.
// Implemented by TwoFactor and FourFactor only.
type Factors interface {
	Strategy() Strategy
	// Score returns the 0–100 risk score, or a *ValidationError when an input
	// is NaN or infinite.
	Score() (int, error)
	// Moisture and Inclination are the values recorded on the assessment.
	Moisture() float64
	Inclination() float64
}

// TwoFactor scores soil moisture (%) and slope inclination (degrees).
type TwoFactor struct {
	SoilMoisture     float64 `json:"soil_moisture"`
	SlopeInclination float64 `json:"slope_inclination"`
}

func (TwoFactor) Strategy() Strategy      { return StrategyTwoFactor }
func (f TwoFactor) Moisture() float64    { return f.SoilMoisture }
func (f TwoFactor) Inclination() float64 { return f.SlopeInclination }

// Score weights normalized moisture 0.6 and inclination 0.4. Moisture is
// normalized against 100%, inclination against a 45° critical slope, each
// clamped to [0,1].
func (f TwoFactor) Score() (int, error) {
	if err := checkFinite(
		namedValue{"soil_moisture", f.SoilMoisture},
		namedValue{"slope_inclination", f.SlopeInclination},
	); err != nil {
		return 0, err
	}

	moisture := clamp(f.SoilMoisture/100, 0, 1)
	inclination := clamp(f.SlopeInclination/45, 0, 1)

	return roundScore((moisture*0.6 + inclination*0.4) * 100), nil
}

// FourFactor adds rainfall (mm/h) and river level (m) to the two-factor inputs.
type FourFactor struct {
	SoilMoisture     float64 `json:"soil_moisture"`
	SlopeInclination float64 `json:"slope_inclination"`
	Rainfall         float64 `json:"rainfall"`
	RiverLevel       float64 `json:"river_level"`
}

func (FourFactor) Strategy() Strategy      { return StrategyFourFactor }
func (f FourFactor) Moisture() float64    { return f.SoilMoisture }
func (f FourFactor) Inclination() float64 { return f.SlopeInclination }

// Score weights moisture and inclination 0.3 each, rainfall and river level
// 0.2 each. Every term is already on a 0–100 scale:
//   - moisture: the raw percentage clamped to [0,100]
//   - inclination: 45° saturates at 100
//   - rainfall: 50 mm/h saturates at 100
//   - river level: 3 m saturates at 100
func (f FourFactor) Score() (int, error) {
	if err := checkFinite(
		namedValue{"soil_moisture", f.SoilMoisture},
		namedValue{"slope_inclination", f.SlopeInclination},
		namedValue{"rainfall", f.Rainfall},
		namedValue{"river_level", f.RiverLevel},
	); err != nil {
		return 0, err
	}

	moisture := clamp(f.SoilMoisture, 0, 100)
	inclination := math.Min(f.SlopeInclination/45*100, 100)
	rainfall := math.Min(f.Rainfall/50*100, 100)
	river := math.Min(f.RiverLevel/3*100, 100)

	return roundScore(moisture*0.3 + inclination*0.3 + rainfall*0.2 + river*0.2), nil
}

type namedValue struct {
	field string
	value float64
}

func checkFinite(values ...namedValue) error {
	var fields []FieldError
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			fields = append(fields, FieldError{Field: v.field, Reason: "must be a finite number"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// roundScore rounds half away from zero and bounds the result to [0,100].
// Negative inputs are accepted and can only pull a term below zero, so the
// final bound keeps the scorer's range regardless.
func roundScore(raw float64) int {
	return int(clamp(math.Round(raw), 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

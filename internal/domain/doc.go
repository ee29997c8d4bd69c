// Package domain models landslide risk assessment: factor scoring,
// classification, trend estimation, and short-term forecasting.
//
// # Scoring strategies
//
// Two strategies coexist and are never mixed. Each owns a classification
// policy, a trend estimator, and a forecast projection:
//
//	two_factor:  soil moisture, slope inclination
//	  score    = round((0.6*clamp(m/100) + 0.4*clamp(i/45)) * 100)
//	  policy A = >=80 critical | >=60 high | >=40 medium | else low
//	  trend    = last - first over the whole history
//	  forecast = clamp(score + trend*{0.5, 1.0, 1.5}, 0, 100)
//
//	four_factor: soil moisture, slope inclination, rainfall, river level
//	  score    = round(0.3*m + 0.3*min(i/45*100,100) + 0.2*min(r/50*100,100) + 0.2*min(v/3*100,100))
//	  policy B = <30 low | <50 medium | <70 high | else critical
//	  trend    = mean first difference over the last 5 history entries
//	  forecast = score + trend*{1, 2, 3}, unclamped; Forecast.Unbounded marks
//	             projections outside [0,100]
//
// Units: moisture in percent, inclination in degrees, rainfall in mm/h, river
// level in metres.
//
// # Inputs
//
// Manual submissions ([EnvironmentalInput]) arrive as decimal strings.
// go-playground/validator reports missing fields, then each field must parse
// with strconv.ParseFloat to a finite value; every failure is named in one
// [ValidationError]. Sensor submissions ([SensorInput]) require both readings
// and their values. Negative values are accepted and the final score is
// bounded to [0,100].
//
// # Locations
//
// History is keyed by [LocationKey], an exact "<lat>_<lon>" string. Proximity
// searches in the store use a coordinate bounding box instead. The two are
// deliberately different.
package domain

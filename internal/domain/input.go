package domain

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata and is safe for
// concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so errors match what callers sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is returned before any scoring happens when an input is
// missing, non-numeric, or not finite.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// EnvironmentalInput is a manual environmental submission. Every measurement
// arrives as a decimal string and all seven are required. Any string
// strconv.ParseFloat accepts with a finite result is a valid measurement.
type EnvironmentalInput struct {
	SoilMoisture     string   `json:"soil_moisture" validate:"required"`
	SlopeInclination string   `json:"slope_inclination" validate:"required"`
	Rainfall         string   `json:"rainfall" validate:"required"`
	RiverLevel       string   `json:"river_level" validate:"required"`
	Temperature      string   `json:"temperature" validate:"required"`
	Humidity         string   `json:"humidity" validate:"required"`
	WindSpeed        string   `json:"wind_speed" validate:"required"`
	Notes            string   `json:"notes,omitempty"`
	Timestamp        string   `json:"timestamp,omitempty"`
	Location         Location `json:"location"`
}

// Normalize returns a copy with surrounding whitespace removed from every
// measurement.
func (in EnvironmentalInput) Normalize() EnvironmentalInput {
	in.SoilMoisture = strings.TrimSpace(in.SoilMoisture)
	in.SlopeInclination = strings.TrimSpace(in.SlopeInclination)
	in.Rainfall = strings.TrimSpace(in.Rainfall)
	in.RiverLevel = strings.TrimSpace(in.RiverLevel)
	in.Temperature = strings.TrimSpace(in.Temperature)
	in.Humidity = strings.TrimSpace(in.Humidity)
	in.WindSpeed = strings.TrimSpace(in.WindSpeed)
	return in
}

// Validate checks presence and numeric format of each measurement and the
// location coordinates.
func (in EnvironmentalInput) Validate() error {
	_, err := in.Factors()
	return err
}

// Factors validates the input and parses the four scoring measurements.
// Missing fields are reported before unparsable ones.
func (in EnvironmentalInput) Factors() (FourFactor, error) {
	in = in.Normalize()

	var p parser
	if err := validateStruct(in); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return FourFactor{}, err
		}
		p.fields = verr.Fields
	}

	f := FourFactor{
		SoilMoisture:     p.float("soil_moisture", in.SoilMoisture),
		SlopeInclination: p.float("slope_inclination", in.SlopeInclination),
		Rainfall:         p.float("rainfall", in.Rainfall),
		RiverLevel:       p.float("river_level", in.RiverLevel),
	}
	p.float("temperature", in.Temperature)
	p.float("humidity", in.Humidity)
	p.float("wind_speed", in.WindSpeed)
	if err := p.err(); err != nil {
		return FourFactor{}, err
	}
	return f, nil
}

// SensorInput carries the latest soil-moisture and inclinometer readings for
// a monitored slope.
type SensorInput struct {
	SoilMoisture *Reading `json:"soil_moisture" validate:"required"`
	Inclination  *Reading `json:"inclination" validate:"required"`
	Location     Location `json:"location"`
}

// Factors checks that both readings carry a value and the location is valid,
// then returns the two-factor inputs.
func (in SensorInput) Factors() (TwoFactor, error) {
	if err := validateStruct(in); err != nil {
		return TwoFactor{}, err
	}
	return TwoFactor{
		SoilMoisture:     in.SoilMoisture.value(),
		SlopeInclination: in.Inclination.value(),
	}, nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fieldPath(fe), Reason: reasonFor(fe.Tag())})
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the root struct name from the namespace,
// e.g. "EnvironmentalInput.location.latitude" -> "location.latitude".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "latitude":
		return "must be a latitude between -90 and 90"
	case "longitude":
		return "must be a longitude between -180 and 180"
	default:
		return "failed " + tag + " check"
	}
}

// parser accumulates float parse failures so every bad field is reported.
// Empty strings are skipped; the validator reports them as required.
type parser struct {
	fields []FieldError
}

func (p *parser) float(field, s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.fields = append(p.fields, FieldError{Field: field, Reason: "must be a decimal number"})
		return 0
	}
	return v
}

func (p *parser) err() error {
	if len(p.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: p.fields}
}

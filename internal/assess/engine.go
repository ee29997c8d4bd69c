// Package assess runs the assessment cycle: score, classify, read the
// location's history, estimate the trend, forecast, record, and alert.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/couchcryptid/landslide-risk-engine/internal/observability"
	"github.com/couchcryptid/landslide-risk-engine/internal/store"
	"github.com/jonboulle/clockwork"
)

// Store is the part of the assessment store the engine drives.
type Store interface {
	LockLocation(key string) func()
	HistoryFor(loc domain.Location) []float64
	Record(ctx context.Context, a domain.RiskAssessment) (domain.RiskAssessment, error)
	RecordReading(ctx context.Context, in domain.EnvironmentalInput) (domain.EnvironmentalInput, error)
}

// Engine assesses submissions against a Store.
type Engine struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// New creates an Engine. A nil clock uses real time.
func New(s Store, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{store: s, logger: logger, metrics: metrics, clock: clock}
}

// AssessEnvironmental validates a manual submission, appends it to the
// readings log, and runs the four-factor assessment.
func (e *Engine) AssessEnvironmental(ctx context.Context, in domain.EnvironmentalInput) (domain.Result, error) {
	in = in.Normalize()
	f, err := in.Factors()
	if err != nil {
		return domain.Result{}, err
	}

	if _, err := e.store.RecordReading(ctx, in); err != nil {
		e.metrics.StoreErrors.WithLabelValues("record_reading", store.ErrorKind(err)).Inc()
		return domain.Result{}, fmt.Errorf("record environmental reading: %w", err)
	}

	return e.assess(ctx, in.Location, f, nil)
}

// AssessSensors runs the two-factor assessment on the latest sensor readings.
func (e *Engine) AssessSensors(ctx context.Context, in domain.SensorInput) (domain.Result, error) {
	f, err := in.Factors()
	if err != nil {
		return domain.Result{}, err
	}
	statuses := in.Statuses()
	return e.assess(ctx, in.Location, f, &statuses)
}

func (e *Engine) assess(ctx context.Context, loc domain.Location, f domain.Factors, sensors *domain.SensorStatuses) (domain.Result, error) {
	start := e.clock.Now()

	score, err := f.Score()
	if err != nil {
		return domain.Result{}, err
	}
	strategy := f.Strategy()
	key := domain.LocationKey(loc)

	// History read through record must not interleave with another
	// assessment of the same location.
	unlock := e.store.LockLocation(key)
	defer unlock()

	history := e.store.HistoryFor(loc)
	trend := strategy.Trend(history)
	forecast := strategy.Forecast(score, trend)

	a, err := e.store.Record(ctx, domain.NewAssessment(loc, f, score, forecast))
	if err != nil {
		e.metrics.StoreErrors.WithLabelValues("record", store.ErrorKind(err)).Inc()
		return domain.Result{}, fmt.Errorf("record assessment: %w", err)
	}

	e.metrics.Assessments.WithLabelValues(string(strategy), string(a.RiskLevel)).Inc()
	e.metrics.AssessmentDuration.Observe(e.clock.Since(start).Seconds())
	if forecast.Unbounded {
		e.metrics.UnboundedForecasts.Inc()
		e.logger.Debug("forecast projected outside score range",
			"location_key", key, "score", score, "trend", trend)
	}

	alert := domain.NewAlert(a)
	if alert != nil {
		e.metrics.Alerts.WithLabelValues(string(alert.Type)).Inc()
		e.logger.Warn("landslide alert",
			"alert_type", alert.Type,
			"assessment_id", a.ID,
			"location_key", key,
			"risk_score", a.RiskScore,
		)
	}

	e.logger.Info("assessment recorded",
		"assessment_id", a.ID,
		"strategy", strategy,
		"location_key", key,
		"risk_score", a.RiskScore,
		"risk_level", a.RiskLevel,
		"history_len", len(history),
	)

	return domain.Result{
		Assessment:  a,
		Alert:       alert,
		Sensors:     sensors,
		ProcessedAt: e.clock.Now().UTC(),
	}, nil
}

// IsValidation reports whether err is a rejected input.
func IsValidation(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr)
}

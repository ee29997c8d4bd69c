package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/couchcryptid/landslide-risk-engine/internal/observability"
	"github.com/couchcryptid/landslide-risk-engine/internal/store"
)

// Assessor runs one assessment per submission kind.
type Assessor interface {
	AssessEnvironmental(ctx context.Context, in domain.EnvironmentalInput) (domain.Result, error)
	AssessSensors(ctx context.Context, in domain.SensorInput) (domain.Result, error)
}

// AssessmentTransformer implements Transformer by decoding each submission
// and handing it to an Assessor.
type AssessmentTransformer struct {
	assessor Assessor
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger, metrics *observability.Metrics) *AssessmentTransformer {
	return &AssessmentTransformer{
		assessor: assessor,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *AssessmentTransformer) Transform(ctx context.Context, sub domain.Submission) (domain.Result, error) {
	res, err := t.assess(ctx, sub)
	if err == nil {
		return res, nil
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		t.metrics.ValidationFailures.WithLabelValues("stream").Inc()
		return domain.Result{}, err
	case errors.Is(err, store.ErrClosed), errors.Is(err, store.ErrNotOpened):
		return domain.Result{}, err
	case store.IsStorageError(err):
		return domain.Result{}, fmt.Errorf("%w: %w", ErrTransient, err)
	default:
		return domain.Result{}, err
	}
}

func (t *AssessmentTransformer) assess(ctx context.Context, sub domain.Submission) (domain.Result, error) {
	switch sub.Kind() {
	case domain.KindSensors:
		var in domain.SensorInput
		if err := json.Unmarshal(sub.Value, &in); err != nil {
			return domain.Result{}, fmt.Errorf("decode sensor submission: %w", err)
		}
		return t.assessor.AssessSensors(ctx, in)
	default:
		var in domain.EnvironmentalInput
		if err := json.Unmarshal(sub.Value, &in); err != nil {
			return domain.Result{}, fmt.Errorf("decode environmental submission: %w", err)
		}
		if in.Timestamp == "" && !sub.Timestamp.IsZero() {
			in.Timestamp = domain.FormatTimestamp(sub.Timestamp)
		}
		return t.assessor.AssessEnvironmental(ctx, in)
	}
}

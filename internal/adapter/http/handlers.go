package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/couchcryptid/landslide-risk-engine/internal/observability"
	"github.com/couchcryptid/landslide-risk-engine/internal/store"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	assessor Assessor
	reader   AssessmentReader
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func (h *handlers) assessEnvironmental(w http.ResponseWriter, r *http.Request) {
	var in domain.EnvironmentalInput
	if !h.decode(w, r, &in) {
		return
	}
	res, err := h.assessor.AssessEnvironmental(r.Context(), in)
	if err != nil {
		h.writeAssessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) assessSensors(w http.ResponseWriter, r *http.Request) {
	var in domain.SensorInput
	if !h.decode(w, r, &in) {
		return
	}
	res, err := h.assessor.AssessSensors(r.Context(), in)
	if err != nil {
		h.writeAssessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) listAssessments(w http.ResponseWriter, _ *http.Request) {
	all := h.reader.All()
	writeJSON(w, http.StatusOK, assessmentList{Assessments: all, Count: len(all)})
}

func (h *handlers) nearAssessments(w http.ResponseWriter, r *http.Request) {
	q := queryParams{r: r}
	lat := q.float("lat")
	lon := q.float("lon")
	radius := q.optionalFloat("radius", store.DefaultNearRadius)
	if q.err == nil && radius < 0 {
		q.err = errors.New("radius must not be negative")
	}
	if q.err != nil {
		writeError(w, http.StatusBadRequest, q.err.Error())
		return
	}

	near := h.reader.Near(lat, lon, radius)
	writeJSON(w, http.StatusOK, assessmentList{Assessments: near, Count: len(near)})
}

func (h *handlers) summary(w http.ResponseWriter, _ *http.Request) {
	all := h.reader.All()
	writeJSON(w, http.StatusOK, summaryResponse{
		Total:   len(all),
		ByLevel: domain.CountByLevel(all),
	})
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	q := queryParams{r: r}
	loc := domain.Location{Latitude: q.float("lat"), Longitude: q.float("lon")}
	if q.err != nil {
		writeError(w, http.StatusBadRequest, q.err.Error())
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		LocationKey: domain.LocationKey(loc),
		Scores:      h.reader.HistoryFor(loc),
	})
}

func (h *handlers) latestReading(w http.ResponseWriter, _ *http.Request) {
	reading, ok := h.reader.LatestReading()
	if !ok {
		writeError(w, http.StatusNotFound, "no environmental readings recorded")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// decode reads a JSON body into v, writing a 400 and returning false on failure.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.metrics.ValidationFailures.WithLabelValues("http").Inc()
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (h *handlers) writeAssessError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		h.metrics.ValidationFailures.WithLabelValues("http").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
		return
	}

	var timeoutErr *store.StorageTimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		h.logger.Error("assessment store timed out", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusGatewayTimeout, "assessment store timed out")
	case store.IsStorageError(err):
		h.logger.Error("assessment store unavailable", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, "assessment store unavailable")
	default:
		h.logger.Error("assessment failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// queryParams parses float query parameters, keeping the first error.
type queryParams struct {
	r   *http.Request
	err error
}

func (q *queryParams) float(name string) float64 {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		q.fail(fmt.Errorf("%s query parameter is required", name))
		return 0
	}
	return q.parse(name, raw)
}

func (q *queryParams) optionalFloat(name string, def float64) float64 {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	return q.parse(name, raw)
}

func (q *queryParams) parse(name, raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		q.fail(fmt.Errorf("%s must be a finite number", name))
		return 0
	}
	return v
}

func (q *queryParams) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/couchcryptid/landslide-risk-engine/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Assessor runs assessments for submitted readings.
type Assessor interface {
	AssessEnvironmental(ctx context.Context, in domain.EnvironmentalInput) (domain.Result, error)
	AssessSensors(ctx context.Context, in domain.SensorInput) (domain.Result, error)
}

// AssessmentReader exposes the stored assessments and readings.
type AssessmentReader interface {
	All() []domain.RiskAssessment
	Near(lat, lon, radius float64) []domain.RiskAssessment
	HistoryFor(loc domain.Location) []float64
	LatestReading() (domain.EnvironmentalInput, bool)
}

// Deps are the collaborators behind the HTTP API.
type Deps struct {
	Assessor           Assessor
	Reader             AssessmentReader
	Ready              sharedobs.ReadinessChecker
	Metrics            *observability.Metrics
	Logger             *slog.Logger
	CORSAllowedOrigins []string
}

// Server exposes the assessment API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /v1 API, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, d Deps) *Server {
	h := &handlers{
		assessor: d.Assessor,
		reader:   d.Reader,
		metrics:  d.Metrics,
		logger:   d.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: d.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	}).Handler)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(d.Ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/assessments", func(r chi.Router) {
			r.Get("/", h.listAssessments)
			r.Post("/environmental", h.assessEnvironmental)
			r.Post("/sensors", h.assessSensors)
			r.Get("/near", h.nearAssessments)
			r.Get("/summary", h.summary)
		})
		r.Get("/history", h.history)
		r.Get("/readings/latest", h.latestReading)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: d.Logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

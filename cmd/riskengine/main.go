package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/blobfs"
	httpadapter "github.com/couchcryptid/landslide-risk-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/landslide-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/pgblob"
	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/resilient"
	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/sqlblob"
	"github.com/couchcryptid/landslide-risk-engine/internal/assess"
	"github.com/couchcryptid/landslide-risk-engine/internal/config"
	"github.com/couchcryptid/landslide-risk-engine/internal/observability"
	"github.com/couchcryptid/landslide-risk-engine/internal/pipeline"
	"github.com/couchcryptid/landslide-risk-engine/internal/store"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker/v2"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to open store backend", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	st := store.New(backend, store.WithTimeout(cfg.StoreTimeout), store.WithLogger(logger))
	if err := st.Open(ctx); err != nil {
		logger.Error("failed to open assessment store", "error", err)
		os.Exit(1)
	}
	logger.Info("store backend ready",
		"backend", cfg.StoreBackend,
		"breaker", cfg.StoreBreakerEnabled,
		"timeout", cfg.StoreTimeout,
	)

	engine := assess.New(st, logger, metrics, nil)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Assessor:           engine,
		Reader:             st,
		Ready:              st,
		Metrics:            metrics,
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the assessment pipeline.
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	pipelineDone := make(chan struct{})
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(engine, logger, metrics)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

		go func() {
			defer close(pipelineDone)
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		close(pipelineDone)
		logger.Info("kafka pipeline disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if err := st.Close(); err != nil {
		logger.Error("assessment store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// openBackend builds the configured snapshot backend, wrapped in a circuit
// breaker when enabled.
func openBackend(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (store.BlobStore, error) {
	var backend store.BlobStore
	switch cfg.StoreBackend {
	case config.BackendMemory:
		backend = store.NewMemoryBlobStore()
	case config.BackendFile:
		files, err := blobfs.New(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		backend = files
	case config.BackendSQLite:
		db, err := sqlblob.Open(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		backend = db
	case config.BackendPostgres:
		db, err := pgblob.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		backend = db
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if !cfg.StoreBreakerEnabled {
		return backend, nil
	}
	return resilient.New(backend, cfg.StoreBackend, resilient.Settings{
		OnStateChange: func(_ string, _, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.StoreBreakerOpen.Set(1)
			} else {
				metrics.StoreBreakerOpen.Set(0)
			}
		},
	}, logger), nil
}

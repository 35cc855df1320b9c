package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/intellexa/internal/bootstrap"
	"github.com/kirillkom/intellexa/internal/config"
	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/observability/logging"
	"github.com/kirillkom/intellexa/internal/observability/metrics"
)

const serviceName = "intellexa-worker"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux(workerMetrics),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics server failed", "error", err)
		}
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeMaterialIngested(ctx, func(handlerCtx context.Context, materialID string) error {
		return processMaterial(handlerCtx, app, workerMetrics, materialID)
	})
	if err != nil {
		logger.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

func processMaterial(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, materialID string) error {
	processCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	if material, err := app.Materials.GetByID(processCtx, materialID); err == nil {
		m.ObserveQueueLag(serviceName, time.Since(material.CreatedAt))
	}

	m.StartMaterial()
	start := time.Now()
	err := app.Processor.ProcessByID(processCtx, materialID)

	status := "error"
	if err == nil {
		if material, fetchErr := app.Materials.GetByID(processCtx, materialID); fetchErr == nil {
			status = string(material.Status)
			for _, kind := range domain.GeneratedKinds {
				m.ObserveArtifact(serviceName, string(kind), string(material.Artifacts[kind].Status))
			}
		} else {
			status = "unknown"
		}
	}
	m.FinishMaterial(serviceName, status, time.Since(start))

	logger := logging.WithMaterial(slog.Default(), materialID)
	if err != nil {
		logger.Error("material processing failed", "error", err)
	} else {
		logger.Info("material processed", "status", status, "duration_ms", time.Since(start).Milliseconds())
	}
	return err
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

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

	httpadapter "github.com/kirillkom/intellexa/internal/adapters/http"
	"github.com/kirillkom/intellexa/internal/bootstrap"
	"github.com/kirillkom/intellexa/internal/config"
	"github.com/kirillkom/intellexa/internal/observability/logging"
	"github.com/kirillkom/intellexa/internal/observability/metrics"
)

const serviceName = "intellexa-api"

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

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	router := httpadapter.NewRouter(httpadapter.RouterOptions{
		Ingest:         app.Ingest,
		Processor:      app.Processor,
		Regenerator:    app.Regenerator,
		Chat:           app.Chat,
		Quiz:           app.Quiz,
		Stats:          app.Stats,
		Materials:      app.Materials,
		Summaries:      app.Summaries,
		Flashcards:     app.Flashcards,
		MetricsHandler: httpMetrics.Handler(),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      httpMetrics.Middleware(serviceName, router.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", "error", err)
	}
}

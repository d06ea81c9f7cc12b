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
	"github.com/siherrmann/manualrag"
	"github.com/siherrmann/manualrag/api"
	"github.com/siherrmann/manualrag/helper"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment", "error", err)
	}

	config, err := helper.NewConfiguration()
	if err != nil {
		slog.Error("Invalid configuration", "error", err, "error_kind", helper.KindOf(err))
		os.Exit(1)
	}

	logger := helper.NewPrettyLogger(os.Stdout, config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server keeps running without a pipeline and reports it through /api/health.
	var assistant api.Assistant
	a, err := manualrag.New(ctx, config, logger)
	if err != nil {
		logger.Error("Pipeline not available, serving degraded responses", "error", err, "error_kind", helper.KindOf(err))
	} else {
		defer a.Close()
		assistant = a
	}

	srv := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           api.NewRouter(assistant, config.StoreName, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Manual assistant API listening", "addr", config.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}

	logger.Info("Manual assistant API stopped")
}

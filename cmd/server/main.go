package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"stock-advisor/internal/adapter/rest"
	"stock-advisor/internal/di"
	"stock-advisor/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()
	cfg, err := di.ConfigFromEnv(envService)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	accessLog, err := envService.GetBool("HTTP_ACCESS_LOG", true)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	analyzeTimeout, err := envService.GetPositiveInt("ANALYZE_TIMEOUT_SECONDS", 300)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer container.Close()

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: rest.NewRouter(rest.RouterConfig{
			Advisor:        container.Advisor,
			Logger:         container.Logger.Named("http"),
			Metrics:        container.Metrics.Handler(),
			AccessLog:      accessLog,
			LogLevel:       cfg.LogLevel,
			RequestTimeout: time.Duration(analyzeTimeout) * time.Second,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			container.Logger.Error("Server failed", "error", err)
		}
	case <-ctx.Done():
		container.Logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Shutdown failed", "error", err)
	}
}

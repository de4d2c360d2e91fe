package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/risithcha/nutritrack/pkg/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.NewService(ctx, "api")
	if err != nil {
		log.Fatalf("service init failed: %v", err)
	}
	defer svc.Close()
	logger := svc.Logger

	port := "8080"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newServer(svc.Tracker, svc.Auth, svc.Hub, logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if os.Getenv("DISABLE_ROLLOVER_SWEEP") != "true" {
		sched, err := startRolloverScheduler(ctx, svc.Tracker, sweepInterval, logger)
		if err != nil {
			logger.Error("Failed to start rollover scheduler", "error", err)
		} else {
			defer func() {
				if err := sched.Shutdown(); err != nil {
					logger.Warn("Scheduler shutdown failed", "error", err)
				}
			}()
		}
	}

	go func() {
		logger.Info("API listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

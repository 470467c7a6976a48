package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/amqp"
	"finanzas/internal/config"
	applog "finanzas/internal/log"
	"finanzas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting finanzas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	structured := applog.NewStructuredLogger(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker))
	notifier := worker.NewNotificationWorker(structured, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := amqpClient.ConsumeGoalAlerts(ctx, notifier.HandleAlert); err != nil {
			if err != context.Canceled {
				logger.Error("Alert consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give the consumer time to finish the in-flight message
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}

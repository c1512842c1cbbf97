package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spending/internal/amqp"
	"spending/internal/analytics"
	"spending/internal/backend"
	"spending/internal/cli"
	apphttp "spending/internal/http"
	"spending/internal/log"
	"spending/internal/middleware/ratelimit"
	"spending/internal/services"
)

func main() {
	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	cli.MustValidate(logger, cfg.Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend))
	res, err := factory.CreateStore(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize record store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Publishing is optional; without a broker writes still succeed.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	assembler := analytics.NewAssembler(res.Store,
		analytics.WithLogger(logger.Logger.With(log.FieldComponent, log.ComponentAnalytics)))

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Analytics:        assembler,
		Transactions:     services.NewTransactionService(res.Store, publisher),
		Budgets:          services.NewBudgetService(res.Store, assembler, publisher),
		Store:            res.Store,
		Logger:           logger,
		SnapshotCacheTTL: cfg.SnapshotCacheTTL,
		QueryTimeout:     cfg.QueryTimeout,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", log.FieldError, err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Record store close error", log.FieldError, err)
		}
	})

	logger.Info("Starting spending server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events_enabled", publisher != nil,
		"snapshot_cache_ttl", cfg.SnapshotCacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spending/internal/amqp"
	"spending/internal/analytics"
	"spending/internal/backend"
	"spending/internal/cli"
	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/worker"
)

func main() {
	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	cli.MustValidate(logger, cfg.ValidateWorker)

	logger.Info("Starting spending-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	exportCfg, err := backend.ExportFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend))
	res, err := factory.CreateStore(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize record store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Cleanup()

	exporter, err := factory.CreateExporter(ctx, exportCfg)
	if err != nil {
		logger.Error("Failed to initialize snapshot exporter", log.FieldError, err, "export", cfg.ExportBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	assembler := analytics.NewAssembler(res.Store,
		analytics.WithLogger(logger.Logger.With(log.FieldComponent, log.ComponentAnalytics)))
	exportWorker := worker.NewExportWorker(assembler, exporter)

	// Catch up on the current month in case events were missed while down.
	logger.Info("Performing startup export")
	if err := exportWorker.StartupExport(ctx, core.PeriodOf(time.Now())); err != nil {
		logger.Error("Startup export failed", log.FieldError, err)
	}

	go func() {
		if err := amqpClient.Consume(ctx, exportWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	if err := amqpClient.Close(); err != nil {
		logger.Warn("AMQP close error", log.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}

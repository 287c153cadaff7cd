package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finance/internal/amqp"
	"finance/internal/backend"
	"finance/internal/cli"
	"finance/internal/config"
	applog "finance/internal/log"
	"finance/internal/services"
	"finance/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting finance-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	files := cli.InitBlobStore(context.Background(), logger, cfg)

	summaries, err := backend.NewSummaryWriter(context.Background(), backend.SummaryConfig{
		Type:          backend.SummaryType(cfg.SummaryBackend),
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		SheetBase:     cfg.GoogleSummarySheet,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize summary mirror", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	// The worker reads the ledger directly; it never caches reports since
	// each event means the month changed.
	summaryWorker := worker.NewSummaryWorker(services.NewReports(repo, nil), files, summaries, logger)
	refresher := worker.NewRefresher(summaryWorker, cfg.WorkerRefreshInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := refresher.Stop(ctx); err != nil {
			logger.Warn("Refresher stop error", "error", err)
		}
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", "error", err)
		}
	})

	if err := refresher.Start(ctx); err != nil {
		logger.Error("Failed to start refresher", "error", err)
		os.Exit(1)
	}

	go func() {
		err := amqpClient.ConsumeLedgerEvents(ctx, summaryWorker.HandleLedgerEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"refresh_interval", cfg.WorkerRefreshInterval.String())
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

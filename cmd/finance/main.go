package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finance/internal/amqp"
	"finance/internal/cache"
	"finance/internal/cli"
	apphttp "finance/internal/http"
	applog "finance/internal/log"
	"finance/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	logger.Info("Starting finance API")

	cfg := cli.LoadAndValidateConfig(logger, nil)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Events are optional for the API; without a broker only the local
	// report cache is invalidated.
	var (
		events     services.EventPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			amqpClient = c
			events = c
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	files := cli.InitBlobStore(context.Background(), logger, cfg)

	cacheManager := cache.NewManager(logger)
	reports := services.NewReports(repo, services.NewReportCache(cacheManager, cfg.ReportCacheSize, cfg.ReportCacheTTL))
	cacheManager.StartCleanup(time.Minute)

	ledger := services.NewLedger(repo, events)
	ledger.OnChange(reports.Invalidate)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:             ledger,
		Reports:            reports,
		Files:              files,
		Logger:             logger,
		Ready:              repo.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
	})

	logger.Info("Listening", "port", cfg.Port, "export_backend", cfg.ExportBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

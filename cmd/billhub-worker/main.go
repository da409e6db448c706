package main

import (
	"os"
	"time"

	"billhub/internal/amqp"
	"billhub/internal/cli"
	"billhub/internal/log"
	"billhub/internal/sheets"
	gsheet "billhub/internal/sheets/google"
	"billhub/internal/sheets/memory"
	"billhub/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting billhub-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the ledger worker")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	var ledger sheets.LedgerWriter
	if cfg.HasLedger() {
		client, err := gsheet.NewFromEnv(ctx, gsheet.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleSheetName,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		ledger = memory.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, using in-memory ledger")
	}

	client, err := amqp.NewClient(ctx, amqp.Config{
		URL:      cfg.AMQPURL,
		Exchange: cfg.AMQPExchange,
		Queue:    cfg.AMQPQueue,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewLedgerWorker(ledger, logger)
	err = w.Run(ctx, client, 5*time.Minute)
	if ctx.Err() == nil {
		logger.Error("Ledger worker stopped unexpectedly", log.FieldError, err)
		os.Exit(1)
	}

	<-done
	processed, failed := w.Stats()
	logger.Info("Worker shutdown complete", "processed", processed, "failed", failed)
}

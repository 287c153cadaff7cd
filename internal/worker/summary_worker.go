// Package worker regenerates derived artifacts when the ledger changes.
package worker

import (
	"context"
	"fmt"
	"time"

	"finance/internal/amqp"
	"finance/internal/blob"
	"finance/internal/core"
	"finance/internal/export"
	applog "finance/internal/log"
	"finance/internal/report"
	"finance/internal/sheets"
)

// ReportSource builds monthly reports. *services.Reports satisfies it.
type ReportSource interface {
	Monthly(ctx context.Context, year, month int) (report.Report, error)
}

// SummaryWorker keeps the "latest" PDF of each month in the export store and,
// when a summary writer is set, mirrors the month's totals to a spreadsheet.
type SummaryWorker struct {
	reports ReportSource
	files   blob.Store
	sheets  sheets.SummaryWriter
	logger  *applog.Logger
}

// NewSummaryWorker creates a worker. summaries may be nil.
func NewSummaryWorker(reports ReportSource, files blob.Store, summaries sheets.SummaryWriter, logger *applog.Logger) *SummaryWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SummaryWorker{
		reports: reports,
		files:   files,
		sheets:  summaries,
		logger:  logger.WithComponent(applog.ComponentWorker),
	}
}

// LatestReportName is the stable file name of a month's regenerated report.
func LatestReportName(p core.Period) string {
	return fmt.Sprintf("relatorio_%02d_%d_latest.pdf", p.Month, p.Year)
}

// HandleLedgerEvent is the AMQP consumer callback. A returned error makes
// the broker redeliver the event.
func (w *SummaryWorker) HandleLedgerEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		"kind", e.Kind,
		applog.FieldEntityID, e.EntityID,
		applog.FieldYear, e.Year,
		applog.FieldMonth, e.Month)

	return w.Refresh(ctx, e.Period())
}

// Refresh rebuilds the artifacts of period p.
func (w *SummaryWorker) Refresh(ctx context.Context, p core.Period) error {
	start := time.Now()

	r, err := w.reports.Monthly(ctx, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("build report %04d-%02d: %w", p.Year, p.Month, err)
	}

	doc, err := export.Document(r)
	if err != nil {
		return fmt.Errorf("render report %04d-%02d: %w", p.Year, p.Month, err)
	}

	name := LatestReportName(p)
	if err := w.files.Put(ctx, name, export.DocumentMIME, doc); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}

	if w.sheets != nil {
		ref, err := w.sheets.WriteMonthSummary(ctx, r)
		if err != nil {
			return fmt.Errorf("mirror summary %04d-%02d: %w", p.Year, p.Month, err)
		}
		w.logger.DebugContext(ctx, "Summary mirrored", "sheets_ref", ref)
	}

	w.logger.InfoContext(ctx, "Monthly artifacts refreshed",
		applog.FieldYear, p.Year,
		applog.FieldMonth, p.Month,
		applog.FieldFileName, name,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

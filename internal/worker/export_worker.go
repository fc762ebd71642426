// Package worker consumes report export messages and writes the referenced
// reports to an external sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// ReportSource regenerates (or serves from cache) the report named by an
// export message. The source must be wired without an exporter of its own,
// otherwise a cache-expired regeneration would queue another export.
type ReportSource interface {
	Monthly(ctx context.Context, userID string, year, month int) (services.MonthlyReport, error)
}

// ExportWorker turns queued export messages into appended sheet rows.
type ExportWorker struct {
	reports ReportSource
	writer  sheets.ReportWriter
}

func NewExportWorker(reports ReportSource, writer sheets.ReportWriter) *ExportWorker {
	return &ExportWorker{reports: reports, writer: writer}
}

// HandleExportMessage processes one export message. The report is fetched
// through the same builder the routes use, so a still-cached report is not
// recomputed.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ReportExportMessage) error {
	slog.InfoContext(ctx, "Processing report export",
		log.FieldUserID, msg.UserID,
		"year", msg.Year,
		"month", msg.Month,
	)

	report, err := w.reports.Monthly(ctx, msg.UserID, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("build report for export: %w", err)
	}

	ref, err := w.writer.AppendReport(ctx, sheets.ReportRow{
		UserID:        msg.UserID,
		Year:          msg.Year,
		Month:         msg.Month,
		TotalIncome:   report.Summary.TotalIncome.Float(),
		TotalExpenses: report.Summary.TotalExpenses.Float(),
		SavingsRate:   report.Summary.SavingsRate,
	})
	if err != nil {
		return fmt.Errorf("append report row: %w", err)
	}

	slog.InfoContext(ctx, "Report exported",
		log.FieldUserID, msg.UserID,
		"year", msg.Year,
		"month", msg.Month,
		"sheet_ref", ref,
	)
	return nil
}

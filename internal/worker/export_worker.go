// Package worker exports financial entries from SQLite to the Google
// Sheets ledger. Change messages drive the normal path; a periodic sweep
// over unsynced rows recovers from lost messages or downtime.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"salone/internal/amqp"
	"salone/internal/core"
	"salone/internal/export"
	"salone/internal/gateway/sqlite"
)

// entrySource is the slice of the SQLite repository the worker needs.
type entrySource interface {
	FinancialEntry(ctx context.Context, id int64) (core.FinancialEntry, error)
	PendingFinancialEntries(ctx context.Context, limit int) ([]sqlite.PendingEntry, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

type ExportWorker struct {
	source    entrySource
	sink      export.Sink
	batchSize int
}

func NewExportWorker(source entrySource, sink export.Sink, batchSize int) *ExportWorker {
	return &ExportWorker{
		source:    source,
		sink:      sink,
		batchSize: batchSize,
	}
}

// HandleChange processes one change message. Only financial entries are
// exported; inserts and updates append a row, deletes are ignored because
// the ledger is append-only.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.Collection != "financial_entries" {
		return nil
	}
	if msg.Action == "delete" {
		slog.InfoContext(ctx, "Skipping delete, ledger is append-only", "id", msg.ID)
		return nil
	}

	entry, err := w.source.FinancialEntry(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted between publish and consume; nothing to export.
			slog.WarnContext(ctx, "Entry gone before export", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("load financial entry: %w", err)
	}

	return w.exportEntry(ctx, entry)
}

// ProcessPending exports up to one batch of rows still marked unsynced.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.source.PendingFinancialEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		entry, err := w.source.FinancialEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending entry", "id", p.ID, "error", err)
			if err := w.source.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}
		if err := w.exportEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending entry", "id", p.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupCheck sweeps a larger batch of unsynced rows once at worker
// startup, recovering from downtime while the API kept writing.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.source.PendingFinancialEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		entry, err := w.source.FinancialEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load entry during startup", "id", p.ID, "error", err)
			if err := w.source.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			failed++
			continue
		}
		if err := w.exportEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry during startup", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup check completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *ExportWorker) exportEntry(ctx context.Context, entry core.FinancialEntry) error {
	if err := w.sink.AppendFinancialEntry(ctx, entry); err != nil {
		if markErr := w.source.MarkSyncError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.source.MarkSynced(ctx, entry.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", entry.ID, "error", err)
		// Don't return an error here - the append actually worked
	}

	slog.InfoContext(ctx, "Exported financial entry",
		"id", entry.ID,
		"description", entry.Description,
		"amount_cents", entry.Amount.Cents)

	return nil
}

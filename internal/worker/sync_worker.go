package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"softy/internal/amqp"
	"softy/internal/core"
	"softy/internal/log"
	ports "softy/internal/sheets"
	"softy/internal/storage"
)

// EntryStore is the part of the SQLite repository the worker needs.
type EntryStore interface {
	GetEntryVersion(ctx context.Context, id string) (core.DailyEntry, int64, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]storage.PendingSyncEntry, error)
	MarkSynced(ctx context.Context, id string, version int64) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncWorker mirrors entries from SQLite into the spreadsheet.
type SyncWorker struct {
	store     EntryStore
	mirror    ports.EntryMirror
	batchSize int
}

func NewSyncWorker(store EntryStore, mirror ports.EntryMirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// Handlers returns the AMQP handlers bound to this worker.
func (w *SyncWorker) Handlers() amqp.Handlers {
	return amqp.Handlers{
		Sync:   w.HandleSyncMessage,
		Delete: w.HandleDeleteMessage,
	}
}

// HandleSyncMessage mirrors the current state of the entry named in msg.
// An entry deleted since the message was published is skipped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "version", msg.Version)

	if err := w.syncEntry(ctx, msg.ID); err != nil {
		if errors.Is(err, core.ErrEntryNotFound) {
			slog.InfoContext(ctx, "Entry no longer exists, skipping sync", "id", msg.ID)
			return nil
		}
		return err
	}
	return nil
}

// HandleDeleteMessage removes the mirror row of a deleted entry.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.EntryDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID, "entry_date", msg.EntryDate)

	date, err := core.ParseDate(msg.EntryDate)
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrMalformedMessage, err)
	}
	if err := w.mirror.RemoveEntry(ctx, date); err != nil {
		return fmt.Errorf("remove entry from mirror: %w", err)
	}

	slog.InfoContext(ctx, "Removed entry from mirror", "id", msg.ID, "entry_date", msg.EntryDate)
	return nil
}

// ProcessPending syncs entries that are still pending. It backs up the
// message path when messages are lost or were never published.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	_, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck runs a larger reconcile pass when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
	}
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.GetPendingSyncEntries(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.syncEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending entry", "id", p.ID, "entry_date", p.EntryDate, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync pass completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return synced, nil
}

func (w *SyncWorker) syncEntry(ctx context.Context, id string) error {
	entry, version, err := w.store.GetEntryVersion(ctx, id)
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	ref, err := w.mirror.UpsertEntry(ctx, entry)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert entry in mirror: %w", err)
	}

	// The mirror already has the row; a failed status update only means
	// the next reconcile pass rewrites it.
	if err := w.store.MarkSynced(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	var profitLoss float64
	if entry.ProfitLoss != nil {
		profitLoss = *entry.ProfitLoss
	}
	fields := log.NewFields().
		WithEntry(id, entry.EntryDate.String(), profitLoss).
		WithOperation(log.OpSync)
	fields[log.FieldSheetsRef] = ref
	slog.InfoContext(ctx, "Synced entry", append(fields.ToSlice(), "version", version)...)
	return nil
}

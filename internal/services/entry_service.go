package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"softy/internal/core"
	ports "softy/internal/sheets"
)

// Publisher announces entry changes to the Sheets mirror worker.
type Publisher interface {
	PublishEntrySync(ctx context.Context, id string, version int64) error
	PublishEntryDelete(ctx context.Context, id, entryDate string) error
	Close() error
}

// Versioner is implemented by stores that track a row version. Sync
// messages fall back to version 1 otherwise.
type Versioner interface {
	GetEntryVersion(ctx context.Context, id string) (core.DailyEntry, int64, error)
}

// EntryService orchestrates entry writes across the repository and AMQP.
type EntryService struct {
	repo      ports.EntryRepository
	defaults  ports.DefaultCostsStore
	publisher Publisher
}

// NewEntryService wires the service. publisher may be nil when no broker is
// configured; writes then stay local.
func NewEntryService(repo ports.EntryRepository, defaults ports.DefaultCostsStore, publisher Publisher) *EntryService {
	return &EntryService{
		repo:      repo,
		defaults:  defaults,
		publisher: publisher,
	}
}

func (s *EntryService) Repository() ports.EntryRepository { return s.repo }

func (s *EntryService) Defaults() ports.DefaultCostsStore { return s.defaults }

// Create saves an entry locally and publishes a sync message.
func (s *EntryService) Create(ctx context.Context, in core.EntryInput) (core.DailyEntry, error) {
	e, err := s.repo.CreateEntry(ctx, in)
	if err != nil {
		return core.DailyEntry{}, fmt.Errorf("save entry: %w", err)
	}

	// Publish failures never fail the request: the row stays pending and
	// the worker's reconcile pass picks it up.
	if err := s.publishSync(ctx, e.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", e.ID, "error", err)
	}
	return e, nil
}

// Update applies a partial update and republishes the entry. Moving an
// entry to another date also drops the mirror row of the old date.
func (s *EntryService) Update(ctx context.Context, id string, patch core.EntryPatch) (core.DailyEntry, error) {
	before, found, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return core.DailyEntry{}, fmt.Errorf("load entry for update: %w", err)
	}
	if !found {
		return core.DailyEntry{}, fmt.Errorf("update entry: %w: %s", core.ErrEntryNotFound, id)
	}

	e, err := s.repo.UpdateEntry(ctx, id, patch)
	if err != nil {
		return core.DailyEntry{}, fmt.Errorf("update entry: %w", err)
	}

	if oldDate := before.EntryDate.String(); s.publisher != nil && oldDate != e.EntryDate.String() {
		if err := s.publisher.PublishEntryDelete(ctx, id, oldDate); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "entry_date", oldDate, "error", err)
		}
	}
	if err := s.publishSync(ctx, e.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", e.ID, "error", err)
	}
	return e, nil
}

// Delete removes an entry and asks the mirror to drop its row.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	e, found, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("load entry for delete: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}

	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishEntryDelete(ctx, id, e.EntryDate.String()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
	return nil
}

// Prefill returns a blank form for date carrying the default unit prices.
// A missing or unreadable defaults record yields zero prices.
func (s *EntryService) Prefill(ctx context.Context, date core.Date) core.EntryInput {
	d, found, err := s.defaults.GetDefaultCosts(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load default costs, using zeros", "error", err)
		return core.DefaultCosts{}.Prefill(date)
	}
	if !found {
		return core.DefaultCosts{}.Prefill(date)
	}
	return d.Prefill(date)
}

// DefaultCosts returns the defaults record, all zeros when none was saved.
func (s *EntryService) DefaultCosts(ctx context.Context) (core.DefaultCosts, error) {
	d, _, err := s.defaults.GetDefaultCosts(ctx)
	if err != nil {
		return core.DefaultCosts{}, fmt.Errorf("get default costs: %w", err)
	}
	return d, nil
}

func (s *EntryService) SaveDefaultCosts(ctx context.Context, patch core.DefaultCostsPatch) (core.DefaultCosts, error) {
	d, err := s.defaults.UpsertDefaultCosts(ctx, patch)
	if err != nil {
		return core.DefaultCosts{}, fmt.Errorf("save default costs: %w", err)
	}
	return d, nil
}

func (s *EntryService) publishSync(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return nil
	}

	version := int64(1)
	if v, ok := s.repo.(Versioner); ok {
		_, current, err := v.GetEntryVersion(ctx, id)
		if err != nil {
			return fmt.Errorf("read entry version: %w", err)
		}
		version = current
	}
	return s.publisher.PublishEntrySync(ctx, id, version)
}

// Close closes the repository and the AMQP connection.
func (s *EntryService) Close() error {
	var errs []error

	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close entry service: %w", err)
	}
	return nil
}

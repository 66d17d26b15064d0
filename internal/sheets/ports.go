package sheets

import (
	"context"

	"softy/internal/core"
)

// ListFilter selects entries for List. Limit 0 means no limit.
type ListFilter struct {
	Range  core.DateRange
	Limit  int
	Offset int
}

// DefaultPageSize is used when an offset is given without a limit.
const DefaultPageSize = 10

// Ports for outbound adapters.
type (
	// EntryRepository persists daily entries. Lookups of a missing entry
	// return found=false with a nil error.
	EntryRepository interface {
		CreateEntry(ctx context.Context, in core.EntryInput) (core.DailyEntry, error)
		UpdateEntry(ctx context.Context, id string, patch core.EntryPatch) (core.DailyEntry, error)
		DeleteEntry(ctx context.Context, id string) error
		GetEntry(ctx context.Context, id string) (core.DailyEntry, bool, error)
		GetEntryByDate(ctx context.Context, date core.Date) (core.DailyEntry, bool, error)
		// ListEntries returns entries ordered by date, newest first.
		ListEntries(ctx context.Context, f ListFilter) ([]core.DailyEntry, error)
		// ListYears returns the distinct entry years, newest first, or the
		// current year when there are no entries.
		ListYears(ctx context.Context) ([]int, error)
	}

	// DefaultCostsStore holds the single defaults record.
	DefaultCostsStore interface {
		GetDefaultCosts(ctx context.Context) (core.DefaultCosts, bool, error)
		UpsertDefaultCosts(ctx context.Context, patch core.DefaultCostsPatch) (core.DefaultCosts, error)
	}

	// EntryMirror receives a copy of every entry, one row per date.
	EntryMirror interface {
		UpsertEntry(ctx context.Context, e core.DailyEntry) (rowRef string, err error)
		RemoveEntry(ctx context.Context, date core.Date) error
	}
)

// Normalize applies the paging defaults of ListEntries.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit < 0 {
		f.Limit = 0
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Offset > 0 && f.Limit == 0 {
		f.Limit = DefaultPageSize
	}
	return f
}

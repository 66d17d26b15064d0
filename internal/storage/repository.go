package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"softy/internal/core"
	ports "softy/internal/sheets"
)

const timestampLayout = time.RFC3339Nano

// Open-ended list bounds; entry dates compare as text.
const (
	minDate = "0001-01-01"
	maxDate = "9999-12-31"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var (
	_ ports.EntryRepository   = (*SQLiteRepository)(nil)
	_ ports.DefaultCostsStore = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(timestampLayout)
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, in core.EntryInput) (core.DailyEntry, error) {
	if err := in.Validate(); err != nil {
		return core.DailyEntry{}, err
	}
	now := r.timestamp()
	row, err := r.queries.CreateEntry(ctx, toParams(uuid.NewString(), in, now, now))
	if err != nil {
		if isUniqueViolation(err) {
			return core.DailyEntry{}, fmt.Errorf("%w: %s", core.ErrDuplicateDate, in.EntryDate)
		}
		return core.DailyEntry{}, fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", row.ID,
		"entry_date", row.EntryDate,
		"total_cost", row.TotalCost,
		"total_revenue", row.TotalRevenue,
		"profit_loss", row.ProfitLoss)

	return fromRow(row), nil
}

func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id string, patch core.EntryPatch) (core.DailyEntry, error) {
	if strings.TrimSpace(id) == "" {
		return core.DailyEntry{}, core.ErrEmptyEntryID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.DailyEntry{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	current, err := q.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyEntry{}, fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	if err != nil {
		return core.DailyEntry{}, fmt.Errorf("get entry for update: %w", err)
	}

	in := patch.Apply(fromRow(current).EntryInput)
	if err := in.Validate(); err != nil {
		return core.DailyEntry{}, err
	}
	row, err := q.UpdateEntry(ctx, toParams(id, in, current.CreatedAt, r.timestamp()))
	if err != nil {
		if isUniqueViolation(err) {
			return core.DailyEntry{}, fmt.Errorf("%w: %s", core.ErrDuplicateDate, in.EntryDate)
		}
		return core.DailyEntry{}, fmt.Errorf("update entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.DailyEntry{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Entry updated in SQLite", "id", id, "entry_date", row.EntryDate, "version", row.Version)
	return fromRow(row), nil
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	n, err := r.queries.DeleteEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	slog.InfoContext(ctx, "Entry deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.DailyEntry, bool, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyEntry{}, false, nil
	}
	if err != nil {
		return core.DailyEntry{}, false, fmt.Errorf("get entry by id: %w", err)
	}
	return fromRow(row), true, nil
}

// GetEntryVersion returns the entry together with its row version.
func (r *SQLiteRepository) GetEntryVersion(ctx context.Context, id string) (core.DailyEntry, int64, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyEntry{}, 0, fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	if err != nil {
		return core.DailyEntry{}, 0, fmt.Errorf("get entry by id: %w", err)
	}
	return fromRow(row), row.Version, nil
}

func (r *SQLiteRepository) GetEntryByDate(ctx context.Context, date core.Date) (core.DailyEntry, bool, error) {
	row, err := r.queries.GetEntryByDate(ctx, date.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyEntry{}, false, nil
	}
	if err != nil {
		return core.DailyEntry{}, false, fmt.Errorf("get entry by date: %w", err)
	}
	return fromRow(row), true, nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, f ports.ListFilter) ([]core.DailyEntry, error) {
	f = f.Normalize()
	params := ListEntriesParams{
		FromDate: minDate,
		ToDate:   maxDate,
		Limit:    -1,
		Offset:   int64(f.Offset),
	}
	if !f.Range.From.IsZero() {
		params.FromDate = f.Range.From.String()
	}
	if !f.Range.To.IsZero() {
		params.ToDate = f.Range.To.String()
	}
	if f.Limit > 0 {
		params.Limit = int64(f.Limit)
	}

	rows, err := r.queries.ListEntries(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	out := make([]core.DailyEntry, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) ListYears(ctx context.Context) ([]int, error) {
	years, err := r.queries.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	if len(years) == 0 {
		return []int{r.now().Year()}, nil
	}
	out := make([]int, len(years))
	for i, y := range years {
		out[i] = int(y)
	}
	return out, nil
}

func (r *SQLiteRepository) GetDefaultCosts(ctx context.Context) (core.DefaultCosts, bool, error) {
	row, err := r.queries.GetDefaultCosts(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultCosts{}, false, nil
	}
	if err != nil {
		return core.DefaultCosts{}, false, fmt.Errorf("get default costs: %w", err)
	}
	return fromDefaultRow(row), true, nil
}

// UpsertDefaultCosts merges the patch into the single defaults row inside
// one transaction, creating the row on first use.
func (r *SQLiteRepository) UpsertDefaultCosts(ctx context.Context, patch core.DefaultCostsPatch) (core.DefaultCosts, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.DefaultCosts{}, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	now := r.timestamp()
	current := DefaultCost{CreatedAt: now}
	existing, err := q.GetDefaultCosts(ctx)
	switch {
	case err == nil:
		current = existing
	case !errors.Is(err, sql.ErrNoRows):
		return core.DefaultCosts{}, fmt.Errorf("get default costs: %w", err)
	}

	merged := patch.Apply(fromDefaultRow(current))
	row := DefaultCost{
		MilkPricePerLiter:    merged.MilkPricePerLiter,
		PremixPricePerPacket: merged.PremixPricePerPacket,
		CoffeePricePerLiter:  merged.CoffeePricePerLiter,
		CupPrice:             merged.CupPrice,
		SpoonPrice:           merged.SpoonPrice,
		PricePerCupSold:      merged.PricePerCupSold,
		CreatedAt:            current.CreatedAt,
		UpdatedAt:            now,
	}
	if err := q.UpsertDefaultCosts(ctx, row); err != nil {
		return core.DefaultCosts{}, fmt.Errorf("upsert default costs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.DefaultCosts{}, fmt.Errorf("commit default costs: %w", err)
	}

	slog.InfoContext(ctx, "Default costs saved", "price_per_cup_sold", row.PricePerCupSold)
	return fromDefaultRow(row), nil
}

// PendingSyncEntry is the minimal data needed to enqueue a mirror sync.
type PendingSyncEntry struct {
	ID        string
	Version   int64
	EntryDate string
}

// GetPendingSyncEntries returns entries not yet mirrored, oldest first.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.queries.GetPendingSyncEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	out := make([]PendingSyncEntry, len(rows))
	for i, row := range rows {
		out[i] = PendingSyncEntry{ID: row.ID, Version: row.Version, EntryDate: row.EntryDate}
	}
	return out, nil
}

// MarkSynced marks an entry version as mirrored. A newer version stays
// pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64) error {
	n, err := r.queries.MarkEntrySynced(ctx, id, version)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "Entry changed during sync, left pending", "id", id, "version", version)
		return nil
	}
	slog.InfoContext(ctx, "Entry marked as synced", "id", id, "version", version)
	return nil
}

// MarkSyncError marks an entry as failed to mirror.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.queries.MarkEntrySyncError(ctx, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

// SyncStats counts entries per sync status.
func (r *SQLiteRepository) SyncStats(ctx context.Context) (map[string]int64, error) {
	stats, err := r.queries.CountEntriesBySyncStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sync status: %w", err)
	}
	return stats, nil
}

func toParams(id string, in core.EntryInput, createdAt, updatedAt string) EntryParams {
	t := core.Calculate(in)
	return EntryParams{
		ID:                   id,
		EntryDate:            in.EntryDate.String(),
		MilkLiters:           in.MilkLiters,
		MilkPricePerLiter:    in.MilkPricePerLiter,
		PremixPackets:        in.PremixPackets,
		PremixPricePerPacket: in.PremixPricePerPacket,
		CoffeeLiters:         in.CoffeeLiters,
		CoffeePricePerLiter:  in.CoffeePricePerLiter,
		CupsUsed:             in.CupsUsed,
		CupPrice:             in.CupPrice,
		SpoonsUsed:           in.SpoonsUsed,
		SpoonPrice:           in.SpoonPrice,
		CupsSold:             in.CupsSold,
		PricePerCupSold:      in.PricePerCupSold,
		MilkTotalCost:        t.Subtotal(core.LineMilk),
		PremixTotalCost:      t.Subtotal(core.LinePremix),
		CoffeeTotalCost:      t.Subtotal(core.LineCoffee),
		CupsTotalCost:        t.Subtotal(core.LineCups),
		SpoonsTotalCost:      t.Subtotal(core.LineSpoons),
		TotalCost:            t.TotalCost,
		TotalRevenue:         t.TotalRevenue,
		ProfitLoss:           t.ProfitLoss,
		CreatedAt:            createdAt,
		UpdatedAt:            updatedAt,
	}
}

// fromRow maps a row to a domain entry. Derived totals are recomputed from
// the raw lines so every view agrees on them.
func fromRow(row DailyEntry) core.DailyEntry {
	date, err := core.ParseDate(row.EntryDate)
	if err != nil {
		slog.Warn("Unparsable entry date in storage", "id", row.ID, "entry_date", row.EntryDate)
	}
	e := core.DailyEntry{
		ID: row.ID,
		EntryInput: core.EntryInput{
			EntryDate:            date,
			MilkLiters:           row.MilkLiters,
			MilkPricePerLiter:    row.MilkPricePerLiter,
			PremixPackets:        row.PremixPackets,
			PremixPricePerPacket: row.PremixPricePerPacket,
			CoffeeLiters:         row.CoffeeLiters,
			CoffeePricePerLiter:  row.CoffeePricePerLiter,
			CupsUsed:             row.CupsUsed,
			CupPrice:             row.CupPrice,
			SpoonsUsed:           row.SpoonsUsed,
			SpoonPrice:           row.SpoonPrice,
			CupsSold:             row.CupsSold,
			PricePerCupSold:      row.PricePerCupSold,
		},
		CreatedAt: parseTimestamp(row.CreatedAt),
		UpdatedAt: parseTimestamp(row.UpdatedAt),
	}
	e.Derive()
	return e
}

func fromDefaultRow(row DefaultCost) core.DefaultCosts {
	return core.DefaultCosts{
		MilkPricePerLiter:    row.MilkPricePerLiter,
		PremixPricePerPacket: row.PremixPricePerPacket,
		CoffeePricePerLiter:  row.CoffeePricePerLiter,
		CupPrice:             row.CupPrice,
		SpoonPrice:           row.SpoonPrice,
		PricePerCupSold:      row.PricePerCupSold,
		CreatedAt:            parseTimestamp(row.CreatedAt),
		UpdatedAt:            parseTimestamp(row.UpdatedAt),
	}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

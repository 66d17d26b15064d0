package storage

import (
	"context"
)

const entryColumns = `id, entry_date,
    milk_liters, milk_price_per_liter, premix_packets, premix_price_per_packet,
    coffee_liters, coffee_price_per_liter, cups_used, cup_price, spoons_used, spoon_price,
    cups_sold, price_per_cup_sold,
    milk_total_cost, premix_total_cost, coffee_total_cost, cups_total_cost, spoons_total_cost,
    total_cost, total_revenue, profit_loss,
    version, sync_status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDailyEntry(row rowScanner) (DailyEntry, error) {
	var i DailyEntry
	err := row.Scan(
		&i.ID,
		&i.EntryDate,
		&i.MilkLiters,
		&i.MilkPricePerLiter,
		&i.PremixPackets,
		&i.PremixPricePerPacket,
		&i.CoffeeLiters,
		&i.CoffeePricePerLiter,
		&i.CupsUsed,
		&i.CupPrice,
		&i.SpoonsUsed,
		&i.SpoonPrice,
		&i.CupsSold,
		&i.PricePerCupSold,
		&i.MilkTotalCost,
		&i.PremixTotalCost,
		&i.CoffeeTotalCost,
		&i.CupsTotalCost,
		&i.SpoonsTotalCost,
		&i.TotalCost,
		&i.TotalRevenue,
		&i.ProfitLoss,
		&i.Version,
		&i.SyncStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listDailyEntries(ctx context.Context, query string, args ...interface{}) ([]DailyEntry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DailyEntry{}
	for rows.Next() {
		i, err := scanDailyEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createEntry = `INSERT INTO daily_entries (` + entryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, 'pending', ?, ?)
RETURNING ` + entryColumns

type EntryParams struct {
	ID                   string
	EntryDate            string
	MilkLiters           float64
	MilkPricePerLiter    float64
	PremixPackets        float64
	PremixPricePerPacket float64
	CoffeeLiters         float64
	CoffeePricePerLiter  float64
	CupsUsed             float64
	CupPrice             float64
	SpoonsUsed           float64
	SpoonPrice           float64
	CupsSold             float64
	PricePerCupSold      float64
	MilkTotalCost        float64
	PremixTotalCost      float64
	CoffeeTotalCost      float64
	CupsTotalCost        float64
	SpoonsTotalCost      float64
	TotalCost            float64
	TotalRevenue         float64
	ProfitLoss           float64
	CreatedAt            string
	UpdatedAt            string
}

func (arg EntryParams) values() []interface{} {
	return []interface{}{
		arg.EntryDate,
		arg.MilkLiters,
		arg.MilkPricePerLiter,
		arg.PremixPackets,
		arg.PremixPricePerPacket,
		arg.CoffeeLiters,
		arg.CoffeePricePerLiter,
		arg.CupsUsed,
		arg.CupPrice,
		arg.SpoonsUsed,
		arg.SpoonPrice,
		arg.CupsSold,
		arg.PricePerCupSold,
		arg.MilkTotalCost,
		arg.PremixTotalCost,
		arg.CoffeeTotalCost,
		arg.CupsTotalCost,
		arg.SpoonsTotalCost,
		arg.TotalCost,
		arg.TotalRevenue,
		arg.ProfitLoss,
	}
}

func (q *Queries) CreateEntry(ctx context.Context, arg EntryParams) (DailyEntry, error) {
	args := append([]interface{}{arg.ID}, arg.values()...)
	args = append(args, arg.CreatedAt, arg.UpdatedAt)
	return scanDailyEntry(q.db.QueryRowContext(ctx, createEntry, args...))
}

const updateEntry = `UPDATE daily_entries SET
    entry_date = ?,
    milk_liters = ?, milk_price_per_liter = ?,
    premix_packets = ?, premix_price_per_packet = ?,
    coffee_liters = ?, coffee_price_per_liter = ?,
    cups_used = ?, cup_price = ?,
    spoons_used = ?, spoon_price = ?,
    cups_sold = ?, price_per_cup_sold = ?,
    milk_total_cost = ?, premix_total_cost = ?, coffee_total_cost = ?,
    cups_total_cost = ?, spoons_total_cost = ?,
    total_cost = ?, total_revenue = ?, profit_loss = ?,
    version = version + 1,
    sync_status = 'pending',
    updated_at = ?
WHERE id = ?
RETURNING ` + entryColumns

// UpdateEntry rewrites every column of the row; CreatedAt is ignored.
func (q *Queries) UpdateEntry(ctx context.Context, arg EntryParams) (DailyEntry, error) {
	args := append(arg.values(), arg.UpdatedAt, arg.ID)
	return scanDailyEntry(q.db.QueryRowContext(ctx, updateEntry, args...))
}

const deleteEntry = `DELETE FROM daily_entries WHERE id = ?`

func (q *Queries) DeleteEntry(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getEntry = `SELECT ` + entryColumns + ` FROM daily_entries WHERE id = ?`

func (q *Queries) GetEntry(ctx context.Context, id string) (DailyEntry, error) {
	return scanDailyEntry(q.db.QueryRowContext(ctx, getEntry, id))
}

const getEntryByDate = `SELECT ` + entryColumns + ` FROM daily_entries WHERE entry_date = ?`

func (q *Queries) GetEntryByDate(ctx context.Context, entryDate string) (DailyEntry, error) {
	return scanDailyEntry(q.db.QueryRowContext(ctx, getEntryByDate, entryDate))
}

const listEntries = `SELECT ` + entryColumns + ` FROM daily_entries
WHERE entry_date >= ? AND entry_date <= ?
ORDER BY entry_date DESC
LIMIT ? OFFSET ?`

type ListEntriesParams struct {
	FromDate string
	ToDate   string
	// Limit -1 lifts the limit.
	Limit  int64
	Offset int64
}

func (q *Queries) ListEntries(ctx context.Context, arg ListEntriesParams) ([]DailyEntry, error) {
	return q.listDailyEntries(ctx, listEntries, arg.FromDate, arg.ToDate, arg.Limit, arg.Offset)
}

const listYears = `SELECT DISTINCT CAST(substr(entry_date, 1, 4) AS INTEGER) AS year
FROM daily_entries
ORDER BY year DESC`

func (q *Queries) ListYears(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listYears)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []int64{}
	for rows.Next() {
		var year int64
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		items = append(items, year)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPendingSyncEntries = `SELECT ` + entryColumns + ` FROM daily_entries
WHERE sync_status = 'pending'
ORDER BY created_at ASC
LIMIT ?`

func (q *Queries) GetPendingSyncEntries(ctx context.Context, limit int64) ([]DailyEntry, error) {
	return q.listDailyEntries(ctx, getPendingSyncEntries, limit)
}

const markEntrySynced = `UPDATE daily_entries SET sync_status = 'synced' WHERE id = ? AND version = ?`

// MarkEntrySynced only flips rows still at the synced version, so an edit
// that lands while the mirror is written stays pending.
func (q *Queries) MarkEntrySynced(ctx context.Context, id string, version int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markEntrySynced, id, version)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markEntrySyncError = `UPDATE daily_entries SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkEntrySyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markEntrySyncError, id)
	return err
}

const countEntriesBySyncStatus = `SELECT sync_status, COUNT(*) FROM daily_entries GROUP BY sync_status`

func (q *Queries) CountEntriesBySyncStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, countEntriesBySyncStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

const getDefaultCosts = `SELECT milk_price_per_liter, premix_price_per_packet, coffee_price_per_liter,
    cup_price, spoon_price, price_per_cup_sold, created_at, updated_at
FROM default_costs WHERE id = 1`

func (q *Queries) GetDefaultCosts(ctx context.Context) (DefaultCost, error) {
	row := q.db.QueryRowContext(ctx, getDefaultCosts)
	var i DefaultCost
	err := row.Scan(
		&i.MilkPricePerLiter,
		&i.PremixPricePerPacket,
		&i.CoffeePricePerLiter,
		&i.CupPrice,
		&i.SpoonPrice,
		&i.PricePerCupSold,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertDefaultCosts = `INSERT INTO default_costs (
    id, milk_price_per_liter, premix_price_per_packet, coffee_price_per_liter,
    cup_price, spoon_price, price_per_cup_sold, created_at, updated_at
) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    milk_price_per_liter = excluded.milk_price_per_liter,
    premix_price_per_packet = excluded.premix_price_per_packet,
    coffee_price_per_liter = excluded.coffee_price_per_liter,
    cup_price = excluded.cup_price,
    spoon_price = excluded.spoon_price,
    price_per_cup_sold = excluded.price_per_cup_sold,
    updated_at = excluded.updated_at`

func (q *Queries) UpsertDefaultCosts(ctx context.Context, arg DefaultCost) error {
	_, err := q.db.ExecContext(ctx, upsertDefaultCosts,
		arg.MilkPricePerLiter,
		arg.PremixPricePerPacket,
		arg.CoffeePricePerLiter,
		arg.CupPrice,
		arg.SpoonPrice,
		arg.PricePerCupSold,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

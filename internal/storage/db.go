package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

// DailyEntry is a row of daily_entries.
type DailyEntry struct {
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
	Version              int64
	SyncStatus           string
	CreatedAt            string
	UpdatedAt            string
}

// DefaultCost is the single row of default_costs.
type DefaultCost struct {
	MilkPricePerLiter    float64
	PremixPricePerPacket float64
	CoffeePricePerLiter  float64
	CupPrice             float64
	SpoonPrice           float64
	PricePerCupSold      float64
	CreatedAt            string
	UpdatedAt            string
}

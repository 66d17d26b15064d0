package google

import (
	"strings"
	"time"

	"softy/internal/core"
)

const lastColumn = "P"

var columnHeaders = []string{
	"Date",
	"Milk (L)", "Milk price/L",
	"Premix (packets)", "Premix price/packet",
	"Coffee (L)", "Coffee price/L",
	"Cups used", "Cup price",
	"Spoons used", "Spoon price",
	"Cups sold", "Price per cup",
	"Total cost", "Total revenue", "Profit/Loss",
}

func headerRow() []any {
	out := make([]any, len(columnHeaders))
	for i, h := range columnHeaders {
		out[i] = h
	}
	return out
}

// entryRow lays out e over columns A:P. Totals come from the raw lines.
func entryRow(e core.DailyEntry) []any {
	t := core.Calculate(e.EntryInput)
	return []any{
		e.EntryDate.String(),
		e.MilkLiters, e.MilkPricePerLiter,
		e.PremixPackets, e.PremixPricePerPacket,
		e.CoffeeLiters, e.CoffeePricePerLiter,
		e.CupsUsed, e.CupPrice,
		e.SpoonsUsed, e.SpoonPrice,
		e.CupsSold, e.PricePerCupSold,
		t.TotalCost, t.TotalRevenue, t.ProfitLoss,
	}
}

// Layouts a date cell may come back in after manual edits.
var dateCellLayouts = []string{core.DateLayout, "2006/01/02", "02/01/2006", time.RFC3339}

// parseDateCell reads a column A value. Header and blank cells do not parse.
func parseDateCell(s string) (core.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, false
	}
	for _, layout := range dateCellLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), true
		}
	}
	return core.Date{}, false
}

// findDateRow returns the 1-based row whose date cell equals date, or 0.
func findDateRow(cells []string, date core.Date) int {
	want := date.String()
	for i, c := range cells {
		if d, ok := parseDateCell(c); ok && d.String() == want {
			return i + 1
		}
	}
	return 0
}

package http

import (
	"time"

	"softy/internal/core"
	"softy/internal/fx"
	"softy/internal/services"
)

// Views carry the raw numbers plus the strings the stall owner reads, so
// clients never round money themselves.

type moneyDisplay struct {
	TotalCost    string `json:"total_cost"`
	TotalRevenue string `json:"total_revenue"`
	ProfitLoss   string `json:"profit_loss"`
}

type entryView struct {
	core.DailyEntry
	Display moneyDisplay `json:"display"`
}

type summaryView struct {
	core.PeriodSummary
	Display moneyDisplay `json:"display"`
}

func newEntryView(e core.DailyEntry) entryView {
	if e.TotalCost == nil || e.TotalRevenue == nil || e.ProfitLoss == nil {
		e.Derive()
	}
	return entryView{
		DailyEntry: e,
		Display: moneyDisplay{
			TotalCost:    core.FormatMoney(*e.TotalCost),
			TotalRevenue: core.FormatMoney(*e.TotalRevenue),
			ProfitLoss:   core.FormatMoney(*e.ProfitLoss),
		},
	}
}

func newEntryViews(entries []core.DailyEntry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newEntryView(e))
	}
	return views
}

func newSummaryView(s core.PeriodSummary) summaryView {
	return summaryView{
		PeriodSummary: s,
		Display: moneyDisplay{
			TotalCost:    core.FormatMoney(s.TotalCost),
			TotalRevenue: core.FormatMoney(s.TotalRevenue),
			ProfitLoss:   core.FormatMoney(s.ProfitLoss),
		},
	}
}

// defaultsView drops the timestamps until the record has been saved.
type defaultsView struct {
	core.DefaultCosts
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func newDefaultsView(d core.DefaultCosts) defaultsView {
	v := defaultsView{DefaultCosts: d}
	if !d.CreatedAt.IsZero() {
		v.CreatedAt = &d.CreatedAt
	}
	if !d.UpdatedAt.IsZero() {
		v.UpdatedAt = &d.UpdatedAt
	}
	return v
}

type listView struct {
	Entries []entryView `json:"entries"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

type dashboardView struct {
	Entries []entryView      `json:"entries"`
	Summary summaryView      `json:"summary"`
	Chart   core.ChartSeries `json:"chart"`
}

// monthlyView shadows the report's entries and summary with their views.
type monthlyView struct {
	services.MonthlyReport
	Entries []entryView `json:"entries"`
	Summary summaryView `json:"summary"`
}

type monthSummaryView struct {
	core.MonthlySummary
	Display moneyDisplay `json:"display"`
}

type yearlyView struct {
	services.YearlyReport
	MonthlySummaries []monthSummaryView `json:"monthly_summaries"`
	Display          moneyDisplay       `json:"display"`
}

func newYearlyView(r services.YearlyReport) yearlyView {
	months := make([]monthSummaryView, 0, len(r.MonthlySummaries))
	for _, m := range r.MonthlySummaries {
		months = append(months, monthSummaryView{
			MonthlySummary: m,
			Display:        newSummaryView(m.PeriodSummary).Display,
		})
	}
	return yearlyView{
		YearlyReport:     r,
		MonthlySummaries: months,
		Display:          newSummaryView(r.PeriodSummary).Display,
	}
}

type lineView struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Unit      string  `json:"unit"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
	Display   string  `json:"display"`
}

type calculationView struct {
	Lines        []lineView   `json:"lines"`
	TotalCost    float64      `json:"total_cost"`
	TotalRevenue float64      `json:"total_revenue"`
	ProfitLoss   float64      `json:"profit_loss"`
	Display      moneyDisplay `json:"display"`
}

func newCalculationView(in core.EntryInput) calculationView {
	totals := core.Calculate(in)
	quantities := in.Quantities()

	lines := make([]lineView, 0, len(quantities))
	for _, info := range core.Lines() {
		q := quantities[info.Line]
		sub := totals.Subtotal(info.Line)
		lines = append(lines, lineView{
			Key:       info.Key,
			Label:     info.Label,
			Unit:      info.Unit,
			Quantity:  q[0],
			UnitPrice: q[1],
			Subtotal:  sub,
			Display:   core.FormatMoney(sub),
		})
	}
	return calculationView{
		Lines:        lines,
		TotalCost:    totals.TotalCost,
		TotalRevenue: totals.TotalRevenue,
		ProfitLoss:   totals.ProfitLoss,
		Display: moneyDisplay{
			TotalCost:    core.FormatMoney(totals.TotalCost),
			TotalRevenue: core.FormatMoney(totals.TotalRevenue),
			ProfitLoss:   core.FormatMoney(totals.ProfitLoss),
		},
	}
}

type currenciesView struct {
	Currencies   []fx.Currency `json:"currencies"`
	QuickAmounts []float64     `json:"quick_amounts"`
	DefaultFrom  string        `json:"default_from"`
	DefaultTo    string        `json:"default_to"`
}

type historyView struct {
	Items []fx.Conversion `json:"items"`
}

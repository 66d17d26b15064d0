package core

import (
	"fmt"
	"time"
)

// PeriodSummary folds a set of entries into revenue, cost and profit.
type PeriodSummary struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalCost    float64 `json:"total_cost"`
	ProfitLoss   float64 `json:"profit_loss"`
	EntriesCount int     `json:"entries_count"`
}

// MonthlySummary is the period summary of one calendar month.
type MonthlySummary struct {
	Month      string `json:"month"`
	MonthIndex int    `json:"month_index"`
	Year       int    `json:"year"`
	PeriodSummary
}

// YearlySummary is a year total with its twelve monthly rows.
type YearlySummary struct {
	Year int `json:"year"`
	PeriodSummary
	MonthlySummaries []MonthlySummary `json:"monthly_summaries"`
}

// Summarize sums revenue and cost over entries. Entries without derived
// totals contribute zero.
func Summarize(entries []DailyEntry) PeriodSummary {
	var s PeriodSummary
	for _, e := range entries {
		s.TotalRevenue += value(e.TotalRevenue)
		s.TotalCost += value(e.TotalCost)
	}
	s.ProfitLoss = s.TotalRevenue - s.TotalCost
	s.EntriesCount = len(entries)
	return s
}

// MonthlyBreakdown partitions entries by month of entry date and returns
// exactly twelve summaries, January first. Callers filter to the year.
func MonthlyBreakdown(year int, entries []DailyEntry) []MonthlySummary {
	var buckets [12][]DailyEntry
	for _, e := range entries {
		m := e.EntryDate.Month()
		if m < 1 || m > 12 {
			continue
		}
		buckets[m-1] = append(buckets[m-1], e)
	}

	out := make([]MonthlySummary, 12)
	for i := range out {
		out[i] = MonthlySummary{
			Month:         time.Month(i + 1).String(),
			MonthIndex:    i + 1,
			Year:          year,
			PeriodSummary: Summarize(buckets[i]),
		}
	}
	return out
}

// SummarizeYear builds the yearly view from the entries of one year.
func SummarizeYear(year int, entries []DailyEntry) YearlySummary {
	months := MonthlyBreakdown(year, entries)
	var total PeriodSummary
	for _, m := range months {
		total.TotalRevenue += m.TotalRevenue
		total.TotalCost += m.TotalCost
		total.EntriesCount += m.EntriesCount
	}
	total.ProfitLoss = total.TotalRevenue - total.TotalCost
	return YearlySummary{Year: year, PeriodSummary: total, MonthlySummaries: months}
}

// DateRange is an inclusive range of entry dates. A zero bound is open.
type DateRange struct {
	From Date
	To   Date
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From.Time) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To.Time) {
		return false
	}
	return true
}

// MonthRange returns the first and last day of a calendar month.
func MonthRange(year, month int) (DateRange, error) {
	if month < 1 || month > 12 {
		return DateRange{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < 1 || year > 9999 {
		return DateRange{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	first := NewDate(year, month, 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return DateRange{From: first, To: last}, nil
}

// YearRange returns January 1st to December 31st of year.
func YearRange(year int) (DateRange, error) {
	if year < 1 || year > 9999 {
		return DateRange{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return DateRange{From: NewDate(year, 1, 1), To: NewDate(year, 12, 31)}, nil
}

// AdjacentMonths returns the months before and after (year, month).
func AdjacentMonths(year, month int) (prevYear, prevMonth, nextYear, nextMonth int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	p := t.AddDate(0, -1, 0)
	n := t.AddDate(0, 1, 0)
	return p.Year(), int(p.Month()), n.Year(), int(n.Month())
}

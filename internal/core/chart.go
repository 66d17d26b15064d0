package core

import (
	"math"
	"sort"
)

// MinBarHeight keeps a non-zero bar visible on the profit/loss chart.
const MinBarHeight = 0.02

// maxAxisLabels bounds how many x labels a chart shows.
const maxAxisLabels = 10

// ChartPoint is one bar of the profit/loss chart. Height is |value|/range
// in [0,1]; Profit selects whether it is drawn above the zero line.
type ChartPoint struct {
	X             int     `json:"x"`
	Value         float64 `json:"value"`
	Height        float64 `json:"height"`
	DisplayHeight float64 `json:"display_height"`
	Profit        bool    `json:"profit"`
	Label         bool    `json:"label"`
}

// ChartSeries is a scaled profit/loss series.
type ChartSeries struct {
	Max    float64      `json:"max"`
	Min    float64      `json:"min"`
	Range  float64      `json:"range"`
	Points []ChartPoint `json:"points"`
}

// DailySeries charts profit/loss per day of month, oldest first.
func DailySeries(entries []DailyEntry) ChartSeries {
	sorted := make([]DailyEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EntryDate.Before(sorted[j].EntryDate.Time)
	})

	xs := make([]int, len(sorted))
	values := make([]float64, len(sorted))
	for i, e := range sorted {
		xs[i] = e.EntryDate.Day()
		values[i] = value(e.ProfitLoss)
	}
	return Scale(xs, values)
}

// MonthlySeries charts one bar per month that has at least one entry,
// with x set to the month index.
func MonthlySeries(months []MonthlySummary) ChartSeries {
	var xs []int
	var values []float64
	for _, m := range months {
		if m.EntriesCount == 0 {
			continue
		}
		xs = append(xs, m.MonthIndex)
		values = append(values, m.ProfitLoss)
	}
	return Scale(xs, values)
}

// Scale applies the chart scaling rule: the range spans from the lowest
// value (or 0) to the highest value (or 0), and is 1 when that span is 0.
func Scale(xs []int, values []float64) ChartSeries {
	maxV, minV := 0.0, 0.0
	for _, v := range values {
		maxV = math.Max(maxV, v)
		minV = math.Min(minV, v)
	}
	rng := maxV - minV
	if rng == 0 {
		rng = 1
	}

	s := ChartSeries{Max: maxV, Min: minV, Range: rng, Points: make([]ChartPoint, 0, len(values))}
	step := int(math.Ceil(float64(len(values)) / maxAxisLabels))
	for i, v := range values {
		h := math.Abs(v) / rng
		s.Points = append(s.Points, ChartPoint{
			X:             xs[i],
			Value:         v,
			Height:        h,
			DisplayHeight: math.Max(h, MinBarHeight),
			Profit:        v >= 0,
			Label:         step > 0 && i%step == 0,
		})
	}
	return s
}

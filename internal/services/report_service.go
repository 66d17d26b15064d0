package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"softy/internal/core"
	ports "softy/internal/sheets"
)

type (
	Dashboard struct {
		Entries []core.DailyEntry  `json:"entries"`
		Summary core.PeriodSummary `json:"summary"`
		Chart   core.ChartSeries   `json:"chart"`
	}

	MonthRef struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	MonthlyReport struct {
		Year      int                `json:"year"`
		Month     int                `json:"month"`
		MonthName string             `json:"month_name"`
		Entries   []core.DailyEntry  `json:"entries"`
		Summary   core.PeriodSummary `json:"summary"`
		Chart     core.ChartSeries   `json:"chart"`
		Prev      MonthRef           `json:"prev"`
		Next      MonthRef           `json:"next"`
	}

	YearlyReport struct {
		core.YearlySummary
		Chart    core.ChartSeries `json:"chart"`
		Years    []int            `json:"years"`
		PrevYear int              `json:"prev_year"`
		NextYear int              `json:"next_year"`
	}
)

// ReportService builds the read-side views. Every call reloads from the
// repository.
type ReportService struct {
	repo ports.EntryRepository
}

func NewReportService(repo ports.EntryRepository) *ReportService {
	return &ReportService{repo: repo}
}

// Dashboard returns the latest limit entries with their summary and chart.
func (s *ReportService) Dashboard(ctx context.Context, limit int) (Dashboard, error) {
	entries, err := s.repo.ListEntries(ctx, ports.ListFilter{Limit: limit})
	if err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard entries: %w", err)
	}
	return Dashboard{
		Entries: entries,
		Summary: core.Summarize(entries),
		Chart:   core.DailySeries(entries),
	}, nil
}

func (s *ReportService) Monthly(ctx context.Context, year, month int) (MonthlyReport, error) {
	rng, err := core.MonthRange(year, month)
	if err != nil {
		return MonthlyReport{}, err
	}
	entries, err := s.repo.ListEntries(ctx, ports.ListFilter{Range: rng})
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("load month entries: %w", err)
	}

	py, pm, ny, nm := core.AdjacentMonths(year, month)
	return MonthlyReport{
		Year:      year,
		Month:     month,
		MonthName: time.Month(month).String(),
		Entries:   entries,
		Summary:   core.Summarize(entries),
		Chart:     core.DailySeries(entries),
		Prev:      MonthRef{Year: py, Month: pm},
		Next:      MonthRef{Year: ny, Month: nm},
	}, nil
}

// Yearly loads the year's entries and the year list concurrently.
func (s *ReportService) Yearly(ctx context.Context, year int) (YearlyReport, error) {
	rng, err := core.YearRange(year)
	if err != nil {
		return YearlyReport{}, err
	}

	var (
		entries []core.DailyEntry
		years   []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.repo.ListEntries(gctx, ports.ListFilter{Range: rng})
		if err != nil {
			return fmt.Errorf("load year entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		years, err = s.repo.ListYears(gctx)
		if err != nil {
			return fmt.Errorf("list years: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return YearlyReport{}, err
	}

	summary := core.SummarizeYear(year, entries)
	return YearlyReport{
		YearlySummary: summary,
		Chart:         core.MonthlySeries(summary.MonthlySummaries),
		Years:         years,
		PrevYear:      year - 1,
		NextYear:      year + 1,
	}, nil
}

func (s *ReportService) Years(ctx context.Context) ([]int, error) {
	years, err := s.repo.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}

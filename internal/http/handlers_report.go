package http

import (
	"net/http"
	"time"

	"softy/internal/log"
)

// handleDashboard shows the latest entries, limit defaulting to the
// configured dashboard size.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	limit, _ := pageParams(r.URL.Query().Get("limit"), "", s.dashboardLimit)

	d, err := s.reports.Dashboard(r.Context(), limit)
	if err != nil {
		errorFor(r, log.OpSummarize, err).Write(w)
		return
	}
	NewResponse().JSON(dashboardView{
		Entries: newEntryViews(d.Entries),
		Summary: newSummaryView(d.Summary),
		Chart:   d.Chart,
	}).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	params := ParseMonthParams(r.URL.Query())

	report, err := s.reports.Monthly(r.Context(), params.Year, params.Month)
	if err != nil {
		errorFor(r, log.OpSummarize, err).Write(w)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Monthly report built",
		log.NewFields().WithPeriod(params.Year, params.Month).ToSlice()...)

	NewResponse().JSON(monthlyView{
		MonthlyReport: report,
		Entries:       newEntryViews(report.Entries),
		Summary:       newSummaryView(report.Summary),
	}).Write(w)
}

func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	year := queryInt(r.URL.Query(), "year", time.Now().Year())

	report, err := s.reports.Yearly(r.Context(), year)
	if err != nil {
		errorFor(r, log.OpSummarize, err).Write(w)
		return
	}
	NewResponse().JSON(newYearlyView(report)).Write(w)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	years, err := s.reports.Years(r.Context())
	if err != nil {
		errorFor(r, log.OpList, err).Write(w)
		return
	}
	if years == nil {
		years = []int{}
	}
	NewResponse().JSON(map[string][]int{"years": years}).Write(w)
}

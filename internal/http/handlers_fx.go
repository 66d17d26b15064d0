package http

import (
	"net/http"

	"softy/internal/core"
	"softy/internal/fx"
	"softy/internal/log"
)

func (s *Server) requireConverter(w http.ResponseWriter) bool {
	if s.converter == nil {
		ErrorResponse(http.StatusServiceUnavailable, "currency converter not configured").Write(w)
		return false
	}
	return true
}

// handleConvert converts amount between two currencies. Missing codes fall
// back to the default pair; an unparsable amount counts as zero.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if !s.requireConverter(w) {
		return
	}

	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" {
		from = fx.DefaultFrom
	}
	if to == "" {
		to = fx.DefaultTo
	}
	if q.Get("swap") == "true" {
		from, to = fx.Swap(from, to)
	}

	conv, err := s.converter.Convert(r.Context(), from, to, core.ParseNumber(q.Get("amount")))
	if err != nil {
		errorFor(r, log.OpConvert, err).Write(w)
		return
	}
	NewResponse().JSON(conv).Write(w)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	NewResponse().JSON(currenciesView{
		Currencies:   fx.Currencies,
		QuickAmounts: fx.QuickAmounts,
		DefaultFrom:  fx.DefaultFrom,
		DefaultTo:    fx.DefaultTo,
	}).Write(w)
}

// handleHistory lists (GET) or clears (DELETE) recent conversions.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireConverter(w) {
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		NewResponse().JSON(historyView{Items: s.converter.History().Items()}).Write(w)
	case http.MethodDelete:
		s.converter.History().Clear()
		NewResponse().Status(http.StatusNoContent).Write(w)
	default:
		MethodNotAllowedError("GET, DELETE").Write(w)
	}
}

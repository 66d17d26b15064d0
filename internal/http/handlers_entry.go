package http

import (
	"net/http"

	"softy/internal/core"
	"softy/internal/log"
	ports "softy/internal/sheets"
)

// handleEntries lists entries (GET) or creates one (POST).
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.listEntries(w, r)
	case http.MethodPost:
		s.createEntry(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"), s.dashboardLimit)

	filter := ports.ListFilter{Limit: limit, Offset: offset}
	if v := q.Get("from"); v != "" {
		from, err := core.ParseDate(v)
		if err != nil {
			UnprocessableEntityError("from must be a date in YYYY-MM-DD format").Write(w)
			return
		}
		filter.Range.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := core.ParseDate(v)
		if err != nil {
			UnprocessableEntityError("to must be a date in YYYY-MM-DD format").Write(w)
			return
		}
		filter.Range.To = to
	}

	entries, err := s.entries.Repository().ListEntries(r.Context(), filter)
	if err != nil {
		errorFor(r, log.OpList, err).Write(w)
		return
	}
	NewResponse().JSON(listView{
		Entries: newEntryViews(entries),
		Limit:   limit,
		Offset:  offset,
	}).Write(w)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	p, resp := parseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	in, err := parseEntryInput(p)
	if err != nil {
		errorFor(r, log.OpCreate, err).Write(w)
		return
	}

	e, err := s.entries.Create(r.Context(), in)
	if err != nil {
		errorFor(r, log.OpCreate, err).Write(w)
		return
	}
	log.LogEntrySaved(r.Context(), log.OpCreate, e.ID, e.EntryDate.String(), *e.ProfitLoss)

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/entries/"+e.ID).
		JSON(newEntryView(e)).
		Write(w)
}

// handleEntry serves one entry by id.
func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		e, found, err := s.entries.Repository().GetEntry(r.Context(), id)
		if err != nil {
			errorFor(r, log.OpRead, err).Write(w)
			return
		}
		if !found {
			NotFoundError("entry not found").Write(w)
			return
		}
		NewResponse().JSON(newEntryView(e)).Write(w)

	case http.MethodPut, http.MethodPatch:
		p, resp := parseBodyOrFail(r)
		if resp != nil {
			resp.Write(w)
			return
		}
		patch, err := parseEntryPatch(p)
		if err != nil {
			errorFor(r, log.OpUpdate, err).Write(w)
			return
		}
		e, err := s.entries.Update(r.Context(), id, patch)
		if err != nil {
			errorFor(r, log.OpUpdate, err).Write(w)
			return
		}
		log.LogEntrySaved(r.Context(), log.OpUpdate, e.ID, e.EntryDate.String(), *e.ProfitLoss)
		NewResponse().JSON(newEntryView(e)).Write(w)

	case http.MethodDelete:
		if err := s.entries.Delete(r.Context(), id); err != nil {
			errorFor(r, log.OpDelete, err).Write(w)
			return
		}
		log.FromContext(r.Context()).InfoContext(r.Context(), "Entry deleted",
			log.FieldEntryID, id, log.FieldOperation, log.OpDelete)
		NewResponse().Status(http.StatusNoContent).Write(w)

	default:
		MethodNotAllowedError("GET, PUT, PATCH, DELETE").Write(w)
	}
}

func (s *Server) handleEntryByDate(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	date, err := core.ParseDate(r.PathValue("date"))
	if err != nil {
		errorFor(r, log.OpRead, err).Write(w)
		return
	}
	e, found, err := s.entries.Repository().GetEntryByDate(r.Context(), date)
	if err != nil {
		errorFor(r, log.OpRead, err).Write(w)
		return
	}
	if !found {
		NotFoundError("no entry for " + date.String()).Write(w)
		return
	}
	NewResponse().JSON(newEntryView(e)).Write(w)
}

// handlePrefill returns a blank form carrying the default unit prices.
// The date defaults to today.
func (s *Server) handlePrefill(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	date := core.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			errorFor(r, log.OpRead, err).Write(w)
			return
		}
		date = parsed
	}
	NewResponse().JSON(s.entries.Prefill(r.Context(), date)).Write(w)
}

// handleCalculate previews the totals of a form without saving it.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := parseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	NewResponse().JSON(newCalculationView(parseEntryNumbers(p))).Write(w)
}

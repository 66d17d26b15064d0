package http

import (
	"net/http"

	"softy/internal/log"
)

// handleDefaultCosts reads (GET) or partially upserts (PUT, PATCH) the
// default unit prices.
func (s *Server) handleDefaultCosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		d, err := s.entries.DefaultCosts(r.Context())
		if err != nil {
			errorFor(r, log.OpRead, err).Write(w)
			return
		}
		NewResponse().JSON(newDefaultsView(d)).Write(w)

	case http.MethodPut, http.MethodPatch:
		p, resp := parseBodyOrFail(r)
		if resp != nil {
			resp.Write(w)
			return
		}
		d, err := s.entries.SaveDefaultCosts(r.Context(), parseDefaultsPatch(p))
		if err != nil {
			errorFor(r, log.OpUpdate, err).Write(w)
			return
		}
		log.FromContext(r.Context()).InfoContext(r.Context(), "Default costs saved", log.FieldOperation, log.OpUpdate)
		NewResponse().JSON(newDefaultsView(d)).Write(w)

	default:
		MethodNotAllowedError("GET, PUT, PATCH").Write(w)
	}
}

// Package http serves the stall tracker and the currency converter as a
// JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"softy/internal/fx"
	"softy/internal/log"
	"softy/internal/middleware/ratelimit"
	"softy/internal/middleware/security"
	"softy/internal/middleware/trace"
	"softy/internal/services"
)

// DefaultDashboardLimit is how many recent entries the dashboard shows.
const DefaultDashboardLimit = 30

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Server needs. Pinger and Converter may be
// nil: readiness then skips the store check and the fx routes answer 503.
type Deps struct {
	Entries        *services.EntryService
	Reports        *services.ReportService
	Converter      *fx.Converter
	Pinger         Pinger
	DashboardLimit int
	RateLimit      ratelimit.Config
	Logger         *log.Logger
}

type Server struct {
	http.Server
	entries        *services.EntryService
	reports        *services.ReportService
	converter      *fx.Converter
	pinger         Pinger
	dashboardLimit int
	limiter        *ratelimit.Limiter
	tracer         *trace.Middleware
	logger         *log.Logger
	started        time.Time

	stopLimiter  chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. The limiter cleanup goroutine runs until Shutdown.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentHTTP)
	}
	if deps.DashboardLimit <= 0 {
		deps.DashboardLimit = DefaultDashboardLimit
	}

	clientIP := security.NewClientIP()
	s := &Server{
		entries:        deps.Entries,
		reports:        deps.Reports,
		converter:      deps.Converter,
		pinger:         deps.Pinger,
		dashboardLimit: deps.DashboardLimit,
		limiter:        ratelimit.NewLimiter(deps.RateLimit),
		tracer:         trace.NewMiddleware(logger, clientIP.Resolve),
		logger:         logger,
		started:        time.Now(),
		stopLimiter:    make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/entries", s.handleEntries)
	mux.HandleFunc("/api/entries/prefill", s.handlePrefill)
	mux.HandleFunc("/api/entries/by-date/{date}", s.handleEntryByDate)
	mux.HandleFunc("/api/entries/{id}", s.handleEntry)
	mux.HandleFunc("/api/calculate", s.handleCalculate)

	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/monthly", s.handleMonthly)
	mux.HandleFunc("/api/yearly", s.handleYearly)
	mux.HandleFunc("/api/years", s.handleYears)

	mux.HandleFunc("/api/default-costs", s.handleDefaultCosts)

	mux.HandleFunc("/api/fx/convert", s.handleConvert)
	mux.HandleFunc("/api/fx/currencies", s.handleCurrencies)
	mux.HandleFunc("/api/fx/history", s.handleHistory)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})

	limited := s.limiter.Middleware(clientIP.Resolve,
		func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.NewFields().WithClientIP(clientIP.Resolve(r)).WithHTTPRequest(r.Method, r.URL.Path, "").ToSlice()...)
			TooManyRequestsError().Write(w)
		},
		http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.limiter.Run(s.stopLimiter)
	return s
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopLimiter)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns the request counters of the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Package server provides the HTTP server and routing for the trading
// floor simulation.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/tradingfloor/internal/activity"
	"github.com/aristath/tradingfloor/internal/engine"
	"github.com/aristath/tradingfloor/internal/events"
	"github.com/aristath/tradingfloor/internal/ledger"
	"github.com/aristath/tradingfloor/internal/roster"
	"github.com/aristath/tradingfloor/internal/simqueue"
)

// Config holds server configuration
type Config struct {
	Log     zerolog.Logger
	Port    int
	DevMode bool

	Engine   *engine.Engine
	Queue    *simqueue.Queue
	Ledger   *ledger.Ledger
	Roster   *roster.Roster
	Activity *activity.Log
	Manager  *events.Manager
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	engine   *engine.Engine
	queue    *simqueue.Queue
	ledger   *ledger.Ledger
	roster   *roster.Roster
	activity *activity.Log
	manager  *events.Manager

	statusMonitor *StatusMonitor
	startedAt     time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		engine:    cfg.Engine,
		queue:     cfg.Queue,
		ledger:    cfg.Ledger,
		roster:    cfg.Roster,
		activity:  cfg.Activity,
		manager:   cfg.Manager,
		startedAt: time.Now(),
	}
	s.statusMonitor = NewStatusMonitor(cfg.Manager, s.log)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, map[string]string{"status": "ok"})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/clock", s.handleClock)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/orders", s.handleOrders)
		r.Get("/events", s.handleEvents)
		r.Get("/market-events", s.handleMarketEvents)
		r.Get("/characters", s.handleCharacters)
		r.Get("/activity", s.handleActivity)
		r.Post("/activity", s.handleAddActivity)
		r.Get("/performance", s.handlePerformance)
		r.Get("/charts/performance", s.handlePerformanceChart)
		r.Get("/system/status", s.handleSystemStatus)

		r.Route("/sim", func(r chi.Router) {
			r.Post("/start", s.handleSimStart)
			r.Post("/pause", s.handleSimPause)
			r.Post("/speed", s.handleSimSpeed)
			r.Post("/fast-forward-day", s.handleFastForwardDay)
			r.Post("/fast-forward-weekday", s.handleFastForwardWeekday)
		})

		r.Get("/events/stream", NewEventsStreamHandler(s.manager.Bus(), s.log).ServeHTTP)
		r.Get("/ws", s.handleWebSocket)
	})
}

// Start starts the HTTP server and the background status monitor
func (s *Server) Start() error {
	s.statusMonitor.Start()
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.statusMonitor.Stop()
	return s.server.Shutdown(ctx)
}

// Router exposes the handler tree for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/starboard/internal/app"
	"github.com/okian/starboard/internal/domain/viewstate"
	"github.com/okian/starboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Leaderboard runs one load cycle for the given inputs.
	Leaderboard(ctx context.Context, state viewstate.State) (service.View, error)

	// Years lists the loaded year labels.
	Years(ctx context.Context) ([]string, error)
}

// Registrar mounts additional routes, such as the HTML page or API docs.
type Registrar func(r chi.Router)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	yearsHandler       *YearsHandler
	exportHandler      *ExportHandler

	limiter *IPRateLimiter
	logger  logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps),
		yearsHandler:       NewYearsHandler(deps),
		exportHandler:      NewExportHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Handler builds the router: shared middleware, the API routes, then every
// extra registrar in order.
func (s *Server) Handler(ctx context.Context, extra ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if s.limiter != nil {
		r.Use(RateLimitMiddleware(s.limiter))
	}

	s.Register(ctx, r)
	for _, reg := range extra {
		reg(r)
	}
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.With(MetricsMiddleware("healthz")).Get("/healthz", s.healthHandler.HandleHealth)
	r.With(MetricsMiddleware("stats")).Get("/stats", s.statsHandler.HandleStats)

	r.Route("/api", func(r chi.Router) {
		r.With(MetricsMiddleware("leaderboard")).Get("/leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
		r.With(MetricsMiddleware("years")).Get("/years", s.yearsHandler.HandleGetYears)
	})

	r.Route("/export", func(r chi.Router) {
		r.Use(MetricsMiddleware("export"))
		r.Get("/leaderboard.png", s.exportHandler.HandlePNG)
		r.Get("/leaderboard.xlsx", s.exportHandler.HandleXLSX)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

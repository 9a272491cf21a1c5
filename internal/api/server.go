// Package api serves predictions, health probes, metrics and the live report stream over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/datasource"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/metrics"
	"github.com/yourusername/gamepredict/internal/models"
)

// Health states reported by /health
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

var supportedSports = []h2h.Sport{h2h.SportNFL, h2h.SportNCAA, h2h.SportNBA, h2h.SportSoccer}

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Predictions is the prediction surface exposed over HTTP
type Predictions interface {
	DailyPredictions(ctx context.Context) (*models.DailyReport, error)
	SportPredictions(ctx context.Context, sport h2h.Sport) (*models.DailyReport, error)
	PredictMatch(ctx context.Context, sport h2h.Sport, home, away string) (*models.Prediction, error)
}

// HealthResponse represents the JSON response for /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version,omitempty"`
	Commit    string          `json:"commit,omitempty"`
	Sports    map[string]bool `json:"sports"`
	Database  string          `json:"database,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// SportInfo describes one supported sport for /sports
type SportInfo struct {
	Sport       h2h.Sport `json:"sport"`
	DisplayName string    `json:"display_name"`
	Enabled     bool      `json:"enabled"`
	Aliases     []string  `json:"aliases"`
}

// PredictRequest is the body of POST /predict
type PredictRequest struct {
	HomeTeam string `json:"home_team" validate:"required,max=100"`
	AwayTeam string `json:"away_team" validate:"required,max=100,nefield=HomeTeam"`
	Sport    string `json:"sport" validate:"required"`
}

// ErrorResponse is written for every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Config holds the configuration for the API server.
type Config struct {
	ServiceName  string
	Version      string
	Commit       string
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *logrus.Logger
	DB           DatabasePinger
	Predictions  Predictions
	Sports       []h2h.Sport
	Hub          *Hub

	// MetricsPath defaults to /metrics; DisableMetrics drops the route
	MetricsPath    string
	DisableMetrics bool
}

// Server is the HTTP API server.
type Server struct {
	cfg       Config
	server    *http.Server
	logger    *logrus.Entry
	validator *validator.Validate
	enabled   map[h2h.Sport]bool
	mu        sync.RWMutex
	ready     bool
}

// NewServer creates a new API server. A nil Predictions means the predictor failed to
// initialize; prediction routes then answer 503.
func NewServer(cfg Config) *Server {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 120 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.Hub == nil {
		cfg.Hub = NewHub(cfg.Logger)
	}

	enabled := make(map[h2h.Sport]bool, len(cfg.Sports))
	for _, s := range cfg.Sports {
		enabled[s] = true
	}

	return &Server{
		cfg:       cfg,
		logger:    cfg.Logger.WithField("component", "api"),
		validator: validator.New(),
		enabled:   enabled,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Hub returns the websocket hub used for /ws/predictions
func (s *Server) Hub() *Hub {
	return s.cfg.Hub
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	r.Get("/daily-predictions", s.handleDailyPredictions)
	r.Get("/daily-predictions/{sport}", s.handleSportPredictions)
	r.Post("/predict", s.handlePredict)
	r.Get("/sports", s.handleSports)
	r.Get("/ws/predictions", s.cfg.Hub.HandleWS)
	if !s.cfg.DisableMetrics {
		r.Method(http.MethodGet, s.cfg.MetricsPath, metrics.Handler())
	}
	return r
}

// Start starts the server in the background and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"address": s.cfg.Address,
			"service": s.cfg.ServiceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown(5 * time.Second)
	}()

	s.SetReady(s.cfg.Predictions != nil)
	return nil
}

// Shutdown gracefully shuts down the server and disconnects stream subscribers.
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.server == nil {
		return nil
	}
	s.SetReady(false)
	s.logger.Info("API server shutting down")
	s.cfg.Hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("Request served")
	})
}

// handleHealth reports service state and per-sport availability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    StatusHealthy,
		Service:   s.cfg.ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
		Sports:    make(map[string]bool, len(supportedSports)),
	}
	for _, sport := range supportedSports {
		response.Sports[string(sport)] = s.cfg.Predictions != nil && s.enabled[sport]
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.cfg.DB.Ping(ctx); err != nil {
			response.Status = StatusDegraded
			response.Database = "unavailable"
		} else {
			response.Database = "ok"
		}
	}

	status := http.StatusOK
	if s.cfg.Predictions == nil {
		response.Status = StatusUnhealthy
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// handleLive handles the /live endpoint - kubernetes liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.cfg.ServiceName})
}

// handleReady handles the /ready endpoint - checks database connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.cfg.DB.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := ReadyResponse{
		Status:   "ok",
		Service:  s.cfg.ServiceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}
	status := http.StatusOK
	if !allHealthy {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (s *Server) handleDailyPredictions(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	report, err := s.cfg.Predictions.DailyPredictions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSportPredictions(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	sport, err := h2h.ParseSport(chi.URLParam(r, "sport"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	report, err := s.cfg.Predictions.SportPredictions(r.Context(), sport)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}

	var req PredictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			err = fmt.Errorf("%s failed on the '%s' rule", verrs[0].Field(), verrs[0].Tag())
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sport, err := h2h.ParseSport(req.Sport)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !s.enabled[sport] {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("sport %s is not enabled", sport)})
		return
	}

	pred, err := s.cfg.Predictions.PredictMatch(r.Context(), sport, req.HomeTeam, req.AwayTeam)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleSports(w http.ResponseWriter, r *http.Request) {
	aliases := make(map[h2h.Sport][]string)
	for alias, sport := range h2h.Aliases() {
		aliases[sport] = append(aliases[sport], alias)
	}

	out := make([]SportInfo, 0, len(supportedSports))
	for _, sport := range supportedSports {
		info := SportInfo{Sport: sport, Enabled: s.enabled[sport], Aliases: aliases[sport]}
		sort.Strings(info.Aliases)
		if p, err := h2h.Profile(sport); err == nil {
			info.DisplayName = p.DisplayName
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) available(w http.ResponseWriter) bool {
	if s.cfg.Predictions == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "predictor not initialized"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, h2h.ErrUnknownSport):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrTeamNameRequired), errors.Is(err, models.ErrIdenticalTeams):
		s.logger.WithError(err).Debug("Rejected fixture")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, datasource.ErrUpstreamUnavailable):
		s.logger.WithError(err).Warn("Upstream unavailable")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "upstream data unavailable"})
	default:
		s.logger.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Package server exposes the engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/bitshub/internal/catalog"
	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/persist"
)

// maxActionBody bounds POST /actions payloads.
const maxActionBody = 1 << 20

// Server exposes one engine over HTTP.
type Server struct {
	router   chi.Router
	engine   *engine.Engine
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// New creates a server for eng. gatherer backs /metrics and may be nil.
func New(eng *engine.Engine, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:   chi.NewRouter(),
		engine:   eng,
		gatherer: gatherer,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get("/healthz", s.healthCheck)
	s.router.Get("/state", s.getState)
	s.router.Get("/state/{slice}", s.getSlice)
	s.router.Get("/catalog/search", s.searchCatalog)
	s.router.Post("/actions/{name}", s.postAction)
	if s.gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "bitshub"})
}

// StateView is the JSON shape of GET /state.
type StateView struct {
	Seq                int64                 `json:"seq"`
	Products           []domain.Product      `json:"products"`
	Cart               []domain.CartItem     `json:"cart"`
	CartTotal          domain.Money          `json:"cartTotal"`
	CartCount          int                   `json:"cartCount"`
	AddedToCartVisible bool                  `json:"addedToCartVisible"`
	User               *domain.User          `json:"user"`
	Users              []domain.User         `json:"users"`
	Orders             []domain.Order        `json:"orders"`
	Notifications      []domain.Notification `json:"notifications"`
}

// NewStateView builds the view of s at now.
func NewStateView(s *engine.State, seq int64, now time.Time) StateView {
	return StateView{
		Seq:                seq,
		Products:           s.Products,
		Cart:               s.Cart,
		CartTotal:          s.CartTotal(),
		CartCount:          s.CartCount(),
		AddedToCartVisible: s.AddedToCartVisible(now),
		User:               s.SessionUser(),
		Users:              s.RegisteredUsers(),
		Orders:             s.Orders,
		Notifications:      s.Notifications,
	}
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, NewStateView(s.engine.Snapshot(), s.engine.Seq(), s.engine.Now()))
}

// getSlice serves one persisted slice by its short name, e.g. "cart" for
// bitshub_cart.
func (s *Server) getSlice(w http.ResponseWriter, r *http.Request) {
	slices, err := persist.Slices(s.engine.Snapshot())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	data, ok := slices["bitshub_"+chi.URLParam(r, "slice")]
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown_slice", "unknown slice "+chi.URLParam(r, "slice"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write response failed", "error", err)
	}
}

func (s *Server) searchCatalog(w http.ResponseWriter, r *http.Request) {
	products := s.engine.Snapshot().Products
	if category := r.URL.Query().Get("category"); category != "" {
		products = catalog.InCategory(products, category)
	}
	if q := r.URL.Query().Get("q"); q != "" {
		products = catalog.Search(products, q)
	}
	s.writeJSON(w, http.StatusOK, products)
}

// actionResponse is the JSON shape of POST /actions/{name}.
type actionResponse struct {
	engine.Outcome
	Error *engine.Rejection `json:"error,omitempty"`
}

func (s *Server) postAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_body", err.Error())
		return
	}

	a, err := engine.DecodeAction(name, body)
	if errors.Is(err, engine.ErrUnknownAction) {
		s.writeError(w, http.StatusNotFound, "unknown_action", err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_payload", err.Error())
		return
	}

	out := s.engine.Dispatch(a)
	resp := actionResponse{Outcome: out}
	status := http.StatusOK
	if !out.OK() {
		var rej *engine.Rejection
		if errors.As(out.Err, &rej) {
			resp.Error = rej
		}
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, resp)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", "error", err)
	}
}

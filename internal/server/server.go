// Package server exposes the HTTP surface: the WhatsApp webhook, the
// dashboard read API, the websocket endpoint and the metrics handler.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"foguinho/internal/features/activity"
	"foguinho/internal/features/fire"
	"foguinho/internal/features/groups"
	"foguinho/internal/metrics"
	"foguinho/internal/ws"
)

// Server holds the services the handlers dispatch to.
type Server struct {
	engine      *fire.Service
	groups      *groups.Service
	tracker     *activity.Service
	hub         *ws.Hub
	limiter     *RateLimiter
	loc         *time.Location
	rankingSize int
}

// Options carries the tunables the server needs from configuration.
type Options struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RankingSize       int
}

// New wires a server over the given services.
func New(engine *fire.Service, grp *groups.Service, tracker *activity.Service, hub *ws.Hub, loc *time.Location, opts Options) *Server {
	return &Server{
		engine:      engine,
		groups:      grp,
		tracker:     tracker,
		hub:         hub,
		limiter:     NewRateLimiter(opts.RateLimitRequests, opts.RateLimitWindow),
		loc:         loc,
		rankingSize: opts.RankingSize,
	}
}

// Close releases background resources (the rate limiter's cleanup loop).
func (s *Server) Close() {
	s.limiter.Close()
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(Recoverer)
	r.Use(RequestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/webhook", s.handleWebhookGet)
		r.Post("/webhook", s.handleWebhookPost)

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)
			r.Get("/{id}/status", s.handleGroupStatus)
			r.Post("/{id}/restore", s.handleRestoreGroup)
		})
	})

	r.Get("/ws", s.hub.Handler)
	r.Handle("/metrics", metrics.Handler())

	return r
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("erro ao serializar resposta")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

// Package web exposes the coordinator over a JSON API plus a server-sent
// event stream carrying the lifecycle notifications.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rscdev/sixmans/internal/coordinator"
	"github.com/rscdev/sixmans/internal/game"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	router      *chi.Mux
	coordinator *coordinator.Coordinator
	sse         *SSEHub
}

// NewServer creates the HTTP server around a running coordinator.
func NewServer(coord *coordinator.Coordinator) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		coordinator: coord,
		sse:         NewSSEHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)
	r.Get("/events", s.handleSSE)
	r.Get("/state", s.handleState)

	r.Route("/queues", func(r chi.Router) {
		r.Get("/", s.handleListQueues)
		r.Post("/", s.handleCreateQueue)
		r.Route("/{queueID}", func(r chi.Router) {
			r.Delete("/", s.handleRemoveQueue)
			r.Post("/join", s.handleJoinQueue)
			r.Post("/leave", s.handleLeaveQueue)
			r.Post("/mode", s.handleSetQueueMode)
			r.Post("/capacity", s.handleSetQueueCapacity)
			r.Post("/clear", s.handleClearQueue)
			r.Post("/kick", s.handleKickFromQueue)
			r.Post("/seed", s.handleSeedQueue)
		})
	})

	r.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", s.handleGetMatch)
		r.Post("/lobby", s.handleRegenerateLobby)
		r.Post("/vote", s.handleCastModeVote)
		r.Post("/pick", s.handlePickPlayer)
		r.Post("/team", s.handleChooseTeam)
		r.Post("/report", s.handleReportScore)
		r.Post("/cancel", s.handleRequestCancel)
		r.Post("/cancel/confirm", s.handleConfirmCancel)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/queues-enabled", s.handleSetQueuesEnabled)
		r.Post("/queue-timeout", s.handleSetQueueIdleTimeout)
		r.Post("/clear-data", s.handleClearData)
		r.Post("/matches/{matchID}/selection", s.handleForceSelection)
		r.Post("/matches/{matchID}/result", s.handleForceResult)
		r.Post("/matches/{matchID}/cancel", s.handleForceCancel)
	})

	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/players/{playerID}/rank", s.handleRank)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartSSE starts forwarding coordinator events to connected clients.
func (s *Server) StartSSE(events <-chan coordinator.Event) {
	go s.sse.Run(events)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses. Every
// rejection carries the violated invariant's message verbatim.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, game.ErrQueueNotFound), errors.Is(err, game.ErrMatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrAlreadyQueued),
		errors.Is(err, game.ErrAlreadyInMatch),
		errors.Is(err, game.ErrAlreadyReported):
		status = http.StatusConflict
	case errors.Is(err, game.ErrNotEligible), errors.Is(err, game.ErrOutOfTurn):
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

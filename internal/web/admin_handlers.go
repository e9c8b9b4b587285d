package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rscdev/sixmans/internal/coordinator"
	"github.com/rscdev/sixmans/internal/game"
)

// Admin endpoints. Permission checks belong to the deployment's gateway;
// these handlers only translate requests into coordinator commands.

func (s *Server) handleCreateQueue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
		Mode     string `json:"mode"`
		PerPlay  int    `json:"perPlay"`
		PerWin   int    `json:"perWin"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	mode := game.ModeDefault
	if body.Mode != "" {
		var err error
		if mode, err = game.ParseSelectionMode(body.Mode); err != nil {
			writeError(w, err)
			return
		}
	}

	resp := make(chan coordinator.CreateQueueReply, 1)
	s.coordinator.Send(coordinator.CreateQueue{
		Name:     body.Name,
		Capacity: body.Capacity,
		Mode:     mode,
		Points:   game.PointSchedule{PerPlay: body.PerPlay, PerWin: body.PerWin},
		Response: resp,
	})
	reply := <-resp
	if reply.Err != nil {
		writeError(w, reply.Err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"queueId": reply.QueueID})
}

func (s *Server) handleRemoveQueue(w http.ResponseWriter, r *http.Request) {
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.RemoveQueue{
		QueueID:  chi.URLParam(r, "queueID"),
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetQueueMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	mode, err := game.ParseSelectionMode(body.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SetQueueMode{
		QueueID:  chi.URLParam(r, "queueID"),
		Mode:     mode,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetQueueCapacity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Capacity int `json:"capacity"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SetQueueCapacity{
		QueueID:  chi.URLParam(r, "queueID"),
		Capacity: body.Capacity,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ClearQueue{
		QueueID:  chi.URLParam(r, "queueID"),
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleKickFromQueue(w http.ResponseWriter, r *http.Request) {
	var body playerBody
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.KickFromQueue{
		QueueID:  chi.URLParam(r, "queueID"),
		PlayerID: game.PlayerID(body.PlayerID),
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeedQueue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Players []playerBody `json:"players"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	players := make([]game.Player, len(body.Players))
	for i, p := range body.Players {
		players[i] = p.player()
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SeedQueue{
		QueueID:  chi.URLParam(r, "queueID"),
		Players:  players,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetQueuesEnabled(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SetQueuesEnabled{Enabled: body.Enabled, Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetQueueIdleTimeout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Timeout string `json:"timeout"` // Go duration string, e.g. "4h"
	}
	if !decodeBody(w, r, &body) {
		return
	}
	d, err := time.ParseDuration(body.Timeout)
	if err != nil || d < 0 {
		writeError(w, fmt.Errorf("invalid timeout %q", body.Timeout))
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SetQueueIdleTimeout{Timeout: d, Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ClearData{Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForceSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	mode, err := game.ParseSelectionMode(body.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ForceSelection{
		MatchID:  chi.URLParam(r, "matchID"),
		Mode:     mode,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForceResult(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Winner string `json:"winner"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	winner, err := game.ParseColor(body.Winner)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ForceResult{
		MatchID:  chi.URLParam(r, "matchID"),
		Winner:   winner,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForceCancel(w http.ResponseWriter, r *http.Request) {
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ForceCancel{
		MatchID:  chi.URLParam(r, "matchID"),
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseInt64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

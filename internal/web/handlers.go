package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rscdev/sixmans/internal/coordinator"
	"github.com/rscdev/sixmans/internal/game"
	"github.com/rscdev/sixmans/internal/ledger"
)

const handlerTimeout = 10 * time.Second

// waitForResponse waits for the coordinator's answer with a timeout.
func waitForResponse(resp <-chan error) error {
	select {
	case err := <-resp:
		return err
	case <-time.After(handlerTimeout):
		return fmt.Errorf("request timed out")
	}
}

type playerBody struct {
	PlayerID int64  `json:"playerId"`
	Name     string `json:"name"`
}

func (b playerBody) player() game.Player {
	return game.Player{ID: game.PlayerID(b.PlayerID), Name: b.Name}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coordinator.GetState())
}

func (s *Server) handleListQueues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coordinator.GetState().Queues)
}

func (s *Server) handleJoinQueue(w http.ResponseWriter, r *http.Request) {
	var body playerBody
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.JoinQueue{
		QueueID:  chi.URLParam(r, "queueID"),
		Player:   body.player(),
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaveQueue(w http.ResponseWriter, r *http.Request) {
	var body playerBody
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.LeaveQueue{
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

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	for _, m := range s.coordinator.GetState().Matches {
		if m.ID == matchID {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeError(w, game.ErrMatchNotFound)
}

func (s *Server) handleRegenerateLobby(w http.ResponseWriter, r *http.Request) {
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.RegenerateLobby{
		MatchID:  chi.URLParam(r, "matchID"),
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCastModeVote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerID int64  `json:"playerId"`
		Mode     string `json:"mode"`
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
	s.coordinator.Send(coordinator.CastModeVote{
		MatchID:  chi.URLParam(r, "matchID"),
		PlayerID: game.PlayerID(body.PlayerID),
		Mode:     mode,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePickPlayer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CaptainID int64 `json:"captainId"`
		PickID    int64 `json:"pickId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.PickPlayer{
		MatchID:   chi.URLParam(r, "matchID"),
		CaptainID: game.PlayerID(body.CaptainID),
		PickID:    game.PlayerID(body.PickID),
		Response:  resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChooseTeam(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerID int64  `json:"playerId"`
		Color    string `json:"color"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	color, err := game.ParseColor(body.Color)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ChooseTeam{
		MatchID:  chi.URLParam(r, "matchID"),
		PlayerID: game.PlayerID(body.PlayerID),
		Color:    color,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReportScore(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerID int64  `json:"playerId"`
		Choice   string `json:"choice"` // "blue", "orange" or "cancel"
	}
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ReportScore{
		MatchID:  chi.URLParam(r, "matchID"),
		PlayerID: game.PlayerID(body.PlayerID),
		Choice:   body.Choice,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestCancel(w http.ResponseWriter, r *http.Request) {
	var body playerBody
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.RequestCancel{
		MatchID:  chi.URLParam(r, "matchID"),
		PlayerID: game.PlayerID(body.PlayerID),
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirmCancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerID int64 `json:"playerId"`
		Accept   bool  `json:"accept"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ConfirmCancel{
		MatchID:  chi.URLParam(r, "matchID"),
		PlayerID: game.PlayerID(body.PlayerID),
		Accept:   body.Accept,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	window, err := ledger.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries := s.coordinator.Leaderboard(window, r.URL.Query().Get("queue"))
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	playerID, err := parseInt64Param(r, "playerID")
	if err != nil {
		writeError(w, err)
		return
	}
	window, err := ledger.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, err)
		return
	}

	res := s.coordinator.Rank(playerID, window, r.URL.Query().Get("queue"))
	if !res.OK {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no recorded games for player"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playerId": res.Entry.PlayerID,
		"stats":    res.Entry.Stats,
		"rank":     res.Rank,
	})
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	s.sse.HandleConnection(w, r)
}

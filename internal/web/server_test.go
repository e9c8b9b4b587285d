package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscdev/sixmans/internal/coordinator"
	"github.com/rscdev/sixmans/internal/game"
)

func testServer(t *testing.T) (*Server, *coordinator.Coordinator) {
	t.Helper()
	coord := coordinator.New(coordinator.Config{TeardownDelay: time.Hour}, nil,
		rand.New(rand.NewSource(7)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go coord.Run(ctx)
	return NewServer(coord), coord
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func createTestQueue(t *testing.T, s *Server, name string, capacity int, mode string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/queues", map[string]any{
		"name":     name,
		"capacity": capacity,
		"mode":     mode,
		"perPlay":  5,
		"perWin":   10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		QueueID string `json:"queueId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.QueueID)
	return out.QueueID
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQueueLifecycleOverHTTP(t *testing.T) {
	s, _ := testServer(t)
	qid := createTestQueue(t, s, "6mans", 6, "random")

	rec := doJSON(t, s, http.MethodGet, "/queues", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var queues []coordinator.QueueSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queues))
	require.Len(t, queues, 1)
	assert.Equal(t, "6mans", queues[0].Name)
	assert.Equal(t, "random", queues[0].ModeName)

	rec = doJSON(t, s, http.MethodPost, "/queues/"+qid+"/join",
		map[string]any{"playerId": 1, "name": "A"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// Joining twice maps to 409.
	rec = doJSON(t, s, http.MethodPost, "/queues/"+qid+"/join",
		map[string]any{"playerId": 1, "name": "A"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/queues/"+qid+"/leave",
		map[string]any{"playerId": 1})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/queues/"+qid, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodDelete, "/queues/"+qid, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchFlowOverHTTP(t *testing.T) {
	s, coord := testServer(t)
	qid := createTestQueue(t, s, "6mans", 6, "random")

	for i := 1; i <= 6; i++ {
		rec := doJSON(t, s, http.MethodPost, "/queues/"+qid+"/join",
			map[string]any{"playerId": i, "name": fmt.Sprintf("P%d", i)})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	}

	snap := coord.GetState()
	require.Len(t, snap.Matches, 1)
	m := snap.Matches[0]
	require.Equal(t, game.StateOngoing.String(), m.State)

	rec := doJSON(t, s, http.MethodGet, "/matches/"+m.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var got coordinator.MatchSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Blue, 3)
	assert.NotEmpty(t, got.LobbyName)

	rec = doJSON(t, s, http.MethodPost, "/matches/"+m.ID+"/lobby", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = doJSON(t, s, http.MethodGet, "/matches/"+m.ID, nil)
	var refreshed coordinator.MatchSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEqual(t, got.LobbyName+got.LobbyPass, refreshed.LobbyName+refreshed.LobbyPass)

	rec = doJSON(t, s, http.MethodPost, "/matches/"+m.ID+"/report",
		map[string]any{"playerId": int64(m.Captains[0].ID), "choice": "blue"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = doJSON(t, s, http.MethodPost, "/matches/"+m.ID+"/report",
		map[string]any{"playerId": int64(m.Captains[1].ID), "choice": "blue"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/matches/"+m.ID, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, game.StateComplete.String(), got.State)
	assert.Equal(t, "blue", got.Winner)

	rec = doJSON(t, s, http.MethodGet, "/leaderboard?window=week", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var board []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	assert.Len(t, board, 6)

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/players/%d/rank", m.Captains[0].ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, s, http.MethodGet, "/players/9999/rank", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/queues/missing/join",
		map[string]any{"playerId": 1, "name": "A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])

	rec = doJSON(t, s, http.MethodGet, "/matches/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/leaderboard?window=fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	qid := createTestQueue(t, s, "6mans", 6, "vote")
	rec = doJSON(t, s, http.MethodPost, "/queues", map[string]any{
		"name": "6mans", "capacity": 6,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate name")

	rec = doJSON(t, s, http.MethodPost, "/queues/"+qid+"/mode",
		map[string]any{"mode": "frisbee"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	s, coord := testServer(t)
	qid := createTestQueue(t, s, "6mans", 6, "vote")

	rec := doJSON(t, s, http.MethodPost, "/admin/queues-enabled",
		map[string]any{"enabled": false})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/queues/"+qid+"/join",
		map[string]any{"playerId": 1, "name": "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/admin/queues-enabled",
		map[string]any{"enabled": true})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/admin/queue-timeout",
		map[string]any{"timeout": "2h"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/admin/queue-timeout",
		map[string]any{"timeout": "-5m"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	seed := make([]map[string]any, 0, 6)
	for i := 1; i <= 6; i++ {
		seed = append(seed, map[string]any{"playerId": i, "name": fmt.Sprintf("P%d", i)})
	}
	rec = doJSON(t, s, http.MethodPost, "/queues/"+qid+"/seed",
		map[string]any{"players": seed})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	m := coord.GetState().Matches[0]

	rec = doJSON(t, s, http.MethodPost, "/admin/matches/"+m.ID+"/selection",
		map[string]any{"mode": "balanced"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/admin/matches/"+m.ID+"/result",
		map[string]any{"winner": "orange"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/admin/clear-data", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodGet, "/leaderboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

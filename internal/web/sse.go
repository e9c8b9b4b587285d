package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rscdev/sixmans/internal/coordinator"
)

// sseMessage is one framed server-sent event: a name plus a JSON payload.
type sseMessage struct {
	name string
	data []byte
}

// SSEClient represents a connected SSE client.
type SSEClient struct {
	ID      string
	Channel chan sseMessage
}

// SSEHub fans coordinator events out to every connected client as JSON.
type SSEHub struct {
	clients map[*SSEClient]bool
	mu      sync.RWMutex
	log     *logrus.Entry
}

// NewSSEHub creates an empty hub.
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[*SSEClient]bool),
		log:     logrus.WithField("component", "sse"),
	}
}

// Run consumes coordinator events until the channel closes.
func (h *SSEHub) Run(events <-chan coordinator.Event) {
	h.log.Info("SSE hub started")
	for event := range events {
		h.broadcast(event)
	}
}

func (h *SSEHub) broadcast(event coordinator.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Warn("marshalling event")
		return
	}
	msg := sseMessage{name: eventName(event), data: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Channel <- msg:
		default:
			h.log.WithField("client", client.ID).Warn("dropping message for slow client")
		}
	}
}

// eventName maps an event to its wire name.
func eventName(event coordinator.Event) string {
	switch event.(type) {
	case coordinator.QueueCreated:
		return "queue-created"
	case coordinator.QueueRemoved:
		return "queue-removed"
	case coordinator.QueueCleared:
		return "queue-cleared"
	case coordinator.PlayerQueued:
		return "player-queued"
	case coordinator.PlayerDequeued:
		return "player-dequeued"
	case coordinator.QueueIdleTimedOut:
		return "queue-idle-timeout"
	case coordinator.QueuePopped:
		return "queue-popped"
	case coordinator.SelectionStarted:
		return "selection-started"
	case coordinator.VoteUpdated:
		return "vote-updated"
	case coordinator.VoteDecided:
		return "vote-decided"
	case coordinator.PickMade:
		return "pick-made"
	case coordinator.TeamsFinalized:
		return "teams-finalized"
	case coordinator.LobbyUpdated:
		return "lobby-updated"
	case coordinator.SelectionTimedOut:
		return "selection-timeout"
	case coordinator.ReportStarted:
		return "report-started"
	case coordinator.ReportAborted:
		return "report-aborted"
	case coordinator.ReportTimedOut:
		return "report-timeout"
	case coordinator.CancelRequested:
		return "cancel-requested"
	case coordinator.CancelDeclined:
		return "cancel-declined"
	case coordinator.CancelTimedOut:
		return "cancel-timeout"
	case coordinator.MatchFinished:
		return "match-finished"
	case coordinator.MatchCancelled:
		return "match-cancelled"
	case coordinator.MatchRemoved:
		return "match-removed"
	default:
		return "event"
	}
}

// HandleConnection handles a new SSE connection until the client leaves.
func (h *SSEHub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &SSEClient{
		ID:      fmt.Sprintf("%p", r),
		Channel: make(chan sseMessage, 32),
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.log.WithField("client", client.ID).Debug("SSE client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		h.log.WithField("client", client.ID).Debug("SSE client disconnected")
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-client.Channel:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.name, msg.data)
			flusher.Flush()
		}
	}
}

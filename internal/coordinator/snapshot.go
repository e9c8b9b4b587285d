package coordinator

import (
	"sort"

	"github.com/rscdev/sixmans/internal/game"
	"github.com/rscdev/sixmans/internal/ledger"
)

// QueueSnapshot is a read-only copy of one queue for API consumers.
type QueueSnapshot struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Capacity    int                `json:"capacity"`
	Mode        game.SelectionMode `json:"-"`
	ModeName    string             `json:"mode"`
	Waiting     []game.Player      `json:"waiting"`
	GamesPlayed int                `json:"gamesPlayed"`
}

// MatchSnapshot is a read-only copy of one match, lobby credentials
// included.
type MatchSnapshot struct {
	ID        string          `json:"id"`
	QueueID   string          `json:"queueId"`
	State     string          `json:"state"`
	Mode      string          `json:"mode"`
	Winner    string          `json:"winner"`
	Roster    []game.Player   `json:"roster"`
	Blue      []game.Player   `json:"blue"`
	Orange    []game.Player   `json:"orange"`
	Captains  [2]game.Player  `json:"captains"`
	LobbyName string          `json:"lobbyName"`
	LobbyPass string          `json:"lobbyPass"`
}

// Snapshot is a point-in-time copy of the coordinator's world.
type Snapshot struct {
	QueuesEnabled bool            `json:"queuesEnabled"`
	Queues        []QueueSnapshot `json:"queues"`
	Matches       []MatchSnapshot `json:"matches"`
}

// getStateCmd is an internal command producing a consistent snapshot.
type getStateCmd struct {
	Response chan Snapshot
}

func (getStateCmd) command() {}

func (c *Coordinator) snapshot() Snapshot {
	snap := Snapshot{QueuesEnabled: c.state.QueuesEnabled}
	for _, q := range c.state.Queues {
		snap.Queues = append(snap.Queues, QueueSnapshot{
			ID:          q.ID,
			Name:        q.Name,
			Capacity:    q.Capacity,
			Mode:        q.Mode,
			ModeName:    q.Mode.String(),
			Waiting:     q.Waiting(),
			GamesPlayed: q.GamesPlayed,
		})
	}
	for _, m := range c.state.Matches {
		snap.Matches = append(snap.Matches, MatchSnapshot{
			ID:        m.ID,
			QueueID:   m.Queue.ID,
			State:     m.State.String(),
			Mode:      m.Mode.String(),
			Winner:    m.Winner.String(),
			Roster:    append([]game.Player(nil), m.Roster...),
			Blue:      append([]game.Player(nil), m.Blue...),
			Orange:    append([]game.Player(nil), m.Orange...),
			Captains:  m.Captains,
			LobbyName: m.LobbyName,
			LobbyPass: m.LobbyPass,
		})
	}
	sort.Slice(snap.Queues, func(i, j int) bool { return snap.Queues[i].Name < snap.Queues[j].Name })
	sort.Slice(snap.Matches, func(i, j int) bool { return snap.Matches[i].ID < snap.Matches[j].ID })
	return snap
}

// GetState returns a snapshot of the current state, safe to call from any
// goroutine.
func (c *Coordinator) GetState() Snapshot {
	respCh := make(chan Snapshot, 1)
	c.Send(getStateCmd{Response: respCh})
	return <-respCh
}

// Leaderboard runs a leaderboard query synchronously.
func (c *Coordinator) Leaderboard(window ledger.Window, queueID string) []ledger.Entry {
	respCh := make(chan []ledger.Entry, 1)
	c.Send(LeaderboardQuery{Window: window, QueueID: queueID, Response: respCh})
	return <-respCh
}

// Rank runs a single-player rank query synchronously.
func (c *Coordinator) Rank(playerID int64, window ledger.Window, queueID string) RankReply {
	respCh := make(chan RankReply, 1)
	c.Send(RankQuery{PlayerID: playerID, Window: window, QueueID: queueID, Response: respCh})
	return <-respCh
}

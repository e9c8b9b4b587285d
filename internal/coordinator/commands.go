package coordinator

import (
	"time"

	"github.com/rscdev/sixmans/internal/game"
	"github.com/rscdev/sixmans/internal/ledger"
)

// Command is the interface for all commands sent to the coordinator.
type Command interface {
	command() // marker method
}

// JoinQueue requests to add a player to a queue's waiting line.
type JoinQueue struct {
	QueueID  string
	Player   game.Player
	Response chan error
}

func (JoinQueue) command() {}

// LeaveQueue requests to remove a player from a queue's waiting line.
type LeaveQueue struct {
	QueueID  string
	PlayerID game.PlayerID
	Response chan error
}

func (LeaveQueue) command() {}

// CastModeVote records one player's team-selection-mode vote.
type CastModeVote struct {
	MatchID  string
	PlayerID game.PlayerID
	Mode     game.SelectionMode
	Response chan error
}

func (CastModeVote) command() {}

// PickPlayer is sent by a captain to draft a player onto their team.
type PickPlayer struct {
	MatchID   string
	CaptainID game.PlayerID
	PickID    game.PlayerID
	Response  chan error
}

func (PickPlayer) command() {}

// ChooseTeam is a self-pick player choosing blue or orange.
type ChooseTeam struct {
	MatchID  string
	PlayerID game.PlayerID
	Color    game.Color
	Response chan error
}

func (ChooseTeam) command() {}

// ReportScore submits one captain's winner choice ("blue", "orange" or
// "cancel") to the score-report collector.
type ReportScore struct {
	MatchID  string
	PlayerID game.PlayerID
	Choice   string
	Response chan error
}

func (ReportScore) command() {}

// RequestCancel asks to cancel a match; the initiator's opposing captain
// must countersign.
type RequestCancel struct {
	MatchID  string
	PlayerID game.PlayerID
	Response chan error
}

func (RequestCancel) command() {}

// ConfirmCancel answers a pending cancellation request.
type ConfirmCancel struct {
	MatchID  string
	PlayerID game.PlayerID
	Accept   bool
	Response chan error
}

func (ConfirmCancel) command() {}

// CreateQueueReply carries the new queue's id back to the caller.
type CreateQueueReply struct {
	QueueID string
	Err     error
}

// CreateQueue adds a new queue.
type CreateQueue struct {
	Name     string
	Capacity int
	Mode     game.SelectionMode
	Points   game.PointSchedule
	Response chan CreateQueueReply
}

func (CreateQueue) command() {}

// RemoveQueue destroys a queue. Matches already popped from it run to
// completion.
type RemoveQueue struct {
	QueueID  string
	Response chan error
}

func (RemoveQueue) command() {}

// SetQueueMode changes a queue's default team-selection mode.
type SetQueueMode struct {
	QueueID  string
	Mode     game.SelectionMode
	Response chan error
}

func (SetQueueMode) command() {}

// SetQueueCapacity changes a queue's capacity. Rejected when the waiting
// line already holds more players than the new capacity.
type SetQueueCapacity struct {
	QueueID  string
	Capacity int
	Response chan error
}

func (SetQueueCapacity) command() {}

// ClearQueue empties a queue's waiting line.
type ClearQueue struct {
	QueueID  string
	Response chan error
}

func (ClearQueue) command() {}

// KickFromQueue removes a specific player from a queue (admin).
type KickFromQueue struct {
	QueueID  string
	PlayerID game.PlayerID
	Response chan error
}

func (KickFromQueue) command() {}

// SeedQueue joins several players in one step (admin). Joins happen in
// order, so the queue may pop mid-seed; the first rejected player stops the
// seed and earlier joins stand.
type SeedQueue struct {
	QueueID  string
	Players  []game.Player
	Response chan error
}

func (SeedQueue) command() {}

// SetQueuesEnabled toggles all queueing; joins are rejected while disabled.
type SetQueuesEnabled struct {
	Enabled  bool
	Response chan error
}

func (SetQueuesEnabled) command() {}

// SetQueueIdleTimeout changes how long a player may wait in a queue before
// being removed. Applies to timers started after the change.
type SetQueueIdleTimeout struct {
	Timeout  time.Duration
	Response chan error
}

func (SetQueueIdleTimeout) command() {}

// ForceSelection re-runs team selection with an explicit mode (admin),
// bypassing the vote.
type ForceSelection struct {
	MatchID  string
	Mode     game.SelectionMode
	Response chan error
}

func (ForceSelection) command() {}

// ForceResult records a winner directly (admin), bypassing pair consensus.
type ForceResult struct {
	MatchID  string
	Winner   game.Color
	Response chan error
}

func (ForceResult) command() {}

// RegenerateLobby issues fresh lobby credentials for a live match.
type RegenerateLobby struct {
	MatchID  string
	Response chan error
}

func (RegenerateLobby) command() {}

// ForceCancel cancels a match directly (admin), bypassing confirmation.
type ForceCancel struct {
	MatchID  string
	Response chan error
}

func (ForceCancel) command() {}

// ClearData wipes the score ledger and every queue's stats cache.
type ClearData struct {
	Response chan error
}

func (ClearData) command() {}

// LeaderboardQuery folds score records for a time window, optionally scoped
// to one queue, sorted by wins then points descending.
type LeaderboardQuery struct {
	Window   ledger.Window
	QueueID  string // empty for all queues
	Response chan []ledger.Entry
}

func (LeaderboardQuery) command() {}

// RankReply is one player's standing within a leaderboard window.
type RankReply struct {
	Entry ledger.Entry
	Rank  int
	OK    bool
}

// RankQuery looks up a single player's stats and rank for a window.
type RankQuery struct {
	PlayerID int64
	Window   ledger.Window
	QueueID  string
	Response chan RankReply
}

func (RankQuery) command() {}

// Internal timer commands. Each carries the staleness guard captured when
// the timer was scheduled; a fired timer whose guard no longer matches the
// live state is a no-op.

type queueIdleTimeout struct {
	QueueID  string
	PlayerID game.PlayerID
	Gen      uint64
}

func (queueIdleTimeout) command() {}

type selectionTimeout struct {
	MatchID string
	Seq     int
}

func (selectionTimeout) command() {}

type pickTimeout struct {
	MatchID string
	Seq     int
	Picks   int
}

func (pickTimeout) command() {}

type reportTimeout struct {
	MatchID string
	Seq     int
}

func (reportTimeout) command() {}

type cancelConfirmTimeout struct {
	MatchID string
	Seq     int
}

func (cancelConfirmTimeout) command() {}

type removeMatch struct {
	MatchID string
}

func (removeMatch) command() {}

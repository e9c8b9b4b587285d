package coordinator

import (
	"github.com/rscdev/sixmans/internal/game"
	"github.com/rscdev/sixmans/internal/ledger"
)

// Event is the interface for all lifecycle notifications emitted by the
// coordinator. Consumers render them; the coordinator never waits on them.
type Event interface {
	event() // marker method
}

type QueueCreated struct {
	QueueID  string
	Name     string
	Capacity int
	Mode     game.SelectionMode
}

func (QueueCreated) event() {}

type QueueRemoved struct {
	QueueID string
}

func (QueueRemoved) event() {}

type QueueCleared struct {
	QueueID string
}

func (QueueCleared) event() {}

type PlayerQueued struct {
	QueueID  string
	Player   game.Player
	Waiting  int
	Capacity int
}

func (PlayerQueued) event() {}

type PlayerDequeued struct {
	QueueID  string
	PlayerID game.PlayerID
	Waiting  int
}

func (PlayerDequeued) event() {}

// QueueIdleTimedOut is emitted when a player sat in a queue past the idle
// timeout and was removed.
type QueueIdleTimedOut struct {
	QueueID string
	Player  game.Player
}

func (QueueIdleTimedOut) event() {}

// QueuePopped carries the frozen roster of a queue that just filled and
// became a match.
type QueuePopped struct {
	QueueID string
	MatchID string
	Roster  []game.Player
}

func (QueuePopped) event() {}

// SelectionStarted announces an interactive team-selection protocol
// awaiting player input.
type SelectionStarted struct {
	MatchID string
	Mode    game.SelectionMode
	// Captains is set for a captains draft, zero otherwise.
	Captains [2]game.Player
}

func (SelectionStarted) event() {}

type VoteUpdated struct {
	MatchID   string
	Counts    map[game.SelectionMode]int
	Remaining int
}

func (VoteUpdated) event() {}

type VoteDecided struct {
	MatchID string
	Mode    game.SelectionMode
}

func (VoteDecided) event() {}

type PickMade struct {
	MatchID  string
	Captain  game.Player
	Pick     game.Player
	Pickable []game.Player
	// Next is the captain now on the clock; zero once the draft finished.
	Next game.Player
}

func (PickMade) event() {}

// TeamsFinalized is the single atomic announcement of the completed
// partition, captains included, with the lobby credentials players need.
type TeamsFinalized struct {
	MatchID   string
	Blue      []game.Player
	Orange    []game.Player
	Captains  [2]game.Player
	LobbyName string
	LobbyPass string
}

func (TeamsFinalized) event() {}

// LobbyUpdated announces replacement lobby credentials for a live match.
type LobbyUpdated struct {
	MatchID   string
	LobbyName string
	LobbyPass string
}

func (LobbyUpdated) event() {}

// SelectionTimedOut is emitted when an interactive selection protocol
// expired. The match is cancelled; responsive players return to the queue.
type SelectionTimedOut struct {
	MatchID  string
	QueueID  string
	Mode     game.SelectionMode
	Silent   []game.Player
	Returned []game.Player
}

func (SelectionTimedOut) event() {}

// ReportStarted announces a score-report collection awaiting the second
// captain's confirmation.
type ReportStarted struct {
	MatchID  string
	Captains [2]game.Player
}

func (ReportStarted) event() {}

// ReportAborted means the captains disagreed; the winner stays pending and
// reporting must be re-initiated.
type ReportAborted struct {
	MatchID string
}

func (ReportAborted) event() {}

// ReportTimedOut names the captain whose silence expired the report and the
// teammate who now answers for that side.
type ReportTimedOut struct {
	MatchID     string
	Silent      game.Player
	Replacement game.Player
}

func (ReportTimedOut) event() {}

type CancelRequested struct {
	MatchID     string
	Initiator   game.PlayerID
	Responsible game.Player
}

func (CancelRequested) event() {}

type CancelDeclined struct {
	MatchID string
}

func (CancelDeclined) event() {}

type CancelTimedOut struct {
	MatchID     string
	Silent      game.Player
	Replacement game.Player
}

func (CancelTimedOut) event() {}

// MatchFinished carries the recorded winner and every score record written
// for the result.
type MatchFinished struct {
	MatchID string
	QueueID string
	Winner  game.Color
	Awards  []ledger.ScoreRecord
}

func (MatchFinished) event() {}

type MatchCancelled struct {
	MatchID string
	QueueID string
}

func (MatchCancelled) event() {}

// MatchRemoved is the final teardown notification; consumers release any
// resources held for the match.
type MatchRemoved struct {
	MatchID string
}

func (MatchRemoved) event() {}

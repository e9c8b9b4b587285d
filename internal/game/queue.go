package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rscdev/sixmans/internal/ledger"
)

// PointSchedule is the points a queue hands out per finished match.
type PointSchedule struct {
	PerPlay int `json:"perPlay"`
	PerWin  int `json:"perWin"`
}

// Queue is an ordered, duplicate-free waiting line bound to a fixed even
// capacity. It carries the queue-scoped stats cache and the point schedule
// used when a match that originated here finishes.
type Queue struct {
	ID          string
	Name        string
	Capacity    int
	Mode        SelectionMode // default team selection for popped matches
	Points      PointSchedule
	Stats       map[PlayerID]*ledger.PlayerStats
	GamesPlayed int

	waiting []Player
}

// NewQueue creates an empty queue. Capacity must be an even integer >= 2.
// ValidateQueueShape checks a capacity/mode pair before it is applied, at
// creation or when either knob changes afterwards.
func ValidateQueueShape(capacity int, mode SelectionMode) error {
	if capacity < 2 || capacity%2 != 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidCapacity, capacity)
	}
	if mode == ModeBalanced && capacity > MaxBalancedRoster {
		return fmt.Errorf("%w: capacity %d, limit %d", ErrBalancedTooLarge, capacity, MaxBalancedRoster)
	}
	return nil
}

func NewQueue(name string, capacity int, mode SelectionMode, points PointSchedule) (*Queue, error) {
	if err := ValidateQueueShape(capacity, mode); err != nil {
		return nil, err
	}
	return &Queue{
		ID:       uuid.New().String(),
		Name:     name,
		Capacity: capacity,
		Mode:     mode,
		Points:   points,
		Stats:    make(map[PlayerID]*ledger.PlayerStats),
	}, nil
}

// RestoreQueue rebuilds a persisted queue with an empty waiting line;
// players re-queue after a restart.
func RestoreQueue(id, name string, capacity int, mode SelectionMode, points PointSchedule,
	gamesPlayed int, stats map[PlayerID]*ledger.PlayerStats) *Queue {
	if stats == nil {
		stats = make(map[PlayerID]*ledger.PlayerStats)
	}
	return &Queue{
		ID:          id,
		Name:        name,
		Capacity:    capacity,
		Mode:        mode,
		Points:      points,
		Stats:       stats,
		GamesPlayed: gamesPlayed,
	}
}

// Join appends a player to the waiting line. It reports whether the queue is
// now full; popping the full queue into a match is the orchestrator's job.
func (q *Queue) Join(p Player) (full bool, err error) {
	if q.Contains(p.ID) {
		return false, ErrAlreadyQueued
	}
	q.waiting = append(q.waiting, p)
	return q.IsFull(), nil
}

// Leave removes a player from the waiting line.
func (q *Queue) Leave(id PlayerID) error {
	if !q.Contains(id) {
		return ErrNotQueued
	}
	q.waiting = removePlayer(q.waiting, id)
	return nil
}

// Contains reports whether the player is waiting in this queue.
func (q *Queue) Contains(id PlayerID) bool {
	return containsPlayer(q.waiting, id)
}

// Len returns the number of waiting players.
func (q *Queue) Len() int {
	return len(q.waiting)
}

// IsFull reports whether the waiting line has reached capacity.
func (q *Queue) IsFull() bool {
	return len(q.waiting) >= q.Capacity
}

// Waiting returns a copy of the waiting line in join order.
func (q *Queue) Waiting() []Player {
	out := make([]Player, len(q.waiting))
	copy(out, q.waiting)
	return out
}

// PopAll atomically drains the full queue and returns the roster in join
// order. It is only valid when the queue is full and is used exactly once to
// seed a match.
func (q *Queue) PopAll() ([]Player, error) {
	if !q.IsFull() {
		return nil, ErrQueueNotFull
	}
	roster := q.waiting[:q.Capacity:q.Capacity]
	q.waiting = append([]Player(nil), q.waiting[q.Capacity:]...)
	return roster, nil
}

// PlayerScore computes the scalar used by balanced team selection:
// rank + ((win_rate * 2) - 1), with win rate defaulting to 0.5 for players
// without history so the score collapses to the rank alone.
func (q *Queue) PlayerScore(id PlayerID) float64 {
	const rank = 1.0
	winRate := 0.5
	if stats, ok := q.Stats[id]; ok {
		if rate, hasGames := stats.WinRate(); hasGames {
			winRate = rate
		}
	}
	return rank + (winRate*2 - 1)
}

// AwardStats folds a score record into the queue-scoped stats cache. The
// orchestrator calls this in lockstep with every ledger append.
func (q *Queue) AwardStats(rec ledger.ScoreRecord) {
	id := PlayerID(rec.PlayerID)
	stats, ok := q.Stats[id]
	if !ok {
		stats = &ledger.PlayerStats{}
		q.Stats[id] = stats
	}
	ledger.Award(stats, rec)
}

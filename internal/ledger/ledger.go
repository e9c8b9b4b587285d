// Package ledger keeps the append-only record of match outcomes and the
// player stats derived from it. It is the single source of truth for
// historical results; queue-scoped stat caches are updated in lockstep with
// every append.
package ledger

import (
	"sort"
	"time"
)

// PlayerStats is the cumulative view of a player's results, either globally
// or scoped to one queue.
type PlayerStats struct {
	Points      int `json:"points"`
	Wins        int `json:"wins"`
	GamesPlayed int `json:"gamesPlayed"`
}

// WinRate returns the player's win ratio. ok is false when the player has no
// recorded games.
func (s PlayerStats) WinRate() (rate float64, ok bool) {
	if s.GamesPlayed == 0 {
		return 0, false
	}
	return float64(s.Wins) / float64(s.GamesPlayed), true
}

// ScoreRecord is one immutable row in the ledger: one player's outcome in one
// finished match.
type ScoreRecord struct {
	MatchID  string    `json:"matchId"`
	QueueID  string    `json:"queueId"`
	PlayerID int64     `json:"playerId"`
	Win      int       `json:"win"` // 0 or 1
	Points   int       `json:"points"`
	When     time.Time `json:"when"`
}

// Award folds a single record into a stats entry.
func Award(stats *PlayerStats, rec ScoreRecord) {
	stats.Points += rec.Points
	stats.GamesPlayed++
	stats.Wins += rec.Win
}

// Entry is one leaderboard row.
type Entry struct {
	PlayerID int64       `json:"playerId"`
	Stats    PlayerStats `json:"stats"`
}

// Ledger holds every score record newest-first plus an incrementally
// maintained global stats cache.
type Ledger struct {
	records []ScoreRecord
	global  map[int64]*PlayerStats
}

func New() *Ledger {
	return &Ledger{global: make(map[int64]*PlayerStats)}
}

// Append records a result and updates the global stats cache. Records arrive
// in match-completion order, so prepending keeps the slice newest-first.
func (l *Ledger) Append(rec ScoreRecord) {
	l.records = append([]ScoreRecord{rec}, l.records...)
	stats, ok := l.global[rec.PlayerID]
	if !ok {
		stats = &PlayerStats{}
		l.global[rec.PlayerID] = stats
	}
	Award(stats, rec)
}

// Len returns the number of records in the ledger.
func (l *Ledger) Len() int {
	return len(l.records)
}

// GlobalStats returns a player's all-time stats across every queue.
func (l *Ledger) GlobalStats(playerID int64) PlayerStats {
	if stats, ok := l.global[playerID]; ok {
		return *stats
	}
	return PlayerStats{}
}

// Clear wipes all records and stats. This is the only operation that resets
// derived stats rather than folding into them.
func (l *Ledger) Clear() {
	l.records = nil
	l.global = make(map[int64]*PlayerStats)
}

// Fold aggregates records newer than since, optionally scoped to one queue,
// into per-player stats. A zero since means all-time; an empty queueID means
// every queue.
func (l *Ledger) Fold(since time.Time, queueID string) map[int64]PlayerStats {
	out := make(map[int64]PlayerStats)
	for _, rec := range l.records {
		if !since.IsZero() && !rec.When.After(since) {
			// Records are newest-first; everything past this point is older.
			break
		}
		if queueID != "" && rec.QueueID != queueID {
			continue
		}
		stats := out[rec.PlayerID]
		Award(&stats, rec)
		out[rec.PlayerID] = stats
	}
	return out
}

// Leaderboard folds the requested window and sorts the result by wins, then
// points, then player id for a stable order.
func (l *Ledger) Leaderboard(since time.Time, queueID string) []Entry {
	folded := l.Fold(since, queueID)
	entries := make([]Entry, 0, len(folded))
	for id, stats := range folded {
		entries = append(entries, Entry{PlayerID: id, Stats: stats})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Stats.Wins != entries[j].Stats.Wins {
			return entries[i].Stats.Wins > entries[j].Stats.Wins
		}
		if entries[i].Stats.Points != entries[j].Stats.Points {
			return entries[i].Stats.Points > entries[j].Stats.Points
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	return entries
}

// Rank finds a player's leaderboard position (1-based) within a window.
// ok is false when the player has no games in the window.
func (l *Ledger) Rank(playerID int64, since time.Time, queueID string) (entry Entry, rank int, ok bool) {
	for i, e := range l.Leaderboard(since, queueID) {
		if e.PlayerID == playerID {
			return e, i + 1, true
		}
	}
	return Entry{}, 0, false
}

// Records returns a copy of every record, newest first.
func (l *Ledger) Records() []ScoreRecord {
	out := make([]ScoreRecord, len(l.records))
	copy(out, l.records)
	return out
}

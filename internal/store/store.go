// Package store persists queue configuration, match snapshots, and the
// score ledger so in-flight state survives a restart.
package store

import (
	"context"

	"github.com/rscdev/sixmans/internal/ledger"
)

// QueueRecord is the persisted shape of one queue: configuration plus the
// queue-scoped stats cache. The waiting line itself is not persisted;
// players re-queue after a restart.
type QueueRecord struct {
	ID          string
	Name        string
	Capacity    int
	Mode        string
	PerPlay     int
	PerWin      int
	GamesPlayed int
	Stats       map[int64]ledger.PlayerStats
}

// PlayerRef is a roster member embedded in a match snapshot.
type PlayerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MatchRecord is the persisted snapshot of one match, sufficient to resume
// after a restart. Matches persisted in new/selection states re-run team
// selection from scratch on load.
type MatchRecord struct {
	ID        string
	QueueID   string
	State     string
	Mode      string
	Winner    string
	LobbyName string
	LobbyPass string
	Roster    []PlayerRef
	Blue      []PlayerRef
	Orange    []PlayerRef
	Captains  []PlayerRef
}

// Store is the persistence boundary. Implementations must keep each write
// atomic; the coordinator issues them sequentially.
type Store interface {
	SaveQueue(ctx context.Context, q *QueueRecord) error
	DeleteQueue(ctx context.Context, id string) error
	ListQueues(ctx context.Context) ([]QueueRecord, error)
	SaveQueueStats(ctx context.Context, queueID string, playerID int64, stats ledger.PlayerStats) error

	SaveMatch(ctx context.Context, m *MatchRecord) error
	DeleteMatch(ctx context.Context, id string) error
	ListMatches(ctx context.Context) ([]MatchRecord, error)

	AppendScore(ctx context.Context, rec ledger.ScoreRecord) error
	// ListScores returns every score record ordered oldest first, so
	// replaying them through the ledger restores its newest-first order.
	ListScores(ctx context.Context) ([]ledger.ScoreRecord, error)
	ClearScores(ctx context.Context) error

	Close() error
}

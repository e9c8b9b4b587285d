package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rscdev/sixmans/internal/ledger"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS queues (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			capacity INTEGER NOT NULL,
			mode TEXT NOT NULL,
			per_play INTEGER NOT NULL,
			per_win INTEGER NOT NULL,
			games_played INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS queue_stats (
			queue_id TEXT NOT NULL REFERENCES queues(id) ON DELETE CASCADE,
			player_id INTEGER NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			games_played INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (queue_id, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			queue_id TEXT NOT NULL,
			state TEXT NOT NULL,
			mode TEXT NOT NULL,
			winner TEXT NOT NULL,
			lobby_name TEXT NOT NULL,
			lobby_pass TEXT NOT NULL,
			roster TEXT NOT NULL,
			blue TEXT NOT NULL,
			orange TEXT NOT NULL,
			captains TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			match_id TEXT NOT NULL,
			queue_id TEXT NOT NULL,
			player_id INTEGER NOT NULL,
			win INTEGER NOT NULL,
			points INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_created ON scores(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveQueue upserts a queue's configuration and rewrites its stats cache.
func (s *SQLiteStore) SaveQueue(ctx context.Context, q *QueueRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queues (id, name, capacity, mode, per_play, per_win, games_played)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			capacity = excluded.capacity,
			mode = excluded.mode,
			per_play = excluded.per_play,
			per_win = excluded.per_win,
			games_played = excluded.games_played`,
		q.ID, q.Name, q.Capacity, q.Mode, q.PerPlay, q.PerWin, q.GamesPlayed,
	)
	if err != nil {
		return err
	}
	for playerID, stats := range q.Stats {
		if err := s.SaveQueueStats(ctx, q.ID, playerID, stats); err != nil {
			return err
		}
	}
	return nil
}

// DeleteQueue removes a queue and, via cascade, its stats cache.
func (s *SQLiteStore) DeleteQueue(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM queues WHERE id = ?`, id)
	return err
}

// ListQueues returns every persisted queue with its stats cache attached.
func (s *SQLiteStore) ListQueues(ctx context.Context) ([]QueueRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, capacity, mode, per_play, per_win, games_played
		 FROM queues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queues []QueueRecord
	for rows.Next() {
		var q QueueRecord
		if err := rows.Scan(&q.ID, &q.Name, &q.Capacity, &q.Mode, &q.PerPlay, &q.PerWin, &q.GamesPlayed); err != nil {
			return nil, err
		}
		queues = append(queues, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range queues {
		stats, err := s.listQueueStats(ctx, queues[i].ID)
		if err != nil {
			return nil, err
		}
		queues[i].Stats = stats
	}
	return queues, nil
}

// SaveQueueStats upserts one player's queue-scoped stats entry.
func (s *SQLiteStore) SaveQueueStats(ctx context.Context, queueID string, playerID int64, stats ledger.PlayerStats) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queue_stats (queue_id, player_id, points, wins, games_played)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(queue_id, player_id) DO UPDATE SET
			points = excluded.points,
			wins = excluded.wins,
			games_played = excluded.games_played`,
		queueID, playerID, stats.Points, stats.Wins, stats.GamesPlayed,
	)
	return err
}

func (s *SQLiteStore) listQueueStats(ctx context.Context, queueID string) (map[int64]ledger.PlayerStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, points, wins, games_played
		 FROM queue_stats WHERE queue_id = ?`, queueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[int64]ledger.PlayerStats)
	for rows.Next() {
		var playerID int64
		var st ledger.PlayerStats
		if err := rows.Scan(&playerID, &st.Points, &st.Wins, &st.GamesPlayed); err != nil {
			return nil, err
		}
		stats[playerID] = st
	}
	return stats, rows.Err()
}

// SaveMatch upserts a match snapshot. Team slices are stored as JSON; the
// snapshot only needs to round-trip, not be queryable.
func (s *SQLiteStore) SaveMatch(ctx context.Context, m *MatchRecord) error {
	roster, err := json.Marshal(m.Roster)
	if err != nil {
		return err
	}
	blue, err := json.Marshal(m.Blue)
	if err != nil {
		return err
	}
	orange, err := json.Marshal(m.Orange)
	if err != nil {
		return err
	}
	captains, err := json.Marshal(m.Captains)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (id, queue_id, state, mode, winner, lobby_name, lobby_pass, roster, blue, orange, captains)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			mode = excluded.mode,
			winner = excluded.winner,
			lobby_name = excluded.lobby_name,
			lobby_pass = excluded.lobby_pass,
			blue = excluded.blue,
			orange = excluded.orange,
			captains = excluded.captains`,
		m.ID, m.QueueID, m.State, m.Mode, m.Winner, m.LobbyName, m.LobbyPass,
		string(roster), string(blue), string(orange), string(captains),
	)
	return err
}

// DeleteMatch removes a match snapshot.
func (s *SQLiteStore) DeleteMatch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	return err
}

// ListMatches returns every persisted match snapshot.
func (s *SQLiteStore) ListMatches(ctx context.Context) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, queue_id, state, mode, winner, lobby_name, lobby_pass, roster, blue, orange, captains
		 FROM matches`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var roster, blue, orange, captains string
		if err := rows.Scan(&m.ID, &m.QueueID, &m.State, &m.Mode, &m.Winner,
			&m.LobbyName, &m.LobbyPass, &roster, &blue, &orange, &captains); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(roster), &m.Roster); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(blue), &m.Blue); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(orange), &m.Orange); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(captains), &m.Captains); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// AppendScore writes one immutable score record.
func (s *SQLiteStore) AppendScore(ctx context.Context, rec ledger.ScoreRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (match_id, queue_id, player_id, win, points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.MatchID, rec.QueueID, rec.PlayerID, rec.Win, rec.Points, rec.When,
	)
	return err
}

// ListScores returns the full ledger oldest first.
func (s *SQLiteStore) ListScores(ctx context.Context) ([]ledger.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, queue_id, player_id, win, points, created_at
		 FROM scores ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ledger.ScoreRecord
	for rows.Next() {
		var rec ledger.ScoreRecord
		if err := rows.Scan(&rec.MatchID, &rec.QueueID, &rec.PlayerID, &rec.Win, &rec.Points, &rec.When); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ClearScores wipes the score ledger and every stats cache. Used by the
// full data clear; queue configuration survives.
func (s *SQLiteStore) ClearScores(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scores`); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM queue_stats`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE queues SET games_played = 0`)
	return err
}

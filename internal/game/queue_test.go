package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscdev/sixmans/internal/ledger"
)

func testPlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: PlayerID(i + 1), Name: string(rune('A' + i))}
	}
	return players
}

func playerIDs(players []Player) []PlayerID {
	ids := make([]PlayerID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func TestNewQueueValidatesCapacity(t *testing.T) {
	for _, capacity := range []int{0, 1, 3, 5, -2} {
		_, err := NewQueue("bad", capacity, ModeRandom, PointSchedule{})
		assert.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d", capacity)
	}

	_, err := NewQueue("bad", MaxBalancedRoster+2, ModeBalanced, PointSchedule{})
	assert.ErrorIs(t, err, ErrBalancedTooLarge)
	_, err = NewQueue("ok", MaxBalancedRoster+2, ModeRandom, PointSchedule{})
	assert.NoError(t, err, "the ceiling only binds balanced selection")

	q, err := NewQueue("ok", 6, ModeRandom, PointSchedule{PerPlay: 5, PerWin: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, 6, q.Capacity)
}

func TestQueueJoinLeave(t *testing.T) {
	q, err := NewQueue("test", 4, ModeRandom, PointSchedule{})
	require.NoError(t, err)
	players := testPlayers(4)

	full, err := q.Join(players[0])
	require.NoError(t, err)
	assert.False(t, full)
	assert.Equal(t, 1, q.Len())

	_, err = q.Join(players[0])
	assert.ErrorIs(t, err, ErrAlreadyQueued)
	assert.Equal(t, 1, q.Len())

	require.NoError(t, q.Leave(players[0].ID))
	assert.ErrorIs(t, q.Leave(players[0].ID), ErrNotQueued)
}

func TestQueueFillAndPop(t *testing.T) {
	q, err := NewQueue("test", 4, ModeRandom, PointSchedule{})
	require.NoError(t, err)
	players := testPlayers(4)

	_, err = q.PopAll()
	assert.ErrorIs(t, err, ErrQueueNotFull)

	for i, p := range players {
		full, err := q.Join(p)
		require.NoError(t, err)
		assert.Equal(t, i == len(players)-1, full)
	}
	assert.True(t, q.IsFull())

	roster, err := q.PopAll()
	require.NoError(t, err)
	assert.Equal(t, players, roster, "pop preserves join order")
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.IsFull())
}

func TestQueuePlayerScore(t *testing.T) {
	q, err := NewQueue("test", 6, ModeBalanced, PointSchedule{})
	require.NoError(t, err)

	// No history: win rate defaults to 0.5, so the score collapses to rank.
	assert.InDelta(t, 1.0, q.PlayerScore(1), 1e-9)

	q.Stats[2] = &ledger.PlayerStats{Wins: 3, GamesPlayed: 4}
	assert.InDelta(t, 1.0+(0.75*2-1), q.PlayerScore(2), 1e-9)

	q.Stats[3] = &ledger.PlayerStats{Wins: 0, GamesPlayed: 4}
	assert.InDelta(t, 0.0, q.PlayerScore(3), 1e-9)
}

func TestQueueAwardStats(t *testing.T) {
	q, err := NewQueue("test", 6, ModeRandom, PointSchedule{PerPlay: 5, PerWin: 10})
	require.NoError(t, err)

	q.AwardStats(ledger.ScoreRecord{PlayerID: 1, Win: 1, Points: 15})
	q.AwardStats(ledger.ScoreRecord{PlayerID: 1, Win: 0, Points: 5})

	stats := q.Stats[1]
	require.NotNil(t, stats)
	assert.Equal(t, 20, stats.Points)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 2, stats.GamesPlayed)
}

package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfPickChoices(t *testing.T) {
	roster := testPlayers(6)
	sp := NewSelfPick(roster)
	require.Len(t, sp.Unplaced(), 6)

	require.NoError(t, sp.Choose(1, ColorBlue))
	require.NoError(t, sp.Choose(2, ColorOrange))
	require.NoError(t, sp.Choose(3, ColorBlue))
	assert.Len(t, sp.Unplaced(), 3)
	assert.False(t, sp.Done())

	// Double choice and unknown player are rejected.
	assert.ErrorIs(t, sp.Choose(1, ColorOrange), ErrNotEligible)
	assert.ErrorIs(t, sp.Choose(99, ColorBlue), ErrNotEligible)
	assert.ErrorIs(t, sp.Choose(4, ColorNone), ErrNotEligible)

	require.NoError(t, sp.Choose(4, ColorOrange))
	require.NoError(t, sp.Choose(5, ColorBlue))
	// Blue filled up, so the last player was bulk-assigned to orange.
	assert.True(t, sp.Done())
	assert.Empty(t, sp.Unplaced())

	res, ok := sp.Result(rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assertPartition(t, roster, res)
	assert.ElementsMatch(t, []PlayerID{1, 3, 5}, playerIDs(res.Blue))
	assert.ElementsMatch(t, []PlayerID{2, 4, 6}, playerIDs(res.Orange))
}

func TestSelfPickRejectsFullTeam(t *testing.T) {
	sp := NewSelfPick(testPlayers(6))
	require.NoError(t, sp.Choose(1, ColorOrange))
	require.NoError(t, sp.Choose(2, ColorOrange))
	require.NoError(t, sp.Choose(3, ColorOrange))
	// Everyone else was swept onto blue when orange filled up.
	require.True(t, sp.Done())
	assert.ErrorIs(t, sp.Choose(4, ColorOrange), ErrWrongState)

	res, ok := sp.Result(rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.ElementsMatch(t, []PlayerID{1, 2, 3}, playerIDs(res.Orange))
	assert.ElementsMatch(t, []PlayerID{4, 5, 6}, playerIDs(res.Blue))
}

func TestSelfPickTeamsNeverExceedHalf(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		roster := testPlayers(8)
		sp := NewSelfPick(roster)
		for !sp.Done() {
			left := sp.Unplaced()
			color := ColorBlue
			if rng.Intn(2) == 1 {
				color = ColorOrange
			}
			require.NoError(t, sp.Choose(left[rng.Intn(len(left))].ID, color))
		}
		res, ok := sp.Result(rng)
		require.True(t, ok)
		assertPartition(t, roster, res)
	}
}

func TestSelfPickEveryoneChooses(t *testing.T) {
	sp := NewSelfPick(testPlayers(4))
	require.NoError(t, sp.Choose(1, ColorBlue))
	require.NoError(t, sp.Choose(3, ColorOrange))
	assert.False(t, sp.Done())
	require.NoError(t, sp.Choose(2, ColorOrange))
	assert.True(t, sp.Done())

	res, ok := sp.Result(rand.New(rand.NewSource(7)))
	require.True(t, ok)
	assert.ElementsMatch(t, []PlayerID{1, 4}, playerIDs(res.Blue))
	assert.ElementsMatch(t, []PlayerID{2, 3}, playerIDs(res.Orange))
	assert.Contains(t, playerIDs(res.Blue), res.Captains[0].ID)
	assert.Contains(t, playerIDs(res.Orange), res.Captains[1].ID)
}

func TestSelfPickResultPending(t *testing.T) {
	sp := NewSelfPick(testPlayers(4))
	require.NoError(t, sp.Choose(1, ColorBlue))
	_, ok := sp.Result(rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

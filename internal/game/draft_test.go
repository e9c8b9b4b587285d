package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftTwoPlayersFinishesImmediately(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewDraft(testPlayers(2), rng)

	require.True(t, d.Done())
	res, ok := d.Result()
	require.True(t, ok)
	assertPartition(t, testPlayers(2), res)
}

func TestDraftAlternatesStartingWithBlue(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	roster := testPlayers(6)
	d := NewDraft(roster, rng)

	first, ok := d.Picking()
	require.True(t, ok)
	assert.Equal(t, d.Captains()[0], first, "blue captain picks first")

	// Blue picks, then orange is on the clock.
	require.NoError(t, d.Pick(first.ID, d.Pickable()[0].ID))
	second, ok := d.Picking()
	require.True(t, ok)
	assert.Equal(t, d.Captains()[1], second)
}

func TestDraftRejectsOutOfTurnAndUnknownPicks(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	roster := testPlayers(6)
	d := NewDraft(roster, rng)

	blue, orange := d.Captains()[0], d.Captains()[1]

	err := d.Pick(orange.ID, d.Pickable()[0].ID)
	assert.ErrorIs(t, err, ErrOutOfTurn)
	assert.Len(t, d.Pickable(), 4, "rejected pick leaves no state change")

	err = d.Pick(blue.ID, PlayerID(999))
	assert.ErrorIs(t, err, ErrNotEligible)

	// Picking a captain is rejected too: captains are not pickable.
	err = d.Pick(blue.ID, orange.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestDraftAutoAssignsLastPlayer(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	roster := testPlayers(6)
	d := NewDraft(roster, rng)

	// Drive the draft by always picking the first available player. The
	// final player must be auto-assigned, never offered for a pick.
	picksMade := 0
	for !d.Done() {
		captain, ok := d.Picking()
		require.True(t, ok)
		require.NoError(t, d.Pick(captain.ID, d.Pickable()[0].ID))
		picksMade++
	}
	assert.Equal(t, 3, picksMade, "six players: two captains, three picks, one auto-assign")

	res, ok := d.Result()
	require.True(t, ok)
	assertPartition(t, roster, res)
	assert.Equal(t, d.Captains(), res.Captains, "draft keeps its original captains")

	_, ok = d.Picking()
	assert.False(t, ok)
	assert.ErrorIs(t, d.Pick(d.Captains()[0].ID, PlayerID(1)), ErrWrongState)
}

func TestDraftTeamNeverExceedsHalf(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		roster := testPlayers(8)
		d := NewDraft(roster, rng)
		for !d.Done() {
			captain, ok := d.Picking()
			require.True(t, ok)
			require.NoError(t, d.Pick(captain.ID, d.Pickable()[0].ID))
		}
		res, ok := d.Result()
		require.True(t, ok)
		assert.Len(t, res.Blue, 4)
		assert.Len(t, res.Orange, 4)
	}
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeVoteEarlyConclusion(t *testing.T) {
	// 6 voters: 4 for Random, 1 for Captains, 1 silent. After the 4th
	// identical vote the lead (4) exceeds remaining (1) plus the runner-up
	// (1), so no remaining vote can change the outcome.
	v := NewVoteTally(testPlayers(6))

	decided, err := v.Cast(1, ModeRandom)
	require.NoError(t, err)
	assert.False(t, decided)
	decided, err = v.Cast(2, ModeCaptains)
	require.NoError(t, err)
	assert.False(t, decided)
	decided, err = v.Cast(3, ModeRandom)
	require.NoError(t, err)
	assert.False(t, decided)
	decided, err = v.Cast(4, ModeRandom)
	require.NoError(t, err)
	assert.False(t, decided, "3 vs 1 with 2 undecided is still open")
	decided, err = v.Cast(5, ModeRandom)
	require.NoError(t, err)
	assert.True(t, decided)

	mode, ok := v.Decided()
	require.True(t, ok)
	assert.Equal(t, ModeRandom, mode)
}

func TestModeVoteEligibilityAndOptions(t *testing.T) {
	v := NewVoteTally(testPlayers(4))

	_, err := v.Cast(99, ModeRandom)
	assert.ErrorIs(t, err, ErrNotEligible)
	_, err = v.Cast(1, ModeVote)
	assert.ErrorIs(t, err, ErrInvalidSelectionMode)
	_, err = v.Cast(1, ModeDefault)
	assert.ErrorIs(t, err, ErrInvalidSelectionMode)

	assert.Equal(t, 4, v.Remaining())
	assert.Len(t, v.Outstanding(), 4)
}

func TestModeVoteRevoteAndDuplicate(t *testing.T) {
	v := NewVoteTally(testPlayers(4))

	_, err := v.Cast(1, ModeRandom)
	require.NoError(t, err)
	// Duplicate delivery of the same vote changes nothing.
	_, err = v.Cast(1, ModeRandom)
	require.NoError(t, err)
	assert.Equal(t, map[SelectionMode]int{ModeRandom: 1}, nonZeroCounts(v))
	assert.Equal(t, 3, v.Remaining())

	// A re-vote moves the voter's count to the new mode.
	_, err = v.Cast(1, ModeBalanced)
	require.NoError(t, err)
	assert.Equal(t, map[SelectionMode]int{ModeBalanced: 1}, nonZeroCounts(v))
	assert.Equal(t, 3, v.Remaining())
}

func TestModeVoteFirstPastThePostTie(t *testing.T) {
	// All four vote, split 2/2. The mode that reached two votes first wins.
	v := NewVoteTally(testPlayers(4))
	_, err := v.Cast(1, ModeCaptains)
	require.NoError(t, err)
	_, err = v.Cast(2, ModeBalanced)
	require.NoError(t, err)
	_, err = v.Cast(3, ModeCaptains)
	require.NoError(t, err)
	decided, err := v.Cast(4, ModeBalanced)
	require.NoError(t, err)
	require.True(t, decided)

	mode, ok := v.Decided()
	require.True(t, ok)
	assert.Equal(t, ModeCaptains, mode)
}

func TestModeVoteOutstanding(t *testing.T) {
	v := NewVoteTally(testPlayers(4))
	_, err := v.Cast(2, ModeRandom)
	require.NoError(t, err)
	_, err = v.Cast(4, ModeRandom)
	require.NoError(t, err)
	assert.Equal(t, []PlayerID{1, 3}, playerIDs(v.Outstanding()))
}

// TestModeVoteConclusionIsSafe checks the early-conclusion rule against
// every distribution of six votes over the four options, cast one at a
// time: once Cast reports a decision, no completion of the remaining votes
// may produce a strictly higher count for another mode.
func TestModeVoteConclusionIsSafe(t *testing.T) {
	options := VoteOptions()
	roster := testPlayers(6)

	var sequences [][]SelectionMode
	var build func(prefix []SelectionMode)
	build = func(prefix []SelectionMode) {
		if len(prefix) == len(roster) {
			sequences = append(sequences, append([]SelectionMode(nil), prefix...))
			return
		}
		for _, opt := range options {
			build(append(prefix, opt))
		}
	}
	build(nil)

	for _, seq := range sequences {
		v := NewVoteTally(roster)
		for i, mode := range seq {
			decided, err := v.Cast(roster[i].ID, mode)
			require.NoError(t, err)
			if !decided {
				continue
			}

			winner, ok := v.Decided()
			require.True(t, ok)
			counts := v.Counts()
			undecided := len(roster) - (i + 1)
			for _, other := range options {
				if other == winner {
					continue
				}
				assert.LessOrEqual(t, counts[other]+undecided, counts[winner],
					"sequence %v decided %v at vote %d but %v could still pass it",
					seq, winner, i+1, other)
			}

			// Late votes after conclusion are absorbed without error.
			for j := i + 1; j < len(seq); j++ {
				decided, err := v.Cast(roster[j].ID, seq[j])
				require.NoError(t, err)
				assert.True(t, decided)
			}
			final, _ := v.Decided()
			assert.Equal(t, winner, final)
			break
		}
	}
}

func nonZeroCounts(v *VoteTally) map[SelectionMode]int {
	out := make(map[SelectionMode]int)
	for mode, n := range v.Counts() {
		if n != 0 {
			out[mode] = n
		}
	}
	return out
}

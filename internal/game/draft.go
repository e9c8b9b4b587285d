package game

import "math/rand"

// Draft runs the captains team-selection protocol. Two captains are drawn at
// random, one per team, and then alternate picks starting with blue. The
// draft owns its in-progress state; the final partition is only committed to
// the match through a single finalize call once Done reports true.
type Draft struct {
	teamSize int
	captains [2]Player
	blue     []Player
	orange   []Player
	pickable []Player
	turn     int // 0 = blue captain, 1 = orange captain
	picks    int
}

// NewDraft seeds a draft from the roster: captains drawn uniformly at
// random, each starting on their own team, everyone else pickable.
func NewDraft(roster []Player, rng *rand.Rand) *Draft {
	shuffled := make([]Player, len(roster))
	copy(shuffled, roster)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	d := &Draft{
		teamSize: len(roster) / 2,
		captains: [2]Player{shuffled[0], shuffled[1]},
		blue:     []Player{shuffled[0]},
		orange:   []Player{shuffled[1]},
		pickable: append([]Player(nil), shuffled[2:]...),
	}
	d.autoAssignLast()
	return d
}

// Captains returns the blue and orange captains.
func (d *Draft) Captains() [2]Player {
	return d.captains
}

// Picking returns the captain whose turn it is. ok is false once the draft
// is complete.
func (d *Draft) Picking() (Player, bool) {
	if d.Done() {
		return Player{}, false
	}
	return d.captains[d.turn], true
}

// Pickable returns the players still available for drafting.
func (d *Draft) Pickable() []Player {
	return append([]Player(nil), d.pickable...)
}

// Picks returns the number of picks made so far. Timeout commands carry this
// counter so a stale timeout can be detected and ignored.
func (d *Draft) Picks() int {
	return d.picks
}

// Pick assigns one pickable player to the picking captain's own team.
// Out-of-turn or already-picked selections are rejected with no state
// change.
func (d *Draft) Pick(captainID, pickID PlayerID) error {
	if d.Done() {
		return ErrWrongState
	}
	if d.captains[d.turn].ID != captainID {
		return ErrOutOfTurn
	}

	var picked *Player
	for i := range d.pickable {
		if d.pickable[i].ID == pickID {
			picked = &d.pickable[i]
			break
		}
	}
	if picked == nil {
		return ErrNotEligible
	}

	if d.turn == 0 {
		if len(d.blue) >= d.teamSize {
			return ErrTeamFull
		}
		d.blue = append(d.blue, *picked)
	} else {
		if len(d.orange) >= d.teamSize {
			return ErrTeamFull
		}
		d.orange = append(d.orange, *picked)
	}
	d.pickable = removePlayer(d.pickable, pickID)
	d.picks++
	d.advanceTurn()
	d.autoAssignLast()
	return nil
}

// advanceTurn alternates captains, skipping a captain whose team is already
// full so the remaining picks land on the short side.
func (d *Draft) advanceTurn() {
	d.turn = 1 - d.turn
	if d.turn == 0 && len(d.blue) >= d.teamSize {
		d.turn = 1
	} else if d.turn == 1 && len(d.orange) >= d.teamSize {
		d.turn = 0
	}
}

// autoAssignLast places the final unpicked player on whichever team is
// short instead of requiring a last draft action.
func (d *Draft) autoAssignLast() {
	if len(d.pickable) != 1 {
		return
	}
	last := d.pickable[0]
	if len(d.blue) < d.teamSize {
		d.blue = append(d.blue, last)
	} else {
		d.orange = append(d.orange, last)
	}
	d.pickable = nil
}

// Done reports whether every player has been assigned.
func (d *Draft) Done() bool {
	return len(d.pickable) == 0
}

// Result returns the final partition. The draft keeps its original captains
// rather than re-deriving them. ok is false while picks remain.
func (d *Draft) Result() (TeamResult, bool) {
	if !d.Done() {
		return TeamResult{}, false
	}
	return TeamResult{
		Blue:     append([]Player(nil), d.blue...),
		Orange:   append([]Player(nil), d.orange...),
		Captains: d.captains,
	}, true
}

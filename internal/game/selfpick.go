package game

import "math/rand"

// SelfPick runs the self-picking protocol: every player individually chooses
// blue or orange. A choice is rejected once the chosen team already holds
// half the capacity. Selection finalizes when everyone has chosen, or early
// once one team fills up, at which point the unplaced remainder is
// bulk-assigned to the other team.
type SelfPick struct {
	teamSize  int
	unplaced  []Player
	blue      []Player
	orange    []Player
	finalized bool
}

func NewSelfPick(roster []Player) *SelfPick {
	return &SelfPick{
		teamSize: len(roster) / 2,
		unplaced: append([]Player(nil), roster...),
	}
}

// Unplaced returns the players who have not chosen a team yet.
func (sp *SelfPick) Unplaced() []Player {
	return append([]Player(nil), sp.unplaced...)
}

// Choose places a player on the team of their choice. Players outside the
// roster and players who already chose are rejected, as is a choice for a
// team that is already full.
func (sp *SelfPick) Choose(id PlayerID, color Color) error {
	if sp.finalized {
		return ErrWrongState
	}
	var player *Player
	for i := range sp.unplaced {
		if sp.unplaced[i].ID == id {
			player = &sp.unplaced[i]
			break
		}
	}
	if player == nil {
		return ErrNotEligible
	}

	switch color {
	case ColorBlue:
		if len(sp.blue) >= sp.teamSize {
			return ErrTeamFull
		}
		sp.blue = append(sp.blue, *player)
	case ColorOrange:
		if len(sp.orange) >= sp.teamSize {
			return ErrTeamFull
		}
		sp.orange = append(sp.orange, *player)
	default:
		return ErrNotEligible
	}
	sp.unplaced = removePlayer(sp.unplaced, id)
	sp.checkFinalized()
	return nil
}

// checkFinalized bulk-assigns the remainder once one side reaches the team
// size, or finalizes outright when nobody is left unplaced.
func (sp *SelfPick) checkFinalized() {
	if len(sp.unplaced) == 0 {
		sp.finalized = true
		return
	}
	if len(sp.blue) == sp.teamSize {
		sp.orange = append(sp.orange, sp.unplaced...)
		sp.unplaced = nil
		sp.finalized = true
	} else if len(sp.orange) == sp.teamSize {
		sp.blue = append(sp.blue, sp.unplaced...)
		sp.unplaced = nil
		sp.finalized = true
	}
}

// Done reports whether the partition is complete.
func (sp *SelfPick) Done() bool {
	return sp.finalized
}

// Result returns the final partition with captains drawn uniformly from each
// team. ok is false while players remain unplaced.
func (sp *SelfPick) Result(rng *rand.Rand) (TeamResult, bool) {
	if !sp.finalized {
		return TeamResult{}, false
	}
	res := TeamResult{
		Blue:   append([]Player(nil), sp.blue...),
		Orange: append([]Player(nil), sp.orange...),
	}
	res.Captains = drawCaptains(res.Blue, res.Orange, rng)
	return res, true
}

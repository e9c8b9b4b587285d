package game

import "math/rand"

// RandomTeams uniformly samples half the roster into orange and leaves the
// remainder on blue. Captains are drawn uniformly from each resulting team.
func RandomTeams(roster []Player, rng *rand.Rand) TeamResult {
	shuffled := make([]Player, len(roster))
	copy(shuffled, roster)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	half := len(shuffled) / 2
	res := TeamResult{
		Orange: append([]Player(nil), shuffled[:half]...),
		Blue:   append([]Player(nil), shuffled[half:]...),
	}
	res.Captains = drawCaptains(res.Blue, res.Orange, rng)
	return res
}

// drawCaptains picks one uniformly-random member from each team. Used by
// every strategy except the captains draft, which keeps its original
// captains.
func drawCaptains(blue, orange []Player, rng *rand.Rand) [2]Player {
	return [2]Player{
		blue[rng.Intn(len(blue))],
		orange[rng.Intn(len(orange))],
	}
}

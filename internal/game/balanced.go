package game

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/combin"
)

// MaxBalancedRoster caps queue capacity for ModeBalanced. The strategy
// enumerates every half-roster combination, so the ceiling keeps the
// candidate count at a few hundred at most.
const MaxBalancedRoster = 10

// BalancedTeams enumerates every half-roster combination as a candidate blue
// team, keeps all candidates whose score sum is closest to half the roster
// total, and picks uniformly among the tied candidates. The comparison uses
// exact floating-point equality to decide ties, matching the historical
// behavior; a candidate only joins the tie set when its difference equals the
// best difference bit for bit.
//
// Enumeration is combinatorial in roster size; callers enforce
// MaxBalancedRoster before a queue can reach this strategy.
func BalancedTeams(roster []Player, score func(PlayerID) float64, rng *rand.Rand) TeamResult {
	half := len(roster) / 2

	total := 0.0
	for _, p := range roster {
		total += score(p.ID)
	}
	target := total / 2

	var (
		bestSets [][]int
		bestDiff = math.Inf(1)
	)
	for _, combo := range combin.Combinations(len(roster), half) {
		sum := 0.0
		for _, idx := range combo {
			sum += score(roster[idx].ID)
		}
		diff := math.Abs(target - sum)
		switch {
		case diff < bestDiff:
			bestDiff = diff
			bestSets = [][]int{combo}
		case diff == bestDiff:
			bestSets = append(bestSets, combo)
		}
	}

	chosen := bestSets[rng.Intn(len(bestSets))]
	inBlue := make(map[int]bool, half)
	for _, idx := range chosen {
		inBlue[idx] = true
	}

	res := TeamResult{}
	for i, p := range roster {
		if inBlue[i] {
			res.Blue = append(res.Blue, p)
		} else {
			res.Orange = append(res.Orange, p)
		}
	}
	res.Captains = drawCaptains(res.Blue, res.Orange, rng)
	return res
}

package coordinator

import (
	"github.com/rscdev/sixmans/internal/game"
	"github.com/rscdev/sixmans/internal/ledger"
)

// State is everything the coordinator owns: live queues and matches plus
// the score ledger. Only the coordinator's command loop touches it.
type State struct {
	Queues        map[string]*game.Queue // keyed by queue id
	Matches       map[string]*game.Match // keyed by match id, terminal until teardown
	Ledger        *ledger.Ledger
	QueuesEnabled bool
}

func NewState() *State {
	return &State{
		Queues:        make(map[string]*game.Queue),
		Matches:       make(map[string]*game.Match),
		Ledger:        ledger.New(),
		QueuesEnabled: true,
	}
}

// QueueByName resolves a queue by its display name.
func (s *State) QueueByName(name string) *game.Queue {
	for _, q := range s.Queues {
		if q.Name == name {
			return q
		}
	}
	return nil
}

// MatchForPlayer returns the non-terminal match the player belongs to, if
// any. Finished matches awaiting teardown do not count.
func (s *State) MatchForPlayer(id game.PlayerID) *game.Match {
	for _, m := range s.Matches {
		if !m.State.Terminal() && m.InMatch(id) {
			return m
		}
	}
	return nil
}

// InAnyMatch reports whether the player is on a live match roster.
func (s *State) InAnyMatch(id game.PlayerID) bool {
	return s.MatchForPlayer(id) != nil
}

// Package game implements the Six Mans match core: the capacity-bounded
// player queue, the match lifecycle state machine, the team-selection
// strategies, and the consensus collectors that gather picks, votes, and
// score confirmations from players.
package game

import "fmt"

// PlayerID is the stable platform-supplied identity of a player.
type PlayerID int64

// Player is an opaque identity referenced everywhere; the chat platform owns
// the rest of the profile.
type Player struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
}

// Color identifies a team. ColorNone doubles as the pending winner value.
type Color int

const (
	ColorNone Color = iota
	ColorBlue
	ColorOrange
)

func (c Color) String() string {
	switch c {
	case ColorBlue:
		return "blue"
	case ColorOrange:
		return "orange"
	default:
		return "pending"
	}
}

// MarshalText serializes the color by name.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Other returns the opposing team color.
func (c Color) Other() Color {
	switch c {
	case ColorBlue:
		return ColorOrange
	case ColorOrange:
		return ColorBlue
	default:
		return ColorNone
	}
}

// ParseColor maps a wire value onto a team color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "blue":
		return ColorBlue, nil
	case "orange":
		return ColorOrange, nil
	default:
		return ColorNone, fmt.Errorf("unknown team color %q", s)
	}
}

func containsPlayer(players []Player, id PlayerID) bool {
	for _, p := range players {
		if p.ID == id {
			return true
		}
	}
	return false
}

func removePlayer(players []Player, id PlayerID) []Player {
	for i, p := range players {
		if p.ID == id {
			return append(players[:i], players[i+1:]...)
		}
	}
	return players
}

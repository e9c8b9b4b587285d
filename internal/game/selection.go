package game

// SelectionMode is the closed set of team-selection methods. Dispatch is
// always over this type; wire strings are parsed exactly once at the
// boundary.
type SelectionMode int

const (
	// ModeDefault defers to the queue's configured mode.
	ModeDefault SelectionMode = iota
	ModeRandom
	ModeCaptains
	ModeSelfPick
	ModeBalanced
	ModeVote
)

func (m SelectionMode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeRandom:
		return "random"
	case ModeCaptains:
		return "captains"
	case ModeSelfPick:
		return "selfpick"
	case ModeBalanced:
		return "balanced"
	case ModeVote:
		return "vote"
	default:
		return "unknown"
	}
}

// MarshalText serializes the mode by name, for JSON values and map keys.
func (m SelectionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseSelectionMode maps a wire value onto a SelectionMode.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch s {
	case "default":
		return ModeDefault, nil
	case "random":
		return ModeRandom, nil
	case "captains":
		return ModeCaptains, nil
	case "selfpick", "self-pick":
		return ModeSelfPick, nil
	case "balanced":
		return ModeBalanced, nil
	case "vote":
		return ModeVote, nil
	default:
		return ModeDefault, ErrInvalidSelectionMode
	}
}

// VoteOptions are the modes players may vote for. Vote and Default are
// excluded: a vote can't resolve to another vote.
func VoteOptions() []SelectionMode {
	return []SelectionMode{ModeRandom, ModeCaptains, ModeSelfPick, ModeBalanced}
}

// TeamResult is the outcome every selection strategy produces: a full
// partition of the roster plus one captain per team. Captains[0] leads blue,
// Captains[1] leads orange.
type TeamResult struct {
	Blue     []Player
	Orange   []Player
	Captains [2]Player
}

package game

// VoteTally collects one team-selection-mode vote per roster member. A late
// re-vote by the same player overwrites their previous vote. Voting
// concludes early as soon as the leading mode's count exceeds the undecided
// voters plus the runner-up count, at which point no remaining assignment of
// votes can change the outcome. Ties for the lead belong to whichever mode
// reached that count first.
type VoteTally struct {
	roster   []Player
	eligible map[PlayerID]bool
	votes    map[PlayerID]SelectionMode
	counts   map[SelectionMode]int
	// reachedAt records the arrival sequence at which each mode last rose to
	// its current count; the earliest holder of the top count leads.
	reachedAt map[SelectionMode]int
	seq       int
	decided   bool
	result    SelectionMode
}

func NewVoteTally(roster []Player) *VoteTally {
	v := &VoteTally{
		roster:    append([]Player(nil), roster...),
		eligible:  make(map[PlayerID]bool, len(roster)),
		votes:     make(map[PlayerID]SelectionMode),
		counts:    make(map[SelectionMode]int),
		reachedAt: make(map[SelectionMode]int),
	}
	for _, p := range roster {
		v.eligible[p.ID] = true
	}
	return v
}

// Cast records a vote. Returns whether the vote has concluded. Voting for
// Vote or Default is rejected; votes from outside the roster are rejected.
func (v *VoteTally) Cast(id PlayerID, mode SelectionMode) (decided bool, err error) {
	if v.decided {
		return true, nil
	}
	if !v.eligible[id] {
		return false, ErrNotEligible
	}
	valid := false
	for _, opt := range VoteOptions() {
		if mode == opt {
			valid = true
			break
		}
	}
	if !valid {
		return false, ErrInvalidSelectionMode
	}

	v.seq++
	if prev, voted := v.votes[id]; voted {
		if prev == mode {
			// Duplicate delivery of the same vote is an idempotent no-op.
			return false, nil
		}
		v.counts[prev]--
		v.reachedAt[prev] = v.seq
	}
	v.votes[id] = mode
	v.counts[mode]++
	v.reachedAt[mode] = v.seq

	v.checkDecided()
	return v.decided, nil
}

// leaderAndRunnerUp finds the current leading mode (ties broken by earliest
// arrival at the top count) and the runner-up count.
func (v *VoteTally) leaderAndRunnerUp() (leader SelectionMode, lead, runnerUp int) {
	leader = ModeDefault
	for _, mode := range VoteOptions() {
		count := v.counts[mode]
		switch {
		case count > lead:
			runnerUp = lead
			leader, lead = mode, count
		case count == lead && leader != ModeDefault && v.reachedAt[mode] < v.reachedAt[leader]:
			runnerUp = lead
			leader = mode
		case count > runnerUp:
			runnerUp = count
		}
	}
	return leader, lead, runnerUp
}

func (v *VoteTally) checkDecided() {
	leader, lead, runnerUp := v.leaderAndRunnerUp()
	if lead == 0 {
		return
	}
	remaining := len(v.eligible) - len(v.votes)
	// Early conclusion: the outcome is mathematically locked in.
	if lead > remaining+runnerUp {
		v.decided = true
		v.result = leader
		return
	}
	// Everyone voted: conclude on the current leader, first-past-the-post.
	if remaining == 0 {
		v.decided = true
		v.result = leader
	}
}

// Counts returns the current tally per mode.
func (v *VoteTally) Counts() map[SelectionMode]int {
	out := make(map[SelectionMode]int, len(v.counts))
	for mode, n := range v.counts {
		out[mode] = n
	}
	return out
}

// Remaining returns how many eligible voters have not voted.
func (v *VoteTally) Remaining() int {
	return len(v.eligible) - len(v.votes)
}

// Outstanding returns the roster members who have not voted yet, in roster
// order.
func (v *VoteTally) Outstanding() []Player {
	var out []Player
	for _, p := range v.roster {
		if _, voted := v.votes[p.ID]; !voted {
			out = append(out, p)
		}
	}
	return out
}

// Decided returns the winning mode once the vote has concluded.
func (v *VoteTally) Decided() (SelectionMode, bool) {
	return v.result, v.decided
}

package game

// ChoiceCancel aborts a pair confirmation with no result.
const ChoiceCancel = "cancel"

// PairConfirm is the unanimous-pair consensus collector: exactly two
// eligible parties must submit the same choice. Any mismatch, or a cancel
// choice, aborts the collection with no result. Used for score reporting and
// for game-cancellation confirmation.
type PairConfirm struct {
	parties  [2]Player
	choices  map[PlayerID]string
	decision string
	done     bool
	aborted  bool
}

func NewPairConfirm(a, b Player) *PairConfirm {
	return &PairConfirm{
		parties: [2]Player{a, b},
		choices: make(map[PlayerID]string, 2),
	}
}

// Parties returns the two eligible parties.
func (pc *PairConfirm) Parties() [2]Player {
	return pc.parties
}

// Submit records one party's choice. Submitting the same choice twice is an
// idempotent no-op; changing a pending choice is rejected. Once both parties
// have submitted, the collector is done: agreed on a matching choice,
// aborted otherwise.
func (pc *PairConfirm) Submit(party PlayerID, choice string) error {
	if pc.done {
		return ErrWrongState
	}
	if party != pc.parties[0].ID && party != pc.parties[1].ID {
		return ErrNotEligible
	}
	if prev, ok := pc.choices[party]; ok {
		if prev == choice {
			return nil
		}
		return ErrWrongState
	}

	if choice == ChoiceCancel {
		pc.done = true
		pc.aborted = true
		return nil
	}

	pc.choices[party] = choice
	if len(pc.choices) == 2 {
		pc.done = true
		a := pc.choices[pc.parties[0].ID]
		b := pc.choices[pc.parties[1].ID]
		if a == b {
			pc.decision = a
		} else {
			pc.aborted = true
		}
	}
	return nil
}

// Pending returns the parties that have not submitted a choice yet.
func (pc *PairConfirm) Pending() []Player {
	var out []Player
	for _, p := range pc.parties {
		if _, ok := pc.choices[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// Done reports whether the collector has resolved, successfully or not.
func (pc *PairConfirm) Done() bool {
	return pc.done
}

// Decision returns the agreed choice. ok is false while collection is
// pending or after an abort.
func (pc *PairConfirm) Decision() (string, bool) {
	if !pc.done || pc.aborted {
		return "", false
	}
	return pc.decision, true
}

// Aborted reports whether the collection resolved without a decision.
func (pc *PairConfirm) Aborted() bool {
	return pc.aborted
}

package game

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Match ties a frozen roster, a team-selection outcome, and a reported
// winner together. All mutation goes through the orchestrator's handlers,
// so no locking is needed; every handler validates the current state before
// touching anything so duplicate or stale events degrade to no-ops.
type Match struct {
	ID        string
	Queue     *Queue // read-only backlink for points and capacity
	Roster    []Player
	State     State
	Mode      SelectionMode
	Blue      []Player
	Orange    []Player
	Captains  [2]Player // [0] blue, [1] orange
	Winner    Color
	LobbyName string
	LobbyPass string

	// Staleness guards carried by scheduled timeout commands: a timeout only
	// acts when its captured sequence still matches.
	SelectionSeq int
	ReportSeq    int
	CancelSeq    int

	pool     []Player // unassigned players during manual team mutation
	draft    *Draft
	selfPick *SelfPick
	vote     *VoteTally
	report   *PairConfirm

	pendingCancel *cancelRequest
	// selectionExpired marks a match cancelled because its selection
	// protocol ran out of time; late protocol actions get a distinct
	// rejection instead of a generic state error.
	selectionExpired bool
	rng              *rand.Rand
	log              *logrus.Entry
}

type cancelRequest struct {
	initiator   PlayerID
	responsible Player
}

// NewMatch creates a match in StateNew from a full roster. Lobby credentials
// are generated at construction; the roster is frozen and never re-derived
// from the queue.
func NewMatch(roster []Player, q *Queue, rng *rand.Rand) *Match {
	m := &Match{
		ID:        uuid.New().String(),
		Queue:     q,
		Roster:    append([]Player(nil), roster...),
		State:     StateNew,
		Mode:      q.Mode,
		Winner:    ColorNone,
		LobbyName: generateLobbyCredential(rng),
		LobbyPass: generateLobbyCredential(rng),
		rng:       rng,
	}
	m.log = logrus.WithFields(logrus.Fields{"match": m.ID, "queue": q.Name})
	m.pool = append([]Player(nil), m.Roster...)
	return m
}

// RestoreMatch rebuilds a persisted match. Matches restored in StateNew or
// StateSelection must have team selection re-run from scratch by the caller.
func RestoreMatch(id string, roster []Player, q *Queue, state State, mode SelectionMode,
	blue, orange []Player, captains [2]Player, winner Color, lobbyName, lobbyPass string,
	rng *rand.Rand) *Match {
	m := &Match{
		ID:        id,
		Queue:     q,
		Roster:    append([]Player(nil), roster...),
		State:     state,
		Mode:      mode,
		Blue:      append([]Player(nil), blue...),
		Orange:    append([]Player(nil), orange...),
		Captains:  captains,
		Winner:    winner,
		LobbyName: lobbyName,
		LobbyPass: lobbyPass,
		rng:       rng,
	}
	m.log = logrus.WithFields(logrus.Fields{"match": m.ID, "queue": q.Name})
	if state == StateNew || state == StateSelection {
		m.State = StateNew
		m.Blue, m.Orange = nil, nil
		m.pool = append([]Player(nil), m.Roster...)
	}
	return m
}

// InMatch reports whether the player belongs to this match's roster.
func (m *Match) InMatch(id PlayerID) bool {
	return containsPlayer(m.Roster, id)
}

// RegenerateLobby replaces the lobby credentials, for when the room leaked
// or could not be created. Finished matches keep theirs.
func (m *Match) RegenerateLobby() error {
	if m.State.Terminal() {
		return ErrWrongState
	}
	m.LobbyName = generateLobbyCredential(m.rng)
	m.LobbyPass = generateLobbyCredential(m.rng)
	return nil
}

// teamsFormed reports whether the roster has been split.
func (m *Match) teamsFormed() bool {
	return len(m.Blue) > 0 || len(m.Orange) > 0
}

// RunTeamSelection resolves the selection mode and dispatches to its
// strategy. ModeDefault falls back to the queue's configured default, which
// itself falls back to a vote. Re-entrant calls after teams are finalized
// are safe no-ops.
func (m *Match) RunTeamSelection(mode SelectionMode) error {
	if m.State != StateNew && m.State != StateSelection {
		m.log.WithField("state", m.State).Debug("team selection already finished, skipping")
		return nil
	}

	if mode == ModeDefault {
		mode = m.Queue.Mode
	}
	if mode == ModeDefault {
		mode = ModeVote
	}
	m.resetTeams()
	return m.runMode(mode)
}

// runMode starts one strategy. Random and balanced finalize synchronously;
// the interactive protocols move the match into StateSelection and wait for
// choice events.
func (m *Match) runMode(mode SelectionMode) error {
	m.Mode = mode
	switch mode {
	case ModeRandom:
		m.finalizeTeams(RandomTeams(m.Roster, m.rng))
	case ModeBalanced:
		m.finalizeTeams(BalancedTeams(m.Roster, m.Queue.PlayerScore, m.rng))
	case ModeCaptains:
		m.draft = NewDraft(m.Roster, m.rng)
		m.State = StateSelection
		m.SelectionSeq++
		// A two-player roster drafts nobody; the captains are the teams.
		if res, done := m.draft.Result(); done {
			m.finalizeTeams(res)
		}
	case ModeSelfPick:
		m.selfPick = NewSelfPick(m.Roster)
		m.State = StateSelection
		m.SelectionSeq++
	case ModeVote:
		m.vote = NewVoteTally(m.Roster)
		m.State = StateSelection
		m.SelectionSeq++
	default:
		return ErrInvalidSelectionMode
	}
	m.log.WithFields(logrus.Fields{"mode": mode.String(), "state": m.State.String()}).
		Info("team selection dispatched")
	return nil
}

// resetTeams returns every assigned player to the unassigned pool.
func (m *Match) resetTeams() {
	m.Blue, m.Orange = nil, nil
	m.pool = append([]Player(nil), m.Roster...)
	m.draft, m.selfPick, m.vote = nil, nil, nil
}

// finalizeTeams commits a completed partition in one step: teams, captains,
// and the transition to StateOngoing. Collectors never write partial teams
// into the match.
func (m *Match) finalizeTeams(res TeamResult) {
	m.Blue = res.Blue
	m.Orange = res.Orange
	m.Captains = res.Captains
	m.pool = nil
	m.draft, m.selfPick, m.vote = nil, nil, nil
	m.State = StateOngoing
	m.log.WithFields(logrus.Fields{
		"blue":   len(m.Blue),
		"orange": len(m.Orange),
	}).Info("teams finalized")
}

// CastModeVote records one player's team-selection-mode vote. When the vote
// concludes, the winning mode's strategy is invoked immediately.
func (m *Match) CastModeVote(player PlayerID, mode SelectionMode) (decided bool, err error) {
	if m.selectionExpired {
		return false, ErrVoteTimedOut
	}
	if m.vote == nil || m.State != StateSelection {
		return false, ErrWrongState
	}
	decided, err = m.vote.Cast(player, mode)
	if err != nil {
		return false, err
	}
	if decided {
		winner, _ := m.vote.Decided()
		m.vote = nil
		m.log.WithField("mode", winner.String()).Info("mode vote concluded")
		return true, m.runMode(winner)
	}
	return false, nil
}

// VoteState exposes the in-progress mode vote, if any.
func (m *Match) VoteState() *VoteTally {
	return m.vote
}

// PickPlayer forwards a captain's draft pick. Finalizes teams once the last
// player is assigned.
func (m *Match) PickPlayer(captain, pick PlayerID) error {
	if m.selectionExpired {
		return ErrVoteTimedOut
	}
	if m.draft == nil || m.State != StateSelection {
		return ErrWrongState
	}
	if err := m.draft.Pick(captain, pick); err != nil {
		return err
	}
	if res, done := m.draft.Result(); done {
		m.finalizeTeams(res)
	}
	return nil
}

// DraftState exposes the in-progress captains draft, if any.
func (m *Match) DraftState() *Draft {
	return m.draft
}

// ChooseTeam forwards a self-pick choice. Finalizes teams once everyone is
// placed or one side fills up.
func (m *Match) ChooseTeam(player PlayerID, color Color) error {
	if m.selectionExpired {
		return ErrVoteTimedOut
	}
	if m.selfPick == nil || m.State != StateSelection {
		return ErrWrongState
	}
	if err := m.selfPick.Choose(player, color); err != nil {
		return err
	}
	if res, done := m.selfPick.Result(m.rng); done {
		m.finalizeTeams(res)
	}
	return nil
}

// SelfPickState exposes the in-progress self-pick protocol, if any.
func (m *Match) SelfPickState() *SelfPick {
	return m.selfPick
}

// AssignToBlue moves a player onto blue, removing them from orange and from
// the unassigned pool first.
func (m *Match) AssignToBlue(p Player) {
	m.Orange = removePlayer(m.Orange, p.ID)
	m.pool = removePlayer(m.pool, p.ID)
	if !containsPlayer(m.Blue, p.ID) {
		m.Blue = append(m.Blue, p)
	}
}

// AssignToOrange moves a player onto orange, removing them from blue and
// from the unassigned pool first.
func (m *Match) AssignToOrange(p Player) {
	m.Blue = removePlayer(m.Blue, p.ID)
	m.pool = removePlayer(m.pool, p.ID)
	if !containsPlayer(m.Orange, p.ID) {
		m.Orange = append(m.Orange, p)
	}
}

// ReportWinner records the outcome. Valid exactly once; the second call
// fails with ErrAlreadyReported and leaves the winner unchanged.
func (m *Match) ReportWinner(c Color) error {
	if m.Winner != ColorNone {
		return ErrAlreadyReported
	}
	if m.State != StateOngoing {
		return ErrWrongState
	}
	if c != ColorBlue && c != ColorOrange {
		return ErrWrongState
	}
	m.Winner = c
	m.State = StateComplete
	m.log.WithField("winner", c.String()).Info("match complete")
	return nil
}

// Cancel aborts the match. Terminal states reject the transition; a
// cancelled match never distributes points.
func (m *Match) Cancel() error {
	if m.State.Terminal() {
		return ErrWrongState
	}
	m.State = StateCancelled
	m.report = nil
	m.pendingCancel = nil
	m.draft, m.selfPick, m.vote = nil, nil, nil
	m.log.Info("match cancelled")
	return nil
}

// CancelExpiredSelection cancels a match whose selection protocol ran out
// of time. Unlike a plain Cancel, late votes, picks, and team choices are
// then rejected with ErrVoteTimedOut so callers know the selection has to
// be re-initiated on a fresh match.
func (m *Match) CancelExpiredSelection() error {
	if err := m.Cancel(); err != nil {
		return err
	}
	m.selectionExpired = true
	return nil
}

// OpposingCaptainFor returns the party responsible for countersigning the
// given player's action. Before teams exist any other roster member will
// do; afterwards it is the captain of the team the player is not on.
func (m *Match) OpposingCaptainFor(player PlayerID) (Player, error) {
	if !m.InMatch(player) {
		return Player{}, ErrNotEligible
	}
	if !m.teamsFormed() {
		others := make([]Player, 0, len(m.Roster)-1)
		for _, p := range m.Roster {
			if p.ID != player {
				others = append(others, p)
			}
		}
		return others[m.rng.Intn(len(others))], nil
	}
	if containsPlayer(m.Blue, player) {
		return m.Captains[1], nil
	}
	return m.Captains[0], nil
}

// swapCaptain replaces the given (presumed absent) captain with another
// uniformly-random member of the same team, so one silent captain cannot
// block resolution forever.
func (m *Match) swapCaptain(prev Player) Player {
	team := m.Orange
	idx := 1
	if containsPlayer(m.Blue, prev.ID) {
		team = m.Blue
		idx = 0
	}
	candidates := make([]Player, 0, len(team))
	for _, p := range team {
		if p.ID != prev.ID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return prev
	}
	next := candidates[m.rng.Intn(len(candidates))]
	m.Captains[idx] = next
	m.log.WithFields(logrus.Fields{"from": prev.ID, "to": next.ID}).
		Info("rotated unresponsive captain")
	return next
}

// SubmitReport records one captain's winner choice in the unanimous-pair
// collector. resolved is true once the collector completes; a ColorNone
// winner then means the captains disagreed and the report was discarded.
func (m *Match) SubmitReport(player PlayerID, choice string) (winner Color, resolved bool, err error) {
	if m.Winner != ColorNone {
		return ColorNone, false, ErrAlreadyReported
	}
	if m.State != StateOngoing {
		return ColorNone, false, ErrWrongState
	}
	if player != m.Captains[0].ID && player != m.Captains[1].ID {
		return ColorNone, false, ErrNotEligible
	}
	if choice != ChoiceCancel {
		if _, err := ParseColor(choice); err != nil {
			return ColorNone, false, ErrWrongState
		}
	}
	if m.report == nil {
		m.report = NewPairConfirm(m.Captains[0], m.Captains[1])
		m.ReportSeq++
	}
	if err := m.report.Submit(player, choice); err != nil {
		return ColorNone, false, err
	}
	if !m.report.Done() {
		return ColorNone, false, nil
	}

	decision, ok := m.report.Decision()
	m.report = nil
	if !ok {
		m.log.Info("score report aborted, captains disagreed")
		return ColorNone, true, nil
	}
	color, _ := ParseColor(decision)
	if err := m.ReportWinner(color); err != nil {
		return ColorNone, false, err
	}
	return color, true, nil
}

// ReportPending reports whether a score-report collection is in flight.
func (m *Match) ReportPending() bool {
	return m.report != nil
}

// ReportTimeout expires a stale score-report collection: the silent
// captain is rotated out and the report must be re-initiated. seq guards
// against a timeout that already resolved.
func (m *Match) ReportTimeout(seq int) (silent, replacement Player, ok bool) {
	if m.report == nil || seq != m.ReportSeq {
		return Player{}, Player{}, false
	}
	pending := m.report.Pending()
	m.report = nil
	if len(pending) == 0 {
		return Player{}, Player{}, false
	}
	silent = pending[0]
	return silent, m.swapCaptain(silent), true
}

// RequestCancel begins a cancellation confirmation: the initiator's
// opposing captain (or any other roster member before teams exist) must
// countersign. Re-requesting while one is pending returns the existing
// responsible party.
func (m *Match) RequestCancel(initiator PlayerID) (responsible Player, err error) {
	if m.State.Terminal() {
		return Player{}, ErrWrongState
	}
	if m.pendingCancel != nil {
		return m.pendingCancel.responsible, nil
	}
	responsible, err = m.OpposingCaptainFor(initiator)
	if err != nil {
		return Player{}, err
	}
	m.pendingCancel = &cancelRequest{initiator: initiator, responsible: responsible}
	m.CancelSeq++
	return responsible, nil
}

// ConfirmCancel resolves a pending cancellation request. Only the
// responsible party may answer; declining clears the request.
func (m *Match) ConfirmCancel(party PlayerID, accept bool) (cancelled bool, err error) {
	if m.pendingCancel == nil {
		return false, ErrWrongState
	}
	if party != m.pendingCancel.responsible.ID {
		return false, ErrNotEligible
	}
	m.pendingCancel = nil
	if !accept {
		return false, nil
	}
	return true, m.Cancel()
}

// CancelPending returns the party responsible for a pending cancellation.
func (m *Match) CancelPending() (Player, bool) {
	if m.pendingCancel == nil {
		return Player{}, false
	}
	return m.pendingCancel.responsible, true
}

// CancelTimeout expires a pending cancellation confirmation, rotating the
// silent party when teams exist so a re-request lands on someone else.
func (m *Match) CancelTimeout(seq int) (silent, replacement Player, ok bool) {
	if m.pendingCancel == nil || seq != m.CancelSeq {
		return Player{}, Player{}, false
	}
	silent = m.pendingCancel.responsible
	m.pendingCancel = nil
	if !m.teamsFormed() {
		return silent, silent, true
	}
	return silent, m.swapCaptain(silent), true
}

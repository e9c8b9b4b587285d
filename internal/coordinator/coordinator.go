// Package coordinator owns every live queue and match. All mutation flows
// through a single command loop, so handlers never interleave on the same
// queue or match; timers re-enter through the command channel carrying a
// staleness guard instead of touching state directly.
package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rscdev/sixmans/internal/game"
	"github.com/rscdev/sixmans/internal/ledger"
	"github.com/rscdev/sixmans/internal/store"
)

// Config carries the time-driven knobs. Zero durations disable the
// corresponding timer.
type Config struct {
	QueueIdleTimeout time.Duration
	SelectionTimeout time.Duration
	PickTimeout      time.Duration
	ReportTimeout    time.Duration
	CancelTimeout    time.Duration
	TeardownDelay    time.Duration
}

// DefaultConfig returns the stock timers: a four-hour queue wait and
// minute-scale windows for the interactive protocols.
func DefaultConfig() Config {
	return Config{
		QueueIdleTimeout: 4 * time.Hour,
		SelectionTimeout: 5 * time.Minute,
		PickTimeout:      2 * time.Minute,
		ReportTimeout:    5 * time.Minute,
		CancelTimeout:    2 * time.Minute,
		TeardownDelay:    30 * time.Second,
	}
}

type idleKey struct {
	queueID string
	player  game.PlayerID
}

// idleTimer pairs a timer handle with the generation it was armed for. A
// leave-then-rejoin reuses the same idleKey, so key presence alone cannot
// tell a live timer from one armed in a previous queue session.
type idleTimer struct {
	handle *time.Timer
	gen    uint64
}

// Coordinator processes commands sequentially and emits lifecycle events.
type Coordinator struct {
	cfg      Config
	commands chan Command
	events   chan Event
	state    *State
	store    store.Store // nil disables persistence
	rng      *rand.Rand
	log      *logrus.Entry

	// idleTimers tracks the per-player queue idle timers so every removal
	// path can cancel and clear the handle as one step. idleGen numbers
	// timer arm operations; a fired timer whose generation no longer
	// matches belongs to an earlier queue session and is ignored.
	idleTimers map[idleKey]idleTimer
	idleGen    uint64

	subMu       sync.Mutex
	subscribers []chan Event
}

// New creates a Coordinator. st may be nil, in which case nothing is
// persisted; rng may be nil for a time-seeded source.
func New(cfg Config, st store.Store, rng *rand.Rand) *Coordinator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Coordinator{
		cfg:        cfg,
		commands:   make(chan Command, 100),
		events:     make(chan Event, 100),
		state:      NewState(),
		store:      st,
		rng:        rng,
		log:        logrus.WithField("component", "coordinator"),
		idleTimers: make(map[idleKey]idleTimer),
	}
}

// Send submits a command to the coordinator.
func (c *Coordinator) Send(cmd Command) {
	c.commands <- cmd
}

// Events returns the main event channel for consumers.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Subscribe creates an event channel receiving everything the coordinator
// emits. Callers must Unsubscribe when done.
func (c *Coordinator) Subscribe() chan Event {
	ch := make(chan Event, 100)
	c.subMu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.subMu.Unlock()
	return ch
}

// Unsubscribe removes a channel obtained from Subscribe.
func (c *Coordinator) Unsubscribe(ch chan Event) {
	c.subMu.Lock()
	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			break
		}
	}
	c.subMu.Unlock()
}

// Run starts the command loop. It blocks until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Info("coordinator started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("coordinator shutting down")
			return
		case cmd := <-c.commands:
			c.handleCommand(cmd)
		}
	}
}

func (c *Coordinator) emit(e Event) {
	select {
	case c.events <- e:
	default:
		c.log.Warn("main event channel full, dropping event")
	}

	c.subMu.Lock()
	for _, ch := range c.subscribers {
		select {
		case ch <- e:
		default:
			c.log.Warn("subscriber event channel full, dropping event")
		}
	}
	c.subMu.Unlock()
}

// LoadState rebuilds queues, the score ledger, and in-flight matches from
// the store. Matches persisted before team finalization restart selection
// from scratch; waiting lines are not persisted, players re-queue.
func (c *Coordinator) LoadState(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	queues, err := c.store.ListQueues(ctx)
	if err != nil {
		return err
	}
	for _, rec := range queues {
		mode, err := game.ParseSelectionMode(rec.Mode)
		if err != nil {
			mode = game.ModeDefault
		}
		stats := make(map[game.PlayerID]*ledger.PlayerStats, len(rec.Stats))
		for id, s := range rec.Stats {
			cp := s
			stats[game.PlayerID(id)] = &cp
		}
		q := game.RestoreQueue(rec.ID, rec.Name, rec.Capacity, mode,
			game.PointSchedule{PerPlay: rec.PerPlay, PerWin: rec.PerWin},
			rec.GamesPlayed, stats)
		c.state.Queues[q.ID] = q
	}

	scores, err := c.store.ListScores(ctx)
	if err != nil {
		return err
	}
	for _, rec := range scores {
		c.state.Ledger.Append(rec)
	}

	matches, err := c.store.ListMatches(ctx)
	if err != nil {
		return err
	}
	for _, rec := range matches {
		q := c.state.Queues[rec.QueueID]
		state, serr := game.ParseState(rec.State)
		if q == nil || serr != nil || state.Terminal() {
			// Orphaned or already-finished snapshots have nothing to resume.
			c.deleteMatchRecord(rec.ID)
			continue
		}
		mode, err := game.ParseSelectionMode(rec.Mode)
		if err != nil {
			mode = game.ModeDefault
		}
		winner := game.ColorNone
		if col, err := game.ParseColor(rec.Winner); err == nil {
			winner = col
		}
		var captains [2]game.Player
		for i, ref := range rec.Captains {
			if i > 1 {
				break
			}
			captains[i] = refToPlayer(ref)
		}
		m := game.RestoreMatch(rec.ID, refsToPlayers(rec.Roster), q, state, mode,
			refsToPlayers(rec.Blue), refsToPlayers(rec.Orange), captains, winner,
			rec.LobbyName, rec.LobbyPass, c.rng)
		c.state.Matches[m.ID] = m
		c.log.WithFields(logrus.Fields{"match": m.ID, "state": m.State.String()}).
			Info("resumed match")
		if m.State == game.StateNew {
			if err := c.startSelection(m, m.Mode); err != nil {
				c.log.WithError(err).WithField("match", m.ID).Warn("resume selection failed")
			}
		}
	}
	return nil
}

func (c *Coordinator) handleCommand(cmd Command) {
	switch cmd := cmd.(type) {
	case JoinQueue:
		reply(cmd.Response, c.handleJoinQueue(cmd))
	case LeaveQueue:
		reply(cmd.Response, c.handleLeaveQueue(cmd))
	case CastModeVote:
		reply(cmd.Response, c.handleCastModeVote(cmd))
	case PickPlayer:
		reply(cmd.Response, c.handlePickPlayer(cmd))
	case ChooseTeam:
		reply(cmd.Response, c.handleChooseTeam(cmd))
	case ReportScore:
		reply(cmd.Response, c.handleReportScore(cmd))
	case RequestCancel:
		reply(cmd.Response, c.handleRequestCancel(cmd))
	case ConfirmCancel:
		reply(cmd.Response, c.handleConfirmCancel(cmd))
	case CreateQueue:
		cmd.Response <- c.handleCreateQueue(cmd)
	case RemoveQueue:
		reply(cmd.Response, c.handleRemoveQueue(cmd))
	case SetQueueMode:
		reply(cmd.Response, c.handleSetQueueMode(cmd))
	case SetQueueCapacity:
		reply(cmd.Response, c.handleSetQueueCapacity(cmd))
	case ClearQueue:
		reply(cmd.Response, c.handleClearQueue(cmd))
	case KickFromQueue:
		reply(cmd.Response, c.handleKickFromQueue(cmd))
	case SeedQueue:
		reply(cmd.Response, c.handleSeedQueue(cmd))
	case RegenerateLobby:
		reply(cmd.Response, c.handleRegenerateLobby(cmd))
	case SetQueuesEnabled:
		c.state.QueuesEnabled = cmd.Enabled
		c.log.WithField("enabled", cmd.Enabled).Info("queueing toggled")
		reply(cmd.Response, nil)
	case SetQueueIdleTimeout:
		c.cfg.QueueIdleTimeout = cmd.Timeout
		reply(cmd.Response, nil)
	case ForceSelection:
		reply(cmd.Response, c.handleForceSelection(cmd))
	case ForceResult:
		reply(cmd.Response, c.handleForceResult(cmd))
	case ForceCancel:
		reply(cmd.Response, c.handleForceCancel(cmd))
	case ClearData:
		reply(cmd.Response, c.handleClearData())
	case LeaderboardQuery:
		since := cmd.Window.Start(time.Now())
		cmd.Response <- c.state.Ledger.Leaderboard(since, cmd.QueueID)
	case RankQuery:
		since := cmd.Window.Start(time.Now())
		entry, rank, ok := c.state.Ledger.Rank(cmd.PlayerID, since, cmd.QueueID)
		cmd.Response <- RankReply{Entry: entry, Rank: rank, OK: ok}
	case getStateCmd:
		cmd.Response <- c.snapshot()
	case queueIdleTimeout:
		c.handleQueueIdleTimeout(cmd)
	case selectionTimeout:
		c.handleSelectionTimeout(cmd)
	case pickTimeout:
		c.handlePickTimeout(cmd)
	case reportTimeout:
		c.handleReportTimeout(cmd)
	case cancelConfirmTimeout:
		c.handleCancelConfirmTimeout(cmd)
	case removeMatch:
		c.handleRemoveMatch(cmd)
	}
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

func (c *Coordinator) handleJoinQueue(cmd JoinQueue) error {
	q := c.state.Queues[cmd.QueueID]
	if q == nil {
		return game.ErrQueueNotFound
	}
	if !c.state.QueuesEnabled {
		return game.ErrQueuesDisabled
	}
	if c.state.InAnyMatch(cmd.Player.ID) {
		return game.ErrAlreadyInMatch
	}

	full, err := q.Join(cmd.Player)
	if err != nil {
		return err
	}
	c.startIdleTimer(q.ID, cmd.Player)
	c.log.WithFields(logrus.Fields{
		"queue": q.Name, "player": cmd.Player.ID, "waiting": q.Len(),
	}).Info("player queued")
	c.emit(PlayerQueued{QueueID: q.ID, Player: cmd.Player, Waiting: q.Len(), Capacity: q.Capacity})

	if full {
		c.popQueue(q)
	}
	return nil
}

func (c *Coordinator) handleLeaveQueue(cmd LeaveQueue) error {
	q := c.state.Queues[cmd.QueueID]
	if q == nil {
		return game.ErrQueueNotFound
	}
	if err := q.Leave(cmd.PlayerID); err != nil {
		return err
	}
	c.cancelIdleTimer(q.ID, cmd.PlayerID)
	c.emit(PlayerDequeued{QueueID: q.ID, PlayerID: cmd.PlayerID, Waiting: q.Len()})
	return nil
}

// popQueue drains a full queue into a new match. The drained players are
// also evicted from every other queue they were waiting in, with their idle
// timers cancelled in the same step.
func (c *Coordinator) popQueue(q *game.Queue) {
	roster, err := q.PopAll()
	if err != nil {
		c.log.WithError(err).WithField("queue", q.Name).Warn("pop on non-full queue")
		return
	}
	for _, p := range roster {
		c.cancelIdleTimer(q.ID, p.ID)
		for _, other := range c.state.Queues {
			if other.ID == q.ID || !other.Contains(p.ID) {
				continue
			}
			if err := other.Leave(p.ID); err == nil {
				c.cancelIdleTimer(other.ID, p.ID)
				c.emit(PlayerDequeued{QueueID: other.ID, PlayerID: p.ID, Waiting: other.Len()})
			}
		}
	}

	m := game.NewMatch(roster, q, c.rng)
	c.state.Matches[m.ID] = m
	c.log.WithFields(logrus.Fields{"queue": q.Name, "match": m.ID}).Info("queue popped into match")
	c.emit(QueuePopped{QueueID: q.ID, MatchID: m.ID, Roster: roster})

	if err := c.startSelection(m, game.ModeDefault); err != nil {
		c.log.WithError(err).WithField("match", m.ID).Error("team selection failed to start")
	}
}

// startSelection runs team selection and emits/schedules whatever the
// resulting state requires.
func (c *Coordinator) startSelection(m *game.Match, mode game.SelectionMode) error {
	prevSeq := m.SelectionSeq
	if err := m.RunTeamSelection(mode); err != nil {
		return err
	}
	c.syncSelection(m, prevSeq)
	return nil
}

// syncSelection reconciles events and timers with the match's state after a
// selection step. prevSeq distinguishes a freshly started protocol from one
// still collecting input.
func (c *Coordinator) syncSelection(m *game.Match, prevSeq int) {
	switch {
	case m.State == game.StateOngoing:
		c.emitTeamsFinalized(m)
	case m.State == game.StateSelection && m.SelectionSeq != prevSeq:
		ev := SelectionStarted{MatchID: m.ID, Mode: m.Mode}
		if d := m.DraftState(); d != nil {
			ev.Captains = d.Captains()
			c.schedulePickTimeout(m.ID, m.SelectionSeq, d.Picks())
		} else {
			c.scheduleSelectionTimeout(m.ID, m.SelectionSeq)
		}
		c.emit(ev)
	}
	c.persistMatch(m)
}

func (c *Coordinator) emitTeamsFinalized(m *game.Match) {
	c.emit(TeamsFinalized{
		MatchID:   m.ID,
		Blue:      m.Blue,
		Orange:    m.Orange,
		Captains:  m.Captains,
		LobbyName: m.LobbyName,
		LobbyPass: m.LobbyPass,
	})
}

func (c *Coordinator) handleCastModeVote(cmd CastModeVote) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	prevSeq := m.SelectionSeq
	decided, err := m.CastModeVote(cmd.PlayerID, cmd.Mode)
	if err != nil {
		return err
	}
	if decided {
		c.emit(VoteDecided{MatchID: m.ID, Mode: m.Mode})
		c.syncSelection(m, prevSeq)
		return nil
	}
	if v := m.VoteState(); v != nil {
		c.emit(VoteUpdated{MatchID: m.ID, Counts: v.Counts(), Remaining: v.Remaining()})
	}
	return nil
}

func (c *Coordinator) handlePickPlayer(cmd PickPlayer) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}

	// Capture who is picking and the picked player before the mutation;
	// the draft state is gone once the final pick finalizes teams.
	var captain, pick game.Player
	if d := m.DraftState(); d != nil {
		captain, _ = d.Picking()
		for _, p := range d.Pickable() {
			if p.ID == cmd.PickID {
				pick = p
				break
			}
		}
	}

	if err := m.PickPlayer(cmd.CaptainID, cmd.PickID); err != nil {
		return err
	}

	ev := PickMade{MatchID: m.ID, Captain: captain, Pick: pick}
	if d := m.DraftState(); d != nil {
		ev.Pickable = d.Pickable()
		ev.Next, _ = d.Picking()
		c.schedulePickTimeout(m.ID, m.SelectionSeq, d.Picks())
	}
	c.emit(ev)
	if m.State == game.StateOngoing {
		c.emitTeamsFinalized(m)
	}
	c.persistMatch(m)
	return nil
}

func (c *Coordinator) handleChooseTeam(cmd ChooseTeam) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	if err := m.ChooseTeam(cmd.PlayerID, cmd.Color); err != nil {
		return err
	}
	if m.State == game.StateOngoing {
		c.emitTeamsFinalized(m)
	}
	c.persistMatch(m)
	return nil
}

func (c *Coordinator) handleReportScore(cmd ReportScore) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}

	fresh := !m.ReportPending()
	winner, resolved, err := m.SubmitReport(cmd.PlayerID, cmd.Choice)
	if err != nil {
		return err
	}
	if fresh && m.ReportPending() {
		c.emit(ReportStarted{MatchID: m.ID, Captains: m.Captains})
		c.scheduleReportTimeout(m.ID, m.ReportSeq)
	}
	if !resolved {
		return nil
	}
	if winner == game.ColorNone {
		c.emit(ReportAborted{MatchID: m.ID})
		return nil
	}
	c.finish(m)
	return nil
}

// finish distributes points for a completed match, writes the score
// records, and schedules teardown. Losers earn per_play, winners
// per_play + per_win.
func (c *Coordinator) finish(m *game.Match) {
	q := m.Queue
	now := time.Now()

	winners := m.Blue
	if m.Winner == game.ColorOrange {
		winners = m.Orange
	}
	winSet := make(map[game.PlayerID]bool, len(winners))
	for _, p := range winners {
		winSet[p.ID] = true
	}

	awards := make([]ledger.ScoreRecord, 0, len(m.Roster))
	for _, p := range m.Roster {
		rec := ledger.ScoreRecord{
			MatchID:  m.ID,
			QueueID:  q.ID,
			PlayerID: int64(p.ID),
			Points:   q.Points.PerPlay,
			When:     now,
		}
		if winSet[p.ID] {
			rec.Win = 1
			rec.Points += q.Points.PerWin
		}
		c.state.Ledger.Append(rec)
		q.AwardStats(rec)
		awards = append(awards, rec)
		c.persistScore(rec, q)
	}
	q.GamesPlayed++
	c.persistQueue(q)
	c.persistMatch(m)

	c.log.WithFields(logrus.Fields{
		"match": m.ID, "winner": m.Winner.String(), "records": len(awards),
	}).Info("match finished, points distributed")
	c.emit(MatchFinished{MatchID: m.ID, QueueID: q.ID, Winner: m.Winner, Awards: awards})
	c.scheduleRemove(m.ID)
}

// teardownCancelled runs the finish path for a cancelled match: same
// removal, no score records.
func (c *Coordinator) teardownCancelled(m *game.Match) {
	c.persistMatch(m)
	c.emit(MatchCancelled{MatchID: m.ID, QueueID: m.Queue.ID})
	c.scheduleRemove(m.ID)
}

func (c *Coordinator) handleRequestCancel(cmd RequestCancel) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	responsible, err := m.RequestCancel(cmd.PlayerID)
	if err != nil {
		return err
	}
	c.emit(CancelRequested{MatchID: m.ID, Initiator: cmd.PlayerID, Responsible: responsible})
	c.scheduleCancelTimeout(m.ID, m.CancelSeq)
	return nil
}

func (c *Coordinator) handleConfirmCancel(cmd ConfirmCancel) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	cancelled, err := m.ConfirmCancel(cmd.PlayerID, cmd.Accept)
	if err != nil {
		return err
	}
	if cancelled {
		c.teardownCancelled(m)
	} else {
		c.emit(CancelDeclined{MatchID: m.ID})
	}
	return nil
}

func (c *Coordinator) handleCreateQueue(cmd CreateQueue) CreateQueueReply {
	if c.state.QueueByName(cmd.Name) != nil {
		return CreateQueueReply{Err: fmt.Errorf("queue name %q already in use", cmd.Name)}
	}
	q, err := game.NewQueue(cmd.Name, cmd.Capacity, cmd.Mode, cmd.Points)
	if err != nil {
		return CreateQueueReply{Err: err}
	}
	c.state.Queues[q.ID] = q
	c.persistQueue(q)
	c.log.WithFields(logrus.Fields{"queue": q.Name, "capacity": q.Capacity}).Info("queue created")
	c.emit(QueueCreated{QueueID: q.ID, Name: q.Name, Capacity: q.Capacity, Mode: q.Mode})
	return CreateQueueReply{QueueID: q.ID}
}

func (c *Coordinator) handleRemoveQueue(cmd RemoveQueue) error {
	q := c.state.Queues[cmd.QueueID]
	if q == nil {
		return game.ErrQueueNotFound
	}
	for _, p := range q.Waiting() {
		c.cancelIdleTimer(q.ID, p.ID)
	}
	delete(c.state.Queues, q.ID)
	c.deleteQueueRecord(q.ID)
	c.emit(QueueRemoved{QueueID: q.ID})
	return nil
}

func (c *Coordinator) handleSetQueueMode(cmd SetQueueMode) error {
	q := c.state.Queues[cmd.QueueID]
	if q == nil {
		return game.ErrQueueNotFound
	}
	if err := game.ValidateQueueShape(q.Capacity, cmd.Mode); err != nil {
		return err
	}
	q.Mode = cmd.Mode
	c.persistQueue(q)
	return nil
}

func (c *Coordinator) handleSetQueueCapacity(cmd SetQueueCapacity) error {
	q := c.state.Queues[cmd.QueueID]
	if q == nil {
		return game.ErrQueueNotFound
	}
	if err := game.ValidateQueueShape(cmd.Capacity, q.Mode); err != nil {
		return err
	}
	if cmd.Capacity < q.Len() {
		return fmt.Errorf("capacity %d is below the %d players already waiting", cmd.Capacity, q.Len())
	}
	q.Capacity = cmd.Capacity
	c.persistQueue(q)
	if q.IsFull() && q.Len() > 0 {
		c.popQueue(q)
	}
	return nil
}

func (c *Coordinator) handleClearQueue(cmd ClearQueue) error {
	q := c.state.Queues[cmd.QueueID]
	if q == nil {
		return game.ErrQueueNotFound
	}
	for _, p := range q.Waiting() {
		c.cancelIdleTimer(q.ID, p.ID)
		_ = q.Leave(p.ID)
	}
	c.emit(QueueCleared{QueueID: q.ID})
	return nil
}

func (c *Coordinator) handleKickFromQueue(cmd KickFromQueue) error {
	q := c.state.Queues[cmd.QueueID]
	if q == nil {
		return game.ErrQueueNotFound
	}
	if err := q.Leave(cmd.PlayerID); err != nil {
		return err
	}
	c.cancelIdleTimer(q.ID, cmd.PlayerID)
	c.emit(PlayerDequeued{QueueID: q.ID, PlayerID: cmd.PlayerID, Waiting: q.Len()})
	return nil
}

func (c *Coordinator) handleSeedQueue(cmd SeedQueue) error {
	if c.state.Queues[cmd.QueueID] == nil {
		return game.ErrQueueNotFound
	}
	for _, p := range cmd.Players {
		if err := c.handleJoinQueue(JoinQueue{QueueID: cmd.QueueID, Player: p}); err != nil {
			return fmt.Errorf("seeding player %d: %w", p.ID, err)
		}
	}
	return nil
}

func (c *Coordinator) handleRegenerateLobby(cmd RegenerateLobby) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	if err := m.RegenerateLobby(); err != nil {
		return err
	}
	c.persistMatch(m)
	c.emit(LobbyUpdated{MatchID: m.ID, LobbyName: m.LobbyName, LobbyPass: m.LobbyPass})
	return nil
}

func (c *Coordinator) handleForceSelection(cmd ForceSelection) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	if m.State != game.StateNew && m.State != game.StateSelection {
		return game.ErrWrongState
	}
	return c.startSelection(m, cmd.Mode)
}

func (c *Coordinator) handleForceResult(cmd ForceResult) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	if err := m.ReportWinner(cmd.Winner); err != nil {
		return err
	}
	c.finish(m)
	return nil
}

func (c *Coordinator) handleForceCancel(cmd ForceCancel) error {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return game.ErrMatchNotFound
	}
	if err := m.Cancel(); err != nil {
		return err
	}
	c.teardownCancelled(m)
	return nil
}

// handleClearData wipes the ledger and every queue-scoped stats cache. This
// is the only path that rebuilds stats from scratch, and it rebuilds them
// to zero.
func (c *Coordinator) handleClearData() error {
	c.state.Ledger.Clear()
	for _, q := range c.state.Queues {
		q.Stats = make(map[game.PlayerID]*ledger.PlayerStats)
		q.GamesPlayed = 0
		c.persistQueue(q)
	}
	if c.store != nil {
		if err := c.store.ClearScores(context.Background()); err != nil {
			c.log.WithError(err).Error("clearing persisted scores")
			return err
		}
	}
	c.log.Warn("all score data cleared")
	return nil
}

func (c *Coordinator) handleQueueIdleTimeout(cmd queueIdleTimeout) {
	key := idleKey{queueID: cmd.QueueID, player: cmd.PlayerID}
	entry, live := c.idleTimers[key]
	if !live || entry.gen != cmd.Gen {
		return // cancelled, or re-armed for a later queue session
	}
	delete(c.idleTimers, key)

	q := c.state.Queues[cmd.QueueID]
	if q == nil || !q.Contains(cmd.PlayerID) {
		return
	}
	var player game.Player
	for _, p := range q.Waiting() {
		if p.ID == cmd.PlayerID {
			player = p
			break
		}
	}
	if err := q.Leave(cmd.PlayerID); err != nil {
		return
	}
	c.log.WithFields(logrus.Fields{"queue": q.Name, "player": cmd.PlayerID}).
		Info("player removed from queue after idle timeout")
	c.emit(QueueIdleTimedOut{QueueID: q.ID, Player: player})
	c.emit(PlayerDequeued{QueueID: q.ID, PlayerID: cmd.PlayerID, Waiting: q.Len()})
}

func (c *Coordinator) handleSelectionTimeout(cmd selectionTimeout) {
	m := c.state.Matches[cmd.MatchID]
	if m == nil || m.State != game.StateSelection || m.SelectionSeq != cmd.Seq {
		return
	}
	var silent []game.Player
	switch {
	case m.VoteState() != nil:
		silent = m.VoteState().Outstanding()
	case m.SelfPickState() != nil:
		silent = m.SelfPickState().Unplaced()
	}
	c.expireSelection(m, silent)
}

func (c *Coordinator) handlePickTimeout(cmd pickTimeout) {
	m := c.state.Matches[cmd.MatchID]
	if m == nil || m.State != game.StateSelection || m.SelectionSeq != cmd.Seq {
		return
	}
	d := m.DraftState()
	if d == nil || d.Picks() != cmd.Picks {
		return // pick already made, timeout is stale
	}
	var silent []game.Player
	if captain, ok := d.Picking(); ok {
		silent = []game.Player{captain}
	}
	c.expireSelection(m, silent)
}

// expireSelection cancels a match whose selection protocol ran out of time.
// Everyone except the silent parties goes back to the originating queue.
func (c *Coordinator) expireSelection(m *game.Match, silent []game.Player) {
	mode := m.Mode
	silentSet := make(map[game.PlayerID]bool, len(silent))
	for _, p := range silent {
		silentSet[p.ID] = true
	}
	if err := m.CancelExpiredSelection(); err != nil {
		return
	}
	c.log.WithFields(logrus.Fields{
		"match": m.ID, "mode": mode.String(), "silent": len(silent),
	}).Info("team selection timed out, cancelling match")

	q := c.state.Queues[m.Queue.ID]
	var returned []game.Player
	if q != nil {
		for _, p := range m.Roster {
			if silentSet[p.ID] {
				continue
			}
			if _, err := q.Join(p); err != nil {
				continue
			}
			c.startIdleTimer(q.ID, p)
			returned = append(returned, p)
			c.emit(PlayerQueued{QueueID: q.ID, Player: p, Waiting: q.Len(), Capacity: q.Capacity})
		}
	}

	c.emit(SelectionTimedOut{
		MatchID: m.ID, QueueID: m.Queue.ID, Mode: mode,
		Silent: silent, Returned: returned,
	})
	c.teardownCancelled(m)

	if q != nil && q.IsFull() {
		c.popQueue(q)
	}
}

func (c *Coordinator) handleReportTimeout(cmd reportTimeout) {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return
	}
	silent, replacement, ok := m.ReportTimeout(cmd.Seq)
	if !ok {
		return
	}
	c.emit(ReportTimedOut{MatchID: m.ID, Silent: silent, Replacement: replacement})
	c.persistMatch(m)
}

func (c *Coordinator) handleCancelConfirmTimeout(cmd cancelConfirmTimeout) {
	m := c.state.Matches[cmd.MatchID]
	if m == nil {
		return
	}
	silent, replacement, ok := m.CancelTimeout(cmd.Seq)
	if !ok {
		return
	}
	c.emit(CancelTimedOut{MatchID: m.ID, Silent: silent, Replacement: replacement})
	c.persistMatch(m)
}

func (c *Coordinator) handleRemoveMatch(cmd removeMatch) {
	m := c.state.Matches[cmd.MatchID]
	if m == nil || !m.State.Terminal() {
		return
	}
	delete(c.state.Matches, m.ID)
	c.deleteMatchRecord(m.ID)
	c.emit(MatchRemoved{MatchID: m.ID})
}

// Timer scheduling. Timers re-enter through the command channel; the
// captured sequence numbers make stale fires harmless, so only the
// per-player idle timers need explicit cancellation.

func (c *Coordinator) startIdleTimer(queueID string, p game.Player) {
	c.cancelIdleTimer(queueID, p.ID)
	if c.cfg.QueueIdleTimeout <= 0 {
		return
	}
	c.idleGen++
	gen := c.idleGen
	key := idleKey{queueID: queueID, player: p.ID}
	handle := time.AfterFunc(c.cfg.QueueIdleTimeout, func() {
		c.Send(queueIdleTimeout{QueueID: queueID, PlayerID: p.ID, Gen: gen})
	})
	c.idleTimers[key] = idleTimer{handle: handle, gen: gen}
}

func (c *Coordinator) cancelIdleTimer(queueID string, player game.PlayerID) {
	key := idleKey{queueID: queueID, player: player}
	if t, ok := c.idleTimers[key]; ok {
		t.handle.Stop()
		delete(c.idleTimers, key)
	}
}

func (c *Coordinator) scheduleSelectionTimeout(matchID string, seq int) {
	if c.cfg.SelectionTimeout <= 0 {
		return
	}
	time.AfterFunc(c.cfg.SelectionTimeout, func() {
		c.Send(selectionTimeout{MatchID: matchID, Seq: seq})
	})
}

func (c *Coordinator) schedulePickTimeout(matchID string, seq, picks int) {
	if c.cfg.PickTimeout <= 0 {
		return
	}
	time.AfterFunc(c.cfg.PickTimeout, func() {
		c.Send(pickTimeout{MatchID: matchID, Seq: seq, Picks: picks})
	})
}

func (c *Coordinator) scheduleReportTimeout(matchID string, seq int) {
	if c.cfg.ReportTimeout <= 0 {
		return
	}
	time.AfterFunc(c.cfg.ReportTimeout, func() {
		c.Send(reportTimeout{MatchID: matchID, Seq: seq})
	})
}

func (c *Coordinator) scheduleCancelTimeout(matchID string, seq int) {
	if c.cfg.CancelTimeout <= 0 {
		return
	}
	time.AfterFunc(c.cfg.CancelTimeout, func() {
		c.Send(cancelConfirmTimeout{MatchID: matchID, Seq: seq})
	})
}

func (c *Coordinator) scheduleRemove(matchID string) {
	if c.cfg.TeardownDelay <= 0 {
		c.Send(removeMatch{MatchID: matchID})
		return
	}
	time.AfterFunc(c.cfg.TeardownDelay, func() {
		c.Send(removeMatch{MatchID: matchID})
	})
}

// Persistence. Store failures are logged and the in-memory state stands;
// the next save of the same row repairs the gap.

func (c *Coordinator) persistQueue(q *game.Queue) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveQueue(context.Background(), queueRecord(q)); err != nil {
		c.log.WithError(err).WithField("queue", q.ID).Error("persisting queue")
	}
}

func (c *Coordinator) deleteQueueRecord(id string) {
	if c.store == nil {
		return
	}
	if err := c.store.DeleteQueue(context.Background(), id); err != nil {
		c.log.WithError(err).WithField("queue", id).Error("deleting queue record")
	}
}

func (c *Coordinator) persistMatch(m *game.Match) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveMatch(context.Background(), matchRecord(m)); err != nil {
		c.log.WithError(err).WithField("match", m.ID).Error("persisting match")
	}
}

func (c *Coordinator) deleteMatchRecord(id string) {
	if c.store == nil {
		return
	}
	if err := c.store.DeleteMatch(context.Background(), id); err != nil {
		c.log.WithError(err).WithField("match", id).Error("deleting match record")
	}
}

func (c *Coordinator) persistScore(rec ledger.ScoreRecord, q *game.Queue) {
	if c.store == nil {
		return
	}
	ctx := context.Background()
	if err := c.store.AppendScore(ctx, rec); err != nil {
		c.log.WithError(err).WithField("match", rec.MatchID).Error("appending score record")
	}
	if stats, ok := q.Stats[game.PlayerID(rec.PlayerID)]; ok {
		if err := c.store.SaveQueueStats(ctx, q.ID, rec.PlayerID, *stats); err != nil {
			c.log.WithError(err).WithField("player", rec.PlayerID).Error("persisting queue stats")
		}
	}
}

func queueRecord(q *game.Queue) *store.QueueRecord {
	stats := make(map[int64]ledger.PlayerStats, len(q.Stats))
	for id, s := range q.Stats {
		stats[int64(id)] = *s
	}
	return &store.QueueRecord{
		ID:          q.ID,
		Name:        q.Name,
		Capacity:    q.Capacity,
		Mode:        q.Mode.String(),
		PerPlay:     q.Points.PerPlay,
		PerWin:      q.Points.PerWin,
		GamesPlayed: q.GamesPlayed,
		Stats:       stats,
	}
}

func matchRecord(m *game.Match) *store.MatchRecord {
	rec := &store.MatchRecord{
		ID:        m.ID,
		QueueID:   m.Queue.ID,
		State:     m.State.String(),
		Mode:      m.Mode.String(),
		Winner:    m.Winner.String(),
		LobbyName: m.LobbyName,
		LobbyPass: m.LobbyPass,
		Roster:    playersToRefs(m.Roster),
		Blue:      playersToRefs(m.Blue),
		Orange:    playersToRefs(m.Orange),
	}
	if m.Captains[0].ID != 0 || m.Captains[1].ID != 0 {
		rec.Captains = playersToRefs(m.Captains[:])
	}
	return rec
}

func playersToRefs(players []game.Player) []store.PlayerRef {
	refs := make([]store.PlayerRef, len(players))
	for i, p := range players {
		refs[i] = store.PlayerRef{ID: int64(p.ID), Name: p.Name}
	}
	return refs
}

func refToPlayer(ref store.PlayerRef) game.Player {
	return game.Player{ID: game.PlayerID(ref.ID), Name: ref.Name}
}

func refsToPlayers(refs []store.PlayerRef) []game.Player {
	players := make([]game.Player, len(refs))
	for i, ref := range refs {
		players[i] = refToPlayer(ref)
	}
	return players
}

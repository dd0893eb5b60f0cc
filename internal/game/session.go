package game

import (
	"errors"
	"log"
	"time"
)

// Emitter is the session's view of the transport layer. Broadcast fans an
// event out to every connection in the match room; SendTo targets one
// connection. Implementations must not block the caller.
type Emitter interface {
	Broadcast(event string, data map[string]interface{})
	SendTo(connID string, event string, data map[string]interface{})
}

// Outcome is handed to the game-over sink (results recorder, event
// publisher) exactly once per session.
type Outcome struct {
	MatchToken       string
	Mode             Mode
	WinnerID         string
	WinnerSide       Side
	Reason           EndReason
	ScoreLeft        int
	ScoreRight       int
	MatchTimeSeconds int
	Seed             int64
}

// JoinRequest carries a verified join: connection identity plus the stable
// account reference and character choice from the matchmaking ticket.
type JoinRequest struct {
	ConnID      string
	AccountRef  string
	DisplayName string
	CharacterID string
}

// JoinResult tells the transport what seat the connection got.
type JoinResult struct {
	Side     Side
	Seed     int64
	Resumed  bool
	Snapshot *Snapshot
}

// ErrSessionFull rejects a join on a session whose both seats are taken.
var ErrSessionFull = errors.New("session is full")

// ErrSessionFinished rejects joins after the match ended.
var ErrSessionFinished = errors.New("session is finished")

// inputFrame is one validated input message, buffered until the next tick
// boundary.
type inputFrame struct {
	connID      string
	left        bool
	right       bool
	jump        bool
	jumpPressed bool
	sequence    uint64
}

// Session is the authoritative state machine for one two-player match. All
// state is owned by the session's own goroutine: inbound messages and timer
// callbacks are posted onto one inbox channel and processed serially, so no
// two callbacks for the same session ever run concurrently and no locks are
// needed on match state.
type Session struct {
	ID    string
	Token string
	Mode  Mode

	status      Status
	servingSide Side
	matchTime   int
	countdown   int
	seed        int64
	winnerID    string
	winnerSide  Side

	players [2]*Player // indexed by side: 0=left, 1=right
	ball    Ball

	pending []inputFrame

	rng        *Rand
	sched      Scheduler
	emitter    Emitter
	onGameOver func(Outcome)

	disconnects map[string]*DisconnectRecord // keyed by account ref

	cancelTick      CancelFunc
	cancelClock     CancelFunc
	cancelCountdown CancelFunc
	cancelPoint     CancelFunc

	prevSnap *Snapshot

	inbox chan func()
	quit  chan struct{}
}

// NewSession creates a session in the waiting state. Run must be started on
// its own goroutine before any message is delivered.
func NewSession(id, token string, mode Mode, sched Scheduler, emitter Emitter, onGameOver func(Outcome)) *Session {
	seed := NewSeed()
	return &Session{
		ID:          id,
		Token:       token,
		Mode:        mode,
		status:      StatusWaiting,
		servingSide: SideLeft,
		seed:        seed,
		rng:         NewRand(seed),
		sched:       sched,
		emitter:     emitter,
		onGameOver:  onGameOver,
		disconnects: make(map[string]*DisconnectRecord),
		inbox:       make(chan func(), 256),
		quit:        make(chan struct{}),
	}
}

// Run processes the session's inbox until Close. Every mutation of match
// state happens on this goroutine.
func (s *Session) Run() {
	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-s.quit:
			return
		}
	}
}

// Close disposes the session: cancels every outstanding timer and stops the
// loop. Idempotent from the caller's perspective only if called once; the
// manager is the sole caller.
func (s *Session) Close() {
	s.post(func() {
		s.cancelAllTimers()
		close(s.quit)
	})
}

// post schedules fn on the session loop, dropping it if the session is shut
// down or the inbox is saturated (a stalled session must not block the
// transport).
func (s *Session) post(fn func()) {
	select {
	case <-s.quit:
	case s.inbox <- fn:
	default:
		log.Printf("[SESSION] %s inbox full, dropping message", s.ID)
	}
}

// call runs fn on the loop and waits for it to complete.
func (s *Session) call(fn func()) {
	done := make(chan struct{})
	s.post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-s.quit:
	}
}

// === Public API (transport goroutines) ===

// Join admits or re-admits a connection. A join matching an armed
// DisconnectRecord rebinds the original seat; otherwise the first free seat
// is taken; a full session rejects.
func (s *Session) Join(req JoinRequest) (JoinResult, error) {
	var res JoinResult
	var err error
	s.call(func() { res, err = s.handleJoin(req) })
	return res, err
}

// Leave handles a connection going away. intentional marks a consented
// leave (clean close), which forfeits immediately during active play.
func (s *Session) Leave(connID string, intentional bool) {
	s.post(func() { s.handleLeave(connID, intentional) })
}

// Input buffers a validated input frame for the next tick boundary. Frames
// arriving in states where no tick will drain the buffer are dropped.
func (s *Session) Input(connID string, left, right, jump, jumpPressed bool, sequence uint64) {
	s.post(func() {
		if s.status != StatusPlaying && s.status != StatusPointScored {
			return
		}
		s.pending = append(s.pending, inputFrame{
			connID: connID, left: left, right: right,
			jump: jump, jumpPressed: jumpPressed, sequence: sequence,
		})
	})
}

// Ready marks the sender ready; both seats ready advances to countdown.
func (s *Session) Ready(connID string) {
	s.post(func() { s.handleReady(connID) })
}

// Pause suspends play on a participant's request.
func (s *Session) Pause(connID string) {
	s.post(func() {
		if s.status == StatusPlaying {
			s.pause("Paused by player")
			s.sync()
		}
	})
}

// Resume restarts play; only honored from paused with both seats connected.
func (s *Session) Resume(connID string) {
	s.post(func() {
		s.resume()
		s.sync()
	})
}

// Forfeit is an immediate loss for the sender.
func (s *Session) Forfeit(connID string) {
	s.post(func() {
		p := s.playerByConn(connID)
		if p == nil || s.status == StatusFinished {
			return
		}
		s.finish(p.Side.Opposite(), ReasonForfeit)
	})
}

// CanJoin reports whether an account could take or reclaim a seat right
// now, so the transport can reject before upgrading the connection. Join
// re-checks; this is advisory only.
func (s *Session) CanJoin(accountRef string) bool {
	var ok bool
	s.call(func() {
		if s.status == StatusFinished {
			return
		}
		if _, rec := s.disconnects[accountRef]; rec {
			ok = true
			return
		}
		for _, p := range s.players {
			if p != nil && p.AccountRef == accountRef {
				ok = true
				return
			}
		}
		ok = s.players[0] == nil || s.players[1] == nil
	})
	return ok
}

// State returns a point-in-time snapshot, for REST lookups and resyncs.
func (s *Session) State() *Snapshot {
	var snap *Snapshot
	s.call(func() { snap = s.buildSnapshot() })
	return snap
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	var st Status
	s.call(func() { st = s.status })
	return st
}

// Seed exposes the deterministic RNG seed shared with clients.
func (s *Session) Seed() int64 { return s.seed }

// Info is the admin listing view of a session.
type Info struct {
	Token     string   `json:"token"`
	Mode      Mode     `json:"mode"`
	Status    Status   `json:"status"`
	Score     [2]int   `json:"score"`
	Players   []string `json:"players"`
	MatchTime int      `json:"matchTimeSeconds"`
}

// Info returns a point-in-time summary.
func (s *Session) Info() Info {
	var info Info
	s.call(func() {
		info = Info{Token: s.Token, Mode: s.Mode, Status: s.status, MatchTime: s.matchTime}
		info.Score[0], info.Score[1] = s.scores()
		for _, p := range s.players {
			if p != nil {
				info.Players = append(info.Players, p.DisplayName)
			}
		}
	})
	return info
}

// === Join / seats ===

func (s *Session) handleJoin(req JoinRequest) (JoinResult, error) {
	if s.status == StatusFinished {
		return JoinResult{}, ErrSessionFinished
	}

	// Reconnection: match by stable account reference, never by transport id.
	if rec, ok := s.disconnects[req.AccountRef]; ok {
		return s.rebindSeat(rec, req), nil
	}

	// A still-connected player rejoining (e.g. replaced socket) keeps the seat.
	for _, p := range s.players {
		if p != nil && p.AccountRef == req.AccountRef {
			p.ConnID = req.ConnID
			p.Connected = true
			return JoinResult{Side: p.Side, Seed: s.seed, Resumed: true, Snapshot: s.buildSnapshot()}, nil
		}
	}

	side := SideLeft
	if s.players[seatIndex(SideLeft)] != nil {
		side = SideRight
	}
	if s.players[seatIndex(side)] != nil {
		return JoinResult{}, ErrSessionFull
	}

	p := &Player{
		ConnID:      req.ConnID,
		AccountRef:  req.AccountRef,
		DisplayName: req.DisplayName,
		CharacterID: req.CharacterID,
		Side:        side,
		Attributes:  AttributesFor(req.CharacterID),
		Connected:   true,
		CanHit:      true,
		Animation:   AnimIdle,
		X:           homeX(side),
		Y:           GroundY,
		IsGrounded:  true,
	}
	s.players[seatIndex(side)] = p

	log.Printf("[SESSION] %s: %s joined as %s", s.ID, req.AccountRef, side)

	if s.players[0] != nil && s.players[1] != nil {
		s.emit("match_ready", map[string]interface{}{
			"players": []map[string]interface{}{
				s.playerSummary(s.players[0]),
				s.playerSummary(s.players[1]),
			},
		})
	}

	s.sync()
	return JoinResult{Side: side, Seed: s.seed, Snapshot: s.buildSnapshot()}, nil
}

func (s *Session) playerSummary(p *Player) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.AccountRef,
		"username":    p.DisplayName,
		"side":        p.Side,
		"characterId": p.CharacterID,
	}
}

func (s *Session) handleReady(connID string) {
	p := s.playerByConn(connID)
	if p == nil || s.status != StatusWaiting {
		return
	}
	p.Ready = true

	other := s.players[seatIndex(p.Side.Opposite())]
	if other != nil && other.Ready {
		s.resetRally()
		s.startCountdown()
	}
	s.sync()
}

// === Lifecycle transitions ===

func (s *Session) startCountdown() {
	s.status = StatusCountdown
	s.countdown = CountdownSeconds
	s.emit("countdown", map[string]interface{}{"remaining": s.countdown})

	s.cancelTimer(&s.cancelCountdown)
	s.cancelCountdown = s.sched.Every(time.Second, func() {
		s.post(s.tickCountdown)
	})
}

func (s *Session) tickCountdown() {
	if s.status != StatusCountdown {
		return
	}
	s.countdown--
	if s.countdown > 0 {
		s.emit("countdown", map[string]interface{}{"remaining": s.countdown})
		s.sync()
		return
	}
	s.cancelTimer(&s.cancelCountdown)
	s.countdown = 0

	// A seat that dropped during the countdown holds the match at paused
	// instead of playing into an empty court.
	if !s.bothConnected() {
		s.status = StatusPaused
		s.emit("game_paused", map[string]interface{}{"reason": "Player disconnected"})
		s.sync()
		return
	}
	s.beginPlay(true)
	s.sync()
}

// beginPlay arms the fixed-tick scheduler and the one-second match clock.
// serve gives the ball its small initial drop at the start of a rally.
func (s *Session) beginPlay(serve bool) {
	s.status = StatusPlaying
	if serve {
		s.ball.VelocityY = ServeDropVelY
	}

	s.cancelTimer(&s.cancelTick)
	s.cancelTick = s.sched.Every(TickInterval, func() {
		s.post(s.tick)
	})
	s.cancelTimer(&s.cancelClock)
	s.cancelClock = s.sched.Every(time.Second, func() {
		s.post(func() {
			if s.status == StatusPlaying || s.status == StatusPointScored {
				s.matchTime++
			}
		})
	})
}

func (s *Session) pause(reason string) {
	if s.status != StatusPlaying {
		return
	}
	s.status = StatusPaused
	s.cancelTimer(&s.cancelTick)
	s.cancelTimer(&s.cancelClock)
	s.emit("game_paused", map[string]interface{}{"reason": reason})
}

func (s *Session) resume() {
	if s.status != StatusPaused || !s.bothConnected() {
		return
	}
	s.beginPlay(false)
	s.emit("game_resumed", map[string]interface{}{})
}

func (s *Session) finish(winner Side, reason EndReason) {
	if s.status == StatusFinished {
		return
	}
	s.status = StatusFinished
	s.winnerSide = winner
	if p := s.players[seatIndex(winner)]; p != nil {
		s.winnerID = p.AccountRef
	}
	s.cancelAllTimers()

	scoreLeft, scoreRight := s.scores()
	s.emit("game_over", map[string]interface{}{
		"winnerId":   s.winnerID,
		"winnerSide": s.winnerSide,
		"reason":     reason,
		"score":      map[string]int{"left": scoreLeft, "right": scoreRight},
		"matchTime":  s.matchTime,
	})
	s.sync()

	if s.onGameOver != nil {
		s.onGameOver(Outcome{
			MatchToken:       s.Token,
			Mode:             s.Mode,
			WinnerID:         s.winnerID,
			WinnerSide:       s.winnerSide,
			Reason:           reason,
			ScoreLeft:        scoreLeft,
			ScoreRight:       scoreRight,
			MatchTimeSeconds: s.matchTime,
			Seed:             s.seed,
		})
	}

	log.Printf("[SESSION] %s finished: winner=%s reason=%s %d-%d",
		s.ID, s.winnerSide, reason, scoreLeft, scoreRight)
}

// === Tick pipeline ===

// tick advances the simulation by exactly one fixed slice. A stale callback
// firing in any other state is ignored rather than trusted — the scheduler
// can race a transition.
func (s *Session) tick() {
	if s.status != StatusPlaying {
		s.pending = s.pending[:0]
		return
	}

	s.applyPendingInputs()

	for _, p := range s.players {
		if p == nil {
			continue
		}
		StepPlayer(p, Dt)
		TickHitCooldown(p)
	}

	StepBall(&s.ball, Dt)

	for _, p := range s.players {
		if p == nil {
			continue
		}
		ResolveHit(p, &s.ball, s.rng)
	}

	if CheckGround(&s.ball) {
		s.handleGroundContact()
	}

	s.sync()
}

// applyPendingInputs drains the buffered frames in arrival order. Stale or
// replayed sequence numbers are dropped silently and do not advance the
// counter; a jump press is latched until the integrator consumes it.
func (s *Session) applyPendingInputs() {
	for _, f := range s.pending {
		p := s.playerByConn(f.connID)
		if p == nil {
			continue
		}
		if f.sequence <= p.LastSequence {
			continue
		}
		p.LastSequence = f.sequence
		p.InputLeft = f.left
		p.InputRight = f.right
		p.InputJump = f.jump
		if f.jumpPressed {
			p.JumpPressed = true
		}
	}
	s.pending = s.pending[:0]
}

func (s *Session) handleGroundContact() {
	res := ScorePoint(&s.ball, &s.players, s.Mode, &s.servingSide)
	s.emit("point_scored", map[string]interface{}{
		"side":  res.Scorer,
		"score": map[string]int{"left": res.ScoreLeft, "right": res.ScoreRight},
	})

	if res.Won {
		s.finish(res.Scorer, ReasonScore)
		return
	}

	s.status = StatusPointScored
	s.cancelTimer(&s.cancelPoint)
	s.cancelPoint = s.sched.After(PointPauseMS*time.Millisecond, func() {
		s.post(s.afterPointPause)
	})
}

func (s *Session) afterPointPause() {
	if s.status != StatusPointScored {
		return
	}
	s.resetRally()
	s.startCountdown()
	s.sync()
}

// resetRally puts the ball and both players back to serve positions.
func (s *Session) resetRally() {
	s.ball.resetForServe(s.servingSide)
	for _, p := range s.players {
		if p != nil {
			p.resetForServe()
		}
	}
}

// === Helpers ===

func (s *Session) playerByConn(connID string) *Player {
	for _, p := range s.players {
		if p != nil && p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (s *Session) bothConnected() bool {
	return s.players[0] != nil && s.players[0].Connected &&
		s.players[1] != nil && s.players[1].Connected
}

func (s *Session) scores() (left, right int) {
	if p := s.players[seatIndex(SideLeft)]; p != nil {
		left = p.Score
	}
	if p := s.players[seatIndex(SideRight)]; p != nil {
		right = p.Score
	}
	return
}

func (s *Session) cancelTimer(c *CancelFunc) {
	if *c != nil {
		(*c)()
		*c = nil
	}
}

func (s *Session) cancelAllTimers() {
	s.cancelTimer(&s.cancelTick)
	s.cancelTimer(&s.cancelClock)
	s.cancelTimer(&s.cancelCountdown)
	s.cancelTimer(&s.cancelPoint)
	for ref, rec := range s.disconnects {
		rec.cancel()
		delete(s.disconnects, ref)
	}
}

func (s *Session) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		Status:           s.status,
		Mode:             s.Mode,
		ServingSide:      s.servingSide,
		MatchTimeSeconds: s.matchTime,
		Countdown:        s.countdown,
		WinnerID:         s.winnerID,
		WinnerSide:       s.winnerSide,
		Ball:             s.ball,
	}
	snap.ScoreLeft, snap.ScoreRight = s.scores()
	for i, p := range s.players {
		if p != nil {
			cp := *p
			snap.Players[i] = &cp
		}
	}
	return snap
}

// sync diffs the current state against the last multicast snapshot and
// broadcasts the patch. The diff is transport sugar only; nothing in the
// state machine depends on it.
func (s *Session) sync() {
	snap := s.buildSnapshot()
	if s.prevSnap == nil {
		s.prevSnap = snap
		s.emit("state", snapshotPayload(snap))
		return
	}
	if patch := Diff(s.prevSnap, snap); patch != nil {
		s.emit("state_diff", patch)
	}
	s.prevSnap = snap
}

func snapshotPayload(snap *Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"status":             snap.Status,
		"mode":               snap.Mode,
		"servingSide":        snap.ServingSide,
		"matchTimeSeconds":   snap.MatchTimeSeconds,
		"countdownRemaining": snap.Countdown,
		"scoreLeft":          snap.ScoreLeft,
		"scoreRight":         snap.ScoreRight,
		"winnerId":           snap.WinnerID,
		"winnerSide":         snap.WinnerSide,
		"ball":               snap.Ball,
		"players":            snap.Players,
	}
}

func (s *Session) emit(event string, data map[string]interface{}) {
	if s.emitter != nil {
		s.emitter.Broadcast(event, data)
	}
}
